package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRoomNotFound matches failures where the backend rejected an
	// expense because its room does not exist in the project.
	ErrRoomNotFound = errors.New("room not found in project")
	ErrInvalidArgs  = errors.New("invalid arguments")
)

const roomNotFoundSignal = "not found in project"

// CommandError is a backend call that exited non-zero. The backend prints
// most of its errors on stdout, so Output holds both streams.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	if msg := FailureMessage(e.Output); msg != "" {
		return msg
	}
	return fmt.Sprintf("backend command %q exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
}

// Is lets errors.Is(err, ErrRoomNotFound) match on the failure text.
func (e *CommandError) Is(target error) bool {
	return target == ErrRoomNotFound && IsRoomNotFound(e.Output)
}

// IsRoomNotFound reports whether failure text carries the room-not-found
// signal.
func IsRoomNotFound(text string) bool {
	return strings.Contains(text, roomNotFoundSignal)
}

// FailureMessage picks the human-readable part of backend failure text: the
// first line tagged "ERROR:", or else the last non-empty line.
func FailureMessage(text string) string {
	var last string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, msg, ok := strings.Cut(line, "ERROR:"); ok {
			return strings.TrimSpace(msg)
		}
		last = line
	}
	return last
}
