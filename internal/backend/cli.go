package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"fliptrack/internal/log"
)

const defaultTimeout = 30 * time.Second

// CLI runs the backend as `<python> -m src.cli <args>` inside its project
// directory, one process per call.
type CLI struct {
	python  string
	dir     string
	timeout time.Duration
	logger  *log.Logger
}

func NewCLI(python, dir string, timeout time.Duration, logger *log.Logger) *CLI {
	if python == "" {
		python = "python3"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &CLI{
		python:  python,
		dir:     dir,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentBackend),
	}
}

func (c *CLI) ListProjects(ctx context.Context) (string, error) {
	return c.run(ctx, "project", "list")
}

func (c *CLI) ListRooms(ctx context.Context, projectID int64) (string, error) {
	return c.run(ctx, "room", "list", strconv.FormatInt(projectID, 10))
}

func (c *CLI) ListExpenses(ctx context.Context, projectID int64) (string, error) {
	return c.run(ctx, "expense", "list", strconv.FormatInt(projectID, 10))
}

func (c *CLI) BudgetStatus(ctx context.Context, projectID int64) (string, error) {
	return c.run(ctx, "budget", "status", strconv.FormatInt(projectID, 10))
}

func (c *CLI) CreateRoom(ctx context.Context, args RoomArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	return c.run(ctx, args.Args()...)
}

func (c *CLI) AddExpense(ctx context.Context, args ExpenseArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	return c.run(ctx, args.Args()...)
}

func (c *CLI) DeleteExpense(ctx context.Context, expenseID int64) (string, error) {
	if expenseID <= 0 {
		return "", fmt.Errorf("%w: expense id must be positive", ErrInvalidArgs)
	}
	return c.run(ctx, "expense", "delete", strconv.FormatInt(expenseID, 10), "--force")
}

func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.python, append([]string{"-m", "src.cli"}, args...)...)
	cmd.Dir = c.dir
	// Keep the backend's table output free of colour codes.
	cmd.Env = append(cmd.Environ(), "NO_COLOR=1", "TERM=dumb", "PYTHONIOENCODING=utf-8")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	exitCode := 0
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("backend %v: %w", args, ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("start backend: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	c.logger.Debug("Backend command finished",
		log.NewFields().WithCommand(args, exitCode, elapsed).ToSlice()...)

	if exitCode != 0 {
		return "", &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Output:   stdout.String() + stderr.String(),
		}
	}
	return stdout.String(), nil
}
