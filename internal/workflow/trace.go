package workflow

import (
	"fliptrack/internal/log"
)

// Event is one debug record of the workflow.
type Event struct {
	Session   string
	Name      string
	State     State
	ProjectID int64
	Detail    string
	Err       error
}

// Tracer receives workflow debug events.
type Tracer interface {
	Log(Event)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Event)

func (f TracerFunc) Log(e Event) { f(e) }

type nopTracer struct{}

func (nopTracer) Log(Event) {}

type logTracer struct {
	logger *log.Logger
}

// LogTracer writes events through logger at debug level.
func LogTracer(logger *log.Logger) Tracer {
	if logger == nil {
		return nopTracer{}
	}
	return logTracer{logger: logger.WithComponent(log.ComponentWorkflow)}
}

func (t logTracer) Log(e Event) {
	fields := log.NewFields().
		WithSession(e.Session).
		WithProject(e.ProjectID)
	fields[log.FieldEvent] = e.Name
	fields[log.FieldState] = e.State.String()
	if e.Detail != "" {
		fields["detail"] = e.Detail
	}
	if e.Err != nil {
		fields = fields.WithError(e.Err)
	}
	t.logger.Debug("Workflow event", fields.ToSlice()...)
}
