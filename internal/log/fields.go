package log

import "fliptrack/internal/core"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldSession   = "session_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldProjectID = "project_id"
	FieldRoom      = "room"
	FieldCategory  = "category"
	FieldCost      = "cost"
	FieldState     = "state"
	FieldEvent     = "event"
	FieldCommand   = "command"
	FieldExitCode  = "exit_code"
	FieldDecoded   = "decoded"
	FieldSkipped   = "skipped"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentCLI        = "cli"
	ComponentBackend    = "backend"
	ComponentWorkflow   = "workflow"
	ComponentListing    = "listing"
	ComponentValidation = "validation"
	ComponentCache      = "cache"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentConfig     = "config"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpLoad     = "load"
	OpSubmit   = "submit"
	OpDecode   = "decode"
	OpValidate = "validate"
	OpPublish  = "publish"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithSession adds the workflow session id.
func (f LogFields) WithSession(id string) LogFields {
	f[FieldSession] = id
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithProject(id int64) LogFields {
	f[FieldProjectID] = id
	return f
}

// WithExpense adds the identifying fields of an expense.
func (f LogFields) WithExpense(e core.Expense) LogFields {
	f[FieldProjectID] = e.ProjectID
	f[FieldRoom] = e.RoomName
	f[FieldCategory] = e.Category.String()
	f[FieldCost] = e.Cost.Format()
	return f
}

// WithCommand adds backend process fields.
func (f LogFields) WithCommand(args []string, exitCode int, durationMs int64) LogFields {
	f[FieldCommand] = args
	f[FieldExitCode] = exitCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
