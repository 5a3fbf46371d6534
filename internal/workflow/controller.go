// Package workflow drives expense entry for one project: it loads the
// project's reference data, validates the form as it is edited, resolves
// unknown room names through an explicit create-room confirmation, and sends
// the expense to the backend.
//
// A Controller is safe for concurrent use. Backend calls are made without
// holding its lock, and every result is checked against a generation counter
// so that results belonging to a superseded project selection or a closed
// workflow are dropped.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fliptrack/internal/backend"
	"fliptrack/internal/budget"
	"fliptrack/internal/core"
	"fliptrack/internal/storage"
	"fliptrack/internal/validation"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrSuperseded     = errors.New("superseded by a newer project selection")
	ErrClosed         = errors.New("workflow is closed")
	ErrNotEditing     = errors.New("workflow is not editing an expense")
	ErrNoPendingRoom  = errors.New("no room creation is awaiting confirmation")
	ErrInvalidState   = errors.New("invalid state transition")
)

// DefaultRoomFloor is the floor given to rooms created from the entry form.
const DefaultRoomFloor = 1

// EmptyRoomsInfo is shown when a project has no rooms yet.
const EmptyRoomsInfo = "This project has no rooms yet. Type a room name and it will be created when you save."

// expenseIDPattern picks the new id out of add output when the backend prints
// one. The real `expense add` does not, so the id is usually left at 0.
var expenseIDPattern = regexp.MustCompile(`Expense ID:\s*(\d+)`)

// Notifier is told about changes so cached views can be refreshed.
type Notifier interface {
	ExpenseAdded(ctx context.Context, sessionID string, e core.Expense)
	ExpenseDeleted(ctx context.Context, sessionID string, projectID, expenseID int64)
}

// Journal records submission attempts.
type Journal interface {
	Record(ctx context.Context, s storage.Submission) (int64, error)
}

type Option func(*Controller)

func WithTracer(t Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithClock sets the time source used for form defaults and date checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

type Controller struct {
	gw       backend.Gateway
	tracer   Tracer
	notifier Notifier
	journal  Journal
	now      func() time.Time
	session  string

	mu         sync.Mutex
	state      State
	gen        uint64
	closed     bool
	submitting bool
	ref        ReferenceData
	customRoom bool
	info       string
	form       validation.ExpenseForm
	verdicts   validation.Verdicts
	schema     *validation.Schema
	pending    *core.Expense
}

func New(gw backend.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:       gw,
		tracer:   nopTracer{},
		now:      time.Now,
		session:  uuid.NewString(),
		verdicts: make(validation.Verdicts),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.form = validation.NewExpenseForm(c.today())
	c.schema = validation.ExpenseSchema(c.reference())
	return c
}

// Session is the id attached to every event of this workflow.
func (c *Controller) Session() string { return c.session }

func (c *Controller) today() core.Date {
	t := c.now().UTC()
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}

// reference must be called with c.mu held.
func (c *Controller) reference() validation.Reference {
	return validation.Reference{
		Rooms:      c.ref.Rooms,
		CustomRoom: c.customRoom,
		Budget:     c.ref.Budget,
		Spent:      c.ref.Spent,
		Now:        c.now,
	}
}

// transition must be called with c.mu held.
func (c *Controller) transition(to State) error {
	if !canTransition(c.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, c.state, to)
	}
	from := c.state
	c.state = to
	c.trace(Event{Name: "transition", Detail: from.String() + " -> " + to.String()})
	return nil
}

// trace must be called with c.mu held.
func (c *Controller) trace(e Event) {
	e.Session = c.session
	e.State = c.state
	if e.ProjectID == 0 {
		e.ProjectID = c.ref.ProjectID
	}
	c.tracer.Log(e)
}

// SelectProject loads the reference data of a project and enters Editing.
// The room name typed so far is discarded. A selection made while this one
// is loading supersedes it and this call returns ErrSuperseded.
func (c *Controller) SelectProject(ctx context.Context, projectID int64) error {
	if projectID <= 0 {
		return fmt.Errorf("%w: project id must be positive", backend.ErrInvalidArgs)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := c.transition(LoadingReferenceData); err != nil {
		c.mu.Unlock()
		return err
	}
	c.gen++
	gen := c.gen
	c.ref = ReferenceData{ProjectID: projectID}
	c.form.RoomName = ""
	c.pending = nil
	c.info = ""
	clear(c.verdicts)
	c.trace(Event{Name: "load_started"})
	c.mu.Unlock()

	ref, err := LoadReferenceData(ctx, c.gw, projectID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if gen != c.gen {
		c.trace(Event{Name: "load_discarded", ProjectID: projectID, Err: err})
		return ErrSuperseded
	}
	if err != nil {
		c.trace(Event{Name: "load_failed", Err: err})
		c.ref = ReferenceData{}
		_ = c.transition(Idle)
		return err
	}
	c.customRoom = false
	c.applyReference(ref)
	c.trace(Event{Name: "load_finished", Detail: fmt.Sprintf("rooms=%d skipped=%d budget_known=%t",
		len(ref.Rooms), ref.RoomsReport.Skipped, ref.BudgetKnown)})
	return c.transition(Editing)
}

// applyReference must be called with c.mu held. It keeps the room mode
// unless the project has no rooms, which forces free-text room names.
func (c *Controller) applyReference(ref ReferenceData) {
	c.ref = ref
	c.info = ""
	if len(ref.Rooms) == 0 {
		c.customRoom = true
		c.info = EmptyRoomsInfo
	}
	c.schema = validation.ExpenseSchema(c.reference())
}

// SetCustomRoom switches between picking a known room and typing a free
// room name. It cannot be switched off while the project has no rooms.
func (c *Controller) SetCustomRoom(on bool) (validation.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return validation.Verdict{}, err
	}
	if !on && len(c.ref.Rooms) == 0 {
		on = true
	}
	c.customRoom = on
	c.schema = validation.ExpenseSchema(c.reference())
	if c.form.RoomName == "" {
		return validation.Pass(), nil
	}
	return c.revalidate(validation.FieldRoom), nil
}

// editable must be called with c.mu held.
func (c *Controller) editable() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.state != Editing:
		return fmt.Errorf("%w (state %s)", ErrNotEditing, c.state)
	}
	return nil
}

// SetField updates a form field and validates it. Fields whose rules read
// the changed field are validated again as well.
func (c *Controller) SetField(name, value string) (validation.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return validation.Verdict{}, err
	}
	if !c.form.Set(name, value) {
		return validation.Verdict{}, fmt.Errorf("unknown field %q", name)
	}
	v := c.store(name, c.schema.ValidateOnChange(name, value, c.form))
	if name == validation.FieldCategory || name == validation.FieldCost {
		if c.form.Hours != "" {
			c.revalidate(validation.FieldHours)
		}
	}
	return v, nil
}

// BlurField validates a field when it loses focus.
func (c *Controller) BlurField(name string) (validation.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return validation.Verdict{}, err
	}
	return c.store(name, c.schema.ValidateOnBlur(name, c.form.Value(name), c.form)), nil
}

// revalidate must be called with c.mu held.
func (c *Controller) revalidate(name string) validation.Verdict {
	return c.store(name, c.schema.ValidateField(name, c.form.Value(name), c.form))
}

// store must be called with c.mu held.
func (c *Controller) store(name string, v validation.Verdict) validation.Verdict {
	if v.IsValid() {
		delete(c.verdicts, name)
	} else {
		c.verdicts[name] = v
	}
	return v
}

// Submit validates the whole form and, when it passes, sends the expense.
// A room name that is not in the project stops at PromptCreateRoom until
// ConfirmCreateRoom delivers the answer.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return Result{}, err
	}

	verdicts, ok := c.schema.ValidateForm(c.form)
	c.verdicts = verdicts
	if !ok {
		res := Result{Outcome: Blocked, Verdicts: cloneVerdicts(verdicts)}
		room := strings.TrimSpace(c.form.RoomName)
		if blocking := verdicts.Blocking(); len(blocking) == 1 && blocking[0] == validation.FieldRoom &&
			room != "" && !c.ref.HasRoom(room) {
			res.MissingRoom = room
		}
		c.trace(Event{Name: "submit_blocked", Detail: fmt.Sprint(verdicts.Blocking())})
		c.mu.Unlock()
		return res, nil
	}

	e, err := c.form.Expense(c.ref.ProjectID)
	if err != nil {
		c.mu.Unlock()
		return Result{}, fmt.Errorf("convert form: %w", err)
	}

	if c.customRoom && !c.ref.HasRoom(e.RoomName) {
		if err := c.transition(PromptCreateRoom); err != nil {
			c.mu.Unlock()
			return Result{}, err
		}
		c.pending = &e
		c.trace(Event{Name: "room_confirmation_needed", Detail: e.RoomName})
		c.mu.Unlock()
		return Result{Outcome: NeedsRoomConfirmation, Expense: e, Verdicts: cloneVerdicts(verdicts)}, nil
	}

	if err := c.transition(Submitting); err != nil {
		c.mu.Unlock()
		return Result{}, err
	}
	c.submitting = true
	gen := c.gen
	c.mu.Unlock()

	return c.dispatch(ctx, gen, e, false)
}

// ConfirmCreateRoom answers the create-room prompt. Declining returns to
// Editing with nothing sent. Confirming creates the room, reloads the
// reference data and sends the expense that was waiting.
func (c *Controller) ConfirmCreateRoom(ctx context.Context, create bool) (Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	if c.state != PromptCreateRoom || c.pending == nil {
		c.mu.Unlock()
		return Result{}, ErrNoPendingRoom
	}
	e := *c.pending
	c.pending = nil

	if !create {
		err := c.transition(Editing)
		c.trace(Event{Name: "room_creation_declined", Detail: e.RoomName})
		c.mu.Unlock()
		return Result{Outcome: Cancelled, Expense: e}, err
	}
	if err := c.transition(Submitting); err != nil {
		c.mu.Unlock()
		return Result{}, err
	}
	c.submitting = true
	gen := c.gen
	c.trace(Event{Name: "room_creation_confirmed", Detail: e.RoomName})
	c.mu.Unlock()

	_, err := c.gw.CreateRoom(ctx, backend.RoomArgs{
		ProjectID: e.ProjectID,
		Name:      e.RoomName,
		Floor:     DefaultRoomFloor,
		Condition: e.Condition,
	})
	if err != nil {
		res, ferr := c.finishFailure(ctx, gen, e, false, err,
			fmt.Sprintf("Failed to create room '%s': %s", e.RoomName, err.Error()))
		return res, ferr
	}

	ref, loadErr := LoadReferenceData(ctx, c.gw, e.ProjectID)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.submitting = false
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	if loadErr != nil {
		// The room exists now even if the reload failed.
		c.trace(Event{Name: "reload_failed", Err: loadErr})
		ref = c.ref
		floor := DefaultRoomFloor
		ref.Rooms = append(ref.Rooms[:len(ref.Rooms):len(ref.Rooms)], core.Room{Name: e.RoomName, Floor: &floor})
	}
	c.applyReference(ref)
	c.mu.Unlock()

	return c.dispatch(ctx, gen, e, true)
}

// dispatch sends an expense. The caller holds the submitting latch.
func (c *Controller) dispatch(ctx context.Context, gen uint64, e core.Expense, roomCreated bool) (Result, error) {
	c.mu.Lock()
	warning, over := budget.Check(c.ref.Budget, c.ref.Spent, e.Cost)
	c.mu.Unlock()

	out, err := c.gw.AddExpense(ctx, backend.ExpenseArgsFrom(e))
	if err != nil {
		msg := err.Error()
		if errors.Is(err, backend.ErrRoomNotFound) {
			msg = validation.RoomMismatch(e.RoomName) + ". Pick an existing room or create it first."
		}
		return c.finishFailure(ctx, gen, e, roomCreated, err, msg)
	}

	if m := expenseIDPattern.FindStringSubmatch(out); m != nil {
		e.ID, _ = strconv.ParseInt(m[1], 10, 64)
	}

	c.mu.Lock()
	c.submitting = false
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	c.ref.Spent = c.ref.Spent.Add(e.Cost)
	c.form = validation.NewExpenseForm(c.today())
	clear(c.verdicts)
	c.schema = validation.ExpenseSchema(c.reference())
	_ = c.transition(Editing)
	c.trace(Event{Name: "submitted", Detail: e.RoomName + " " + e.Cost.Format()})
	session := c.session
	c.mu.Unlock()

	c.record(ctx, session, e, storage.StatusSubmitted, "", roomCreated)
	if c.notifier != nil {
		c.notifier.ExpenseAdded(ctx, session, e)
	}

	res := Result{Outcome: Submitted, Expense: e, RoomCreated: roomCreated, Output: out}
	if over {
		res.Warning = &warning
		res.Message = warning.String()
	}
	return res, nil
}

func (c *Controller) finishFailure(ctx context.Context, gen uint64, e core.Expense, roomCreated bool, err error, msg string) (Result, error) {
	c.mu.Lock()
	c.submitting = false
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return Result{}, ErrClosed
	}
	if errors.Is(err, backend.ErrRoomNotFound) {
		c.verdicts[validation.FieldRoom] = validation.Fail(validation.RoomMismatch(e.RoomName))
	}
	_ = c.transition(Editing)
	c.trace(Event{Name: "submit_failed", Err: err})
	session := c.session
	c.mu.Unlock()

	c.record(ctx, session, e, storage.StatusFailed, msg, roomCreated)
	return Result{Outcome: Failed, Expense: e, RoomCreated: roomCreated, Message: msg, Err: err}, nil
}

func (c *Controller) record(ctx context.Context, session string, e core.Expense, status storage.Status, msg string, roomCreated bool) {
	if c.journal == nil {
		return
	}
	_, err := c.journal.Record(ctx, storage.Submission{
		SessionID:   session,
		Expense:     e,
		Status:      status,
		Message:     msg,
		RoomCreated: roomCreated,
	})
	if err != nil {
		c.mu.Lock()
		c.trace(Event{Name: "journal_failed", Err: err})
		c.mu.Unlock()
	}
}

// DeleteExpense deletes an expense of the selected project. It shares the
// submission latch, so it cannot overlap an add.
func (c *Controller) DeleteExpense(ctx context.Context, expenseID int64) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.submitting = true
	gen := c.gen
	projectID := c.ref.ProjectID
	session := c.session
	c.mu.Unlock()

	_, err := c.gw.DeleteExpense(ctx, expenseID)

	var ref ReferenceData
	var loadErr error
	if err == nil {
		ref, loadErr = LoadReferenceData(ctx, c.gw, projectID)
	}

	c.mu.Lock()
	c.submitting = false
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		c.trace(Event{Name: "delete_failed", Err: err})
		c.mu.Unlock()
		return err
	}
	if loadErr == nil {
		c.applyReference(ref)
	}
	c.trace(Event{Name: "deleted", Detail: strconv.FormatInt(expenseID, 10)})
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.ExpenseDeleted(ctx, session, projectID, expenseID)
	}
	return nil
}

// Close discards all workflow state. Results of calls still in flight are
// dropped when they arrive.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gen++
	c.pending = nil
	c.ref = ReferenceData{}
	c.form = validation.NewExpenseForm(c.today())
	clear(c.verdicts)
	c.info = ""
	_ = c.transition(Idle)
	c.closed = true
}

// Snapshot returns a copy of the current workflow state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		State:      c.state,
		ProjectID:  c.ref.ProjectID,
		Project:    c.ref.ProjectName,
		Rooms:      append([]core.Room(nil), c.ref.Rooms...),
		Budget:     c.ref.Budget,
		Spent:      c.ref.Spent,
		CustomRoom: c.customRoom,
		Info:       c.info,
		Form:       c.form,
		Verdicts:   cloneVerdicts(c.verdicts),
		Submitting: c.submitting,
	}
	if c.pending != nil {
		v.PendingRoom = c.pending.RoomName
	}
	return v
}

func cloneVerdicts(v validation.Verdicts) validation.Verdicts {
	out := make(validation.Verdicts, len(v))
	for k, verdict := range v {
		out[k] = verdict
	}
	return out
}
