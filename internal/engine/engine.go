// Package engine owns application state for the expense client: the view
// state machine, the stored weekly budget, and the one-shot notification
// slot. It drives all network interaction through an API and applies the
// write-then-refresh policy: no write is ever applied optimistically to the
// in-memory list; the displayed state always reflects a real server read.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mlcortes/wburn/internal/api"
	"github.com/mlcortes/wburn/internal/budget"
	"github.com/mlcortes/wburn/internal/log"
	"github.com/mlcortes/wburn/internal/model"
)

// ErrMissingID is returned when an update or delete is attempted on an
// expense the server has not assigned an id yet. The caller is expected to
// have checked; no network call is made.
var ErrMissingID = errors.New("expense has no id")

// API is the transport surface the engine drives. *api.Client satisfies it.
type API interface {
	FetchBudget(ctx context.Context) (float64, error)
	FetchExpenses(ctx context.Context) ([]model.Expense, error)
	CreateExpense(ctx context.Context, e api.ExpenseBody) (string, error)
	UpdateExpense(ctx context.Context, id string, e api.ExpenseBody) error
	DeleteExpense(ctx context.Context, id string) error
	SetBudget(ctx context.Context, amount float64) error
}

// Options configures a new Engine.
type Options struct {
	// FallbackBudget is used until the first successful budget fetch.
	FallbackBudget float64
	// Logger defaults to a discard logger.
	Logger *log.Logger
	// Now overrides the clock for week-window math. Defaults to time.Now.
	Now func() time.Time
}

// Engine is the single owner of the view state, the stored weekly budget,
// and the notification slot. Every public operation returns immediately and
// completes on a background goroutine; when operations overlap, the last
// terminal publish wins.
type Engine struct {
	api    API
	logger *log.Logger
	now    func() time.Time

	mu           sync.RWMutex
	weeklyBudget float64
	state        State
	note         *Notification

	// updates coalesces publish signals for observers: buffered by one,
	// sends never block.
	updates chan struct{}
}

// New builds an engine and immediately starts a full refresh, so the first
// observable state is Loading.
func New(client API, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		api:          client,
		logger:       logger,
		now:          now,
		weeklyBudget: opts.FallbackBudget,
		state:        State{Phase: PhaseLoading},
		updates:      make(chan struct{}, 1),
	}
	go e.refresh()
	return e
}

// State returns the current view state. The expense slice is a shared
// snapshot and must not be mutated.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// WeeklyBudget returns the stored budget: the fallback until a fetch
// succeeds, then the last successfully fetched value. A failed fetch never
// resets it.
func (e *Engine) WeeklyBudget() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weeklyBudget
}

// Updates returns a channel that receives a signal after every state or
// notification publish. Signals coalesce; receivers re-read State and
// Notification rather than counting.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// Notification returns the pending notification, if any.
func (e *Engine) Notification() (Notification, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.note == nil {
		return Notification{}, false
	}
	return *e.note, true
}

// ConsumeNotification clears the notification slot. Idempotent.
func (e *Engine) ConsumeNotification() {
	e.mu.Lock()
	e.note = nil
	e.mu.Unlock()
}

// Refresh publishes Loading and re-reads budget and expenses from the
// server. Any failure aborts the whole refresh and publishes Error; a
// partial result is never shown.
func (e *Engine) Refresh() {
	e.publish(State{Phase: PhaseLoading})
	go e.refresh()
}

func (e *Engine) refresh() {
	ctx := context.Background()

	weekly, err := e.api.FetchBudget(ctx)
	if err != nil {
		e.logger.Warn("budget fetch failed", "error", err)
		e.publish(State{Phase: PhaseError, Err: fmt.Sprintf("fetching budget: %v", err)})
		return
	}

	e.mu.Lock()
	e.weeklyBudget = weekly
	e.mu.Unlock()

	expenses, err := e.api.FetchExpenses(ctx)
	if err != nil {
		e.logger.Warn("expense fetch failed", "error", err)
		e.publish(State{Phase: PhaseError, Err: fmt.Sprintf("fetching expenses: %v", err)})
		return
	}

	start := budget.WeekStart(e.now())
	total := budget.WeeklyTotal(expenses, start, e.logger)
	model.SortByDateDesc(expenses)

	e.publish(State{
		Phase:       PhaseSuccess,
		Expenses:    expenses,
		WeeklyTotal: total,
		Remaining:   budget.Remaining(weekly, total),
		Budget:      weekly,
	})
}

// AddExpense signs and posts a new expense. On success the engine queues a
// notification and refreshes; on failure it queues the error and leaves the
// current state untouched. Basic input validation (non-empty description,
// sane amount) is the caller's job.
func (e *Engine) AddExpense(amount float64, description, date string) {
	go e.write("expense added", "adding expense", func(ctx context.Context) error {
		_, err := e.api.CreateExpense(ctx, api.ExpenseBody{
			Amount:      amount,
			Description: description,
			Date:        date,
		})
		return err
	})
}

// UpdateExpense signs and patches an existing expense. An empty id is a
// precondition violation: ErrMissingID is returned synchronously and no
// network call is made.
func (e *Engine) UpdateExpense(id string, amount float64, description, date string) error {
	if id == "" {
		return ErrMissingID
	}
	go e.write("expense updated", "updating expense", func(ctx context.Context) error {
		return e.api.UpdateExpense(ctx, id, api.ExpenseBody{
			Amount:      amount,
			Description: description,
			Date:        date,
		})
	})
	return nil
}

// DeleteExpense signs and deletes an existing expense. Deletion is only
// confirmed by its disappearance from the follow-up refresh; the engine
// keeps no tombstone.
func (e *Engine) DeleteExpense(id string) error {
	if id == "" {
		return ErrMissingID
	}
	go e.write("expense deleted", "deleting expense", func(ctx context.Context) error {
		return e.api.DeleteExpense(ctx, id)
	})
	return nil
}

// SetBudget writes a new weekly budget to the server, with the same
// write-then-refresh cycle as the expense writes.
func (e *Engine) SetBudget(amount float64) {
	go e.write("budget updated", "updating budget", func(ctx context.Context) error {
		return e.api.SetBudget(ctx, amount)
	})
}

// write runs one write operation: on success queue a notification and
// refresh so the displayed state reflects server truth; on failure queue
// the error text and leave the state alone so the user keeps their context.
func (e *Engine) write(successMsg, failurePrefix string, op func(ctx context.Context) error) {
	if err := op(context.Background()); err != nil {
		e.logger.Warn(failurePrefix+" failed", "error", err)
		e.notify(fmt.Sprintf("%s: %v", failurePrefix, err), true)
		return
	}
	e.notify(successMsg, false)
	e.Refresh()
}

func (e *Engine) publish(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.signal()
}

func (e *Engine) notify(text string, isError bool) {
	e.mu.Lock()
	e.note = &Notification{Text: text, IsError: isError}
	e.mu.Unlock()
	e.signal()
}

func (e *Engine) signal() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
