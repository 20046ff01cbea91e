// Package tui provides the interactive Bubble Tea view over the sync engine.
// It is strictly an observer: it renders the engine's published state and
// notification slot, and invokes engine operations on key presses.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mlcortes/wburn/internal/cli"
	"github.com/mlcortes/wburn/internal/engine"
	"github.com/mlcortes/wburn/internal/model"
	"github.com/mlcortes/wburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

// stateMsg is sent whenever the engine publishes a state or notification.
type stateMsg struct{}

// noteExpiredMsg clears a shown notification after its display window.
type noteExpiredMsg struct{}

const noteDisplayTime = 4 * time.Second

// formValues backs the add/edit form inputs.
type formValues struct {
	amount      string
	description string
	date        string
	editID      string // empty for add
}

// App is the root Bubble Tea model.
type App struct {
	eng      *engine.Engine
	currency string

	state   engine.State
	note    string
	noteErr bool

	cursor int
	width  int
	height int

	spin spinner.Model

	mode mode
	form *huh.Form
	// vals is shared by pointer so the form's bound inputs keep writing to
	// the same struct across model copies.
	vals *formValues
}

// NewApp builds the TUI over an engine whose initial refresh is already in
// flight.
func NewApp(eng *engine.Engine, currency string) App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		eng:      eng,
		currency: currency,
		state:    eng.State(),
		spin:     s,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, waitForUpdate(a.eng))
}

// waitForUpdate blocks on the engine's coalescing signal channel and wakes
// the program to re-read state.
func waitForUpdate(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		<-eng.Updates()
		return stateMsg{}
	}
}

func clearNoteCmd() tea.Cmd {
	return tea.Tick(noteDisplayTime, func(time.Time) tea.Msg {
		return noteExpiredMsg{}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case stateMsg:
		a.state = a.eng.State()
		a.clampCursor()

		cmds := []tea.Cmd{waitForUpdate(a.eng)}
		if n, ok := a.eng.Notification(); ok {
			a.note = n.Text
			a.noteErr = n.IsError
			a.eng.ConsumeNotification()
			cmds = append(cmds, clearNoteCmd())
		}
		return a, tea.Batch(cmds...)

	case noteExpiredMsg:
		a.note = ""
		a.noteErr = false
		return a, nil

	case spinner.TickMsg:
		if a.state.Phase == engine.PhaseLoading {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if a.mode == modeForm {
			return a.updateForm(msg)
		}
		return a.updateList(msg)
	}

	if a.mode == modeForm {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "r":
		a.eng.Refresh()
		return a, a.spin.Tick

	case "j", "down":
		a.cursor++
		a.clampCursor()

	case "k", "up":
		a.cursor--
		a.clampCursor()

	case "a":
		return a.openForm(formValues{date: time.Now().Format(model.DateLayout)})

	case "e":
		if exp, ok := a.selected(); ok {
			return a.openForm(formValues{
				amount:      strconv.FormatFloat(exp.Amount, 'f', 2, 64),
				description: exp.Description,
				date:        exp.Date,
				editID:      exp.ID,
			})
		}

	case "d":
		if exp, ok := a.selected(); ok {
			if err := a.eng.DeleteExpense(exp.ID); err != nil {
				a.note = err.Error()
				a.noteErr = true
				return a, clearNoteCmd()
			}
		}
	}
	return a, nil
}

func (a App) openForm(vals formValues) (tea.Model, tea.Cmd) {
	a.vals = &vals
	a.mode = modeForm

	title := "Add expense"
	if vals.editID != "" {
		title = "Edit expense " + vals.editID
	}

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().
				Title("Amount").
				Value(&a.vals.amount).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return errors.New("enter a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&a.vals.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&a.vals.date).
				Validate(func(s string) error {
					if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
						return errors.New("enter a YYYY-MM-DD date")
					}
					return nil
				}),
		),
	).WithShowHelp(false)

	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		a.mode = modeList
		a.form = nil
		return a, nil
	}

	f, cmd := a.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		a.form = form
	}

	if a.form.State == huh.StateCompleted {
		amount, _ := strconv.ParseFloat(strings.TrimSpace(a.vals.amount), 64)
		description := strings.TrimSpace(a.vals.description)
		date := strings.TrimSpace(a.vals.date)

		if a.vals.editID == "" {
			a.eng.AddExpense(amount, description, date)
		} else if err := a.eng.UpdateExpense(a.vals.editID, amount, description, date); err != nil {
			a.note = err.Error()
			a.noteErr = true
		}

		a.mode = modeList
		a.form = nil
		return a, tea.Batch(a.spin.Tick, clearNoteCmd())
	}
	if a.form.State == huh.StateAborted {
		a.mode = modeList
		a.form = nil
		return a, nil
	}

	return a, cmd
}

func (a *App) selected() (model.Expense, bool) {
	if a.state.Phase != engine.PhaseSuccess || len(a.state.Expenses) == 0 {
		return model.Expense{}, false
	}
	return a.state.Expenses[a.cursor], true
}

func (a *App) clampCursor() {
	max := len(a.state.Expenses) - 1
	if a.cursor > max {
		a.cursor = max
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) View() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent)
	redStyle := lipgloss.NewStyle().Foreground(t.Red)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render("wburn"))
	b.WriteString(mutedStyle.Render("  weekly spend"))
	b.WriteString("\n\n")

	if a.mode == modeForm && a.form != nil {
		b.WriteString(a.form.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  esc cancel"))
		return b.String()
	}

	switch a.state.Phase {
	case engine.PhaseLoading:
		b.WriteString(fmt.Sprintf("  %s %s\n", a.spin.View(), mutedStyle.Render("syncing with server...")))

	case engine.PhaseError:
		b.WriteString(redStyle.Render("  " + a.state.Err))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  press r to retry"))
		b.WriteString("\n")

	case engine.PhaseSuccess:
		remaining := cli.FormatMoney(a.currency, a.state.Remaining)
		if a.state.Remaining < 0 {
			remaining = redStyle.Render(remaining + " over budget")
		} else {
			remaining = greenStyle.Render(remaining + " left")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s  %s\n\n",
			mutedStyle.Render("spent"),
			cli.FormatMoney(a.currency, a.state.WeeklyTotal),
			mutedStyle.Render("of"),
			cli.FormatMoney(a.currency, a.state.Budget),
			remaining,
		))

		if len(a.state.Expenses) == 0 {
			b.WriteString(mutedStyle.Render("  no expenses this week, press a to add one"))
			b.WriteString("\n")
		}
		for i, exp := range a.state.Expenses {
			line := fmt.Sprintf("%-12s %-28s %10s",
				cli.FormatDate(exp.Date),
				truncate(exp.Description, 28),
				cli.FormatMoney(a.currency, exp.Amount),
			)
			if i == a.cursor {
				b.WriteString(accentStyle.Render("› " + line))
			} else {
				b.WriteString("  " + lipgloss.NewStyle().Foreground(t.TextPrimary).Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if a.note != "" {
		style := greenStyle
		if a.noteErr {
			style = redStyle
		}
		b.WriteString(style.Render("  " + a.note))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("  a add · e edit · d delete · r refresh · q quit"))
	b.WriteString("\n")

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return s[:n-1] + "…"
}
