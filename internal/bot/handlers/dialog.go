package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/edgard/remindbot/internal/config"
	"github.com/edgard/remindbot/internal/service"
	"github.com/edgard/remindbot/internal/task"
)

// TaskService is the subset of service.Service the dialog drives.
type TaskService interface {
	AddTask(ctx context.Context, owner int64, text, due string) (service.Result, error)
	EditTask(ctx context.Context, owner int64, position int, text, due string) (service.Result, error)
	DeleteTask(ctx context.Context, owner int64, position int) (task.Task, error)
	ListTasks(owner int64) []service.Entry
	ListReminders(owner int64) []service.Entry
}

// Keyboard tells the sender which reply markup accompanies a reply.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMenu
	KeyboardRemove
)

// Reply is the dialog's answer to one incoming message.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Menu button labels.
const (
	ButtonAdd       = "Add task"
	ButtonDelete    = "Delete task"
	ButtonList      = "List tasks"
	ButtonEdit      = "Edit task"
	ButtonReminders = "My reminders"
)

type action int

const (
	actionNone action = iota
	actionAdd
	actionDelete
	actionList
	actionEdit
	actionReminders
	actionHelp
	actionMenu
)

var actions = map[string]action{
	strings.ToLower(ButtonAdd):       actionAdd,
	strings.ToLower(ButtonDelete):    actionDelete,
	strings.ToLower(ButtonList):      actionList,
	strings.ToLower(ButtonEdit):      actionEdit,
	strings.ToLower(ButtonReminders): actionReminders,
	"/add":                           actionAdd,
	"/delete":                        actionDelete,
	"/list":                          actionList,
	"/edit":                          actionEdit,
	"/reminders":                     actionReminders,
	"/help":                          actionHelp,
	"/menu":                          actionMenu,
	"menu":                           actionMenu,
	"cancel":                         actionMenu,
	"back":                           actionMenu,
	"меню":                           actionMenu,
	"отмена":                         actionMenu,
	"назад":                          actionMenu,
}

// matchAction recognises button labels, slash commands (with an optional
// @botname suffix) and cancel words, case-insensitively.
func matchAction(input string) action {
	key := strings.ToLower(strings.TrimSpace(input))
	if strings.HasPrefix(key, "/") {
		key, _, _ = strings.Cut(key, "@")
		key, _, _ = strings.Cut(key, " ")
	}
	return actions[key]
}

// Dialog turns free-form user messages into TaskService calls. Each owner has
// its own session; sessions of different owners never interact.
type Dialog struct {
	svc      TaskService
	msgs     config.MessagesConfig
	sessions *sessions
	logger   *slog.Logger
}

// NewDialog creates a Dialog over svc using msgs for every reply.
func NewDialog(svc TaskService, msgs config.MessagesConfig, logger *slog.Logger) *Dialog {
	return &Dialog{
		svc:      svc,
		msgs:     msgs,
		sessions: newSessions(),
		logger:   logger.With("component", "dialog"),
	}
}

// Reset returns owner to the idle state.
func (d *Dialog) Reset(owner int64) {
	d.sessions.set(owner, session{})
}

// Respond handles one message from owner and returns the reply to send.
func (d *Dialog) Respond(ctx context.Context, owner int64, input string) Reply {
	if act := matchAction(input); act != actionNone {
		return d.start(owner, act)
	}

	sess := d.sessions.get(owner)
	d.logger.DebugContext(ctx, "Dialog input", "owner", owner, "state", sess.state.String())

	switch sess.state {
	case stateAwaitAdd:
		return d.add(ctx, owner, input)
	case stateAwaitDelete:
		return d.remove(ctx, owner, input)
	case stateAwaitEditSelect:
		return d.selectForEdit(owner, input)
	case stateAwaitEditInput:
		return d.edit(ctx, owner, sess.taskID, input)
	default:
		return Reply{Text: d.msgs.Help, Keyboard: KeyboardMenu}
	}
}

func (d *Dialog) start(owner int64, act action) Reply {
	d.Reset(owner)

	switch act {
	case actionAdd:
		d.sessions.set(owner, session{state: stateAwaitAdd})
		return Reply{Text: d.msgs.EnterTask, Keyboard: KeyboardRemove}
	case actionList:
		return d.listing(d.svc.ListTasks(owner), d.msgs.TaskListHeader, d.msgs.NoTasks)
	case actionReminders:
		return d.listing(d.svc.ListReminders(owner), d.msgs.ReminderListHeader, d.msgs.NoReminders)
	case actionDelete:
		return d.prompt(owner, stateAwaitDelete, d.msgs.EnterDeletePosition)
	case actionEdit:
		return d.prompt(owner, stateAwaitEditSelect, d.msgs.EnterEditPosition)
	case actionHelp:
		return Reply{Text: d.msgs.Help, Keyboard: KeyboardMenu}
	default:
		return Reply{Text: d.msgs.Menu, Keyboard: KeyboardMenu}
	}
}

func (d *Dialog) listing(entries []service.Entry, header, empty string) Reply {
	if len(entries) == 0 {
		return Reply{Text: empty, Keyboard: KeyboardMenu}
	}
	return Reply{Text: formatEntries(header, entries), Keyboard: KeyboardMenu}
}

// prompt shows a fresh numbered list and waits for a position.
func (d *Dialog) prompt(owner int64, state dialogState, question string) Reply {
	entries := d.svc.ListTasks(owner)
	if len(entries) == 0 {
		d.Reset(owner)
		return Reply{Text: d.msgs.NoTasks, Keyboard: KeyboardMenu}
	}
	d.sessions.set(owner, session{state: state})
	return Reply{Text: formatEntries("", entries) + "\n\n" + question, Keyboard: KeyboardRemove}
}

// invalidPosition re-prompts with the current list after a bad or stale position.
func (d *Dialog) invalidPosition(owner int64, state dialogState, question string) Reply {
	r := d.prompt(owner, state, question)
	if r.Keyboard == KeyboardMenu {
		return r
	}
	r.Text = d.msgs.InvalidNumber + "\n\n" + r.Text
	return r
}

func (d *Dialog) failed(ctx context.Context, owner int64, op string, err error) Reply {
	d.logger.ErrorContext(ctx, "Task operation failed", "op", op, "owner", owner, "error", err)
	d.Reset(owner)
	return Reply{Text: d.msgs.GeneralError, Keyboard: KeyboardMenu}
}

// inputError maps validation errors to a reply that keeps the session waiting.
func (d *Dialog) inputError(err error) (Reply, bool) {
	switch {
	case errors.Is(err, task.ErrInvalidTime):
		return Reply{Text: d.msgs.InvalidTime}, true
	case errors.Is(err, task.ErrInvalidInput):
		return Reply{Text: d.msgs.EmptyText}, true
	}
	return Reply{}, false
}

func (d *Dialog) add(ctx context.Context, owner int64, input string) Reply {
	text, due := parseTaskInput(input)
	res, err := d.svc.AddTask(ctx, owner, text, due)
	if err != nil {
		if r, ok := d.inputError(err); ok {
			return r
		}
		return d.failed(ctx, owner, "add", err)
	}
	d.Reset(owner)
	return Reply{Text: formatSaved(d.msgs, d.msgs.TaskAdded, res), Keyboard: KeyboardMenu}
}

func (d *Dialog) remove(ctx context.Context, owner int64, input string) Reply {
	pos, ok := parsePosition(input)
	if !ok {
		return d.invalidPosition(owner, stateAwaitDelete, d.msgs.EnterDeletePosition)
	}
	removed, err := d.svc.DeleteTask(ctx, owner, pos)
	if errors.Is(err, task.ErrOutOfRange) {
		return d.invalidPosition(owner, stateAwaitDelete, d.msgs.EnterDeletePosition)
	}
	if err != nil {
		return d.failed(ctx, owner, "delete", err)
	}
	d.Reset(owner)
	return Reply{Text: d.msgs.TaskDeleted + " '" + removed.Text + "'", Keyboard: KeyboardMenu}
}

func (d *Dialog) selectForEdit(owner int64, input string) Reply {
	pos, ok := parsePosition(input)
	entries := d.svc.ListTasks(owner)
	if !ok || pos < 1 || pos > len(entries) {
		return d.invalidPosition(owner, stateAwaitEditSelect, d.msgs.EnterEditPosition)
	}
	d.sessions.set(owner, session{state: stateAwaitEditInput, taskID: entries[pos-1].Task.ID})
	return Reply{Text: formatCurrent(d.msgs, entries[pos-1].Task) + "\n\n" + d.msgs.EnterTask, Keyboard: KeyboardRemove}
}

// positionOf returns the current 1-based position of taskID in owner's listing.
func (d *Dialog) positionOf(owner, taskID int64) (int, bool) {
	for _, e := range d.svc.ListTasks(owner) {
		if e.Task.ID == taskID {
			return e.Position, true
		}
	}
	return 0, false
}

func (d *Dialog) edit(ctx context.Context, owner, taskID int64, input string) Reply {
	text, due := parseTaskInput(input)
	position, ok := d.positionOf(owner, taskID)
	if !ok {
		d.logger.InfoContext(ctx, "Task selected for edit no longer exists", "owner", owner, "task_id", taskID)
		return d.invalidPosition(owner, stateAwaitEditSelect, d.msgs.EnterEditPosition)
	}
	res, err := d.svc.EditTask(ctx, owner, position, text, due)
	if err != nil {
		if r, ok := d.inputError(err); ok {
			return r
		}
		if errors.Is(err, task.ErrOutOfRange) {
			return d.invalidPosition(owner, stateAwaitEditSelect, d.msgs.EnterEditPosition)
		}
		return d.failed(ctx, owner, "edit", err)
	}
	d.Reset(owner)
	return Reply{Text: formatSaved(d.msgs, d.msgs.TaskUpdated, res), Keyboard: KeyboardMenu}
}
