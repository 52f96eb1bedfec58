package console

// EventKind identifies an Event.
type EventKind int

// Event kinds.
const (
	// EventCommand is sent after a command is acknowledged, before the
	// active menu handles it.
	EventCommand EventKind = iota
	// EventError is sent with every failure acknowledgement.
	EventError
	// EventMenuChanged is sent when the active menu changes by dispatch.
	EventMenuChanged
	// EventReset is sent when the session is (re)initialized.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventError:
		return "error"
	case EventMenuChanged:
		return "menu"
	case EventReset:
		return "reset"
	}
	return "unknown"
}

// Event describes something which happened on the console.
type Event struct {
	Kind EventKind
	// Menu is the active menu, the new one for EventMenuChanged.
	Menu MenuID
	// From is the previous menu for EventMenuChanged.
	From MenuID
	// Title is the title of Menu.
	Title string
	// Params is set for EventCommand.
	Params *ParameterList
	// Code is set for EventError.
	Code ErrorCode
}

// EventHandler observes console events. It's called from the goroutine
// polling the console and must not block.
type EventHandler interface {
	HandleEvent(Event)
}

// HandleEventFunc is func type of EventHandler.
type HandleEventFunc func(Event)

// HandleEvent implements EventHandler.
func (f HandleEventFunc) HandleEvent(ev Event) {
	f(ev)
}
