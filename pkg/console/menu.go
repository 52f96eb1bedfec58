package console

import (
	"fmt"
	"io"
)

// MenuID addresses a Menu in a Registry.
type MenuID int

// NoMenu is the MenuID of nothing.
const NoMenu MenuID = -1

// Menu is a node of the console menu graph.
type Menu interface {
	// Title is shown in the prompt, may be empty.
	Title() string
	// DrawOptions renders the list of options.
	DrawOptions(w io.Writer)
	// Dispatch handles an acknowledged command. It returns the menu to
	// switch to and true, or false to stay.
	Dispatch(w io.Writer, params *ParameterList) (MenuID, bool)
}

// KeyHandler is implemented by menus reacting to every printable
// keystroke, before the line completes.
type KeyHandler interface {
	HandleKey(w io.Writer, key byte)
}

// IdleTicker is implemented by menus refreshed periodically while no
// input is pending.
type IdleTicker interface {
	IdleTick(w io.Writer)
}

// Registry owns the menus. Menus are never removed so a MenuID stays
// valid for the lifetime of the Registry.
type Registry struct {
	menus []Menu
	def   MenuID
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{def: NoMenu}
}

// Add registers a menu. The first menu added becomes the default.
func (r *Registry) Add(m Menu) MenuID {
	id := MenuID(len(r.menus))
	r.menus = append(r.menus, m)
	if r.def == NoMenu {
		r.def = id
	}
	return id
}

// SetDefault selects the menu activated on (re)initialization.
func (r *Registry) SetDefault(id MenuID) error {
	if r.Menu(id) == nil {
		return fmt.Errorf("unknown menu %d", id)
	}
	r.def = id
	return nil
}

// Default returns the default menu.
func (r *Registry) Default() MenuID {
	if r == nil {
		return NoMenu
	}
	return r.def
}

// Menu returns the menu of id, nil if id is unknown.
func (r *Registry) Menu(id MenuID) Menu {
	if r == nil || id < 0 || int(id) >= len(r.menus) {
		return nil
	}
	return r.menus[id]
}

// Len returns the number of menus.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.menus)
}

// DispatchFunc is the func form of Menu.Dispatch.
type DispatchFunc func(w io.Writer, params *ParameterList) (MenuID, bool)

// SimpleMenu is a Menu made of a title, a static option list and a
// DispatchFunc.
type SimpleMenu struct {
	Name       string
	Options    []string
	OnDispatch DispatchFunc
}

// Title implements Menu.
func (m *SimpleMenu) Title() string {
	return m.Name
}

// DrawOptions implements Menu.
func (m *SimpleMenu) DrawOptions(w io.Writer) {
	DrawOptionList(w, m.Options)
}

// Dispatch implements Menu.
func (m *SimpleMenu) Dispatch(w io.Writer, params *ParameterList) (MenuID, bool) {
	if m.OnDispatch == nil {
		return NoMenu, false
	}
	return m.OnDispatch(w, params)
}

// DrawOptionList writes one option per line.
func DrawOptionList(w io.Writer, options []string) {
	for _, opt := range options {
		io.WriteString(w, opt+"\n\r")
	}
}
