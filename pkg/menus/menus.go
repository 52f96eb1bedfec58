// Package menus provides the demo menu set of dbgcon.
package menus

import (
	"fmt"
	"io"
	"time"

	"github.com/robotalks/dbgcon/pkg/console"
	fx "github.com/robotalks/dbgcon/pkg/framework"
)

// Info is the program information shown by the System menu.
type Info struct {
	Firmware string
	Compiled string
	ID       string
}

// Menu IDs in the Registry created by New.
const (
	MainMenu console.MenuID = iota
	ParametersMenu
	MonitorMenu
	SystemMenu
)

// New creates the demo menus, Main being the default.
func New(info Info, clock fx.TimeSource) *console.Registry {
	if clock == nil {
		clock = fx.WallClock
	}
	reg := console.NewRegistry()
	reg.Add(&console.SimpleMenu{
		Name: "Main",
		Options: []string{
			"S1 Parameters",
			"S2 Monitor",
			"S3 System",
		},
		OnDispatch: dispatchMain,
	})
	reg.Add(&console.SimpleMenu{
		Name: "Parameters",
		Options: []string{
			"S0 Back",
			"S1 [U I F L H T]... Decode parameters",
		},
		OnDispatch: dispatchParameters,
	})
	reg.Add(NewMonitor(clock))
	reg.Add(&console.SimpleMenu{
		Name: "System",
		Options: []string{
			"S0 Back",
			"S1 Program information",
		},
		OnDispatch: info.dispatch,
	})
	return reg
}

func unknownOption(w io.Writer, params *console.ParameterList) {
	sel, _ := params.Selector()
	fmt.Fprintf(w, "Unknown option S%d\n\r", sel)
}

func dispatchMain(w io.Writer, params *console.ParameterList) (console.MenuID, bool) {
	switch sel, _ := params.Selector(); sel {
	case 1:
		return ParametersMenu, true
	case 2:
		return MonitorMenu, true
	case 3:
		return SystemMenu, true
	}
	unknownOption(w, params)
	return console.NoMenu, false
}

func dispatchParameters(w io.Writer, params *console.ParameterList) (console.MenuID, bool) {
	switch sel, _ := params.Selector(); sel {
	case 0:
		return MainMenu, true
	case 1:
		for n, p := range params.Params()[1:] {
			fmt.Fprintf(w, "%d %-8s %-12s %v\n\r", n+1, p.Kind, p, p.Value())
		}
		if params.Len() == 1 {
			io.WriteString(w, "No parameters\n\r")
		}
		return console.NoMenu, false
	}
	unknownOption(w, params)
	return console.NoMenu, false
}

func (i Info) dispatch(w io.Writer, params *console.ParameterList) (console.MenuID, bool) {
	switch sel, _ := params.Selector(); sel {
	case 0:
		return MainMenu, true
	case 1:
		fmt.Fprintf(w, "FIRMWARE       %s\n\r", i.Firmware)
		fmt.Fprintf(w, "COMPILED       %s\n\r", i.Compiled)
		fmt.Fprintf(w, "ID             %s\n\r", i.ID)
		return console.NoMenu, false
	}
	unknownOption(w, params)
	return console.NoMenu, false
}

// Monitor shows live counters, refreshed on idle.
type Monitor struct {
	Clock fx.TimeSource

	started  time.Time
	keys     int
	commands int
}

// NewMonitor creates a Monitor, uptime starts now.
func NewMonitor(clock fx.TimeSource) *Monitor {
	return &Monitor{Clock: clock, started: clock.Time()}
}

// Title implements console.Menu.
func (m *Monitor) Title() string {
	return "Monitor"
}

// DrawOptions implements console.Menu.
func (m *Monitor) DrawOptions(w io.Writer) {
	console.DrawOptionList(w, []string{
		"S0 Back",
		"S1 Reset counters",
	})
}

// Dispatch implements console.Menu.
func (m *Monitor) Dispatch(w io.Writer, params *console.ParameterList) (console.MenuID, bool) {
	m.commands++
	switch sel, _ := params.Selector(); sel {
	case 0:
		return MainMenu, true
	case 1:
		m.keys, m.commands = 0, 0
		m.started = m.Clock.Time()
		return console.NoMenu, false
	}
	unknownOption(w, params)
	return console.NoMenu, false
}

// HandleKey implements console.KeyHandler.
func (m *Monitor) HandleKey(w io.Writer, key byte) {
	m.keys++
}

// IdleTick implements console.IdleTicker.
func (m *Monitor) IdleTick(w io.Writer) {
	uptime := m.Clock.Time().Sub(m.started).Truncate(time.Millisecond)
	fmt.Fprintf(w, "\rUPTIME %-12s KEYS %-6d COMMANDS %-6d", uptime, m.keys, m.commands)
}
