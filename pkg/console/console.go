package console

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/dbgcon/pkg/framework"
)

// Console is the session state of one console and its poll step.
type Console struct {
	Config  Config
	Port    Port
	Menus   *Registry
	Timer   Timer
	Handler EventHandler

	active       MenuID
	resetCounter int
	line         *LineBuffer
	parser       Parser
	writeFailed  bool
}

// New creates a Console. It draws nothing until Open or Init is called.
func New(port Port, menus *Registry, conf Config) *Console {
	conf = conf.withDefaults()
	if menus == nil {
		menus = NewRegistry()
	}
	return &Console{
		Config: conf,
		Port:   port,
		Menus:  menus,
		Timer:  fx.NewIntervalTimer(fx.WallClock),
		active: menus.Default(),
		line:   NewLineBuffer(conf.BufferSize),
		parser: Parser{
			MaxParameters:      conf.MaxParameters,
			MaxParameterLength: conf.MaxParameterLength,
		},
	}
}

// Open opens the port at baud and initializes the session.
func (c *Console) Open(baud int) error {
	if c.Port != nil {
		if err := c.Port.Open(baud); err != nil {
			return err
		}
	}
	c.Init()
	return nil
}

// Init reinitializes the session: the default menu becomes active, pending
// input is dropped and the program information is drawn.
func (c *Console) Init() {
	c.line.Reset()
	c.resetCounter = 0
	c.active = c.Menus.Default()

	c.writeString(c.Config.ClearScreen)
	c.drawHeader()
	c.drawInfo()
	c.drawPrompt()
	c.Timer.Restart()

	glog.V(1).Infof("console initialized, menu %d %q", c.active, c.title())
	c.emit(Event{Kind: EventReset, Menu: c.active, From: NoMenu, Title: c.title()})
}

// Active returns the active menu.
func (c *Console) Active() MenuID {
	return c.active
}

// ResetCounter returns the number of consecutive empty submits.
func (c *Console) ResetCounter() int {
	return c.resetCounter
}

// Buffered returns the length of the pending line.
func (c *Console) Buffered() int {
	return c.line.Len()
}

// Poll performs at most one unit of work without blocking. With a byte
// pending it consumes exactly one and reports whether it did anything with
// it; otherwise it runs the idle tick of the active menu when due.
func (c *Console) Poll() bool {
	if c.Port == nil {
		return false
	}
	if c.Port.HasData() {
		b, err := c.Port.ReadByte()
		if err != nil {
			return false
		}
		return c.consume(b)
	}
	c.idle()
	return false
}

// Control implements framework.Controller. The next iteration is
// triggered while input is pending, ignored bytes included.
func (c *Console) Control(ctx fx.ControlContext) error {
	if c.Poll() || (c.Port != nil && c.Port.HasData()) {
		ctx.TriggerNext()
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (c *Console) AddToLoop(loop *fx.Loop) {
	if runnable, ok := c.Port.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddController(c)
}

func (c *Console) consume(b byte) bool {
	switch {
	case b == c.Config.EndOfLine:
		c.endOfLine()
	case b == c.Config.RedrawKey:
		c.redraw()
	case b >= ' ' && b <= '~':
		c.printable(b)
	default:
		return false
	}
	return true
}

func (c *Console) printable(b byte) {
	c.writeByte(b)
	if h, ok := c.activeMenu().(KeyHandler); ok {
		c.resetCounter = 0
		h.HandleKey(c.out(), b)
	}
	if !c.line.Append(b) {
		c.line.Reset()
		c.resetCounter = 0
		c.fail(ErrLineOverflow)
	}
}

func (c *Console) redraw() {
	c.writeString(c.Config.ClearScreen)
	c.drawHeader()
	c.drawOptions()
	c.drawPrompt()
	c.resetCounter = 0
	c.line.Reset()
}

func (c *Console) endOfLine() {
	defer c.line.Reset()
	line := c.line.Line()
	if len(line) <= 1 {
		c.emptySubmit()
		return
	}
	c.resetCounter = 0
	glog.V(2).Infof("line %q", line)
	params, err := c.parse(line)
	if err != nil {
		return
	}
	c.dispatch(params)
}

func (c *Console) emptySubmit() {
	c.resetCounter++
	if c.resetCounter >= c.Config.ResetTrigger {
		glog.V(1).Infof("%d empty lines, reinitializing", c.resetCounter)
		c.Init()
	}
}

// parse reports the failure acknowledgement itself.
func (c *Console) parse(line []byte) (*ParameterList, error) {
	params, err := c.parser.Parse(line)
	if err != nil {
		glog.V(2).Infof("parse %q: %v", line, err)
		code, _ := CodeOf(err)
		c.fail(code)
		return nil, err
	}
	return params, nil
}

func (c *Console) dispatch(params *ParameterList) {
	selector, ok := params.Selector()
	if !ok {
		c.fail(ErrNotSelector)
		return
	}
	c.write(SuccessAck(selector, params.Len()).Bytes())
	glog.V(2).Infof("dispatch S%d (%d parameters) to menu %d", selector, params.Len(), c.active)
	c.emit(Event{Kind: EventCommand, Menu: c.active, From: c.active, Title: c.title(), Params: params})

	if menu := c.activeMenu(); menu != nil {
		if next, changed := menu.Dispatch(c.out(), params); changed {
			c.transition(next)
		}
	}
	c.drawPrompt()
}

func (c *Console) transition(next MenuID) {
	if c.Menus.Menu(next) == nil {
		glog.Warningf("menu %d %q switches to unknown menu %d, ignored", c.active, c.title(), next)
		return
	}
	prev := c.active
	c.active = next
	glog.V(1).Infof("menu %d -> %d %q", prev, next, c.title())
	c.writeString(c.Config.ClearScreen)
	c.drawHeader()
	c.drawOptions()
	c.emit(Event{Kind: EventMenuChanged, Menu: next, From: prev, Title: c.title()})
}

func (c *Console) idle() {
	ticker, ok := c.activeMenu().(IdleTicker)
	if !ok {
		c.Timer.Restart()
		return
	}
	if c.Timer.Expired(c.Config.IdleInterval) {
		ticker.IdleTick(c.out())
	}
}

// fail sends the failure acknowledgement and a new prompt.
func (c *Console) fail(code ErrorCode) {
	c.write(FailureAck(code).Bytes())
	c.drawPrompt()
	c.emit(Event{Kind: EventError, Menu: c.active, From: c.active, Title: c.title(), Code: code})
}

func (c *Console) activeMenu() Menu {
	return c.Menus.Menu(c.active)
}

func (c *Console) title() string {
	if m := c.activeMenu(); m != nil {
		return m.Title()
	}
	return ""
}

func (c *Console) drawHeader() {
	c.writeString(c.Config.Header)
}

func (c *Console) drawInfo() {
	c.writeString("COMPILED       " + c.Config.Compiled + "\n\r")
	c.writeString("FIRMWARE       " + c.Config.Firmware + "\n\r")
	for _, line := range c.Config.Info {
		c.writeString(line + "\n\r")
	}
	c.writeString("Press ESC to show current menu\n\r")
	c.writeString(fmt.Sprintf("Press enter %d times to show the program information\n\r", c.Config.ResetTrigger))
}

func (c *Console) drawOptions() {
	if m := c.activeMenu(); m != nil {
		m.DrawOptions(c.out())
	}
}

func (c *Console) drawPrompt() {
	c.writeString("\n\r[" + c.title() + "] > ")
}

func (c *Console) emit(ev Event) {
	if h := c.Handler; h != nil {
		h.HandleEvent(ev)
	}
}

// out is the writer handed to menus.
func (c *Console) out() io.Writer {
	if c.Port == nil {
		return io.Discard
	}
	return c.Port
}

func (c *Console) writeByte(b byte) {
	if c.Port != nil {
		c.checkWrite(c.Port.WriteByte(b))
	}
}

func (c *Console) writeString(s string) {
	if c.Port != nil && s != "" {
		_, err := c.Port.WriteString(s)
		c.checkWrite(err)
	}
}

func (c *Console) write(p []byte) {
	if c.Port != nil {
		_, err := c.Port.Write(p)
		c.checkWrite(err)
	}
}

// checkWrite logs the first of consecutive write errors.
func (c *Console) checkWrite(err error) {
	if err == nil {
		c.writeFailed = false
		return
	}
	if !c.writeFailed {
		glog.Warningf("console write error: %v", err)
	}
	c.writeFailed = true
}
