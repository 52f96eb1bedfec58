package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/dbgcon/pkg/framework"
)

type testPort struct {
	in       []byte
	out      bytes.Buffer
	baud     int
	writeErr error
}

func (p *testPort) Open(baud int) error {
	p.baud = baud
	return nil
}

func (p *testPort) HasData() bool { return len(p.in) > 0 }

func (p *testPort) ReadByte() (byte, error) {
	if len(p.in) == 0 {
		return 0, ErrNoData
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, nil
}

func (p *testPort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.out.Write(b)
}

func (p *testPort) WriteByte(b byte) error {
	_, err := p.Write([]byte{b})
	return err
}

func (p *testPort) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

type fakeTimer struct {
	expired  bool
	restarts int
}

func (t *fakeTimer) Restart() { t.restarts++ }

func (t *fakeTimer) Expired(time.Duration) bool {
	fired := t.expired
	t.expired = false
	return fired
}

type dispatchCall struct {
	menu   string
	params []Parameter
}

type testMenu struct {
	name     string
	options  []string
	next     MenuID
	switchTo bool
	calls    *[]dispatchCall
}

func (m *testMenu) Title() string { return m.name }

func (m *testMenu) DrawOptions(w io.Writer) { DrawOptionList(w, m.options) }

func (m *testMenu) Dispatch(w io.Writer, params *ParameterList) (MenuID, bool) {
	*m.calls = append(*m.calls, dispatchCall{menu: m.name, params: params.Params()})
	return m.next, m.switchTo
}

type keyMenu struct {
	testMenu
	keys []byte
}

func (m *keyMenu) HandleKey(w io.Writer, key byte) {
	m.keys = append(m.keys, key)
}

type idleMenu struct {
	testMenu
	ticks int
}

func (m *idleMenu) IdleTick(w io.Writer) {
	m.ticks++
	io.WriteString(w, "tick")
}

type consoleTestCtx struct {
	t       *testing.T
	port    *testPort
	timer   *fakeTimer
	console *Console
	calls   []dispatchCall
	events  []Event
	main    *testMenu
}

func newConsoleTest(t *testing.T, conf Config, menus ...Menu) *consoleTestCtx {
	tctx := &consoleTestCtx{t: t, port: &testPort{}, timer: &fakeTimer{}}
	reg := NewRegistry()
	tctx.main = &testMenu{name: "Main", options: []string{"S1 first", "S2 second"}, calls: &tctx.calls}
	reg.Add(tctx.main)
	for _, m := range menus {
		reg.Add(m)
	}
	tctx.console = New(tctx.port, reg, conf)
	tctx.console.Timer = tctx.timer
	tctx.console.Handler = HandleEventFunc(func(ev Event) {
		tctx.events = append(tctx.events, ev)
	})
	require.NoError(t, tctx.console.Open(9600))
	require.Equal(t, 9600, tctx.port.baud)
	tctx.output()
	tctx.events = nil
	return tctx
}

// input feeds s and polls until it is consumed.
func (c *consoleTestCtx) input(s string) *consoleTestCtx {
	c.port.in = append(c.port.in, s...)
	for c.port.HasData() {
		c.console.Poll()
	}
	return c
}

func (c *consoleTestCtx) output() string {
	s := c.port.out.String()
	c.port.out.Reset()
	return s
}

func (c *consoleTestCtx) eventKinds() []EventKind {
	var kinds []EventKind
	for _, ev := range c.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func testConfig() Config {
	conf := DefaultConfig()
	conf.ClearScreen = "<clear>"
	conf.Header = "<header>\n\r"
	conf.Firmware = "1.0"
	conf.Compiled = "today"
	return conf
}

func TestConsoleInit(t *testing.T) {
	port := &testPort{}
	reg := NewRegistry()
	var calls []dispatchCall
	reg.Add(&testMenu{name: "Main", calls: &calls})
	conf := testConfig()
	conf.Info = []string{"ID             abc"}
	c := New(port, reg, conf)
	c.Init()
	require.Equal(t, "<clear><header>\n\r"+
		"COMPILED       today\n\r"+
		"FIRMWARE       1.0\n\r"+
		"ID             abc\n\r"+
		"Press ESC to show current menu\n\r"+
		"Press enter 3 times to show the program information\n\r"+
		"\n\r[Main] > ", port.out.String())
}

func TestConsoleDispatch(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("S1 U5\r")
	require.Equal(t, "S1 U5"+"\n\r S1 U2\n\r"+"\n\r[Main] > ", tctx.output())
	require.Len(t, tctx.calls, 1)
	call := tctx.calls[0]
	require.Equal(t, "Main", call.menu)
	require.Len(t, call.params, 2)
	require.Equal(t, KindSelector, call.params[0].Kind)
	require.Equal(t, uint32(1), call.params[0].Uint())
	require.Equal(t, KindUnsigned, call.params[1].Kind)
	require.Equal(t, uint32(5), call.params[1].Uint())
	require.Equal(t, MenuID(0), tctx.console.Active())
	require.Equal(t, []EventKind{EventCommand}, tctx.eventKinds())
	require.Equal(t, 2, tctx.events[0].Params.Len())
}

func TestConsoleRoundTrip(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("S7 U42\r")
	require.Contains(t, tctx.output(), "\n\r S7 U2\n\r")
	require.Equal(t, uint32(42), tctx.calls[0].params[1].Uint())
}

func TestConsoleRedraw(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("S1")
	require.Equal(t, 2, tctx.console.Buffered())
	tctx.output()
	tctx.port.in = append(tctx.port.in, 0x1B)
	require.True(t, tctx.console.Poll())
	require.Equal(t, "<clear><header>\n\rS1 first\n\rS2 second\n\r\n\r[Main] > ", tctx.output())
	require.Equal(t, MenuID(0), tctx.console.Active())
	require.Equal(t, 0, tctx.console.Buffered())
	// the pending "S1" was dropped
	tctx.input("\r")
	require.Empty(t, tctx.calls)
}

func TestConsoleNotSelector(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("T hello\r")
	out := tctx.output()
	require.Equal(t, "T hello"+"\n\r E0\n\r"+"\n\r[Main] > ", out)
	require.Equal(t, 1, strings.Count(out, "\n\r E"))
	require.Empty(t, tctx.calls)
	require.Equal(t, []EventKind{EventError}, tctx.eventKinds())
	require.Equal(t, ErrNotSelector, tctx.events[0].Code)
}

func TestConsoleParseErrors(t *testing.T) {
	testCases := []struct {
		line string
		code ErrorCode
	}{
		{"S1 U1 U2 U3 U4 U5 U6 U7 U8 U9 U10", ErrTooManyParameters},
		{"T" + strings.Repeat("x", 254), ErrParameterTooLong},
		{"S1 Q2", ErrInvalidParameterType},
		{"   ", ErrInvalidParameterType},
	}
	for _, tc := range testCases {
		t.Run(tc.code.Error(), func(t *testing.T) {
			tctx := newConsoleTest(t, testConfig())
			tctx.input(tc.line + "\r")
			out := tctx.output()
			require.Equal(t, tc.line+string(FailureAck(tc.code).Bytes())+"\n\r[Main] > ", out)
			require.Equal(t, 1, strings.Count(out, "\n\r E"))
			require.Empty(t, tctx.calls)
		})
	}
}

func TestConsoleResetProtocol(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("\r\r")
	require.Equal(t, 2, tctx.console.ResetCounter())
	require.Empty(t, tctx.output())
	require.Empty(t, tctx.events)

	tctx.input("\r")
	require.Equal(t, 0, tctx.console.ResetCounter())
	require.Equal(t, []EventKind{EventReset}, tctx.eventKinds())
	out := tctx.output()
	require.True(t, strings.HasPrefix(out, "<clear><header>\n\rCOMPILED"))
	require.Equal(t, 1, strings.Count(out, "<clear>"))

	// six more empty submits reinitialize exactly twice.
	tctx.events = nil
	tctx.input("\r\r\r\r\r\r")
	require.Equal(t, []EventKind{EventReset, EventReset}, tctx.eventKinds())
}

func TestConsoleResetRestoresDefaultMenu(t *testing.T) {
	var calls []dispatchCall
	other := &testMenu{name: "Other", calls: &calls}
	tctx := newConsoleTest(t, testConfig(), other)
	tctx.main.next, tctx.main.switchTo = 1, true
	tctx.input("S1\r")
	require.Equal(t, MenuID(1), tctx.console.Active())
	tctx.input("S1 U2\r")
	require.Len(t, calls, 1)
	tctx.input("\r\r\r")
	require.Equal(t, MenuID(0), tctx.console.Active())
	require.Equal(t, 0, tctx.console.Buffered())
	require.Equal(t, 2, tctx.timer.restarts)
}

func TestConsoleSingleCharLineIsEmptySubmit(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("x\rx\r")
	require.Equal(t, 2, tctx.console.ResetCounter())
	require.Empty(t, tctx.calls)
	tctx.input("x\r")
	require.Equal(t, []EventKind{EventReset}, tctx.eventKinds())
}

func TestConsoleNonEmptyLineClearsResetCounter(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.input("\r\r")
	tctx.input("Xa\r")
	require.Equal(t, 0, tctx.console.ResetCounter())
	tctx.input("\r\r")
	require.Equal(t, 2, tctx.console.ResetCounter())
	tctx.input("\x1b")
	require.Equal(t, 0, tctx.console.ResetCounter())
	require.NotContains(t, tctx.eventKinds(), EventReset)
}

func TestConsoleKeyHandler(t *testing.T) {
	var calls []dispatchCall
	km := &keyMenu{testMenu: testMenu{name: "Keys", calls: &calls}}
	tctx := newConsoleTest(t, testConfig(), km)
	tctx.main.next, tctx.main.switchTo = 1, true
	tctx.input("S1\r")
	tctx.output()

	tctx.input("a")
	require.Equal(t, []byte("a"), km.keys)
	require.Equal(t, "a", tctx.output())
	// keystrokes keep clearing the reset counter.
	tctx.input("\r\r")
	tctx.input("b\r")
	require.Equal(t, 1, tctx.console.ResetCounter())
	require.Equal(t, []byte("ab"), km.keys)
	require.Equal(t, MenuID(1), tctx.console.Active())
}

func TestConsoleTransition(t *testing.T) {
	var calls []dispatchCall
	other := &testMenu{name: "Other", options: []string{"S0 back"}, calls: &calls}
	tctx := newConsoleTest(t, testConfig(), other)
	tctx.main.next, tctx.main.switchTo = 1, true
	tctx.input("S2\r")
	require.Equal(t, "S2"+"\n\r S2 U1\n\r"+"<clear><header>\n\rS0 back\n\r"+"\n\r[Other] > ", tctx.output())
	require.Equal(t, MenuID(1), tctx.console.Active())
	require.Equal(t, []EventKind{EventCommand, EventMenuChanged}, tctx.eventKinds())
	require.Equal(t, MenuID(0), tctx.events[1].From)
	require.Equal(t, "Other", tctx.events[1].Title)

	tctx.input("S0\r")
	require.Len(t, calls, 1)
	require.Equal(t, "Other", calls[0].menu)
}

func TestConsoleUnknownTransitionIgnored(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.main.next, tctx.main.switchTo = 7, true
	tctx.input("S1\r")
	require.Equal(t, "S1"+"\n\r S1 U1\n\r"+"\n\r[Main] > ", tctx.output())
	require.Equal(t, MenuID(0), tctx.console.Active())
}

func TestConsoleLineOverflow(t *testing.T) {
	conf := testConfig()
	conf.BufferSize = 8
	tctx := newConsoleTest(t, conf)

	// capacity-1 characters are accepted.
	tctx.input("S1 U345\r")
	require.Contains(t, tctx.output(), "\n\r S1 U2\n\r")
	require.Len(t, tctx.calls, 1)

	// one more yields E1 and a buffer reset.
	tctx.input("S1 U3456")
	out := tctx.output()
	require.Equal(t, "S1 U3456"+"\n\r E1\n\r"+"\n\r[Main] > ", out)
	require.Equal(t, 0, tctx.console.Buffered())
	require.Equal(t, []EventKind{EventCommand, EventError}, tctx.eventKinds())
	require.Equal(t, ErrLineOverflow, tctx.events[1].Code)

	tctx.input("\r")
	require.Len(t, tctx.calls, 1)
	require.Equal(t, 1, tctx.console.ResetCounter())
}

func TestConsoleIgnoresControlBytes(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	for _, b := range []byte{0x00, 0x07, '\n', 0x7F, 0x80, 0xFF} {
		tctx.port.in = append(tctx.port.in, b)
		require.False(t, tctx.console.Poll(), "byte %#x", b)
	}
	require.Empty(t, tctx.output())
	require.Equal(t, 0, tctx.console.Buffered())
}

func TestConsolePollReportsWork(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	require.False(t, tctx.console.Poll())
	tctx.port.in = []byte("S1\r")
	require.True(t, tctx.console.Poll())
	require.True(t, tctx.console.Poll())
	require.True(t, tctx.console.Poll())
	require.False(t, tctx.console.Poll())
}

func TestConsoleIdleTick(t *testing.T) {
	var calls []dispatchCall
	im := &idleMenu{testMenu: testMenu{name: "Idle", calls: &calls}}
	tctx := newConsoleTest(t, testConfig(), im)

	restarts := tctx.timer.restarts
	require.False(t, tctx.console.Poll())
	require.Equal(t, restarts+1, tctx.timer.restarts, "no idle capability restarts the timer")

	tctx.main.next, tctx.main.switchTo = 1, true
	tctx.input("S1\r")
	tctx.output()
	restarts = tctx.timer.restarts

	tctx.console.Poll()
	require.Equal(t, 0, im.ticks)
	tctx.timer.expired = true
	tctx.console.Poll()
	require.Equal(t, 1, im.ticks)
	require.Equal(t, "tick", tctx.output())
	tctx.console.Poll()
	require.Equal(t, 1, im.ticks)
	require.Equal(t, restarts, tctx.timer.restarts)

	// input pending: no idle tick.
	tctx.timer.expired = true
	tctx.port.in = []byte("x")
	tctx.console.Poll()
	require.Equal(t, 1, im.ticks)
}

func TestConsoleWithRealTimer(t *testing.T) {
	var calls []dispatchCall
	im := &idleMenu{testMenu: testMenu{name: "Idle", calls: &calls}}
	reg := NewRegistry()
	reg.Add(im)
	now := time.Unix(0, 0)
	port := &testPort{}
	c := New(port, reg, testConfig())
	c.Timer = fx.NewIntervalTimer(fx.TimeSourceFunc(func() time.Time { return now }))
	c.Init()
	c.Poll()
	require.Equal(t, 0, im.ticks)
	now = now.Add(DefaultIdleInterval)
	c.Poll()
	c.Poll()
	require.Equal(t, 1, im.ticks)
	now = now.Add(DefaultIdleInterval)
	c.Poll()
	require.Equal(t, 2, im.ticks)
}

func TestConsoleNilPort(t *testing.T) {
	c := New(nil, nil, Config{})
	require.NoError(t, c.Open(9600))
	require.False(t, c.Poll())
	require.Equal(t, NoMenu, c.Active())
}

func TestConsoleNoMenus(t *testing.T) {
	port := &testPort{}
	c := New(port, nil, testConfig())
	c.Init()
	port.out.Reset()
	port.in = []byte("S3\r")
	for port.HasData() {
		c.Poll()
	}
	require.Equal(t, "S3"+"\n\r S3 U1\n\r"+"\n\r[] > ", port.out.String())
}

func TestConsoleWriteErrors(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	tctx.port.writeErr = errors.New("broken")
	tctx.input("S1\r")
	require.Len(t, tctx.calls, 1)
	tctx.port.writeErr = nil
	tctx.input("S2\r")
	require.Contains(t, tctx.output(), "\n\r S2 U1\n\r")
}

type testControlCtx struct {
	triggered int
}

func (c *testControlCtx) Time() time.Time          { return time.Time{} }
func (c *testControlCtx) Context() context.Context { return context.TODO() }
func (c *testControlCtx) Iteration() uint64        { return 0 }
func (c *testControlCtx) TriggerNext()             { c.triggered++ }

func TestConsoleControl(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	cc := &testControlCtx{}
	require.NoError(t, tctx.console.Control(cc))
	require.Equal(t, 0, cc.triggered)
	tctx.port.in = []byte("S")
	require.NoError(t, tctx.console.Control(cc))
	require.Equal(t, 1, cc.triggered)

	loop := fx.NewLoop()
	tctx.console.AddToLoop(loop)
	tctx.port.in = []byte("1\r")
	loop.RunIteration(context.TODO())
	loop.RunIteration(context.TODO())
	require.Len(t, tctx.calls, 1)
}

func TestConsoleControlDrainsIgnoredBytes(t *testing.T) {
	tctx := newConsoleTest(t, testConfig())
	cc := &testControlCtx{}
	tctx.port.in = []byte{0x00, 0x07, 'S'}
	require.NoError(t, tctx.console.Control(cc))
	require.Equal(t, 1, cc.triggered)
	require.NoError(t, tctx.console.Control(cc))
	require.Equal(t, 2, cc.triggered)
	require.NoError(t, tctx.console.Control(cc))
	require.Equal(t, 3, cc.triggered)
	require.Equal(t, 1, tctx.console.Buffered())

	// an ignored byte with nothing behind it triggers nothing.
	tctx.port.in = []byte{0x00}
	require.NoError(t, tctx.console.Control(cc))
	require.Equal(t, 3, cc.triggered)
}
