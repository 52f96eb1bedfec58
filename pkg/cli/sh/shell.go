package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dbgcon/pkg/comm/mqtt"
	"github.com/robotalks/dbgcon/pkg/env"
	"github.com/robotalks/dbgcon/pkg/port"
)

// Shell provides ishell backed interactive console client.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	rawOutput  bool

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&SendCmd,
		&RedrawCmd,
		&ResetCmd,
		&RawCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print acknowledgements in JSON.")
	flag.BoolVar(&rawOutput, "raw", rawOutput, "Print console output.")
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     2 * time.Second,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context, sess *Session)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		sess := ShellFrom(c).Session
		if sess == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c, sess)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects a console, replacing the current session.
func (s *Shell) Connect(transport, addr string) error {
	sess, err := Dial(s.Config, transport, addr)
	if err != nil {
		return err
	}
	s.Disconnect()
	if rawOutput {
		sess.SetOutput(os.Stdout)
	}
	s.Session = sess
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", sess.Name))
	return nil
}

// Disconnect closes current session.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Transport != env.TransportStdio {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Transport)
		}
		if err := s.Connect(s.Config.Transport, ""); err != nil {
			log.Fatalf("connect %s failed: %v", s.Config.Transport, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd lists the consoles announced on MQTT.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list consoles on MQTT",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			metas, err := mqtt.Discover(context.TODO(), s.Config.MQTTURL, mqtt.DefaultDiscoverTimeout)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if metas == nil {
					metas = []mqtt.Meta{}
				}
				out, err := json.Marshal(metas)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(metas) == 0 {
				c.Println("No consoles found")
				return
			}
			for _, meta := range metas {
				c.Printf("%s: %s %s\n", meta.ID, meta.Transport, meta.Firmware)
			}
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"p"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := port.ListSerialPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, name := range ports {
				c.Println(name)
			}
		},
	}

	// ConnectCmd connects a console.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TRANSPORT [ADDR]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			transport, addr := s.Config.Transport, ""
			if len(c.Args) > 0 {
				transport = c.Args[0]
			}
			if len(c.Args) > 1 {
				addr = c.Args[1]
			}
			if err := s.Connect(transport, addr); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current console.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// SendCmd submits a command line.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "S<n> [PARAMS]...",
		Func: MustBeConnected(func(c *ishell.Context, sess *Session) {
			s := ShellFrom(c)
			ack, err := sess.Send(s.Timeout, c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(ack)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if err := ack.Err(); err != nil {
				c.Println("ERR", err)
				return
			}
			c.Printf("OK S%d U%d\n", ack.Selector, ack.Count)
		}),
	}

	// RedrawCmd redraws the active menu.
	RedrawCmd = ishell.Cmd{
		Name:    "esc",
		Aliases: []string{"redraw"},
		Help:    "redraw the active menu",
		Func: MustBeConnected(func(c *ishell.Context, sess *Session) {
			if err := sess.Redraw(); err != nil {
				c.Err(err)
			}
		}),
	}

	// ResetCmd reinitializes the console.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "reinitialize the console",
		Func: MustBeConnected(func(c *ishell.Context, sess *Session) {
			if err := sess.Reset(); err != nil {
				c.Err(err)
			}
		}),
	}

	// RawCmd toggles printing of the console output.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "on|off",
		Func: func(c *ishell.Context) {
			rawOutput = len(c.Args) == 0 || c.Args[0] != "off"
			if sess := ShellFrom(c).Session; sess != nil {
				sess.SetOutput(nil)
				if rawOutput {
					sess.SetOutput(os.Stdout)
				}
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
