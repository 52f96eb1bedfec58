package console

import "time"

// Protocol defaults.
const (
	DefaultBufferSize    = 256
	DefaultMaxParameters = 10
	DefaultResetTrigger  = 3
	DefaultIdleInterval  = 500 * time.Millisecond
	DefaultEndOfLine     = 0x0D
	DefaultRedrawKey     = 0x1B
	DefaultClearScreen   = "\x1b[2J\x1b[H"
	DefaultHeader        = "\t [@.@]\n\r" +
		"\t/|___|\\\n\r" +
		"\t d   b\n\r" +
		"Serial Debug Console\n\r\n\r"
)

// Config defines the protocol constants and the text drawn by a Console.
type Config struct {
	// BufferSize is the line buffer capacity, one slot is reserved so
	// lines hold at most BufferSize-1 bytes.
	BufferSize int
	// MaxParameters is the most parameters a line may carry.
	MaxParameters int
	// MaxParameterLength is the longest parameter, tag included.
	// Defaults to BufferSize-2.
	MaxParameterLength int
	// ResetTrigger is the number of consecutive empty lines
	// reinitializing the session.
	ResetTrigger int
	// IdleInterval is the cadence of IdleTicker calls.
	IdleInterval time.Duration

	EndOfLine byte
	RedrawKey byte

	ClearScreen string
	Header      string
	Firmware    string
	Compiled    string
	// Info lines are appended to the program information.
	Info []string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:    DefaultBufferSize,
		MaxParameters: DefaultMaxParameters,
		ResetTrigger:  DefaultResetTrigger,
		IdleInterval:  DefaultIdleInterval,
		EndOfLine:     DefaultEndOfLine,
		RedrawKey:     DefaultRedrawKey,
		ClearScreen:   DefaultClearScreen,
		Header:        DefaultHeader,
		Firmware:      "unknown",
		Compiled:      "unknown",
	}
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BufferSize < 3 {
		c.BufferSize = def.BufferSize
	}
	if c.MaxParameters <= 0 {
		c.MaxParameters = def.MaxParameters
	}
	if c.MaxParameterLength <= 0 {
		c.MaxParameterLength = c.BufferSize - 2
	}
	if c.ResetTrigger <= 0 {
		c.ResetTrigger = def.ResetTrigger
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = def.IdleInterval
	}
	if c.EndOfLine == 0 {
		c.EndOfLine = def.EndOfLine
	}
	if c.RedrawKey == 0 {
		c.RedrawKey = def.RedrawKey
	}
	return c
}
