package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/dbgcon/pkg/console"
)

// Transports supported by Config.Transport.
const (
	TransportStdio     = "stdio"
	TransportSerial    = "serial"
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
	TransportMQTT      = "mqtt"
)

// Config provides the common options of the console host and tools.
type Config struct {
	Transport string
	// Device is the serial device.
	Device string
	Baud   int
	// Listen is the address served by tcp and websocket transports.
	Listen string
	// MQTTURL is the broker, e.g. mqtt://host:port/topic-prefix/
	MQTTURL string
	// ID names the console, it's the topic prefix on MQTT.
	ID string
	// Events publishes console events on MQTT.
	Events bool

	Firmware string
	Compiled string
}

// Version is set by the linker.
var Version = "dev"

var defaultConfig = Config{
	Transport: TransportStdio,
	Baud:      115200,
	Listen:    ":8023",
	MQTTURL:   "mqtt://localhost:1883/dbgcon/",
	Firmware:  Version,
}

func init() {
	if val := os.Getenv("DBGCON_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val, err := strconv.Atoi(os.Getenv("DBGCON_BAUD")); err == nil && val > 0 {
		defaultConfig.Baud = val
	}
	if val := os.Getenv("DBGCON_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("DBGCON_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("DBGCON_ID"); val != "" {
		defaultConfig.ID = val
	}
	if exe, err := os.Executable(); err == nil {
		if info, err := os.Stat(exe); err == nil {
			defaultConfig.Compiled = info.ModTime().Format(time.Stamp)
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Transport, "transport", defaultConfig.Transport, "Console transport: stdio, serial, tcp, websocket or mqtt.")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Listen address of tcp and websocket transports.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Console ID, defaults to machine ID.")
	flag.BoolVar(&defaultConfig.Events, "events", defaultConfig.Events, "Publish console events on MQTT.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	if conf.ID == "" {
		conf.ID = MachineID()
	}
	return &conf
}

// Validate checks the options required by Transport.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportTCP, TransportWebSocket:
	case TransportSerial:
		if c.Device == "" {
			return fmt.Errorf("serial device must be specified")
		}
	case TransportMQTT:
		if c.ID == "" {
			return fmt.Errorf("console id must be specified")
		}
	default:
		return fmt.Errorf("unknown transport: %q", c.Transport)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	return nil
}

// UsesMQTT tells if a broker connection is needed.
func (c *Config) UsesMQTT() bool {
	return c.Transport == TransportMQTT || c.Events
}

// ConsoleConfig creates the console configuration.
func (c *Config) ConsoleConfig() console.Config {
	conf := console.DefaultConfig()
	if c.Firmware != "" {
		conf.Firmware = c.Firmware
	}
	if c.Compiled != "" {
		conf.Compiled = c.Compiled
	}
	if c.ID != "" {
		conf.Info = append(conf.Info, "ID             "+c.ID)
	}
	return conf
}
