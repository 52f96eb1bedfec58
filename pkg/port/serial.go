package port

import (
	"io"

	"go.bug.st/serial"
)

// Serial creates a Stream on a serial device, opened 8N1 at the baud
// rate passed to Open.
func Serial(device string) *Stream {
	return NewStream("serial:"+device, func(baud int) (io.ReadWriteCloser, error) {
		return OpenSerial(device, baud)
	})
}

// OpenSerial opens a serial device 8N1.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(device, mode)
}

// ListSerialPorts lists the serial devices of the system.
func ListSerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
