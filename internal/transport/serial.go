package transport

import (
	"fmt"

	serial "github.com/tarm/goserial"
)

// OpenSerial opens a line transport over a local serial port, typically the
// UART side of a BLE bridge module.
func OpenSerial(device string, baud int) (LineTransport, error) {
	if baud == 0 {
		baud = 9600
	}
	sc := &serial.Config{Name: device, Baud: baud}
	rwc, err := serial.OpenPort(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}
	return newStreamTransport(rwc), nil
}
