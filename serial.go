package main

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// the byte link the session talks through. The real implementation wraps a
// serial port, tests substitute a scripted fake.
type radioPort interface {
	write(p []byte) error
	readByte(timeout time.Duration) (byte, error)
	resetInput() error
	drain() error
	close() error
}

type serialPort struct {
	device string
	port   serial.Port
}

func openSerialPort(device string, baud int) (*serialPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %v: %v", errTransportUnavailable, device, err)
	}
	log.Debug("opened ", device, " at ", baud, " baud")
	return &serialPort{device: device, port: p}, nil
}

func (s *serialPort) write(p []byte) error {
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return fmt.Errorf("%w: write %v: %v", errTransportUnavailable, s.device, err)
		}
		p = p[n:]
	}
	return nil
}

// readByte blocks for at most timeout. The underlying Read reports an
// expired timeout as a zero length read, not as an error.
func (s *serialPort) readByte(timeout time.Duration) (byte, error) {
	if timeout <= 0 {
		return 0, errTimeout
	}
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("%w: %v: %v", errTransportUnavailable, s.device, err)
	}
	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("%w: read %v: %v", errTransportUnavailable, s.device, err)
	}
	if n == 0 {
		return 0, errTimeout
	}
	return buf[0], nil
}

func (s *serialPort) resetInput() error {
	return s.port.ResetInputBuffer()
}

func (s *serialPort) drain() error {
	return s.port.Drain()
}

func (s *serialPort) close() error {
	log.Debug("closing ", s.device)
	return s.port.Close()
}

func listSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating ports: %v", errTransportUnavailable, err)
	}
	return ports, nil
}
