package main

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	civAddress = 0x88
	controllerAddress = 0xe0
	quietLog = true
	log.Init()
	os.Exit(m.Run())
}

// fakePort scripts the byte stream the session reads back. With echoWrites
// set, everything written shows up as the echo the real half duplex line
// produces.
type fakePort struct {
	written    []byte
	script     []byte
	echoWrites bool
	resets     int
	closed     bool
}

func (f *fakePort) write(p []byte) error {
	f.written = append(f.written, p...)
	if f.echoWrites {
		f.script = append(p[:len(p):len(p)], f.script...)
	}
	return nil
}

func (f *fakePort) readByte(timeout time.Duration) (byte, error) {
	if timeout <= 0 || len(f.script) == 0 {
		return 0, errTimeout
	}
	b := f.script[0]
	f.script = f.script[1:]
	return b, nil
}

func (f *fakePort) resetInput() error {
	f.resets++
	return nil
}

func (f *fakePort) drain() error { return nil }

func (f *fakePort) close() error {
	f.closed = true
	return nil
}

func newTestControl(f *fakePort) *civControlStruct {
	return &civControlStruct{port: f, baud: 19200, readTimeout: 50 * time.Millisecond}
}

func statusReply(verdict byte) []byte {
	return []byte{0xfe, 0xfe, 0xe0, 0x88, verdict, 0xfd}
}

func TestSetVFOTransaction(t *testing.T) {
	f := &fakePort{echoWrites: true, script: statusReply(OK)}
	s := newTestControl(f)

	if err := s.setVFO("B"); err != nil {
		t.Fatalf("setVFO failed: %v", err)
	}
	expected := []byte{0xfe, 0xfe, 0x88, 0xe0, 0x07, 0x01, 0xfd}
	if !bytes.Equal(f.written, expected) {
		t.Errorf("wrote [% x], expected [% x]", f.written, expected)
	}
	if f.resets != 1 {
		t.Errorf("input buffer reset %d times, expected once per transaction", f.resets)
	}
	if len(f.script) != 0 {
		t.Errorf("%d unread bytes left on the line", len(f.script))
	}
}

func TestTransactRejected(t *testing.T) {
	f := &fakePort{echoWrites: true, script: statusReply(NG)}
	s := newTestControl(f)

	err := s.selectMemory()
	if !errors.Is(err, errRejected) {
		t.Errorf("expected errRejected, got %v", err)
	}
}

func TestTransactEchoMismatch(t *testing.T) {
	badEcho := []byte{0xfe, 0xfe, 0x88, 0xe0, 0x07, 0x00, 0xfd}
	f := &fakePort{script: append(badEcho, statusReply(OK)...)}
	s := newTestControl(f)

	err := s.setVFO("B")
	if !errors.Is(err, errEchoMismatch) {
		t.Fatalf("expected errEchoMismatch, got %v", err)
	}
	// the authoritative reply must still have been read, the line is not
	// left mid exchange
	if len(f.script) != 0 {
		t.Errorf("%d unread bytes left on the line after echo mismatch", len(f.script))
	}
}

func TestTransactTimeout(t *testing.T) {
	f := &fakePort{}
	s := newTestControl(f)
	s.readTimeout = 10 * time.Millisecond

	err := s.selectMemory()
	if !errors.Is(err, errTimeout) {
		t.Errorf("expected errTimeout from a silent line, got %v", err)
	}
}

func TestTransactNoTerminator(t *testing.T) {
	f := &fakePort{script: make([]byte, maxFrameLength+8)}
	s := newTestControl(f)

	err := s.selectMemory()
	if !errors.Is(err, errMalformedResponse) {
		t.Errorf("expected errMalformedResponse from endless chatter, got %v", err)
	}
}

func TestNotConnected(t *testing.T) {
	s := &civControlStruct{readTimeout: time.Second}
	if err := s.selectMemory(); !errors.Is(err, errTransportUnavailable) {
		t.Errorf("expected errTransportUnavailable, got %v", err)
	}
}

func TestConnectInvalidBaud(t *testing.T) {
	s := &civControlStruct{}
	if err := s.connect("/dev/null", 38400); !errors.Is(err, errUnsupportedValue) {
		t.Errorf("expected errUnsupportedValue for 38400 baud, got %v", err)
	}
}

func TestDisconnectReleasesPort(t *testing.T) {
	f := &fakePort{}
	s := newTestControl(f)
	s.disconnect()
	if !f.closed {
		t.Error("disconnect did not close the port")
	}
	if s.connected() {
		t.Error("session still reports connected")
	}
	// safe to call twice
	s.disconnect()
}

func TestGetFreq(t *testing.T) {
	reply := []byte{0xfe, 0xfe, 0xe0, 0x88, 0x03, 0x00, 0x00, 0x52, 0x46, 0x01, 0xfd}
	f := &fakePort{echoWrites: true, script: reply}
	s := newTestControl(f)

	freq, err := s.getFreq()
	if err != nil {
		t.Fatalf("getFreq failed: %v", err)
	}
	if freq != 146520000 {
		t.Errorf("getFreq = %d Hz, expected 146520000", freq)
	}
}

func TestGetFreqStatusInsteadOfData(t *testing.T) {
	f := &fakePort{echoWrites: true, script: statusReply(OK)}
	s := newTestControl(f)

	if _, err := s.getFreq(); !errors.Is(err, errMalformedResponse) {
		t.Errorf("expected errMalformedResponse for a bare OK, got %v", err)
	}
}

func TestSetFreq(t *testing.T) {
	f := &fakePort{echoWrites: true, script: statusReply(OK)}
	s := newTestControl(f)

	if err := s.setFreq(146520000); err != nil {
		t.Fatalf("setFreq failed: %v", err)
	}
	expected := []byte{0xfe, 0xfe, 0x88, 0xe0, 0x00, 0x00, 0x00, 0x52, 0x46, 0x01, 0xfd}
	if !bytes.Equal(f.written, expected) {
		t.Errorf("wrote [% x], expected [% x]", f.written, expected)
	}
}

func TestGetMode(t *testing.T) {
	reply := []byte{0xfe, 0xfe, 0xe0, 0x88, 0x04, 0x01, 0x02, 0xfd}
	f := &fakePort{echoWrites: true, script: reply}
	s := newTestControl(f)

	mode, filter, err := s.getMode()
	if err != nil {
		t.Fatalf("getMode failed: %v", err)
	}
	if mode != "USB" || filter != "FIL2" {
		t.Errorf("getMode = %v/%v, expected USB/FIL2", mode, filter)
	}
}

func TestGetModeUnknownCode(t *testing.T) {
	reply := []byte{0xfe, 0xfe, 0xe0, 0x88, 0x04, 0x42, 0x01, 0xfd}
	f := &fakePort{echoWrites: true, script: reply}
	s := newTestControl(f)

	if _, _, err := s.getMode(); !errors.Is(err, errMalformedResponse) {
		t.Errorf("expected errMalformedResponse for unknown mode code, got %v", err)
	}
}

func TestGetTransmitStatus(t *testing.T) {
	reply := []byte{0xfe, 0xfe, 0xe0, 0x88, 0x1c, 0x00, 0x01, 0xfd}
	f := &fakePort{echoWrites: true, script: reply}
	s := newTestControl(f)

	ptt, err := s.getTransmitStatus()
	if err != nil {
		t.Fatalf("getTransmitStatus failed: %v", err)
	}
	if !ptt {
		t.Error("expected PTT on")
	}
}

func TestSetPower(t *testing.T) {
	f := &fakePort{echoWrites: true, script: statusReply(OK)}
	s := newTestControl(f)

	if err := s.setPower(true); err != nil {
		t.Fatalf("setPower(true) failed: %v", err)
	}
	// 25 lead-in bytes at 19200 baud, then the power on frame
	expected := append(bytes.Repeat([]byte{0xfe}, 25), 0xfe, 0xfe, 0x88, 0xe0, 0x18, 0x01, 0xfd)
	if !bytes.Equal(f.written, expected) {
		t.Errorf("wrote [% x], expected [% x]", f.written, expected)
	}
}

// invalid user input is rejected before anything touches the transport
func TestUnsupportedValueWritesNothing(t *testing.T) {
	cases := []struct {
		name string
		op   func(s *civControlStruct) error
	}{
		{"vfo", func(s *civControlStruct) error { return s.setVFO("C") }},
		{"bank", func(s *civControlStruct) error { return s.selectMemBank("Z") }},
		{"channel", func(s *civControlStruct) error { return s.selectMemChannel("XYZ") }},
		{"mode", func(s *civControlStruct) error { return s.setMode("XYZ") }},
		{"frequency", func(s *civControlStruct) error { return s.setFreq(1000000000) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := &fakePort{echoWrites: true}
			s := newTestControl(f)
			if err := c.op(s); !errors.Is(err, errUnsupportedValue) {
				t.Fatalf("expected errUnsupportedValue, got %v", err)
			}
			if len(f.written) != 0 {
				t.Errorf("wrote [% x] before rejecting the value", f.written)
			}
		})
	}
}
