package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultReadTimeout = time.Second

// the bauds the radio's CI-V jack accepts, which is the same set the wake
// lead-in table covers
func validBaudRate(baud int) bool {
	_, ok := civWakeLeadIns[baud]
	return ok
}

// civControlStruct owns the line to the radio. The protocol is half duplex
// and strictly synchronous: one frame out, its echo back, one authoritative
// reply. All methods must be called from a single goroutine.
type civControlStruct struct {
	port        radioPort
	device      string
	baud        int
	readTimeout time.Duration
	trace       traceBufStruct

	state struct {
		freq   uint
		ptt    bool
		sent   uint
		failed uint
	}
}

var civControl civControlStruct

// connect opens the serial link. Any handle the session already holds is
// drained and closed first, the old port is always released before a new one
// is acquired.
func (s *civControlStruct) connect(device string, baud int) error {
	s.disconnect()

	if !validBaudRate(baud) {
		return fmt.Errorf("%w: %d baud (valid: 300, 1200, 4800, 9600, 19200)", errUnsupportedValue, baud)
	}
	p, err := openSerialPort(device, baud)
	if err != nil {
		return err
	}
	s.port = p
	s.device = device
	s.baud = baud
	if s.readTimeout <= 0 {
		s.readTimeout = defaultReadTimeout
	}
	return nil
}

func (s *civControlStruct) disconnect() {
	if s.port == nil {
		return
	}
	_ = s.port.drain()
	_ = s.port.close()
	s.port = nil
}

func (s *civControlStruct) connected() bool {
	return s.port != nil
}

// sendCmd runs one full transaction: frame out, echo back, one authoritative
// reply. An NG status comes back as errRejected with the reply attached.
func (s *civControlStruct) sendCmd(pkt []byte) (*civReply, error) {
	if s.port == nil {
		return nil, fmt.Errorf("%w: not connected", errTransportUnavailable)
	}

	s.state.sent++
	reply, err := s.transact(pkt)
	if err != nil {
		s.state.failed++
		statusLog.reportError(err)
	}
	statusLog.reportCounters(s.state.sent, s.state.failed)
	return reply, err
}

func (s *civControlStruct) transact(pkt []byte) (*civReply, error) {
	// some opcodes make the radio emit a duplicate status frame. Dropping
	// stale input before the write keeps "one reply per command" true
	// without per-command cleanup reads.
	if err := s.port.resetInput(); err != nil {
		return nil, fmt.Errorf("%w: input reset: %v", errTransportUnavailable, err)
	}
	if err := s.port.write(pkt); err != nil {
		return nil, err
	}
	s.trace.add("tx", pkt)

	echo, err := s.readFrame("echo")
	if err != nil {
		return nil, fmt.Errorf("echo read: %w", err)
	}
	echoOK := bytes.Equal(echo, pkt)

	// on a mismatched echo the reply is still read, the line must not be
	// left mid exchange
	raw, err := s.readFrame("reply")
	if err != nil {
		return nil, fmt.Errorf("reply read: %w", err)
	}

	if !echoOK {
		s.dumpTrace("echo mismatch")
		return nil, fmt.Errorf("%w: sent [% x] heard [% x]", errEchoMismatch, pkt, echo)
	}

	reply, err := classifyReply(raw)
	if err != nil {
		s.dumpTrace("unclassifiable reply")
		return nil, err
	}
	if reply.kind == replyNG {
		return reply, errRejected
	}
	return reply, nil
}

// readFrame accumulates bytes until the end-of-packet byte, bounded by the
// session read timeout and the frame length cap.
func (s *civControlStruct) readFrame(what string) ([]byte, error) {
	deadline := time.Now().Add(s.readTimeout)
	var frame []byte
	for {
		b, err := s.port.readByte(time.Until(deadline))
		if err != nil {
			if errors.Is(err, errTimeout) {
				return nil, fmt.Errorf("%w: no %v after %v, %d bytes buffered [% x]",
					errTimeout, what, s.readTimeout, len(frame), frame)
			}
			return nil, err
		}
		frame = append(frame, b)
		if b == 0xfd {
			s.trace.add("rx", frame)
			if debugPackets {
				debugPacket(what, frame)
			}
			return frame, nil
		}
		if len(frame) >= maxFrameLength {
			s.trace.add("rx", frame)
			return nil, fmt.Errorf("%w: no end of packet within %d bytes [% x]",
				errMalformedResponse, maxFrameLength, frame)
		}
	}
}

func (s *civControlStruct) dumpTrace(reason string) {
	lines := s.trace.dump()
	log.Error(reason, ", last ", len(lines), " frames:")
	for _, l := range lines {
		log.Error("  ", l)
	}
}

// set style commands expect a bare OK status back
func (s *civControlStruct) sendSetCmd(pkt []byte) error {
	reply, err := s.sendCmd(pkt)
	if err != nil {
		return err
	}
	if reply.kind != replyOK {
		return fmt.Errorf("%w: expected status reply, got [% x]", errMalformedResponse, reply.raw)
	}
	return nil
}

// read style commands expect a data reply to decode
func (s *civControlStruct) sendGetCmd(pkt []byte) (*civReply, error) {
	reply, err := s.sendCmd(pkt)
	if err != nil {
		return nil, err
	}
	if reply.kind != replyData {
		return nil, fmt.Errorf("%w: expected data reply, got [% x]", errMalformedResponse, reply.raw)
	}
	return reply, nil
}

func (s *civControlStruct) setPower(on bool) error {
	if !on {
		return s.sendSetCmd(prepPacket("powerOff", noData))
	}
	// power on needs the wake lead-in run so the radio's auto baud
	// detection locks before the real preamble
	pkt, err := prepWakePacket(s.baud)
	if err != nil {
		return err
	}
	return s.sendSetCmd(pkt)
}

func (s *civControlStruct) setVFO(name string) error {
	var b byte
	switch strings.ToUpper(name) {
	case "A":
		b = 0x00
	case "B":
		b = 0x01
	default:
		return fmt.Errorf("%w: unknown VFO %q", errUnsupportedValue, name)
	}
	return s.sendSetCmd(prepPacket("setVFO", []byte{b}))
}

func (s *civControlStruct) selectMemory() error {
	return s.sendSetCmd(prepPacket("selectMemory", noData))
}

func (s *civControlStruct) selectMemBank(name string) error {
	code, err := memBankCodeForName(name)
	if err != nil {
		return err
	}
	return s.sendSetCmd(prepPacket("selectMemBank", []byte{code}))
}

func (s *civControlStruct) selectMemChannel(ch string) error {
	code, err := memChannelBytes(ch)
	if err != nil {
		return err
	}
	return s.sendSetCmd(prepPacket("selectMemChannel", code))
}

func (s *civControlStruct) getFreq() (uint, error) {
	reply, err := s.sendGetCmd(prepPacket("getFreq", noData))
	if err != nil {
		return 0, err
	}
	f, err := decodeFreqData(reply.payload)
	if err != nil {
		return 0, err
	}
	s.state.freq = f
	statusLog.reportFrequency(f)
	return f, nil
}

func (s *civControlStruct) setFreq(hz uint) error {
	data, err := encodeFreqData(hz)
	if err != nil {
		return err
	}
	if err := s.sendSetCmd(prepPacket("setFreq", data[:])); err != nil {
		return err
	}
	s.state.freq = hz - hz%10
	statusLog.reportFrequency(s.state.freq)
	return nil
}

func (s *civControlStruct) getMode() (mode, filter string, err error) {
	reply, err := s.sendGetCmd(prepPacket("getMode", noData))
	if err != nil {
		return "", "", err
	}
	if len(reply.payload) < 2 {
		return "", "", fmt.Errorf("%w: mode payload [% x]", errMalformedResponse, reply.payload)
	}
	mode, err = modeNameForCode(reply.payload[0])
	if err != nil {
		return "", "", err
	}
	filter, err = filterNameForCode(reply.payload[1])
	if err != nil {
		return "", "", err
	}
	statusLog.reportMode(mode, filter)
	return mode, filter, nil
}

func (s *civControlStruct) setMode(name string) error {
	code, err := modeCodeForName(name)
	if err != nil {
		return err
	}
	return s.sendSetCmd(prepPacket("setMode", []byte{code}))
}

func (s *civControlStruct) setPTT(enable bool) error {
	b := byte(OFF)
	if enable {
		b = ON
	}
	if err := s.sendSetCmd(prepPacket("setPTT", []byte{b})); err != nil {
		return err
	}
	s.state.ptt = enable
	statusLog.reportPTT(enable)
	return nil
}

func (s *civControlStruct) getTransmitStatus() (bool, error) {
	reply, err := s.sendGetCmd(prepPacket("getTransmitStatus", noData))
	if err != nil {
		return false, err
	}
	if len(reply.payload) < 2 || reply.payload[0] != 0x00 {
		return false, fmt.Errorf("%w: transmit status payload [% x]", errMalformedResponse, reply.payload)
	}
	ptt := reply.payload[1] == ON
	s.state.ptt = ptt
	statusLog.reportPTT(ptt)
	return ptt, nil
}
