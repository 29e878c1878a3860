package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Commands reference: IC-7100 Full Manual, section 21 (CI-V command table)
const OK = 0xfb
const NG = 0xfa
const ON = 1
const OFF = 0

// minimum valid frame is six bytes long: 2 start-of-packet, to, from, cmd, end-of-packet
const minFrameLength = 6

// an accumulating read that passes this length without seeing the end-of-packet
// byte is not a CI-V frame anymore
const maxFrameLength = 64

var (
	errTransportUnavailable = errors.New("transport unavailable")
	errEchoMismatch         = errors.New("echo mismatch")
	errRejected             = errors.New("command rejected by radio")
	errMalformedResponse    = errors.New("malformed response")
	errUnsupportedValue     = errors.New("unsupported value")
	errTimeout              = errors.New("read timeout")
)

type civOperatingMode struct {
	name string
	code byte
}

var civOperatingModes = []civOperatingMode{
	{name: "LSB", code: 0x00},
	{name: "USB", code: 0x01},
	{name: "AM", code: 0x02},
	{name: "CW", code: 0x03},
	{name: "RTTY", code: 0x04},
	{name: "FM", code: 0x05},
	{name: "WFM", code: 0x06},
	{name: "CW-R", code: 0x07},
	{name: "RTTY-R", code: 0x08},
	{name: "DV", code: 0x17},
}

type civFilter struct {
	name string
	code byte
}

var civFilters = []civFilter{
	{name: "FIL1", code: 0x01},
	{name: "FIL2", code: 0x02},
	{name: "FIL3", code: 0x03},
}

type civMemBank struct {
	name string
	code byte
}

var civMemBanks = []civMemBank{
	{name: "A", code: 0x01},
	{name: "B", code: 0x02},
	{name: "C", code: 0x03},
	{name: "D", code: 0x04},
	{name: "E", code: 0x05},
}

// channels with letter suffixes and the scan edge channels need a two byte code
type civMemChannel struct {
	name string
	code []byte
}

var civMemChannels = []civMemChannel{
	{name: "1A", code: []byte{0x01, 0x00}},
	{name: "1B", code: []byte{0x01, 0x01}},
	{name: "2A", code: []byte{0x01, 0x02}},
	{name: "2B", code: []byte{0x01, 0x03}},
	{name: "3A", code: []byte{0x01, 0x04}},
	{name: "3B", code: []byte{0x01, 0x05}},
	{name: "144-C1", code: []byte{0x01, 0x06}},
	{name: "144-C2", code: []byte{0x01, 0x07}},
	{name: "430-C1", code: []byte{0x01, 0x08}},
	{name: "430-C2", code: []byte{0x01, 0x09}},
}

// extra 0xfe lead-in bytes prepended to the power on frame so the radio's
// auto baud detection can lock before the real preamble arrives. Counts are
// fixed by the hardware documentation per baud rate, there is no formula.
var civWakeLeadIns = map[int]int{
	19200: 25,
	9600:  13,
	4800:  17,
	1200:  3,
	300:   2,
}

type CIVCmdSet struct {
	cmdSeq []byte
}

type CIVCmds map[string]CIVCmdSet

var CIV = CIVCmds{
	// 0x00 // send frequency data via transceive (doubles as frequency set)
	"setFreq": CIVCmdSet{cmdSeq: []byte{0x00}},
	// 0x01 // send mode data via transceive
	// 0x02 // read band edge frequencies
	// 0x03 // read operating frequency
	"getFreq": CIVCmdSet{cmdSeq: []byte{0x03}},
	// 0x04 // read operating mode
	"getMode": CIVCmdSet{cmdSeq: []byte{0x04}},
	// 0x05 // set operating frequency
	// 0x06 // set operating mode
	"setMode": CIVCmdSet{cmdSeq: []byte{0x06}},
	// 0x07 // select VFO mode, subcmd 0x00|0x01 picks VFO A|B
	"setVFO": CIVCmdSet{cmdSeq: []byte{0x07}},
	// 0x08 // select memory mode; 0xa0 subcmd selects the memory bank
	"selectMemory":     CIVCmdSet{cmdSeq: []byte{0x08}},
	"selectMemBank":    CIVCmdSet{cmdSeq: []byte{0x08, 0xa0}},
	"selectMemChannel": CIVCmdSet{cmdSeq: []byte{0x08}},
	// 0x09 // memory write
	// 0x0a // memory to VFO
	// 0x0b // memory clear
	// 0x0e // scanning related actions
	// 0x0f // split & duplex
	// 0x10 // tuning step
	// 0x14 // levels - AF, RF gain, squelch, NR, RF power
	// 0x15 // meters - S, SWR, ALC, supply voltage
	// 0x16 // misc - preamp, AGC, NB, NR, tone squelches
	// 0x17 // send CW messages (up to 30 chars)
	// 0x18 // power off|on, subcmd 0x00|0x01 (on needs the wake lead-in)
	"powerOn":  CIVCmdSet{cmdSeq: []byte{0x18, 0x01}},
	"powerOff": CIVCmdSet{cmdSeq: []byte{0x18, 0x00}},
	// 0x19 // read transceiver ID
	// 0x1a // a lot of misc settings (memory contents, filter width, data mode)
	// 0x1b // repeater tone|tsql|dtcs settings
	// 0x1c // PTT and antenna tuner on|off
	"setPTT":            CIVCmdSet{cmdSeq: []byte{0x1c, 0x00}},
	"getTransmitStatus": CIVCmdSet{cmdSeq: []byte{0x1c, 0x00}},
	// nothing above 0x1c is used by this tool
}

var noData = []byte{}

func prepPacket(command string, data []byte) (pkt []byte) {
	pkt = append([]byte{0xfe, 0xfe}, []byte{civAddress, controllerAddress}...)
	pkt = append(pkt, CIV[command].cmdSeq...)
	pkt = append(pkt, data...)
	pkt = append(pkt, []byte{0xfd}...)
	if debugPackets {
		debugPacket(command, pkt)
	}
	return
}

// the power on frame with the baud dependent lead-in run prepended
func prepWakePacket(baud int) ([]byte, error) {
	repeats, ok := civWakeLeadIns[baud]
	if !ok {
		return nil, fmt.Errorf("%w: no wake lead-in count for %d baud", errUnsupportedValue, baud)
	}
	pkt := make([]byte, repeats)
	for i := range pkt {
		pkt[i] = 0xfe
	}
	return append(pkt, prepPacket("powerOn", noData)...), nil
}

type civReplyKind int

const (
	replyOK civReplyKind = iota
	replyNG
	replyData
)

type civReply struct {
	kind    civReplyKind
	raw     []byte
	payload []byte
}

// a six byte reply is a status report, byte 4 carries the verdict. Anything
// longer is a data reply whose payload sits between the command byte and the
// end-of-packet byte.
func classifyReply(d []byte) (*civReply, error) {
	if len(d) < minFrameLength || d[0] != 0xfe || d[1] != 0xfe || d[len(d)-1] != 0xfd {
		return nil, fmt.Errorf("%w: [% x]", errMalformedResponse, d)
	}
	if len(d) == minFrameLength {
		switch d[4] {
		case OK:
			return &civReply{kind: replyOK, raw: d}, nil
		case NG:
			return &civReply{kind: replyNG, raw: d}, nil
		default:
			return nil, fmt.Errorf("%w: status byte 0x%02x in [% x]", errMalformedResponse, d[4], d)
		}
	}
	return &civReply{kind: replyData, raw: d, payload: d[5 : len(d)-1]}, nil
}

func modeCodeForName(name string) (byte, error) {
	for i := range civOperatingModes {
		if strings.EqualFold(civOperatingModes[i].name, name) {
			return civOperatingModes[i].code, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", errUnsupportedValue, name)
}

func modeNameForCode(code byte) (string, error) {
	for i := range civOperatingModes {
		if civOperatingModes[i].code == code {
			return civOperatingModes[i].name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode code 0x%02x", errMalformedResponse, code)
}

func filterNameForCode(code byte) (string, error) {
	for i := range civFilters {
		if civFilters[i].code == code {
			return civFilters[i].name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown filter code 0x%02x", errMalformedResponse, code)
}

func memBankCodeForName(name string) (byte, error) {
	for i := range civMemBanks {
		if strings.EqualFold(civMemBanks[i].name, name) {
			return civMemBanks[i].code, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown memory bank %q", errUnsupportedValue, name)
}

// Channel names resolve through the fixed table. Plain numbers 0-99 pack
// their decimal digits as nibbles, so channel 12 goes on the wire as 0x12.
// That mapping matches what the radio expects and is kept as is.
func memChannelBytes(ch string) ([]byte, error) {
	for i := range civMemChannels {
		if strings.EqualFold(civMemChannels[i].name, ch) {
			return civMemChannels[i].code, nil
		}
	}
	n, err := strconv.Atoi(ch)
	if err != nil || n < 0 || n > 99 {
		return nil, fmt.Errorf("%w: unknown memory channel %q", errUnsupportedValue, ch)
	}
	return []byte{byte(n/10)<<4 | byte(n%10)}, nil
}

func debugPacket(command string, pkt []byte) {
	if len(pkt) < minFrameLength {
		log.Print(fmt.Sprintf("'%v' [% x]  (short frame)", command, pkt))
		return
	}

	deviceStr := func(addr byte) string {
		switch addr {
		case civAddress:
			return "[RADIO]"
		case controllerAddress:
			return "[CONTROLLER]"
		}
		return fmt.Sprintf("[UNKNOWN DEVICE: %02x]", addr)
	}

	msg := fmt.Sprintf("'%v' [% x]  to %v <= from %v cmd: [%02x]  payload [% x]",
		command, pkt, deviceStr(pkt[2]), deviceStr(pkt[3]), pkt[4], pkt[5:len(pkt)-1])
	log.Print(msg)
}
