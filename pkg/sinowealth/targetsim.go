package sinowealth

import (
	"github.com/MadnessASAP/SinoJTAG/pkg/gpio"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/tap"
)

// simPhase mirrors the target-side protocol state.
type simPhase uint8

const (
	simPowerOn simPhase = iota
	simReady
	simJtag
	simIcp
)

// handshakeEdges is the number of TMS rising edges (while TCK is held high)
// the unlock waveform produces: the 165-count window plus the long 25600
// window.
const handshakeEdges = 165 + 25600

// ConfigWrite records one 23-bit CONFIG register update.
type ConfigWrite struct {
	Addr uint8
	Data uint16
}

// TargetSim models a SinoWealth target at pin level, in both wire modes.
// Attach a PHY engine to Pins() and the full stack can be exercised without
// hardware: the sim watches TCK/TMS edges, runs its own copy of the TAP
// state machine, and answers through TDO.
type TargetSim struct {
	pins gpio.Pins
	tck  *gpio.MemPin
	tms  *gpio.MemPin
	tdi  *gpio.MemPin
	tdo  *gpio.MemPin
	vref *gpio.MemPin

	// Behaviour knobs.
	Flash           []byte // 64 KiB image served by CODESCAN and ICP reads
	IDCode          uint16
	EraseOK         bool
	ConfigReadValue uint64

	// Observability for tests.
	Clocks          int // total TCK rising edges
	HandshakeSeen   bool
	ModeLog         []Mode
	ConfigWrites    []ConfigWrite
	DebugOps        []uint8
	Opcodes         []uint8 // injected via HALT, un-reversed
	LastCodescanOut uint32  // last 30-bit DR update, wire bit order
	ByteLog         []uint8 // every byte received in ICP mode

	phase    simPhase
	tmsRises int

	// Mode byte accumulator.
	modeBits int
	modeByte uint8

	// JTAG model.
	tapState   tap.State
	ir         uint8
	irShift    uint8
	dr         uint64
	drBits     int
	tmsHighRun int
	pendingDR  uint32 // next CODESCAN capture, data field pre-encoded

	// ICP model.
	icpBits    int
	icpByte    uint8
	icpResp    bool
	txQueue    []uint8
	readStream bool
	pendingCmd uint8
	haveCmd    bool
	ibOffset   uint16
	eraseCount int
	padSkip    int
}

// NewTargetSim returns a powered target (VREF high) with a blank 64 KiB
// flash and the reference SH79F6484 IDCODE.
func NewTargetSim() *TargetSim {
	s := &TargetSim{
		Flash:           make([]byte, 0x10000),
		IDCode:          0xC14C,
		EraseOK:         true,
		ConfigReadValue: 0x1, // op_complete
	}
	for i := range s.Flash {
		s.Flash[i] = 0xFF
	}

	s.tck = &gpio.MemPin{}
	s.tms = &gpio.MemPin{}
	s.tdi = &gpio.MemPin{}
	s.tdo = &gpio.MemPin{}
	s.vref = &gpio.MemPin{}
	s.vref.Set(true)

	s.tck.OnWrite = func(_, level bool) {
		if level {
			s.clockRise()
		}
	}
	s.tms.OnWrite = func(_, level bool) {
		if level {
			s.tmsRise()
			return
		}
		// Parking TMS low flushes any clock edges the exit sequences left
		// in the mode-byte accumulator.
		if s.phase == simReady {
			s.modeBits = 0
			s.modeByte = 0
		}
	}

	s.pins = gpio.Pins{TCK: s.tck, TMS: s.tms, TDI: s.tdi, TDO: s.tdo, VREF: s.vref}
	return s
}

// Pins returns the wires to hand to a PHY engine.
func (s *TargetSim) Pins() gpio.Pins { return s.pins }

// Phase helpers for assertions.
func (s *TargetSim) InJtag() bool  { return s.phase == simJtag }
func (s *TargetSim) InIcp() bool   { return s.phase == simIcp }
func (s *TargetSim) InReady() bool { return s.phase == simReady }

// TapState reports the simulated hardware TAP state.
func (s *TargetSim) TapState() tap.State { return s.tapState }

// tmsRise handles TMS edges that occur without a clock: the unlock waveform
// (TCK held high) and the ICP exit pulse.
func (s *TargetSim) tmsRise() {
	switch s.phase {
	case simPowerOn:
		if s.tck.Read() {
			s.tmsRises++
			if s.tmsRises >= handshakeEdges {
				s.HandshakeSeen = true
				s.enterReady()
			}
		}

	case simIcp:
		if s.tck.Read() {
			s.enterReady()
		}
	}
}

func (s *TargetSim) enterReady() {
	s.phase = simReady
	s.ModeLog = append(s.ModeLog, ModeReady)
	s.modeBits = 0
	s.modeByte = 0
}

// clockRise is the single synchronisation point: everything the target does
// happens on the rising edge of TCK.
func (s *TargetSim) clockRise() {
	s.Clocks++

	switch s.phase {
	case simReady:
		s.modeByte = s.modeByte<<1 | b2u(s.tdi.Read())
		s.modeBits++
		if s.modeBits == 8 {
			switch Mode(s.modeByte) {
			case ModeJtag:
				s.phase = simJtag
				s.ModeLog = append(s.ModeLog, ModeJtag)
				s.tapState = tap.StateTestLogicReset
				s.ir = InstrIDCode
				s.tmsHighRun = 0
			case ModeIcp:
				s.phase = simIcp
				s.ModeLog = append(s.ModeLog, ModeIcp)
				s.resetIcp()
				s.padSkip = 2 // trailing mode-byte clocks
			default:
				s.enterReady()
			}
		}

	case simJtag:
		s.jtagClock()

	case simIcp:
		s.icpClock()
	}
}

func (s *TargetSim) jtagClock() {
	tms := s.tms.Read()
	tdi := s.tdi.Read()

	if tms {
		s.tmsHighRun++
		if s.tmsHighRun >= jtagExitClocks {
			s.enterReady()
			return
		}
	} else {
		s.tmsHighRun = 0
	}

	pre := s.tapState
	switch pre {
	case tap.StateShiftIR:
		out := s.irShift & 1
		s.tdo.Set(out != 0)
		s.irShift = s.irShift>>1 | b2u(tdi)<<3
	case tap.StateShiftDR:
		s.shiftDR(tdi)
	}

	s.tapState = tap.NextState(pre, tms)
	if s.tapState == pre {
		return
	}

	switch s.tapState {
	case tap.StateTestLogicReset:
		s.ir = InstrIDCode
	case tap.StateCaptureIR:
		s.irShift = 0b01
	case tap.StateUpdateIR:
		s.ir = s.irShift & 0xF
	case tap.StateCaptureDR:
		s.captureDR()
	case tap.StateUpdateDR:
		s.updateDR()
	}
}

func (s *TargetSim) shiftDR(tdi bool) {
	if s.ir == InstrIDCode {
		// The identity register recirculates, so wide reads see the
		// 16-bit value replicated.
		out := s.dr & 1
		s.tdo.Set(out != 0)
		s.dr = s.dr>>1 | out<<15
		return
	}
	s.tdo.Set(s.dr&1 != 0)
	s.dr = s.dr>>1 | uint64(b2u(tdi))<<63
	s.drBits++
}

func (s *TargetSim) captureDR() {
	s.drBits = 0
	switch s.ir {
	case InstrIDCode:
		s.dr = uint64(s.IDCode)
	case InstrCodescan:
		s.dr = uint64(s.pendingDR)
	case InstrConfig:
		s.dr = s.ConfigReadValue
	default:
		s.dr = 0
	}
}

func (s *TargetSim) updateDR() {
	bits := s.drBits
	if bits == 0 || s.ir == InstrIDCode {
		return
	}
	val := s.dr
	if bits < 64 {
		val >>= 64 - uint(bits)
	}

	switch s.ir {
	case InstrCodescan:
		if bits != 30 {
			return
		}
		word := uint32(val)
		s.LastCodescanOut = word
		if (word>>16)&0x3F == codescanCtlRead>>16 {
			addr := phy.Reverse16(uint16(word))
			s.pendingDR = uint32(phy.Reverse8(s.Flash[addr])) << 22
		}
	case InstrConfig:
		if bits == 23 {
			s.ConfigWrites = append(s.ConfigWrites, ConfigWrite{
				Addr: uint8(val>>16) & 0x7F,
				Data: uint16(val),
			})
		}
	case InstrDebug:
		if bits == 4 {
			s.DebugOps = append(s.DebugOps, uint8(val)&0xF)
		}
	case InstrHalt:
		if bits == 8 {
			s.Opcodes = append(s.Opcodes, phy.Reverse8(uint8(val)))
		}
	}
}

func (s *TargetSim) resetIcp() {
	s.icpBits = 0
	s.icpByte = 0
	s.icpResp = false
	s.txQueue = nil
	s.readStream = false
	s.haveCmd = false
	s.eraseCount = 0
	s.tdo.Set(false)
}

func (s *TargetSim) icpClock() {
	if s.padSkip > 0 {
		s.padSkip--
		return
	}

	if s.icpBits == 0 {
		// Decide at the start of the byte slot whether the target drives it.
		if s.readStream && len(s.txQueue) == 0 {
			s.txQueue = append(s.txQueue, s.Flash[s.ibOffset])
			s.ibOffset++
		}
		s.icpResp = len(s.txQueue) > 0
		s.icpByte = 0
	}

	if s.icpResp {
		if s.icpBits < 8 {
			s.tdo.Set(s.txQueue[0]>>uint(s.icpBits)&1 != 0)
		}
		s.icpBits++
		if s.icpBits == 9 {
			s.txQueue = s.txQueue[1:]
			s.icpBits = 0
		}
		return
	}

	if s.icpBits < 8 {
		s.icpByte = s.icpByte<<1 | b2u(s.tdi.Read())
	}
	s.icpBits++
	if s.icpBits == 9 {
		s.icpProcess(s.icpByte)
		s.icpBits = 0
	}
}

// icpProcess consumes one received command-stream byte.
func (s *TargetSim) icpProcess(b uint8) {
	s.ByteLog = append(s.ByteLog, b)

	if s.eraseCount > 0 {
		// Preamble then the trigger byte; status goes out on TDO.
		s.eraseCount--
		if s.eraseCount == 0 {
			s.tdo.Set(s.EraseOK)
		}
		return
	}

	if s.haveCmd {
		switch s.pendingCmd {
		case icpSetIBOffsetL:
			s.ibOffset = s.ibOffset&0xFF00 | uint16(b)
		case icpSetIBOffsetH:
			s.ibOffset = s.ibOffset&0x00FF | uint16(b)<<8
		case icpSetIBData, icpSetXPage, icpPing:
			// Argument consumed; the sim records it in ByteLog only.
		}
		s.haveCmd = false
		return
	}

	switch b {
	case icpSetIBOffsetL, icpSetIBOffsetH, icpSetIBData, icpSetXPage, icpPing:
		s.pendingCmd = b
		s.haveCmd = true
	case icpGetIBOffset:
		s.txQueue = append(s.txQueue, uint8(s.ibOffset), uint8(s.ibOffset>>8))
	case icpReadFlash:
		s.readStream = true
	case icpEraseUnlock:
		// Four preamble bytes plus the trigger zero.
		s.eraseCount = 5
	case icpWriteUnlock:
		// Preamble and data stream are recorded through ByteLog.
	}
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
