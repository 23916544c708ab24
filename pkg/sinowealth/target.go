package sinowealth

import (
	"errors"
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/tap"
)

// Instruction register codes recognised by the target (IR width 4). Any
// other value selects BYPASS.
const (
	InstrCodescan uint8 = 0x00
	InstrDebug    uint8 = 0x02
	InstrConfig   uint8 = 0x03
	InstrRun      uint8 = 0x04
	InstrHalt     uint8 = 0x0C
	InstrIDCode   uint8 = 0x0E
)

// DEBUG register values (4-bit DR).
const (
	DebugHalt   uint8 = 0x01
	DebugEnable uint8 = 0x04
)

// CONFIG register addresses and values used during debug unlock.
const (
	cfgDebugCtrl    uint8  = 0x40
	cfgSubsysEnable uint16 = 0x3000
	cfgDbgenFull    uint16 = 0x2000
	cfgClear        uint16 = 0x0000
)

// SFRs cleared during init, addressed at sfrClear[i]+0x80 on the target:
// P2CR, PWMLO, P2PCR, P0OS, IB_CON2, XPAGE, IB_OFFSET, debug control.
var sfrClear = [...]uint8{0x63, 0x67, 0x6B, 0x6F, 0x73, 0x77, 0x7B, 0x7F}

// haltGateOpcodes is MOV 0xFF, #0x80, injected while halted to set bit 7 of
// SFR 0xFF and gate the flash debug interface on.
var haltGateOpcodes = [...]uint8{0x75, 0xFF, 0x80}

// CODESCAN 30-bit DR: [15:0] address, [21:16] control, [29:22] data. All
// three fields are MSB-first on the target, so they are bit-reversed around
// the LSB-first shift. Only the READ control value is documented.
const codescanCtlRead uint32 = 0b001000 << 16

// ErrIDCode reports a dead or locked target: IDCODE read back all-zeros or
// all-ones after the unlock sequence.
var ErrIDCode = errors.New("sinowealth: bad IDCODE")

const subsysSettle = 50 * time.Microsecond

// Target drives the vendor JTAG debug mode. It owns a TAP controller over
// the link's PHY; the link still owns the wire mode.
type Target struct {
	link *Link
	tap  *tap.Controller
}

// NewTarget builds the JTAG debug layer on a link.
func NewTarget(link *Link) *Target {
	return &Target{
		link: link,
		tap:  tap.NewController(link.Engine()),
	}
}

// Tap exposes the TAP controller for raw IR/DR access.
func (t *Target) Tap() *tap.Controller { return t.tap }

// EnterMode switches the link into JTAG mode if needed. The mode handshake
// leaves the hardware TAP in Test-Logic-Reset, so the tracking controller is
// restarted only when a transition actually happens.
func (t *Target) EnterMode() error {
	switch t.link.Mode() {
	case ModeNotInitialized:
		return ErrNotReady
	case ModeJtag:
		return nil
	}
	t.link.SetMode(ModeJtag)
	t.tap = tap.NewController(t.link.Engine())
	return nil
}

// Init enters JTAG mode and performs the debug-unlock sequence: enable the
// debug subsystem, clear the SFRs that would disturb programming, halt the
// core, inject the flash-gate opcodes, and verify the target answers with a
// plausible IDCODE. The TAP tracking is restarted because the mode handshake
// leaves the hardware TAP in Test-Logic-Reset.
func (t *Target) Init() error {
	if err := t.EnterMode(); err != nil {
		return err
	}

	t.tap.GotoState(tap.StateRunTestIdle)
	t.tap.IdleClocks(2)

	t.tap.IRScan(InstrDebug)
	t.tap.DRScan(uint64(DebugEnable), 4)
	t.tap.IdleClocks(1)

	t.tap.IRScan(InstrConfig)
	t.ConfigWrite(cfgDebugCtrl, cfgSubsysEnable)
	t.tap.IdleClocks(1)
	t.link.delay(subsysSettle)
	t.ConfigWrite(cfgDebugCtrl, cfgDbgenFull)
	t.tap.IdleClocks(1)
	t.ConfigWrite(cfgDebugCtrl, cfgClear)
	t.tap.IdleClocks(1)

	for _, addr := range sfrClear {
		t.ConfigWrite(addr, cfgClear)
		t.tap.IdleClocks(1)
	}

	t.tap.IRScan(InstrDebug)
	t.tap.DRScan(uint64(DebugHalt), 4)
	t.tap.IdleClocks(1)

	t.tap.IRScan(InstrHalt)
	for _, op := range haltGateOpcodes {
		t.tap.DRScan(uint64(phy.Reverse8(op)), 8)
	}

	id := t.ReadIDCode()
	if id == 0x0000 || id == 0xFFFF {
		return ErrIDCode
	}
	return nil
}

// ConfigWrite shifts a 23-bit CONFIG word: data in [15:0], address in
// [22:16]. The current IR must already select CONFIG.
func (t *Target) ConfigWrite(addr uint8, data uint16) {
	t.tap.DRScan(uint64(addr)<<16|uint64(data), 23)
}

// ConfigStatus is the decoded 64-bit CONFIG readback.
type ConfigStatus struct {
	OpComplete bool
	WaitExtend bool
	Datum      uint8
	Payload    [6]byte
}

// ConfigRead shifts the 64-bit CONFIG readback register and decodes its
// irregular layout: bits {1:0, 11:10} form the status nibble, [9:2] the read
// datum, [63:16] six payload bytes low-index first.
func (t *Target) ConfigRead() ConfigStatus {
	raw := t.tap.DRScan(0, 64)

	nibble := uint8(raw&0x3) | uint8((raw>>10)&0x3)<<2
	st := ConfigStatus{
		OpComplete: nibble&0x1 != 0,
		WaitExtend: nibble&0x8 != 0,
		Datum:      uint8((raw >> 2) & 0xFF),
	}
	for i := range st.Payload {
		st.Payload[i] = byte(raw >> (16 + 8*i))
	}
	return st
}

// ReadIDCode reads the vendor 16-bit identity register.
func (t *Target) ReadIDCode() uint16 {
	t.tap.IRScan(InstrIDCode)
	return uint16(t.tap.DRScan(0, 16))
}

// CodescanRead selects CODESCAN and performs a single scan at addr. The
// returned byte corresponds to the address requested by the previous scan:
// data lags the address by one, so the first byte after selecting the
// register is garbage. Use a FlashReader for sequential reads.
func (t *Target) CodescanRead(addr uint16) uint8 {
	t.tap.IRScan(InstrCodescan)
	return t.codescan(addr)
}

// codescan shifts one 30-bit CODESCAN word and returns the data field. The
// two idle clocks are required; without them reads start returning garbage
// after a few words.
func (t *Target) codescan(addr uint16) uint8 {
	out := uint32(phy.Reverse16(addr)) | codescanCtlRead
	in := uint32(t.tap.DRScan(uint64(out), 30))
	t.tap.IdleClocks(2)
	return phy.Reverse8(uint8(in >> 22))
}
