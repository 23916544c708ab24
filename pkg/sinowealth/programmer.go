package sinowealth

import (
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/tap"
)

// Status is the byte-sized result of operations that can fail on the target
// side. The host interprets it and decides whether to retry.
type Status uint8

const (
	StatusOK           Status = 0
	StatusErrIDCode    Status = 1
	StatusErrFlashWait Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusErrIDCode:
		return "ERR_IDCODE"
	case StatusErrFlashWait:
		return "ERR_FLASH_TIMEOUT"
	}
	return "Status(?)"
}

// Programmer is the flat command surface the external transport exposes.
// Each method is one named operation; none are composite. Operations that
// need a particular wire mode enter it through the link first.
type Programmer struct {
	link   *Link
	target *Target
	icp    *ICP
}

// NewProgrammer assembles the full stack on a PHY engine.
func NewProgrammer(eng *phy.Engine) *Programmer {
	link := NewLink(eng)
	return &Programmer{
		link:   link,
		target: NewTarget(link),
		icp:    NewICP(link),
	}
}

// Link exposes the mode manager.
func (p *Programmer) Link() *Link { return p.link }

// Target exposes the JTAG debug layer.
func (p *Programmer) Target() *Target { return p.target }

// ICP exposes the byte-serial programming layer.
func (p *Programmer) ICP() *ICP { return p.icp }

// PhyInit runs the power-on handshake, blocking until the target is powered.
func (p *Programmer) PhyInit() { p.link.Init(true) }

// PhyReset drives the link back to Ready. True iff now Ready.
func (p *Programmer) PhyReset() bool { return p.link.Reset() == ModeReady }

// PhyStop releases all pins to Hi-Z.
func (p *Programmer) PhyStop() { p.link.Stop() }

// TapInit enters JTAG mode and runs the debug-unlock sequence.
func (p *Programmer) TapInit() Status {
	switch err := p.target.Init(); err {
	case nil:
		return StatusOK
	default:
		return StatusErrIDCode
	}
}

// TapState reports the tracked TAP state, 0-15.
func (p *Programmer) TapState() uint8 { return uint8(p.target.Tap().State()) }

// TapReset emits five TMS=1 clocks.
func (p *Programmer) TapReset() {
	p.enterJtag()
	p.target.Tap().Reset()
}

// TapGotoState navigates to the target state along the shortest path.
func (p *Programmer) TapGotoState(state uint8) {
	p.enterJtag()
	p.target.Tap().GotoState(tap.State(state))
}

// TapIR shifts the instruction register.
func (p *Programmer) TapIR(out uint8) uint8 {
	p.enterJtag()
	return p.target.Tap().IRScan(out)
}

// TapDR shifts a data register of the given width.
func (p *Programmer) TapDR(out uint32, bits uint8) uint32 {
	p.enterJtag()
	return uint32(p.target.Tap().DRScan(uint64(out), int(bits)))
}

// TapBypass selects BYPASS.
func (p *Programmer) TapBypass() {
	p.enterJtag()
	p.target.Tap().Bypass()
}

// TapIDCode runs a full 32-bit IDCODE scan. The 16-bit vendor ID comes back
// replicated to fill the width.
func (p *Programmer) TapIDCode() uint32 {
	p.enterJtag()
	return p.target.Tap().IDCode()
}

// TapIdleClocks emits clocks with TMS low.
func (p *Programmer) TapIdleClocks(n uint8) {
	p.enterJtag()
	p.target.Tap().IdleClocks(int(n))
}

// TapCodescanRead reads a single flash byte through CODESCAN. Subject to the
// register's one-scan lag; bulk reads should go through ICP or a FlashReader.
func (p *Programmer) TapCodescanRead(addr uint16) uint8 {
	p.enterJtag()
	return p.target.CodescanRead(addr)
}

// IcpInit enters ICP mode and pings the target.
func (p *Programmer) IcpInit() {
	p.enterIcp()
}

// IcpVerify round-trips the address register.
func (p *Programmer) IcpVerify() bool {
	p.enterIcp()
	return p.icp.Verify()
}

// IcpRead reads n flash bytes at addr, then parks the link in Ready so the
// host can interleave JTAG operations.
func (p *Programmer) IcpRead(addr uint16, n int) []byte {
	p.enterIcp()
	buf := make([]byte, n)
	p.icp.ReadFlash(addr, buf)
	p.link.Reset()
	return buf
}

// IcpErase erases the flash block containing addr.
func (p *Programmer) IcpErase(addr uint16) bool {
	p.enterIcp()
	return p.icp.EraseFlash(addr)
}

// IcpWrite programs data at addr.
func (p *Programmer) IcpWrite(addr uint16, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	p.enterIcp()
	return p.icp.WriteFlash(addr, data)
}

func (p *Programmer) enterJtag() {
	_ = p.target.EnterMode()
}

func (p *Programmer) enterIcp() {
	if p.link.Mode() != ModeIcp {
		p.link.SetMode(ModeIcp)
		p.icp.Init()
	}
}
