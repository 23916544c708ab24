package command

import (
	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

// Surface is the programmer's operation set as seen through a transport.
// A Local surface never fails; a remote Client surfaces transport errors.
type Surface interface {
	PhyInit() error
	PhyReset() (bool, error)
	PhyStop() error

	TapInit() (sinowealth.Status, error)
	TapState() (uint8, error)
	TapReset() error
	TapGotoState(state uint8) error
	TapIR(out uint8) (uint8, error)
	TapDR(out uint32, bits uint8) (uint32, error)
	TapBypass() error
	TapIDCode() (uint32, error)
	TapIdleClocks(n uint8) error
	TapCodescanRead(addr uint16) (uint8, error)

	IcpInit() error
	IcpVerify() (bool, error)
	IcpRead(addr, size uint16) ([]byte, error)
	IcpErase(addr uint16) (bool, error)
	IcpWrite(addr uint16, data []byte) (bool, error)
}

// Local adapts a Programmer driving pins in this process to the Surface
// shape. All errors are nil; failures surface through the result values,
// exactly as they do on the wire.
type Local struct {
	P *sinowealth.Programmer
}

func (l Local) PhyInit() error          { l.P.PhyInit(); return nil }
func (l Local) PhyReset() (bool, error) { return l.P.PhyReset(), nil }
func (l Local) PhyStop() error          { l.P.PhyStop(); return nil }

func (l Local) TapInit() (sinowealth.Status, error) { return l.P.TapInit(), nil }
func (l Local) TapState() (uint8, error)            { return l.P.TapState(), nil }
func (l Local) TapReset() error                     { l.P.TapReset(); return nil }
func (l Local) TapGotoState(state uint8) error      { l.P.TapGotoState(state); return nil }
func (l Local) TapIR(out uint8) (uint8, error)      { return l.P.TapIR(out), nil }

func (l Local) TapDR(out uint32, bits uint8) (uint32, error) {
	return l.P.TapDR(out, bits), nil
}

func (l Local) TapBypass() error            { l.P.TapBypass(); return nil }
func (l Local) TapIDCode() (uint32, error)  { return l.P.TapIDCode(), nil }
func (l Local) TapIdleClocks(n uint8) error { l.P.TapIdleClocks(n); return nil }

func (l Local) TapCodescanRead(addr uint16) (uint8, error) {
	return l.P.TapCodescanRead(addr), nil
}

func (l Local) IcpInit() error           { l.P.IcpInit(); return nil }
func (l Local) IcpVerify() (bool, error) { return l.P.IcpVerify(), nil }

func (l Local) IcpRead(addr, size uint16) ([]byte, error) {
	return l.P.IcpRead(addr, int(size)), nil
}

func (l Local) IcpErase(addr uint16) (bool, error) { return l.P.IcpErase(addr), nil }

func (l Local) IcpWrite(addr uint16, data []byte) (bool, error) {
	return l.P.IcpWrite(addr, data), nil
}
