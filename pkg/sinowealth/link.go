// Package sinowealth speaks the proprietary protocols of SinoWealth 8051
// microcontrollers over the four JTAG wires: the vendor JTAG debug mode
// (IDCODE, CODESCAN flash reads, CONFIG writes, opcode injection) and the
// byte-serial ICP programming mode, multiplexed through a mode-byte
// handshake after the power-on unlock waveform.
package sinowealth

import (
	"errors"
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
)

// Mode is the wire protocol currently selected on the target. The productive
// mode values double as the mode byte sent on the wire.
type Mode uint8

const (
	ModeReady          Mode = 0x00
	ModeJtag           Mode = 0xA5
	ModeIcp            Mode = 0x69
	ModeNotInitialized Mode = 0xFF
)

func (m Mode) String() string {
	switch m {
	case ModeReady:
		return "Ready"
	case ModeJtag:
		return "Jtag"
	case ModeIcp:
		return "Icp"
	case ModeNotInitialized:
		return "NotInitialized"
	}
	return "Mode(?)"
}

// ErrNotReady reports a productive operation attempted before the handshake.
var ErrNotReady = errors.New("sinowealth: link not initialized")

// Clocks needed to drop out of JTAG mode back to the mode-select state.
const jtagExitClocks = 35

// Link owns the wire-mode variable and serialises every transition through
// the PHY. No other component writes the mode.
type Link struct {
	eng  *phy.Engine
	mode Mode
}

// NewLink wraps a PHY engine. The link starts NotInitialized with the pins
// in whatever state the engine left them.
func NewLink(eng *phy.Engine) *Link {
	return &Link{eng: eng, mode: ModeNotInitialized}
}

// Engine exposes the underlying PHY to the target layers.
func (l *Link) Engine() *phy.Engine { return l.eng }

// Mode reports the current wire mode.
func (l *Link) Mode() Mode { return l.mode }

// Init runs the power-on handshake and leaves the target awaiting a mode
// byte. It is a no-op unless the link is NotInitialized, so the unlock
// waveform is emitted at most once per power-on.
func (l *Link) Init(waitVREF bool) {
	if l.mode != ModeNotInitialized {
		return
	}
	l.eng.Handshake(waitVREF)
	l.mode = ModeReady
}

// Stop returns all pins to Hi-Z. A new handshake is required afterwards.
func (l *Link) Stop() {
	l.eng.Stop()
	l.mode = ModeNotInitialized
}

// SetMode switches the target to the requested wire protocol. Requesting the
// current mode is a no-op, as is any request before Init. Switching between
// productive modes passes through Ready first.
func (l *Link) SetMode(m Mode) Mode {
	if l.mode == m || l.mode == ModeNotInitialized {
		return l.mode
	}
	if l.mode != ModeReady {
		l.Reset()
	}
	if m == ModeReady {
		return l.mode
	}
	l.eng.SendModeByte(byte(m))
	l.mode = m
	return l.mode
}

// Reset drops the target back to Ready. JTAG mode exits after 35 TMS=1
// clocks; ICP exits on a TMS pulse with TCK held high. Ready is held with
// TCK high and TMS low.
func (l *Link) Reset() Mode {
	switch l.mode {
	case ModeJtag:
		for i := 0; i < jtagExitClocks; i++ {
			l.eng.NextState(true)
		}
		l.eng.DriveTCK(true)
		l.eng.DriveTMS(false)
		l.mode = ModeReady

	case ModeIcp:
		l.eng.DriveTCK(true)
		l.eng.DriveTMS(true)
		l.eng.HalfDelay()
		l.eng.DriveTMS(false)
		l.eng.HalfDelay()
		l.mode = ModeReady
	}

	return l.mode
}

// delay routes through the engine's sleep source so tests can observe or
// elide protocol waits.
func (l *Link) delay(d time.Duration) {
	if l.eng.Delay != nil {
		l.eng.Delay(d)
		return
	}
	time.Sleep(d)
}
