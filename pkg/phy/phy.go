// Package phy bit-bangs the four-wire interface. It owns pin directions and
// idle levels and provides the primitives the TAP controller and the ICP
// layer stream bits through, plus the vendor handshake that unlocks the
// target's debug interface after power-on.
package phy

import (
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/gpio"
)

// Timing fixes the waveform periods. The handshake durations are properties
// of the target, not of the host clock, and must not be scaled.
type Timing struct {
	// HalfPeriod is half of one TCK cycle. 1µs yields a 250-500kHz TCK.
	HalfPeriod time.Duration
}

// DefaultTiming matches the reference programmer.
var DefaultTiming = Timing{HalfPeriod: 1 * time.Microsecond}

// Handshake waveform constants. The toggle counts are not adjustable; the
// sequence was captured from the vendor's programmer and the order is
// load-bearing.
const (
	handshakeHold    = 500 * time.Microsecond
	handshakeTCKLow  = 1 * time.Microsecond
	handshakeSettle  = 50 * time.Microsecond
	handshakeToggle  = 2 * time.Microsecond
	handshakeTail    = 8 * time.Microsecond
	handshakeTMS1    = 165
	handshakeTDI     = 105
	handshakeTCK     = 90
	handshakeTMS2    = 25600
	vrefPollInterval = 200 * time.Microsecond
)

// Engine drives the wires. It is the only writer of the four pins; all
// higher layers stream bits through it.
type Engine struct {
	Pins   gpio.Pins
	Timing Timing

	// Delay is the sleep source. Nil means time.Sleep; tests inject a no-op
	// or a recorder.
	Delay func(time.Duration)
}

// New returns an engine on the given pins with default timing.
func New(pins gpio.Pins) *Engine {
	return &Engine{Pins: pins, Timing: DefaultTiming}
}

func (e *Engine) delay(d time.Duration) {
	if e.Delay != nil {
		e.Delay(d)
		return
	}
	time.Sleep(d)
}

// HalfDelay waits one half TCK period.
func (e *Engine) HalfDelay() { e.delay(e.Timing.HalfPeriod) }

func (e *Engine) tck(level bool) { e.Pins.TCK.Write(level) }
func (e *Engine) tms(level bool) { e.Pins.TMS.Write(level) }
func (e *Engine) tdi(level bool) { e.Pins.TDI.Write(level) }

// DriveTCK sets the clock line directly. Used by the mode manager when
// parking the wires between modes.
func (e *Engine) DriveTCK(level bool) { e.tck(level) }

// DriveTMS sets the mode-select line directly.
func (e *Engine) DriveTMS(level bool) { e.tms(level) }

// ReadTDO samples the data-out line.
func (e *Engine) ReadTDO() bool { return e.Pins.TDO.Read() }

// Handshake emits the power-on unlock waveform. All five pins are first
// placed in input/no-pull state; when waitVREF is set the engine blocks until
// the target is powered, toggling the attention LED every 256 polls. The
// caller owns the once-per-power-on guarantee.
func (e *Engine) Handshake(waitVREF bool) {
	e.earlySetup()

	if waitVREF {
		e.waitVREF()
	}

	// Outputs on: TCK low, TMS high, TDI low, then everything high.
	e.Pins.TCK.Output()
	e.Pins.TMS.Output()
	e.Pins.TDI.Output()
	e.tck(false)
	e.tms(true)
	e.tdi(false)
	e.tck(true)
	e.tdi(true)
	e.tms(true)

	e.delay(handshakeHold)
	e.tck(false)
	e.delay(handshakeTCKLow)
	e.tck(true)
	e.delay(handshakeSettle)

	e.toggle(e.Pins.TMS, handshakeTMS1)
	e.toggle(e.Pins.TDI, handshakeTDI)
	e.toggle(e.Pins.TCK, handshakeTCK)
	e.toggle(e.Pins.TMS, handshakeTMS2)

	e.delay(handshakeTail)
	e.tms(false)
}

func (e *Engine) earlySetup() {
	for _, p := range []gpio.Pin{e.Pins.VREF, e.Pins.TCK, e.Pins.TMS, e.Pins.TDI, e.Pins.TDO} {
		p.Input()
	}
}

func (e *Engine) waitVREF() {
	if e.Pins.LED != nil {
		e.Pins.LED.Output()
	}
	var count uint8
	led := false
	for !e.Pins.VREF.Read() {
		count++
		if count == 0 && e.Pins.LED != nil {
			led = !led
			e.Pins.LED.Write(led)
		}
		e.delay(vrefPollInterval)
	}
	if e.Pins.LED != nil {
		e.Pins.LED.Write(false)
	}
}

func (e *Engine) toggle(p gpio.Pin, n int) {
	for i := 0; i < n; i++ {
		p.Write(false)
		e.delay(handshakeToggle)
		p.Write(true)
		e.delay(handshakeToggle)
	}
}

// Stop returns every pin to input/Hi-Z.
func (e *Engine) Stop() {
	for _, p := range []gpio.Pin{e.Pins.TCK, e.Pins.TMS, e.Pins.TDI, e.Pins.TDO, e.Pins.VREF} {
		p.Input()
	}
}

// NextState drives TMS and pulses TCK once.
func (e *Engine) NextState(tms bool) {
	e.tms(tms)
	e.tck(false)
	e.HalfDelay()
	e.tck(true)
	e.HalfDelay()
	e.tck(false)
}

// StreamBits shifts up to 32 bits LSB-first. TMS is asserted on the final bit
// when exit is set, so a shift state falls through to its Exit1 state. TDO is
// sampled between the rising and falling TCK edges of each bit.
func (e *Engine) StreamBits(out uint32, bits uint8, exit bool) uint32 {
	var capture uint32
	for i := uint8(0); i < bits; i++ {
		last := i+1 == bits
		e.tms(exit && last)
		e.tdi(out&1 != 0)

		e.tck(false)
		e.HalfDelay()
		e.tck(true)
		e.HalfDelay()

		if e.Pins.TDO.Read() {
			capture |= 1 << i
		}

		e.tck(false)
		out >>= 1
	}
	return capture
}

// SendModeByte streams a mode selector. The byte is bit-reversed so the
// nominal constant goes out MSB-first, followed by two TMS=0 clocks.
func (e *Engine) SendModeByte(b byte) {
	e.StreamBits(uint32(Reverse8(b)), 8, false)
	e.NextState(false)
	e.NextState(false)
}

// Reverse8 flips the bit order of a byte. Fields the target defines MSB-first
// are reversed before the LSB-first shift.
func Reverse8(v byte) byte {
	v = v>>4 | v<<4
	v = (v>>2)&0x33 | (v<<2)&0xCC
	v = (v>>1)&0x55 | (v<<1)&0xAA
	return v
}

// Reverse16 flips the bit order of a 16-bit word.
func Reverse16(v uint16) uint16 {
	v = v>>8 | v<<8
	v = (v>>4)&0x0F0F | (v<<4)&0xF0F0
	v = (v>>2)&0x3333 | (v<<2)&0xCCCC
	v = (v>>1)&0x5555 | (v<<1)&0xAAAA
	return v
}
