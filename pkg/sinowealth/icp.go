package sinowealth

import (
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
)

// ICP command bytes. Bytes go out MSB-first with one trailing clock each;
// responses come back LSB-first.
const (
	icpSetIBOffsetL uint8 = 0x40
	icpSetIBOffsetH uint8 = 0x41
	icpSetIBData    uint8 = 0x42
	icpGetIBOffset  uint8 = 0x43
	icpReadFlash    uint8 = 0x44
	icpPing         uint8 = 0x49
	icpSetXPage     uint8 = 0x4C
	icpWriteUnlock  uint8 = 0x6E
	icpEraseUnlock  uint8 = 0xE6
)

// Fixed unlock sequences shared by write and erase.
var (
	icpPreamble  = [4]uint8{0x15, 0x0A, 0x09, 0x06}
	icpWriteTerm = [4]uint8{0x00, 0xAA, 0x00, 0x00}
)

const (
	icpSettle      = 800 * time.Microsecond
	icpBytePad     = 5 * time.Microsecond
	icpEraseTime   = 300 * time.Millisecond
	icpVerifyAddr  = 0xFF69
	icpVerifyReply = 0x69
)

// ICP drives the byte-serial in-circuit programming protocol. No TAP state
// machine is active in this mode; the wires carry raw command bytes.
type ICP struct {
	link *Link
}

// NewICP builds the ICP layer on a link.
func NewICP(link *Link) *ICP {
	return &ICP{link: link}
}

// Init waits out the target's mode-switch settling time and pings it.
// Precondition: the link is in ICP mode.
func (c *ICP) Init() {
	c.link.delay(icpSettle)
	c.Ping()
}

// SendByte transmits one byte MSB-first followed by the separator clock.
func (c *ICP) SendByte(b uint8) {
	c.link.eng.StreamBits(uint32(phy.Reverse8(b)), 8, false)
	c.link.eng.NextState(false)
}

// ReceiveByte clocks in one byte. The capture is already LSB-first.
func (c *ICP) ReceiveByte() uint8 {
	b := uint8(c.link.eng.StreamBits(0, 8, false))
	c.link.eng.NextState(false)
	return b
}

// Ping pokes the target to confirm the command channel.
func (c *ICP) Ping() {
	c.SendByte(icpPing)
	c.SendByte(0xFF)
}

// Verify checks the command channel end to end: the address register is set
// to a known value and read back through GET_IB_OFFSET.
func (c *ICP) Verify() bool {
	c.SetAddress(icpVerifyAddr)

	c.SendByte(icpGetIBOffset)
	b := c.ReceiveByte()
	c.ReceiveByte() // discard high byte

	return b == icpVerifyReply
}

// SetAddress loads the 16-bit internal-bus offset used by subsequent flash
// operations.
func (c *ICP) SetAddress(addr uint16) {
	c.SendByte(icpSetIBOffsetL)
	c.SendByte(uint8(addr))
	c.SendByte(icpSetIBOffsetH)
	c.SendByte(uint8(addr >> 8))
}

// ReadFlash fills buf from flash starting at addr.
func (c *ICP) ReadFlash(addr uint16, buf []byte) {
	c.SetAddress(addr)
	c.SendByte(icpReadFlash)

	for i := range buf {
		buf[i] = c.ReceiveByte()
	}
}

// WriteFlash programs buf at addr. Empty buffers are rejected without wire
// traffic. Reports whether the sequence was emitted; the target provides no
// per-byte acknowledgement.
func (c *ICP) WriteFlash(addr uint16, buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	c.SetAddress(addr)

	c.SendByte(icpSetIBData)
	c.SendByte(buf[0])

	c.SendByte(icpWriteUnlock)
	for _, b := range icpPreamble {
		c.SendByte(b)
	}

	// Remaining bytes each need a settling pad before the zero filler.
	for _, b := range buf[1:] {
		c.SendByte(b)
		c.link.delay(icpBytePad)
		c.SendByte(0x00)
	}

	for _, b := range icpWriteTerm {
		c.SendByte(b)
	}
	c.link.delay(icpBytePad)

	return true
}

// EraseFlash erases the block containing addr and returns the target's
// status line. The status is a single TDO sample at a fixed point in the
// tail sequence; the target neither retries nor exposes a poll.
func (c *ICP) EraseFlash(addr uint16) bool {
	c.SetAddress(addr)

	c.SendByte(icpSetIBData)
	c.SendByte(0x00)

	c.SendByte(icpEraseUnlock)
	for _, b := range icpPreamble {
		c.SendByte(b)
	}

	c.SendByte(0x00)
	c.link.delay(icpEraseTime)
	c.SendByte(0x00)
	status := c.link.eng.ReadTDO()
	c.SendByte(0x00)

	return status
}
