package command

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

// Client drives a remote programmer over a byte stream (typically a serial
// port). It implements Surface.
type Client struct {
	rw io.ReadWriter
}

// NewClient wraps an open transport.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

// roundTrip writes a request and reads the echo byte plus a fixed payload.
func (c *Client) roundTrip(req []byte, payload int) ([]byte, error) {
	if _, err := c.rw.Write(req); err != nil {
		return nil, fmt.Errorf("command: write: %w", err)
	}
	resp := make([]byte, 1+payload)
	if _, err := io.ReadFull(c.rw, resp); err != nil {
		return nil, fmt.Errorf("command: read: %w", err)
	}
	return resp, nil
}

func (c *Client) PhyInit() error {
	resp, err := c.roundTrip(EncodePhyInit(), 0)
	if err != nil {
		return err
	}
	return DecodePhyInit(resp)
}

func (c *Client) PhyReset() (bool, error) {
	resp, err := c.roundTrip(EncodePhyReset(), 1)
	if err != nil {
		return false, err
	}
	return DecodePhyReset(resp)
}

func (c *Client) PhyStop() error {
	resp, err := c.roundTrip(EncodePhyStop(), 0)
	if err != nil {
		return err
	}
	return DecodePhyStop(resp)
}

func (c *Client) TapInit() (sinowealth.Status, error) {
	resp, err := c.roundTrip(EncodeTapInit(), 1)
	if err != nil {
		return 0, err
	}
	return DecodeTapInit(resp)
}

func (c *Client) TapState() (uint8, error) {
	resp, err := c.roundTrip(EncodeTapState(), 1)
	if err != nil {
		return 0, err
	}
	return DecodeTapState(resp)
}

func (c *Client) TapReset() error {
	resp, err := c.roundTrip(EncodeTapReset(), 0)
	if err != nil {
		return err
	}
	return DecodeTapReset(resp)
}

func (c *Client) TapGotoState(state uint8) error {
	resp, err := c.roundTrip(EncodeTapGotoState(state), 0)
	if err != nil {
		return err
	}
	return DecodeTapGotoState(resp)
}

func (c *Client) TapIR(out uint8) (uint8, error) {
	resp, err := c.roundTrip(EncodeTapIR(out), 1)
	if err != nil {
		return 0, err
	}
	return DecodeTapIR(resp)
}

func (c *Client) TapDR(out uint32, bits uint8) (uint32, error) {
	if !ValidDRWidth(bits) {
		return 0, fmt.Errorf("command: unsupported DR width %d", bits)
	}
	resp, err := c.roundTrip(EncodeTapDR(out, bits), 4)
	if err != nil {
		return 0, err
	}
	return DecodeTapDR(resp)
}

func (c *Client) TapBypass() error {
	resp, err := c.roundTrip(EncodeTapBypass(), 0)
	if err != nil {
		return err
	}
	return DecodeTapBypass(resp)
}

func (c *Client) TapIDCode() (uint32, error) {
	resp, err := c.roundTrip(EncodeTapIDCode(), 4)
	if err != nil {
		return 0, err
	}
	return DecodeTapIDCode(resp)
}

func (c *Client) TapIdleClocks(n uint8) error {
	resp, err := c.roundTrip(EncodeTapIdleClocks(n), 0)
	if err != nil {
		return err
	}
	return DecodeTapIdleClocks(resp)
}

func (c *Client) TapCodescanRead(addr uint16) (uint8, error) {
	resp, err := c.roundTrip(EncodeTapCodescanRead(addr), 1)
	if err != nil {
		return 0, err
	}
	return DecodeTapCodescanRead(resp)
}

func (c *Client) IcpInit() error {
	resp, err := c.roundTrip(EncodeIcpInit(), 0)
	if err != nil {
		return err
	}
	return DecodeIcpInit(resp)
}

func (c *Client) IcpVerify() (bool, error) {
	resp, err := c.roundTrip(EncodeIcpVerify(), 1)
	if err != nil {
		return false, err
	}
	return DecodeIcpVerify(resp)
}

func (c *Client) IcpRead(addr, size uint16) ([]byte, error) {
	// Variable-length response: echo, length, then the flash bytes.
	head, err := c.roundTrip(EncodeIcpRead(addr, size), 2)
	if err != nil {
		return nil, err
	}
	if head[0] != CmdIcpRead {
		return nil, fmt.Errorf("%w: command echo 0x%02X, want 0x%02X", ErrBadFrame, head[0], CmdIcpRead)
	}
	n := int(binary.LittleEndian.Uint16(head[1:3]))
	data := make([]byte, n)
	if _, err := io.ReadFull(c.rw, data); err != nil {
		return nil, fmt.Errorf("command: read: %w", err)
	}
	return data, nil
}

func (c *Client) IcpErase(addr uint16) (bool, error) {
	resp, err := c.roundTrip(EncodeIcpErase(addr), 1)
	if err != nil {
		return false, err
	}
	return DecodeIcpErase(resp)
}

func (c *Client) IcpWrite(addr uint16, data []byte) (bool, error) {
	resp, err := c.roundTrip(EncodeIcpWrite(addr, data), 1)
	if err != nil {
		return false, err
	}
	return DecodeIcpWrite(resp)
}
