// Package command frames the programmer's operation surface for an external
// transport. Requests are a command byte followed by fixed-size little-endian
// arguments (icp_write then appends its length-counted data bytes); responses
// echo the command byte followed by the result. The
// surface is flat: no command is composite.
package command

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

// Command IDs.
const (
	CmdPhyInit         = 0x01
	CmdPhyReset        = 0x02
	CmdPhyStop         = 0x03
	CmdTapInit         = 0x04
	CmdTapState        = 0x05
	CmdTapReset        = 0x06
	CmdTapGotoState    = 0x07
	CmdTapIR           = 0x08
	CmdTapDR           = 0x09
	CmdTapBypass       = 0x0A
	CmdTapIDCode       = 0x0B
	CmdTapIdleClocks   = 0x0C
	CmdTapCodescanRead = 0x0D
	CmdIcpInit         = 0x0E
	CmdIcpVerify       = 0x0F
	CmdIcpRead         = 0x10
	CmdIcpErase        = 0x11
	CmdIcpWrite        = 0x12
)

// DR widths accepted by CmdTapDR.
var drWidths = [...]uint8{4, 8, 16, 23, 30, 32}

// ErrBadFrame reports a response that does not parse.
var ErrBadFrame = errors.New("command: bad frame")

// ValidDRWidth reports whether bits is one of the supported scan widths.
func ValidDRWidth(bits uint8) bool {
	for _, w := range drWidths {
		if w == bits {
			return true
		}
	}
	return false
}

func checkResp(cmd byte, resp []byte, payload int) error {
	if len(resp) < 1+payload {
		return fmt.Errorf("%w: response too short for 0x%02X", ErrBadFrame, cmd)
	}
	if resp[0] != cmd {
		return fmt.Errorf("%w: command echo 0x%02X, want 0x%02X", ErrBadFrame, resp[0], cmd)
	}
	return nil
}

// EncodePhyInit builds a phy_init request.
func EncodePhyInit() []byte { return []byte{CmdPhyInit} }

// DecodePhyInit parses a phy_init response.
func DecodePhyInit(resp []byte) error { return checkResp(CmdPhyInit, resp, 0) }

// EncodePhyReset builds a phy_reset request.
func EncodePhyReset() []byte { return []byte{CmdPhyReset} }

// DecodePhyReset parses a phy_reset response.
func DecodePhyReset(resp []byte) (bool, error) {
	if err := checkResp(CmdPhyReset, resp, 1); err != nil {
		return false, err
	}
	return resp[1] != 0, nil
}

// EncodePhyStop builds a phy_stop request.
func EncodePhyStop() []byte { return []byte{CmdPhyStop} }

// DecodePhyStop parses a phy_stop response.
func DecodePhyStop(resp []byte) error { return checkResp(CmdPhyStop, resp, 0) }

// EncodeTapInit builds a tap_init request.
func EncodeTapInit() []byte { return []byte{CmdTapInit} }

// DecodeTapInit parses a tap_init response into a status byte.
func DecodeTapInit(resp []byte) (sinowealth.Status, error) {
	if err := checkResp(CmdTapInit, resp, 1); err != nil {
		return 0, err
	}
	return sinowealth.Status(resp[1]), nil
}

// EncodeTapState builds a tap_state request.
func EncodeTapState() []byte { return []byte{CmdTapState} }

// DecodeTapState parses a tap_state response.
func DecodeTapState(resp []byte) (uint8, error) {
	if err := checkResp(CmdTapState, resp, 1); err != nil {
		return 0, err
	}
	return resp[1], nil
}

// EncodeTapReset builds a tap_reset request.
func EncodeTapReset() []byte { return []byte{CmdTapReset} }

// DecodeTapReset parses a tap_reset response.
func DecodeTapReset(resp []byte) error { return checkResp(CmdTapReset, resp, 0) }

// EncodeTapGotoState builds a tap_goto_state request.
func EncodeTapGotoState(state uint8) []byte { return []byte{CmdTapGotoState, state} }

// DecodeTapGotoState parses a tap_goto_state response.
func DecodeTapGotoState(resp []byte) error { return checkResp(CmdTapGotoState, resp, 0) }

// EncodeTapIR builds a tap_ir request.
func EncodeTapIR(out uint8) []byte { return []byte{CmdTapIR, out} }

// DecodeTapIR parses a tap_ir response into the captured bits.
func DecodeTapIR(resp []byte) (uint8, error) {
	if err := checkResp(CmdTapIR, resp, 1); err != nil {
		return 0, err
	}
	return resp[1], nil
}

// EncodeTapDR builds a tap_dr request.
func EncodeTapDR(out uint32, bits uint8) []byte {
	req := make([]byte, 6)
	req[0] = CmdTapDR
	binary.LittleEndian.PutUint32(req[1:], out)
	req[5] = bits
	return req
}

// DecodeTapDR parses a tap_dr response into the captured bits.
func DecodeTapDR(resp []byte) (uint32, error) {
	if err := checkResp(CmdTapDR, resp, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(resp[1:5]), nil
}

// EncodeTapBypass builds a tap_bypass request.
func EncodeTapBypass() []byte { return []byte{CmdTapBypass} }

// DecodeTapBypass parses a tap_bypass response.
func DecodeTapBypass(resp []byte) error { return checkResp(CmdTapBypass, resp, 0) }

// EncodeTapIDCode builds a tap_idcode request.
func EncodeTapIDCode() []byte { return []byte{CmdTapIDCode} }

// DecodeTapIDCode parses a tap_idcode response.
func DecodeTapIDCode(resp []byte) (uint32, error) {
	if err := checkResp(CmdTapIDCode, resp, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(resp[1:5]), nil
}

// EncodeTapIdleClocks builds a tap_idle_clocks request.
func EncodeTapIdleClocks(n uint8) []byte { return []byte{CmdTapIdleClocks, n} }

// DecodeTapIdleClocks parses a tap_idle_clocks response.
func DecodeTapIdleClocks(resp []byte) error { return checkResp(CmdTapIdleClocks, resp, 0) }

// EncodeTapCodescanRead builds a tap_codescan_read request.
func EncodeTapCodescanRead(addr uint16) []byte {
	req := make([]byte, 3)
	req[0] = CmdTapCodescanRead
	binary.LittleEndian.PutUint16(req[1:], addr)
	return req
}

// DecodeTapCodescanRead parses a tap_codescan_read response.
func DecodeTapCodescanRead(resp []byte) (uint8, error) {
	if err := checkResp(CmdTapCodescanRead, resp, 1); err != nil {
		return 0, err
	}
	return resp[1], nil
}

// EncodeIcpInit builds an icp_init request.
func EncodeIcpInit() []byte { return []byte{CmdIcpInit} }

// DecodeIcpInit parses an icp_init response.
func DecodeIcpInit(resp []byte) error { return checkResp(CmdIcpInit, resp, 0) }

// EncodeIcpVerify builds an icp_verify request.
func EncodeIcpVerify() []byte { return []byte{CmdIcpVerify} }

// DecodeIcpVerify parses an icp_verify response.
func DecodeIcpVerify(resp []byte) (bool, error) {
	if err := checkResp(CmdIcpVerify, resp, 1); err != nil {
		return false, err
	}
	return resp[1] != 0, nil
}

// EncodeIcpRead builds an icp_read request.
func EncodeIcpRead(addr, size uint16) []byte {
	req := make([]byte, 5)
	req[0] = CmdIcpRead
	binary.LittleEndian.PutUint16(req[1:], addr)
	binary.LittleEndian.PutUint16(req[3:], size)
	return req
}

// DecodeIcpRead parses an icp_read response into the flash bytes.
func DecodeIcpRead(resp []byte) ([]byte, error) {
	if err := checkResp(CmdIcpRead, resp, 2); err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint16(resp[1:3]))
	if len(resp) < 3+n {
		return nil, fmt.Errorf("%w: icp_read payload truncated", ErrBadFrame)
	}
	data := make([]byte, n)
	copy(data, resp[3:3+n])
	return data, nil
}

// EncodeIcpErase builds an icp_erase request.
func EncodeIcpErase(addr uint16) []byte {
	req := make([]byte, 3)
	req[0] = CmdIcpErase
	binary.LittleEndian.PutUint16(req[1:], addr)
	return req
}

// DecodeIcpErase parses an icp_erase response.
func DecodeIcpErase(resp []byte) (bool, error) {
	if err := checkResp(CmdIcpErase, resp, 1); err != nil {
		return false, err
	}
	return resp[1] != 0, nil
}

// EncodeIcpWrite builds an icp_write request.
func EncodeIcpWrite(addr uint16, data []byte) []byte {
	req := make([]byte, 5+len(data))
	req[0] = CmdIcpWrite
	binary.LittleEndian.PutUint16(req[1:], addr)
	binary.LittleEndian.PutUint16(req[3:], uint16(len(data)))
	copy(req[5:], data)
	return req
}

// DecodeIcpWrite parses an icp_write response.
func DecodeIcpWrite(resp []byte) (bool, error) {
	if err := checkResp(CmdIcpWrite, resp, 1); err != nil {
		return false, err
	}
	return resp[1] != 0, nil
}
