package command

import (
	"bytes"
	"testing"

	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

func TestEncodeSimpleRequests(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"phy_init", EncodePhyInit(), []byte{0x01}},
		{"phy_reset", EncodePhyReset(), []byte{0x02}},
		{"phy_stop", EncodePhyStop(), []byte{0x03}},
		{"tap_init", EncodeTapInit(), []byte{0x04}},
		{"tap_state", EncodeTapState(), []byte{0x05}},
		{"tap_reset", EncodeTapReset(), []byte{0x06}},
		{"tap_goto_state", EncodeTapGotoState(4), []byte{0x07, 0x04}},
		{"tap_ir", EncodeTapIR(0x0E), []byte{0x08, 0x0E}},
		{"tap_dr", EncodeTapDR(0x00082C48, 30), []byte{0x09, 0x48, 0x2C, 0x08, 0x00, 30}},
		{"tap_bypass", EncodeTapBypass(), []byte{0x0A}},
		{"tap_idcode", EncodeTapIDCode(), []byte{0x0B}},
		{"tap_idle_clocks", EncodeTapIdleClocks(2), []byte{0x0C, 0x02}},
		{"tap_codescan_read", EncodeTapCodescanRead(0x1234), []byte{0x0D, 0x34, 0x12}},
		{"icp_init", EncodeIcpInit(), []byte{0x0E}},
		{"icp_verify", EncodeIcpVerify(), []byte{0x0F}},
		{"icp_read", EncodeIcpRead(0x0200, 64), []byte{0x10, 0x00, 0x02, 0x40, 0x00}},
		{"icp_erase", EncodeIcpErase(0x0400), []byte{0x11, 0x00, 0x04}},
		{"icp_write", EncodeIcpWrite(0x0010, []byte{0xAA, 0xBB}),
			[]byte{0x12, 0x10, 0x00, 0x02, 0x00, 0xAA, 0xBB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("encoded % X, want % X", tt.got, tt.want)
			}
		})
	}
}

func TestDecodeTapInit(t *testing.T) {
	tests := []struct {
		name    string
		resp    []byte
		want    sinowealth.Status
		wantErr bool
	}{
		{"ok", []byte{0x04, 0x00}, sinowealth.StatusOK, false},
		{"idcode error", []byte{0x04, 0x01}, sinowealth.StatusErrIDCode, false},
		{"too short", []byte{0x04}, 0, true},
		{"wrong echo", []byte{0x05, 0x00}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTapInit(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeTapDR(t *testing.T) {
	got, err := DecodeTapDR([]byte{0x09, 0x4C, 0xC1, 0x4C, 0xC1})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got != 0xC14CC14C {
		t.Errorf("capture = 0x%08X, want 0xC14CC14C", got)
	}

	if _, err := DecodeTapDR([]byte{0x09, 0x4C}); err == nil {
		t.Errorf("short response accepted")
	}
}

func TestDecodeIcpRead(t *testing.T) {
	tests := []struct {
		name    string
		resp    []byte
		want    []byte
		wantErr bool
	}{
		{"ok", []byte{0x10, 0x03, 0x00, 0xAA, 0xBB, 0xCC}, []byte{0xAA, 0xBB, 0xCC}, false},
		{"empty", []byte{0x10, 0x00, 0x00}, []byte{}, false},
		{"truncated payload", []byte{0x10, 0x04, 0x00, 0xAA}, nil, true},
		{"wrong echo", []byte{0x11, 0x01, 0x00, 0xAA}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIcpRead(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("data = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestDecodeBooleans(t *testing.T) {
	if ok, err := DecodePhyReset([]byte{0x02, 0x01}); err != nil || !ok {
		t.Errorf("DecodePhyReset = %v, %v", ok, err)
	}
	if ok, err := DecodeIcpVerify([]byte{0x0F, 0x00}); err != nil || ok {
		t.Errorf("DecodeIcpVerify = %v, %v", ok, err)
	}
	if ok, err := DecodeIcpErase([]byte{0x11, 0x01}); err != nil || !ok {
		t.Errorf("DecodeIcpErase = %v, %v", ok, err)
	}
	if ok, err := DecodeIcpWrite([]byte{0x12, 0x01}); err != nil || !ok {
		t.Errorf("DecodeIcpWrite = %v, %v", ok, err)
	}
}

func TestValidDRWidth(t *testing.T) {
	for _, w := range []uint8{4, 8, 16, 23, 30, 32} {
		if !ValidDRWidth(w) {
			t.Errorf("ValidDRWidth(%d) = false", w)
		}
	}
	for _, w := range []uint8{0, 1, 7, 24, 31, 33, 64} {
		if ValidDRWidth(w) {
			t.Errorf("ValidDRWidth(%d) = true", w)
		}
	}
}
