package firmware

import (
	"strings"
	"testing"
)

func TestEraseBlocks(t *testing.T) {
	tests := []struct {
		name string
		base uint16
		size int
		want []uint16
	}{
		{"empty", 0x0000, 0, nil},
		{"one block aligned", 0x0400, 1, []uint16{0x0400}},
		{"straddles boundary", 0x03FF, 2, []uint16{0x0000, 0x0400}},
		{"two full blocks", 0x0000, 2048, []uint16{0x0000, 0x0400}},
		{"interior", 0x0401, 1022, []uint16{0x0400}},
		{"top of memory", 0xFC00, 1024, []uint16{0xFC00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &Image{Base: tt.base, Data: make([]byte, tt.size)}
			got := img.EraseBlocks()
			if len(got) != len(tt.want) {
				t.Fatalf("blocks = %#X, want %#X", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("block %d = 0x%04X, want 0x%04X", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVerify(t *testing.T) {
	img := &Image{Base: 0x100, Data: []byte{0x01, 0x02, 0x03}}

	if err := img.Verify([]byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("matching readback rejected: %v", err)
	}

	err := img.Verify([]byte{0x01, 0xFF, 0x03})
	if err == nil {
		t.Fatalf("mismatch accepted")
	}
	if !strings.Contains(err.Error(), "0x0101") {
		t.Errorf("mismatch error %q does not name the address", err)
	}

	if err := img.Verify([]byte{0x01}); err == nil {
		t.Fatalf("short readback accepted")
	}
}

func TestChecksumStable(t *testing.T) {
	a := &Image{Data: []byte("sinowealth")}
	b := &Image{Data: []byte("sinowealth")}
	c := &Image{Data: []byte("sinewealth")}

	if a.Checksum() != b.Checksum() {
		t.Fatalf("identical images differ")
	}
	if a.Checksum() == c.Checksum() {
		t.Fatalf("different images collide")
	}
	if a.Checksum() == 0 {
		t.Fatalf("checksum degenerate zero")
	}
}

func TestEnd(t *testing.T) {
	img := &Image{Base: 0xFFF0, Data: make([]byte, 0x10)}
	if img.End() != 0x10000 {
		t.Fatalf("End = 0x%X, want 0x10000", img.End())
	}
}
