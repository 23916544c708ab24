package ihex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MadnessASAP/SinoJTAG/pkg/firmware"
)

const sampleHex = ":03000000AABBCCCC\n" +
	":020010001122BB\n" +
	":00000001FF\n"

func TestLoadFlattensWithFill(t *testing.T) {
	img, err := Load(strings.NewReader(sampleHex))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if img.Base != 0x0000 {
		t.Fatalf("base = 0x%04X, want 0x0000", img.Base)
	}
	if len(img.Data) != 0x12 {
		t.Fatalf("length = %d, want 0x12", len(img.Data))
	}

	for i, want := range []byte{0xAA, 0xBB, 0xCC} {
		if img.Data[i] != want {
			t.Fatalf("data[%d] = 0x%02X, want 0x%02X", i, img.Data[i], want)
		}
	}
	for i := 3; i < 0x10; i++ {
		if img.Data[i] != FillByte {
			t.Fatalf("gap byte %d = 0x%02X, want fill 0x%02X", i, img.Data[i], FillByte)
		}
	}
	if img.Data[0x10] != 0x11 || img.Data[0x11] != 0x22 {
		t.Fatalf("tail = % X, want 11 22", img.Data[0x10:])
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	if _, err := Load(strings.NewReader(":00000001FF\n")); err == nil {
		t.Fatalf("empty HEX accepted")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(strings.NewReader("not a hex file")); err == nil {
		t.Fatalf("garbage accepted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	orig := &firmware.Image{
		Base: 0x0200,
		Data: []byte{0x01, 0x02, 0x03, 0xFE, 0xFF, 0x00, 0x5A},
	}

	var buf bytes.Buffer
	if err := Save(&buf, orig); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Base != orig.Base {
		t.Fatalf("base = 0x%04X, want 0x%04X", got.Base, orig.Base)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Fatalf("data = % X, want % X", got.Data, orig.Data)
	}
}
