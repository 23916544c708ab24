// Package ihex reads and writes Intel-HEX firmware files, flattening them
// into the contiguous images the programmer works with. Gaps between record
// segments are filled with the flash erase value.
package ihex

import (
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"

	"github.com/MadnessASAP/SinoJTAG/pkg/firmware"
)

// FillByte pads gaps between HEX segments; erased SinoWealth flash reads
// 0xFF.
const FillByte = 0xFF

// Load parses an Intel-HEX stream into a flat image based at the lowest
// record address.
func Load(r io.Reader) (*firmware.Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("ihex: %w", err)
	}

	segs := mem.GetDataSegments()
	if len(segs) == 0 {
		return nil, fmt.Errorf("ihex: no data records")
	}

	lo, hi := segs[0].Address, segs[0].Address+uint32(len(segs[0].Data))
	for _, s := range segs[1:] {
		if s.Address < lo {
			lo = s.Address
		}
		if end := s.Address + uint32(len(s.Data)); end > hi {
			hi = end
		}
	}
	if hi > 0x10000 {
		return nil, fmt.Errorf("ihex: image extends past 64KiB address space (end 0x%X)", hi)
	}

	data := make([]byte, hi-lo)
	for i := range data {
		data[i] = FillByte
	}
	for _, s := range segs {
		copy(data[s.Address-lo:], s.Data)
	}

	return &firmware.Image{Base: uint16(lo), Data: data}, nil
}

// Save writes an image as Intel-HEX with 16-byte records.
func Save(w io.Writer, img *firmware.Image) error {
	mem := gohex.NewMemory()
	if err := mem.AddBinary(uint32(img.Base), img.Data); err != nil {
		return fmt.Errorf("ihex: %w", err)
	}
	if err := mem.DumpIntelHex(w, 16); err != nil {
		return fmt.Errorf("ihex: %w", err)
	}
	return nil
}
