// Package firmware holds flash images in the shape the programmer consumes:
// a base address and a flat byte run, with checksumming for read-back
// verification.
package firmware

import (
	"bytes"
	"fmt"

	"github.com/snksoft/crc"
)

// Geometry of the SinoWealth flash and of the transfer path.
const (
	// EraseBlockSize is the target's erase granularity.
	EraseBlockSize = 1024
	// ChunkSize bounds a single transfer, matching the reference
	// programmer's buffer.
	ChunkSize = 64
)

// Image is a contiguous firmware region.
type Image struct {
	Base uint16
	Data []byte
}

// End returns the first address past the image.
func (img *Image) End() uint32 {
	return uint32(img.Base) + uint32(len(img.Data))
}

// Checksum returns the CRC-32 of the image contents.
func (img *Image) Checksum() uint64 {
	return crc.CalculateCRC(crc.CRC32, img.Data)
}

// EraseBlocks returns the addresses of the erase blocks the image touches,
// aligned down to the block size.
func (img *Image) EraseBlocks() []uint16 {
	if len(img.Data) == 0 {
		return nil
	}
	first := uint32(img.Base) &^ (EraseBlockSize - 1)
	last := (img.End() - 1) &^ (EraseBlockSize - 1)

	var blocks []uint16
	for a := first; a <= last; a += EraseBlockSize {
		blocks = append(blocks, uint16(a))
	}
	return blocks
}

// Verify compares a read-back against the image.
func (img *Image) Verify(readback []byte) error {
	if len(readback) != len(img.Data) {
		return fmt.Errorf("firmware: read back %d bytes, want %d", len(readback), len(img.Data))
	}
	if i := mismatch(img.Data, readback); i >= 0 {
		return fmt.Errorf("firmware: mismatch at 0x%04X: flash 0x%02X, image 0x%02X",
			uint32(img.Base)+uint32(i), readback[i], img.Data[i])
	}
	return nil
}

func mismatch(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
