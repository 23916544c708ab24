package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadnessASAP/SinoJTAG/pkg/command"
	"github.com/MadnessASAP/SinoJTAG/pkg/firmware"
	"github.com/MadnessASAP/SinoJTAG/pkg/ihex"
)

var (
	writeAddr    uint16
	writeNoErase bool
	writeVerify  bool
)

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Program flash memory",
	Long: `Program the target flash from an Intel-HEX file (.hex/.ihx, addresses
taken from the records) or a raw binary (placed at --addr). The 1KiB blocks
the image touches are erased first unless --no-erase is given.

Examples:
  sinojtag write firmware.hex --verify
  sinojtag write blob.bin --addr 0x2000 --no-erase`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().Uint16Var(&writeAddr, "addr", 0, "base address for raw binary input")
	writeCmd.Flags().BoolVar(&writeNoErase, "no-erase", false, "skip the erase pass")
	writeCmd.Flags().BoolVar(&writeVerify, "verify", false, "read back and compare after writing")
}

func runWrite(cmd *cobra.Command, args []string) error {
	img, err := loadImage(args[0], writeAddr)
	if err != nil {
		return err
	}
	if img.End() > 0x10000 {
		return fmt.Errorf("image ends at 0x%X, past the 64KiB address space", img.End())
	}

	surf, release, err := openSurface()
	if err != nil {
		return err
	}
	defer release()

	if err := surf.PhyInit(); err != nil {
		return err
	}
	defer surf.PhyStop()

	if !writeNoErase {
		for _, block := range img.EraseBlocks() {
			if verbose {
				fmt.Fprintf(os.Stderr, "erase 0x%04X\n", block)
			}
			ok, err := surf.IcpErase(block)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("erase failed at 0x%04X", block)
			}
		}
	}

	if err := writeFlash(surf, img); err != nil {
		return err
	}

	if writeVerify {
		readback, err := readFlash(surf, img.Base, len(img.Data))
		if err != nil {
			return err
		}
		if err := img.Verify(readback); err != nil {
			return err
		}
		fmt.Println("verify OK")
	}

	fmt.Printf("wrote %d bytes at 0x%04X (crc32 %08X)\n", len(img.Data), img.Base, img.Checksum())
	return nil
}

func writeFlash(surf command.Surface, img *firmware.Image) error {
	addr := img.Base
	data := img.Data
	for len(data) > 0 {
		chunk := len(data)
		if chunk > firmware.ChunkSize {
			chunk = firmware.ChunkSize
		}
		ok, err := surf.IcpWrite(addr, data[:chunk])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("write rejected at 0x%04X", addr)
		}
		addr += uint16(chunk)
		data = data[chunk:]
		if verbose {
			fmt.Fprintf(os.Stderr, "\rwrite 0x%04X", addr)
		}
	}
	if verbose {
		fmt.Fprintln(os.Stderr)
	}
	return nil
}

func loadImage(path string, base uint16) (*firmware.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if isHexPath(path) {
		return ihex.Load(f)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &firmware.Image{Base: base, Data: data}, nil
}
