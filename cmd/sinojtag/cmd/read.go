package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MadnessASAP/SinoJTAG/pkg/command"
	"github.com/MadnessASAP/SinoJTAG/pkg/firmware"
	"github.com/MadnessASAP/SinoJTAG/pkg/ihex"
)

var (
	readAddr   uint16
	readSize   uint
	readOutput string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read flash memory",
	Long: `Read target flash over ICP. With -o the dump is written as Intel-HEX
(.hex/.ihx extension) or raw binary; otherwise a hex dump goes to stdout.

Examples:
  sinojtag read --size 16384 -o dump.hex
  sinojtag read --addr 0x1000 --size 256`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Uint16Var(&readAddr, "addr", 0, "start address")
	readCmd.Flags().UintVar(&readSize, "size", firmware.EraseBlockSize, "bytes to read")
	readCmd.Flags().StringVarP(&readOutput, "output", "o", "", "output file")
}

func runRead(cmd *cobra.Command, args []string) error {
	if readSize == 0 || uint32(readAddr)+uint32(readSize) > 0x10000 {
		return fmt.Errorf("read range 0x%04X+%d exceeds the 64KiB address space", readAddr, readSize)
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

	data, err := readFlash(surf, readAddr, int(readSize))
	if err != nil {
		return err
	}

	if readOutput == "" {
		fmt.Print(hex.Dump(data))
		return nil
	}

	f, err := os.Create(readOutput)
	if err != nil {
		return err
	}
	defer f.Close()

	img := &firmware.Image{Base: readAddr, Data: data}
	if isHexPath(readOutput) {
		return ihex.Save(f, img)
	}
	_, err = f.Write(data)
	return err
}

// readFlash pulls a range in transfer-sized chunks, reporting progress when
// verbose.
func readFlash(surf command.Surface, addr uint16, n int) ([]byte, error) {
	data := make([]byte, 0, n)
	for n > 0 {
		chunk := n
		if chunk > firmware.ChunkSize {
			chunk = firmware.ChunkSize
		}
		part, err := surf.IcpRead(addr, uint16(chunk))
		if err != nil {
			return nil, err
		}
		data = append(data, part...)
		addr += uint16(chunk)
		n -= chunk
		if verbose {
			fmt.Fprintf(os.Stderr, "\rread 0x%04X", addr)
		}
	}
	if verbose {
		fmt.Fprintln(os.Stderr)
	}
	return data, nil
}

func isHexPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".hex") || strings.HasSuffix(lower, ".ihx")
}
