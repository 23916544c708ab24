package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MadnessASAP/SinoJTAG/pkg/firmware"
)

var (
	eraseAddr uint16
	eraseSize uint
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase flash blocks",
	Long: `Erase the 1KiB flash blocks covering the given range. Each block takes
about 300ms in the target.

Examples:
  sinojtag erase --addr 0x0000 --size 16384
  sinojtag erase --addr 0x2400`,
	RunE: runErase,
}

func init() {
	rootCmd.AddCommand(eraseCmd)

	eraseCmd.Flags().Uint16Var(&eraseAddr, "addr", 0, "address inside the first block")
	eraseCmd.Flags().UintVar(&eraseSize, "size", firmware.EraseBlockSize, "bytes to cover")
}

func runErase(cmd *cobra.Command, args []string) error {
	if eraseSize == 0 || uint32(eraseAddr)+uint32(eraseSize) > 0x10000 {
		return fmt.Errorf("erase range 0x%04X+%d exceeds the 64KiB address space", eraseAddr, eraseSize)
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

	span := firmware.Image{Base: eraseAddr, Data: make([]byte, eraseSize)}
	for _, block := range span.EraseBlocks() {
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

	fmt.Println("erase OK")
	return nil
}
