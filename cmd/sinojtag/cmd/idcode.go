package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

var idcodeCmd = &cobra.Command{
	Use:   "idcode",
	Short: "Identify the target over JTAG",
	Long: `Run the power-on handshake, enter JTAG mode, perform the debug-unlock
sequence and read the target's identity register.

Examples:
  sinojtag idcode --adapter rpio
  sinojtag idcode --adapter remote --port /dev/ttyACM0`,
	RunE: runIDCode,
}

func init() {
	rootCmd.AddCommand(idcodeCmd)
}

func runIDCode(cmd *cobra.Command, args []string) error {
	surf, release, err := openSurface()
	if err != nil {
		return err
	}
	defer release()

	if err := surf.PhyInit(); err != nil {
		return err
	}
	defer surf.PhyStop()

	st, err := surf.TapInit()
	if err != nil {
		return err
	}
	if st != sinowealth.StatusOK {
		return fmt.Errorf("tap init failed: %s", st)
	}

	id, err := surf.TapIDCode()
	if err != nil {
		return err
	}

	fmt.Printf("IDCODE: 0x%04X\n", uint16(id))
	if verbose {
		fmt.Printf("raw 32-bit scan: 0x%08X\n", id)
	}

	_, err = surf.PhyReset()
	return err
}
