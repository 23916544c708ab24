package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the ICP command channel",
	Long: `Enter ICP mode and round-trip the target's address register. Confirms
wiring, power and mode negotiation without touching flash contents.`,
	RunE: runVerify,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Poke the target over ICP",
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(pingCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	surf, release, err := openSurface()
	if err != nil {
		return err
	}
	defer release()

	if err := surf.PhyInit(); err != nil {
		return err
	}
	defer surf.PhyStop()

	ok, err := surf.IcpVerify()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("target did not echo the address register")
	}
	fmt.Println("ICP channel OK")
	return nil
}

func runPing(cmd *cobra.Command, args []string) error {
	surf, release, err := openSurface()
	if err != nil {
		return err
	}
	defer release()

	if err := surf.PhyInit(); err != nil {
		return err
	}
	defer surf.PhyStop()

	if err := surf.IcpInit(); err != nil {
		return err
	}
	fmt.Println("ping sent")
	return nil
}
