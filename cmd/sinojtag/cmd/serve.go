package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/MadnessASAP/SinoJTAG/pkg/command"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the local adapter over a serial port",
	Long: `Run the command protocol server on --port, driving the wires through the
local adapter selected by --adapter. A host running sinojtag with
--adapter remote on the other end of the link gets the full surface.

Example (on a Raspberry Pi wired to the target):
  sinojtag serve --adapter rpio --port /dev/ttyGS0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if adapterType == "remote" {
		return fmt.Errorf("serve needs a local adapter, not remote")
	}

	surf, release, err := openSurface()
	if err != nil {
		return err
	}
	defer release()

	mode := &serial.Mode{BaudRate: baudRate}
	port, err := serial.Open(portPath, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", portPath, err)
	}
	defer port.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "serving on %s at %d baud\n", portPath, baudRate)
	}
	return command.NewServer(port, surf).Serve()
}
