package cmd

import (
	"context"
	"fmt"

	"github.com/google/gousb"
	"github.com/spf13/cobra"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List candidate programmer bridges on USB",
	Long: `Enumerate connected USB devices that match known serial bridges used by
remote programmer boards, to help pick a --port for the remote adapter.`,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

type knownUSBDevice struct {
	VendorID    uint16
	ProductID   uint16
	Description string
}

var knownBridgeVIDPIDs = []knownUSBDevice{
	{VendorID: 0x2341, ProductID: 0x0043, Description: "Arduino Uno"},
	{VendorID: 0x2341, ProductID: 0x0001, Description: "Arduino Uno (old bootloader)"},
	{VendorID: 0x1a86, ProductID: 0x7523, Description: "CH340 serial bridge"},
	{VendorID: 0x10c4, ProductID: 0xea60, Description: "CP210x serial bridge"},
	{VendorID: 0x0403, ProductID: 0x6001, Description: "FTDI FT232R"},
	{VendorID: 0x2e8a, ProductID: 0x000a, Description: "Raspberry Pi Pico (CDC)"},
}

func runProbes(cmd *cobra.Command, args []string) error {
	found, err := discoverBridges(context.Background())
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Println("no known programmer bridges found")
		return nil
	}
	for _, dev := range found {
		fmt.Printf("%04X:%04X  %s\n", dev.VendorID, dev.ProductID, dev.Description)
	}
	return nil
}

// discoverBridges enumerates USB devices matching the known VID/PID pairs.
func discoverBridges(ctx context.Context) ([]knownUSBDevice, error) {
	var results []knownUSBDevice
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if dev, ok := classifyUSBDevice(desc); ok {
			results = append(results, dev)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}
	return results, nil
}

func classifyUSBDevice(desc *gousb.DeviceDesc) (knownUSBDevice, bool) {
	for _, known := range knownBridgeVIDPIDs {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return known, true
		}
	}
	return knownUSBDevice{}, false
}
