package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/MadnessASAP/SinoJTAG/pkg/command"
	"github.com/MadnessASAP/SinoJTAG/pkg/gpio"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

var (
	// Global flags
	verbose     bool
	adapterType string
	portPath    string
	baudRate    int

	// Pin assignments for the local GPIO adapters. Defaults follow the
	// reference wiring (BCM numbering for rpio, periph names otherwise).
	pinTCK  string
	pinTMS  string
	pinTDI  string
	pinTDO  string
	pinVREF string
)

var rootCmd = &cobra.Command{
	Use:   "sinojtag",
	Short: "SinoWealth 8051 flash programmer",
	Long: `Read, erase and program the internal flash of SinoWealth-family 8051
microcontrollers over a bit-banged JTAG/ICP interface.

The four wires can be driven directly from local GPIO (Raspberry Pi or any
periph.io host), by a remote programmer speaking the command protocol over a
serial port, or by a built-in target simulator for dry runs.

Examples:
  sinojtag idcode --adapter rpio                     # Identify the target
  sinojtag read --adapter remote --port /dev/ttyACM0 -o dump.hex
  sinojtag write firmware.hex --adapter rpio --verify
  sinojtag verify --adapter sim                      # Exercise the simulator`,
	Version: "1.0.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVarP(&adapterType, "adapter", "a", "sim",
		"wire adapter: sim, rpio, periph or remote")
	pf.StringVarP(&portPath, "port", "p", "/dev/ttyACM0",
		"serial port for the remote adapter")
	pf.IntVarP(&baudRate, "baud", "b", 115200, "serial baud rate")

	pf.StringVar(&pinTCK, "tck", "17", "TCK pin (BCM number or periph name)")
	pf.StringVar(&pinTMS, "tms", "27", "TMS pin")
	pf.StringVar(&pinTDI, "tdi", "22", "TDI pin")
	pf.StringVar(&pinTDO, "tdo", "23", "TDO pin")
	pf.StringVar(&pinVREF, "vref", "24", "VREF sense pin")
}

// openSurface builds the selected adapter and returns the command surface
// plus a release function.
func openSurface() (command.Surface, func(), error) {
	switch adapterType {
	case "sim", "simulator":
		sim := sinowealth.NewTargetSim()
		eng := phy.New(sim.Pins())
		// The simulator has no real clock to honour.
		eng.Delay = func(d time.Duration) {}
		prog := sinowealth.NewProgrammer(eng)
		return command.Local{P: prog}, func() {}, nil

	case "rpio":
		drv := &gpio.RpioDriver{}
		if err := drv.Open(); err != nil {
			return nil, nil, fmt.Errorf("rpio: %w", err)
		}
		pins, err := rpioPins(drv)
		if err != nil {
			drv.Close()
			return nil, nil, err
		}
		prog := sinowealth.NewProgrammer(phy.New(pins))
		return command.Local{P: prog}, func() { drv.Close() }, nil

	case "periph":
		drv := &gpio.PeriphDriver{}
		if err := drv.Open(); err != nil {
			return nil, nil, fmt.Errorf("periph: %w", err)
		}
		pins, err := periphPins(drv)
		if err != nil {
			return nil, nil, err
		}
		prog := sinowealth.NewProgrammer(phy.New(pins))
		return command.Local{P: prog}, func() {}, nil

	case "remote":
		mode := &serial.Mode{BaudRate: baudRate}
		port, err := serial.Open(portPath, mode)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", portPath, err)
		}
		return command.NewClient(port), func() { port.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown adapter %q", adapterType)
}

func rpioPins(drv *gpio.RpioDriver) (gpio.Pins, error) {
	nums := [5]int{}
	for i, s := range [5]string{pinTCK, pinTMS, pinTDI, pinTDO, pinVREF} {
		if _, err := fmt.Sscanf(s, "%d", &nums[i]); err != nil {
			return gpio.Pins{}, fmt.Errorf("rpio pins need BCM numbers, got %q", s)
		}
	}
	return gpio.Pins{
		TCK:  drv.Pin(nums[0]),
		TMS:  drv.Pin(nums[1]),
		TDI:  drv.Pin(nums[2]),
		TDO:  drv.Pin(nums[3]),
		VREF: drv.Pin(nums[4]),
	}, nil
}

func periphPins(drv *gpio.PeriphDriver) (gpio.Pins, error) {
	var pins gpio.Pins
	for _, p := range []struct {
		name string
		dst  *gpio.Pin
	}{
		{pinTCK, &pins.TCK},
		{pinTMS, &pins.TMS},
		{pinTDI, &pins.TDI},
		{pinTDO, &pins.TDO},
		{pinVREF, &pins.VREF},
	} {
		pin, err := drv.Pin(p.name)
		if err != nil {
			return gpio.Pins{}, err
		}
		*p.dst = pin
	}
	return pins, nil
}
