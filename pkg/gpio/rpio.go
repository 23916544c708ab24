package gpio

import (
	"github.com/stianeikeland/go-rpio/v4"
)

// RpioDriver provides pins through /dev/gpiomem on a Raspberry Pi.
type RpioDriver struct{}

// Open maps the GPIO registers. Must be called before any pin is used.
func (d *RpioDriver) Open() error { return rpio.Open() }

// Close unmaps the GPIO registers.
func (d *RpioDriver) Close() error { return rpio.Close() }

// Pin returns the BCM-numbered pin.
func (d *RpioDriver) Pin(bcm int) Pin { return rpioPin(bcm) }

type rpioPin uint8

func (p rpioPin) Output() { rpio.Pin(p).Output() }

func (p rpioPin) Input() {
	rpio.Pin(p).Input()
	rpio.Pin(p).PullOff()
}

func (p rpioPin) Write(level bool) {
	if level {
		rpio.Pin(p).High()
	} else {
		rpio.Pin(p).Low()
	}
}

func (p rpioPin) Read() bool { return rpio.Pin(p).Read() == rpio.High }
