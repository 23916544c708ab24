package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphDriver provides pins through periph.io, covering any host periph
// supports (SBC headers, FTDI adapters, ...).
type PeriphDriver struct{}

// Open initializes the periph host drivers.
func (d *PeriphDriver) Open() error {
	_, err := host.Init()
	return err
}

// Pin resolves a pin by periph name (e.g. "GPIO17", "P1_11").
func (d *PeriphDriver) Pin(name string) (Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio: no pin named %q", name)
	}
	return &periphPin{p: p}, nil
}

type periphPin struct {
	p     pgpio.PinIO
	level bool
}

func (p *periphPin) Output() { _ = p.p.Out(pgpio.Level(p.level)) }

func (p *periphPin) Input() { _ = p.p.In(pgpio.Float, pgpio.NoEdge) }

func (p *periphPin) Write(level bool) {
	p.level = level
	_ = p.p.Out(pgpio.Level(level))
}

func (p *periphPin) Read() bool { return p.p.Read() == pgpio.High }
