// Package gpio abstracts the five wires the programmer drives: the four
// JTAG lines plus the VREF power-sense input. Backends exist for memory-mapped
// Raspberry Pi GPIO (go-rpio), any periph.io host, and an in-memory pin used
// by the target simulator and tests.
package gpio

// Pin is a single GPIO line. Implementations are not required to be safe for
// concurrent use; the engine is single-threaded by design.
type Pin interface {
	// Output configures the pin as a push-pull output.
	Output()
	// Input configures the pin as an input with pull resistors off.
	Input()
	// Write drives the output level. Only meaningful after Output.
	Write(level bool)
	// Read samples the pin level.
	Read() bool
}

// Pins bundles the programmer's wiring. LED is optional and may be nil; it is
// flashed while waiting for target power.
type Pins struct {
	TCK  Pin
	TMS  Pin
	TDI  Pin
	TDO  Pin
	VREF Pin
	LED  Pin
}
