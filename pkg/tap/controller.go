package tap

// IRBits is the instruction register width of the SinoWealth targets.
const IRBits = 4

// Instruction register values every 1149.1 target understands.
const (
	InstrIDCode uint8 = 0x0E
	InstrBypass uint8 = 0x0F
)

// BitDriver is the wire-level surface the controller clocks through. The PHY
// engine implements it.
type BitDriver interface {
	// NextState drives TMS and pulses TCK once.
	NextState(tms bool)
	// StreamBits shifts up to 32 bits LSB-first, asserting TMS on the last
	// bit when exit is set, and returns the captured TDO bits.
	StreamBits(out uint32, bits uint8, exit bool) uint32
}

// Controller drives a hardware TAP while mirroring its state. The tracked
// state matches the target provided every clock passes through the
// controller.
type Controller struct {
	drv   BitDriver
	state State
}

// NewController returns a controller assuming the target sits in
// Test-Logic-Reset (the state after the mode handshake).
func NewController(drv BitDriver) *Controller {
	return &Controller{drv: drv, state: StateTestLogicReset}
}

// State reports the tracked TAP state.
func (c *Controller) State() State { return c.state }

// step applies a single TMS transition on the wire and in the mirror.
func (c *Controller) step(tms bool) {
	c.drv.NextState(tms)
	c.state = NextState(c.state, tms)
}

// Reset forces Test-Logic-Reset with five TMS=1 clocks.
func (c *Controller) Reset() {
	for i := 0; i < 5; i++ {
		c.drv.NextState(true)
	}
	c.state = StateTestLogicReset
}

// GotoState moves to the target state along the shortest TMS sequence. No
// clocks are emitted when already there.
func (c *Controller) GotoState(target State) {
	if c.state == target {
		return
	}
	path, err := computePath(c.state, target)
	if err != nil {
		// Both endpoints are valid by construction; the graph is strongly
		// connected.
		panic(err)
	}
	for _, tms := range path.TMS {
		c.step(tms)
	}
}

// IRScan shifts the instruction register and returns the captured bits.
// Leaves the TAP in Update-IR.
func (c *Controller) IRScan(out uint8) uint8 {
	c.GotoState(StateShiftIR)
	in := c.drv.StreamBits(uint32(out), IRBits, true)
	c.state = StateExit1IR
	c.step(true) // Update-IR
	return uint8(in)
}

// DRScan shifts a data register of the given width (1..64) and returns the
// capture. Widths above 32 are split into two PHY streams with the exit
// transition on the final segment. Leaves the TAP in Update-DR.
func (c *Controller) DRScan(out uint64, bits int) uint64 {
	c.GotoState(StateShiftDR)

	var in uint64
	if bits <= 32 {
		in = uint64(c.drv.StreamBits(uint32(out), uint8(bits), true))
	} else {
		lo := c.drv.StreamBits(uint32(out), 32, false)
		hi := c.drv.StreamBits(uint32(out>>32), uint8(bits-32), true)
		in = uint64(lo) | uint64(hi)<<32
	}

	c.state = StateExit1DR
	c.step(true) // Update-DR
	return in
}

// IdleClocks emits n clocks with TMS low. Only stable in Run-Test/Idle, the
// Shift states and the Pause states.
func (c *Controller) IdleClocks(n int) {
	for i := 0; i < n; i++ {
		c.step(false)
	}
}

// Bypass selects the BYPASS register by shifting all-ones into IR.
func (c *Controller) Bypass() {
	c.IRScan(InstrBypass)
}

// IDCode selects IDCODE and reads 32 bits from DR.
func (c *Controller) IDCode() uint32 {
	c.IRScan(InstrIDCode)
	return uint32(c.DRScan(0, 32))
}
