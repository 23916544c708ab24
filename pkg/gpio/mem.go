package gpio

// MemPin is an in-memory Pin. It backs the target simulator and unit tests:
// every level change is reported through OnWrite so a model on the far side
// of the wire can react to edges.
type MemPin struct {
	level  bool
	output bool

	// OnWrite fires on every Write that changes the level, after the new
	// level is stored. prev is the level before the write.
	OnWrite func(prev, level bool)
}

func (p *MemPin) Output() { p.output = true }
func (p *MemPin) Input()  { p.output = false }

func (p *MemPin) Write(level bool) {
	prev := p.level
	p.level = level
	if p.OnWrite != nil && prev != level {
		p.OnWrite(prev, level)
	}
}

func (p *MemPin) Read() bool { return p.level }

// Set forces the pin level without triggering OnWrite. It models the far end
// of the wire driving the line (e.g. the target driving TDO).
func (p *MemPin) Set(level bool) { p.level = level }

// IsOutput reports the configured direction.
func (p *MemPin) IsOutput() bool { return p.output }

// MemPins returns a fully wired Pins bundle of MemPins with VREF held high.
func MemPins() (Pins, *MemPin, *MemPin, *MemPin, *MemPin) {
	tck := &MemPin{}
	tms := &MemPin{}
	tdi := &MemPin{}
	tdo := &MemPin{}
	vref := &MemPin{level: true}
	pins := Pins{TCK: tck, TMS: tms, TDI: tdi, TDO: tdo, VREF: vref}
	return pins, tck, tms, tdi, tdo
}
