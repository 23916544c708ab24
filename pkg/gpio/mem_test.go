package gpio

import "testing"

func TestMemPinOnWriteFiresOnChangeOnly(t *testing.T) {
	p := &MemPin{}
	var events int
	p.OnWrite = func(prev, level bool) {
		events++
		if prev == level {
			t.Fatalf("OnWrite fired without a level change")
		}
	}

	p.Write(false) // no change
	p.Write(true)
	p.Write(true) // no change
	p.Write(false)

	if events != 2 {
		t.Fatalf("OnWrite fired %d times, want 2", events)
	}
}

func TestMemPinSetBypassesOnWrite(t *testing.T) {
	p := &MemPin{}
	p.OnWrite = func(prev, level bool) {
		t.Fatalf("OnWrite fired on Set")
	}

	p.Set(true)
	if !p.Read() {
		t.Fatalf("Read() = false after Set(true)")
	}
}

func TestMemPinDirection(t *testing.T) {
	p := &MemPin{}
	if p.IsOutput() {
		t.Fatalf("new pin should be an input")
	}
	p.Output()
	if !p.IsOutput() {
		t.Fatalf("IsOutput() = false after Output()")
	}
	p.Input()
	if p.IsOutput() {
		t.Fatalf("IsOutput() = true after Input()")
	}
}

func TestMemPinsBundle(t *testing.T) {
	pins, tck, _, _, _ := MemPins()
	if pins.TCK != Pin(tck) {
		t.Fatalf("bundle TCK mismatch")
	}
	if !pins.VREF.Read() {
		t.Fatalf("VREF should start high (target powered)")
	}
}
