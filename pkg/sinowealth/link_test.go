package sinowealth

import (
	"testing"
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
)

// newRig builds the full stack against a fresh simulator with sleeps elided.
func newRig() (*TargetSim, *phy.Engine, *Link) {
	sim := NewTargetSim()
	eng := phy.New(sim.Pins())
	eng.Delay = func(time.Duration) {}
	return sim, eng, NewLink(eng)
}

func TestLinkInitRunsHandshake(t *testing.T) {
	sim, _, link := newRig()

	link.Init(true)

	if !sim.HandshakeSeen {
		t.Fatalf("target never saw the unlock waveform")
	}
	if link.Mode() != ModeReady || !sim.InReady() {
		t.Fatalf("mode = %s, sim ready = %v", link.Mode(), sim.InReady())
	}
}

func TestLinkInitIsOncePerPowerOn(t *testing.T) {
	sim, _, link := newRig()
	link.Init(false)
	link.SetMode(ModeJtag)
	clocks := sim.Clocks

	// Re-initialising from a productive mode must not touch the wires.
	link.Init(false)

	if sim.Clocks != clocks {
		t.Fatalf("second Init emitted %d clocks", sim.Clocks-clocks)
	}
	if link.Mode() != ModeJtag {
		t.Fatalf("mode = %s, want Jtag", link.Mode())
	}
}

func TestLinkSelectsModes(t *testing.T) {
	sim, _, link := newRig()
	link.Init(false)

	if got := link.SetMode(ModeJtag); got != ModeJtag {
		t.Fatalf("SetMode(Jtag) = %s", got)
	}
	if !sim.InJtag() {
		t.Fatalf("target not in JTAG mode")
	}

	if got := link.SetMode(ModeIcp); got != ModeIcp {
		t.Fatalf("SetMode(Icp) = %s", got)
	}
	if !sim.InIcp() {
		t.Fatalf("target not in ICP mode")
	}

	// The transition must have passed through Ready.
	want := []Mode{ModeReady, ModeJtag, ModeReady, ModeIcp}
	if len(sim.ModeLog) != len(want) {
		t.Fatalf("mode log = %v", sim.ModeLog)
	}
	for i, m := range want {
		if sim.ModeLog[i] != m {
			t.Fatalf("mode log[%d] = %s, want %s", i, sim.ModeLog[i], m)
		}
	}
}

func TestLinkSetModeIdempotent(t *testing.T) {
	sim, _, link := newRig()
	link.Init(false)
	link.SetMode(ModeIcp)
	clocks := sim.Clocks

	link.SetMode(ModeIcp)

	if sim.Clocks != clocks {
		t.Fatalf("repeated SetMode emitted %d clocks", sim.Clocks-clocks)
	}
}

func TestLinkSetModeBeforeInitIsNoop(t *testing.T) {
	sim, _, link := newRig()

	if got := link.SetMode(ModeJtag); got != ModeNotInitialized {
		t.Fatalf("SetMode before Init = %s", got)
	}
	if sim.Clocks != 0 {
		t.Fatalf("SetMode before Init touched the wires")
	}
}

func TestLinkResetFromJtag(t *testing.T) {
	sim, _, link := newRig()
	link.Init(false)
	link.SetMode(ModeJtag)

	if got := link.Reset(); got != ModeReady {
		t.Fatalf("Reset = %s", got)
	}
	if !sim.InReady() {
		t.Fatalf("target did not drop out of JTAG")
	}
}

func TestLinkResetFromIcp(t *testing.T) {
	sim, _, link := newRig()
	link.Init(false)
	link.SetMode(ModeIcp)

	if got := link.Reset(); got != ModeReady {
		t.Fatalf("Reset = %s", got)
	}
	if !sim.InReady() {
		t.Fatalf("target did not drop out of ICP")
	}

	// A fresh productive mode must still be reachable.
	link.SetMode(ModeJtag)
	if !sim.InJtag() {
		t.Fatalf("target cannot re-enter JTAG after reset")
	}
}

func TestLinkStop(t *testing.T) {
	sim, _, link := newRig()
	link.Init(false)
	link.Stop()

	if link.Mode() != ModeNotInitialized {
		t.Fatalf("mode after Stop = %s", link.Mode())
	}
	clocks := sim.Clocks
	if link.SetMode(ModeJtag); sim.Clocks != clocks {
		t.Fatalf("SetMode after Stop touched the wires")
	}
}

func TestModeStrings(t *testing.T) {
	cases := map[Mode]string{
		ModeReady:          "Ready",
		ModeJtag:           "Jtag",
		ModeIcp:            "Icp",
		ModeNotInitialized: "NotInitialized",
	}
	for m, want := range cases {
		if m.String() != want {
			t.Errorf("%d.String() = %q, want %q", uint8(m), m.String(), want)
		}
	}
}
