package sinowealth

import (
	"testing"

	"github.com/MadnessASAP/SinoJTAG/pkg/tap"
)

func TestProgrammerTapInitStatus(t *testing.T) {
	_, _, prog := newProgRig()
	prog.PhyInit()

	if st := prog.TapInit(); st != StatusOK {
		t.Fatalf("TapInit = %s, want OK", st)
	}
}

func TestProgrammerTapInitReportsIDCodeFailure(t *testing.T) {
	sim, _, prog := newProgRig()
	sim.IDCode = 0x0000
	prog.PhyInit()

	if st := prog.TapInit(); st != StatusErrIDCode {
		t.Fatalf("TapInit = %s, want ERR_IDCODE", st)
	}
}

func TestProgrammerPhyReset(t *testing.T) {
	_, _, prog := newProgRig()

	// Nothing to reset to before the handshake.
	if prog.PhyReset() {
		t.Fatalf("PhyReset before init = true")
	}

	prog.PhyInit()
	if st := prog.TapInit(); st != StatusOK {
		t.Fatalf("TapInit = %s", st)
	}
	if !prog.PhyReset() {
		t.Fatalf("PhyReset after init = false")
	}
	if prog.Link().Mode() != ModeReady {
		t.Fatalf("mode = %s, want Ready", prog.Link().Mode())
	}
}

func TestProgrammerPhyStop(t *testing.T) {
	_, _, prog := newProgRig()
	prog.PhyInit()
	prog.PhyStop()

	if prog.Link().Mode() != ModeNotInitialized {
		t.Fatalf("mode = %s, want NotInitialized", prog.Link().Mode())
	}
}

func TestProgrammerTapNavigation(t *testing.T) {
	sim, _, prog := newProgRig()
	prog.PhyInit()
	if st := prog.TapInit(); st != StatusOK {
		t.Fatalf("TapInit = %s", st)
	}

	prog.TapGotoState(uint8(tap.StatePauseDR))

	if got := prog.TapState(); got != uint8(tap.StatePauseDR) {
		t.Fatalf("TapState = %d, want %d", got, uint8(tap.StatePauseDR))
	}
	if sim.TapState() != tap.StatePauseDR {
		t.Fatalf("hardware TAP in %s", sim.TapState())
	}

	prog.TapReset()
	if sim.TapState() != tap.StateTestLogicReset {
		t.Fatalf("hardware TAP in %s after reset", sim.TapState())
	}
}

func TestProgrammerTapScans(t *testing.T) {
	_, _, prog := newProgRig()
	prog.PhyInit()
	if st := prog.TapInit(); st != StatusOK {
		t.Fatalf("TapInit = %s", st)
	}

	// IR capture is the fixed 0b01 pattern.
	if in := prog.TapIR(InstrIDCode); in != 0x1 {
		t.Fatalf("TapIR capture = 0x%X, want 0x1", in)
	}
	if id := prog.TapDR(0, 16); id != 0xC14C {
		t.Fatalf("TapDR(16) after IR=IDCODE = 0x%04X, want 0xC14C", id)
	}
	if id := prog.TapIDCode(); id != 0xC14CC14C {
		t.Fatalf("TapIDCode = 0x%08X", id)
	}
}

func TestProgrammerCodescanRead(t *testing.T) {
	sim, _, prog := newProgRig()
	sim.Flash[0x0042] = 0x7E
	prog.PhyInit()
	if st := prog.TapInit(); st != StatusOK {
		t.Fatalf("TapInit = %s", st)
	}

	prog.TapCodescanRead(0x0042) // primes the address
	if b := prog.TapCodescanRead(0x0042); b != 0x7E {
		t.Fatalf("codescan read = 0x%02X, want 0x7E", b)
	}
}
