package command

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

// startLoop runs a server over an in-memory duplex against a simulated
// target and returns the client plus the simulator for assertions.
func startLoop(t *testing.T) (*Client, *sinowealth.TargetSim) {
	t.Helper()

	sim := sinowealth.NewTargetSim()
	eng := phy.New(sim.Pins())
	eng.Delay = func(time.Duration) {}
	prog := sinowealth.NewProgrammer(eng)

	hostSide, devSide := net.Pipe()
	t.Cleanup(func() {
		hostSide.Close()
		devSide.Close()
	})

	srv := NewServer(devSide, Local{P: prog})
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	t.Cleanup(func() {
		hostSide.Close()
		<-done
	})

	return NewClient(hostSide), sim
}

func TestClientServerFlashCycle(t *testing.T) {
	client, sim := startLoop(t)
	for i := 0; i < 8; i++ {
		sim.Flash[0x0100+i] = uint8(0x40 + i)
	}

	if err := client.PhyInit(); err != nil {
		t.Fatalf("PhyInit: %v", err)
	}

	st, err := client.TapInit()
	if err != nil {
		t.Fatalf("TapInit: %v", err)
	}
	if st != sinowealth.StatusOK {
		t.Fatalf("TapInit status = %s", st)
	}

	id, err := client.TapIDCode()
	if err != nil {
		t.Fatalf("TapIDCode: %v", err)
	}
	if id != 0xC14CC14C {
		t.Fatalf("IDCODE = 0x%08X", id)
	}

	ok, err := client.IcpVerify()
	if err != nil || !ok {
		t.Fatalf("IcpVerify = %v, %v", ok, err)
	}

	data, err := client.IcpRead(0x0100, 8)
	if err != nil {
		t.Fatalf("IcpRead: %v", err)
	}
	want := []byte{0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47}
	if !bytes.Equal(data, want) {
		t.Fatalf("IcpRead = % X, want % X", data, want)
	}

	ok, err = client.IcpWrite(0x0300, []byte{0x12, 0x34})
	if err != nil || !ok {
		t.Fatalf("IcpWrite = %v, %v", ok, err)
	}

	ok, err = client.IcpErase(0x0400)
	if err != nil || !ok {
		t.Fatalf("IcpErase = %v, %v", ok, err)
	}

	reset, err := client.PhyReset()
	if err != nil || !reset {
		t.Fatalf("PhyReset = %v, %v", reset, err)
	}
	if err := client.PhyStop(); err != nil {
		t.Fatalf("PhyStop: %v", err)
	}
}

func TestClientServerTapPrimitives(t *testing.T) {
	client, sim := startLoop(t)

	if err := client.PhyInit(); err != nil {
		t.Fatalf("PhyInit: %v", err)
	}
	if _, err := client.TapInit(); err != nil {
		t.Fatalf("TapInit: %v", err)
	}

	if err := client.TapGotoState(6); err != nil { // Pause-DR
		t.Fatalf("TapGotoState: %v", err)
	}
	state, err := client.TapState()
	if err != nil {
		t.Fatalf("TapState: %v", err)
	}
	if state != 6 {
		t.Fatalf("TapState = %d, want 6", state)
	}

	if err := client.TapReset(); err != nil {
		t.Fatalf("TapReset: %v", err)
	}

	in, err := client.TapIR(0x0E)
	if err != nil {
		t.Fatalf("TapIR: %v", err)
	}
	if in != 0x1 {
		t.Fatalf("TapIR capture = 0x%X", in)
	}

	id, err := client.TapDR(0, 16)
	if err != nil {
		t.Fatalf("TapDR: %v", err)
	}
	if id != 0xC14C {
		t.Fatalf("TapDR = 0x%04X", id)
	}

	if _, err := client.TapDR(0, 13); err == nil {
		t.Fatalf("TapDR accepted an unsupported width")
	}

	if err := client.TapIdleClocks(2); err != nil {
		t.Fatalf("TapIdleClocks: %v", err)
	}
	if err := client.TapBypass(); err != nil {
		t.Fatalf("TapBypass: %v", err)
	}

	sim.Flash[0x0042] = 0x7E
	if _, err := client.TapCodescanRead(0x0042); err != nil {
		t.Fatalf("TapCodescanRead: %v", err)
	}
	b, err := client.TapCodescanRead(0x0042)
	if err != nil {
		t.Fatalf("TapCodescanRead: %v", err)
	}
	if b != 0x7E {
		t.Fatalf("codescan read = 0x%02X, want 0x7E", b)
	}
}
