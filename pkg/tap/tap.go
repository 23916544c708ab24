// Package tap tracks the IEEE 1149.1 test access port state machine and
// drives IR/DR scans through a bit-level PHY. The pure state tracking
// (StateMachine) carries no I/O; the Controller binds it to hardware.
package tap

import (
	"fmt"
)

// State represents one of the 16 defined IEEE 1149.1 TAP controller states.
// The numbering is part of the command surface and must not change.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR

	stateCount = 16
)

var stateNames = [stateCount]string{
	"TestLogicReset", "RunTestIdle", "SelectDRScan", "CaptureDR",
	"ShiftDR", "Exit1DR", "PauseDR", "Exit2DR",
	"UpdateDR", "SelectIRScan", "CaptureIR", "ShiftIR",
	"Exit1IR", "PauseIR", "Exit2IR", "UpdateIR",
}

func (s State) String() string {
	if s < stateCount {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Valid reports whether s is one of the 16 defined states.
func (s State) Valid() bool { return s < stateCount }

// transitions[s][tms] is the state after clocking TCK with the given TMS.
var transitions = [stateCount][2]State{
	StateTestLogicReset: {StateRunTestIdle, StateTestLogicReset},
	StateRunTestIdle:    {StateRunTestIdle, StateSelectDRScan},
	StateSelectDRScan:   {StateCaptureDR, StateSelectIRScan},
	StateCaptureDR:      {StateShiftDR, StateExit1DR},
	StateShiftDR:        {StateShiftDR, StateExit1DR},
	StateExit1DR:        {StatePauseDR, StateUpdateDR},
	StatePauseDR:        {StatePauseDR, StateExit2DR},
	StateExit2DR:        {StateShiftDR, StateUpdateDR},
	StateUpdateDR:       {StateRunTestIdle, StateSelectDRScan},
	StateSelectIRScan:   {StateCaptureIR, StateTestLogicReset},
	StateCaptureIR:      {StateShiftIR, StateExit1IR},
	StateShiftIR:        {StateShiftIR, StateExit1IR},
	StateExit1IR:        {StatePauseIR, StateUpdateIR},
	StatePauseIR:        {StatePauseIR, StateExit2IR},
	StateExit2IR:        {StateShiftIR, StateUpdateIR},
	StateUpdateIR:       {StateRunTestIdle, StateSelectDRScan},
}

// NextState returns the next TAP state after clocking TCK with the provided
// TMS value.
func NextState(current State, tms bool) State {
	if !current.Valid() {
		panic(fmt.Sprintf("tap: unhandled state %d", current))
	}
	if tms {
		return transitions[current][1]
	}
	return transitions[current][0]
}

// Sequence captures a TMS drive pattern and the states that result from
// applying it.
type Sequence struct {
	TMS    []bool
	States []State
}

// StateMachine tracks the TAP controller state locally without performing any
// I/O. It produces the TMS sequences a hardware driver replays.
type StateMachine struct {
	state State
}

// NewStateMachine creates a TAP state machine initialized to Test-Logic-Reset.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateTestLogicReset}
}

// State reports the current tracked state.
func (m *StateMachine) State() State { return m.state }

// Clock advances the machine one TCK cycle with the provided TMS bit and
// returns the new state.
func (m *StateMachine) Clock(tms bool) State {
	m.state = NextState(m.state, tms)
	return m.state
}

// Reset applies the IEEE recommendation of five consecutive TMS=1 cycles and
// returns the sequence so it can be forwarded to hardware.
func (m *StateMachine) Reset() Sequence {
	seq := Sequence{
		TMS:    make([]bool, 5),
		States: make([]State, 6),
	}
	seq.States[0] = m.state
	for i := 0; i < 5; i++ {
		seq.TMS[i] = true
		seq.States[i+1] = m.Clock(true)
	}
	return seq
}

// GoTo computes the minimal TMS sequence to reach target from the current
// state and advances the machine along it.
func (m *StateMachine) GoTo(target State) (Sequence, error) {
	path, err := computePath(m.state, target)
	if err != nil {
		return Sequence{}, err
	}
	m.state = target
	return path, nil
}

// computePath runs BFS over the fixed transition graph. TMS=0 edges are
// expanded before TMS=1 edges, so ties resolve to the lexicographically
// smaller sequence and paths are deterministic.
func computePath(from, to State) (Sequence, error) {
	if !from.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid start state %d", from)
	}
	if !to.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid target state %d", to)
	}
	if from == to {
		return Sequence{States: []State{from}}, nil
	}

	var (
		prev    [stateCount]State
		prevTMS [stateCount]bool
		visited [stateCount]bool
		queue   [stateCount]State
	)

	head, tail := 0, 0
	visited[from] = true
	queue[tail] = from
	tail++

	for head < tail && !visited[to] {
		s := queue[head]
		head++
		for _, tms := range [2]bool{false, true} {
			next := NextState(s, tms)
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = s
			prevTMS[next] = tms
			queue[tail] = next
			tail++
		}
	}

	if !visited[to] {
		return Sequence{}, fmt.Errorf("tap: no path from %s to %s", from, to)
	}

	var bits []bool
	for cur := to; cur != from; cur = prev[cur] {
		bits = append(bits, prevTMS[cur])
	}
	// bits is target-to-source; flip it.
	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}

	seq := Sequence{TMS: bits, States: make([]State, 0, len(bits)+1)}
	seq.States = append(seq.States, from)
	s := from
	for _, tms := range bits {
		s = NextState(s, tms)
		seq.States = append(seq.States, s)
	}
	return seq, nil
}
