package device_simulator

import (
	"testing"

	"github.com/LeonardoBeccarini/connevents/internal/services/event"
)

func TestGenerator_Boot(t *testing.T) {
	q := NewQueue(newClock().Now)
	g := NewGenerator(q, 1)
	g.Boot()

	lines := event.NewEngine(nil).Lines("d", q.Pack())
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %v", lines)
	}
	if lines[0] != "d,2016-08-11T10:43:45.000Z,0,SETUP_STARTED" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if want := "d,2016-08-11T10:43:45.000Z,0,RESET_REASON RESET_REASON_"; len(lines[1]) <= len(want) || lines[1][:len(want)] != want {
		t.Fatalf("boot must log a named reset reason, got %q", lines[1])
	}
}

func TestGenerator_ConnectsThenPings(t *testing.T) {
	q := NewQueue(newClock().Now)
	g := NewGenerator(q, 7)
	g.FailureRate = 0
	for i := 0; i < 4; i++ {
		g.Step()
	}
	lines := event.NewEngine(nil).Lines("d", q.Pack())
	want := []string{
		"CELLULAR_READY connected",
		"CLOUD_CONNECTED connected",
		"TESTER_PING 1",
		"TESTER_PING 2",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i, w := range want {
		if got := lines[i][len(lines[i])-len(w):]; got != w {
			t.Errorf("line %d: expected suffix %q, got %q", i, w, lines[i])
		}
	}
}

func TestGenerator_FailuresDecode(t *testing.T) {
	q := NewQueue(newClock().Now)
	g := NewGenerator(q, 42)
	g.FailureRate = 1
	g.Boot()
	for i := 0; i < 20; i++ {
		g.Step()
		for _, line := range event.NewEngine(nil).Lines("d", q.Pack()) {
			if line[len(line)-1] == ',' {
				t.Fatalf("simulator produced an unknown code: %q", line)
			}
		}
	}
}
