package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to GenerationStatus
		want     bool
	}{
		{GenerationPending, GenerationInProgress, true},
		{GenerationPending, GenerationCompleted, true},
		{GenerationPending, GenerationFailed, true},
		{GenerationInProgress, GenerationInProgress, true},
		{GenerationInProgress, GenerationCompleted, true},
		{GenerationInProgress, GenerationFailed, true},
		{GenerationInProgress, GenerationPending, false},
		{GenerationPending, GenerationPending, false},
		{GenerationCompleted, GenerationInProgress, false},
		{GenerationCompleted, GenerationFailed, false},
		{GenerationFailed, GenerationCompleted, false},
		{GenerationFailed, GenerationInProgress, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if GenerationPending.Terminal() || GenerationInProgress.Terminal() {
		t.Fatal("non-terminal states reported terminal")
	}
	if !GenerationCompleted.Terminal() || !GenerationFailed.Terminal() {
		t.Fatal("terminal states not reported terminal")
	}
}

func TestNewPlanGenerationState(t *testing.T) {
	s := NewPlanGenerationState("p1")
	if s.Status != GenerationPending || s.ProgressPercent != 0 {
		t.Fatalf("initial state: %+v", s)
	}
	if s.StartedAt.IsZero() {
		t.Fatal("StartedAt not set")
	}
}
