package scheduler

import (
	"testing"

	"github.com/vango-dev/storefront/pkg/observer"
)

func TestBatchCoalescesTriggers(t *testing.T) {
	l := NewLoop()
	runs := 0
	b := Batch(l, func() { runs++ })

	for i := 0; i < 10; i++ {
		b.Trigger()
	}
	if runs != 0 {
		t.Fatalf("runs before Flush = %d, want 0", runs)
	}

	l.Flush()
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if b.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", b.Runs())
	}

	b.Trigger()
	l.Flush()
	if runs != 2 {
		t.Errorf("runs after second tick = %d, want 2", runs)
	}
}

func TestBatchAsListener(t *testing.T) {
	l := NewLoop()
	runs := 0
	b := Batch(l, func() { runs++ })

	a := observer.New()
	c := observer.New()
	a.Subscribe(b)
	c.Subscribe(b)

	a.Notify()
	c.Notify()
	a.Notify()
	l.Flush()

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestBatchTriggerDuringRunSchedulesAgain(t *testing.T) {
	l := NewLoop()
	runs := 0
	var b *Batched
	b = Batch(l, func() {
		runs++
		if runs == 1 {
			b.Trigger()
		}
	})

	b.Trigger()
	l.Flush()

	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}
