package vulkan

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/avenir/engine/core"
)

func TestFenceLedgerFrameLoop(t *testing.T) {
	ledgers := make([]fenceLedger, MaxFramesInFlight)
	for frame := 0; frame < 100; frame++ {
		l := &ledgers[frame%MaxFramesInFlight]
		if err := l.wait(); err != nil {
			t.Fatalf("frame %d wait: %v", frame, err)
		}
		if err := l.reset(); err != nil {
			t.Fatalf("frame %d reset: %v", frame, err)
		}
		if err := l.submit(); err != nil {
			t.Fatalf("frame %d submit: %v", frame, err)
		}
		if l.state != fenceSubmitted {
			t.Fatalf("frame %d state = %s", frame, l.state)
		}
	}
}

func TestFenceLedgerResetBeforeWait(t *testing.T) {
	l := fenceLedger{state: fenceSignaled}
	if err := l.reset(); err != nil {
		t.Fatal(err)
	}
	if err := l.submit(); err != nil {
		t.Fatal(err)
	}
	if err := l.reset(); !errors.Is(err, core.ErrFenceNotWaited) {
		t.Fatalf("reset of submitted fence = %v, want ErrFenceNotWaited", err)
	}
}

func TestFenceLedgerDoubleReset(t *testing.T) {
	l := fenceLedger{state: fenceSignaled}
	if err := l.reset(); err != nil {
		t.Fatal(err)
	}
	if err := l.reset(); !errors.Is(err, core.ErrFenceNotWaited) {
		t.Fatalf("second reset = %v, want ErrFenceNotWaited", err)
	}
}

func TestFenceLedgerSubmitRequiresReset(t *testing.T) {
	l := fenceLedger{state: fenceSignaled}
	if err := l.submit(); err == nil {
		t.Fatal("submitting a signaled fence should fail")
	}
	l = fenceLedger{state: fenceReset}
	if err := l.wait(); err == nil {
		t.Fatal("waiting on an unsubmitted fence should fail")
	}
}

func TestFenceLedgerWaitIsIdempotent(t *testing.T) {
	l := fenceLedger{state: fenceSubmitted}
	for i := 0; i < 3; i++ {
		if err := l.wait(); err != nil {
			t.Fatal(err)
		}
	}
	if l.state != fenceSignaled {
		t.Fatalf("state = %s", l.state)
	}
}
