package edge

import "testing"

func TestDetector_Sequence(t *testing.T) {
	samples := []float64{0, 0, 5, 5, 0, 0, 5, 0}
	want := []Event{None, None, Started, None, Settled, None, Started, Settled}

	var d Detector
	for i, s := range samples {
		got := d.Observe(s)
		if got != want[i] {
			t.Fatalf("sample[%d]=%v: got %v, want %v", i, s, got, want[i])
		}
	}
}

func TestDetector_InitialZeroIsSilent(t *testing.T) {
	var d Detector
	if got := d.Observe(0); got != None {
		t.Fatalf("zero sample from Idle emitted %v", got)
	}
	if d.Changing() {
		t.Fatalf("detector should still be Idle")
	}
}

func TestDetector_SustainedBurst(t *testing.T) {
	var d Detector
	if got := d.Observe(1); got != Started {
		t.Fatalf("rising edge = %v", got)
	}
	for i := 0; i < 10; i++ {
		if got := d.Observe(3.5); got != None {
			t.Fatalf("sustained positive sample %d emitted %v", i, got)
		}
	}
	if !d.Changing() {
		t.Fatalf("detector should report changing")
	}
	if got := d.Observe(0); got != Settled {
		t.Fatalf("falling edge = %v", got)
	}
}

func TestDetector_Reset(t *testing.T) {
	var d Detector
	d.Observe(2)
	d.Reset()
	if d.Changing() {
		t.Fatalf("reset detector still changing")
	}
	// a zero after reset must not produce a phantom settle
	if got := d.Observe(0); got != None {
		t.Fatalf("zero after reset emitted %v", got)
	}
}

func TestEvent_String(t *testing.T) {
	if Started.String() != "started" || Settled.String() != "settled" || None.String() != "none" {
		t.Fatalf("unexpected event names: %v %v %v", Started, Settled, None)
	}
}
