package core

import (
	"math"
	"testing"
)

func TestMetricsFrameTimeAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < avgCount; i++ {
		m.Update(0.010)
	}
	if math.Abs(m.FrameTime()-10) > 1e-9 {
		t.Fatalf("frame time = %v, want 10ms", m.FrameTime())
	}

	// the average only refreshes on a full window
	for i := 0; i < avgCount-1; i++ {
		m.Update(0.020)
	}
	if math.Abs(m.FrameTime()-10) > 1e-9 {
		t.Fatalf("frame time changed mid-window: %v", m.FrameTime())
	}
	m.Update(0.020)
	if math.Abs(m.FrameTime()-20) > 1e-9 {
		t.Fatalf("frame time = %v, want 20ms", m.FrameTime())
	}
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	// 60 frames of 20ms cross the one second mark on the 51st update,
	// after 50 frames have been counted.
	for i := 0; i < 60; i++ {
		m.Update(0.020)
	}
	fps, _ := m.Frame()
	if fps != 50 {
		t.Fatalf("fps = %v, want 50", fps)
	}
}
