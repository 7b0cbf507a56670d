package transport

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/olivier-w/ynok/internal/audiobuf"
	"github.com/olivier-w/ynok/internal/transcode"
)

type fakeDevice struct {
	starts   int
	stops    int
	busy     bool
	speed    float64
	started  *audiobuf.Buffer
	startErr error
}

func (d *fakeDevice) Start(buf *audiobuf.Buffer, speed float64) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.starts++
	d.busy = true
	d.speed = speed
	d.started = buf
	return nil
}

func (d *fakeDevice) Stop() {
	d.stops++
	d.busy = false
	d.started = nil
}

func (d *fakeDevice) Busy() bool              { return d.busy }
func (d *fakeDevice) SetSpeed(s float64)      { d.speed = s }
func (d *fakeDevice) Position() time.Duration { return 250 * time.Millisecond }

func scenarioBuffer(t *testing.T) *audiobuf.Buffer {
	t.Helper()
	buf, err := audiobuf.Build(transcode.Signal{0, 1, 0, 1}, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestToggleStartsAndStops(t *testing.T) {
	dev := &fakeDevice{}
	tr := New(dev, Options{})
	buf := scenarioBuffer(t)
	tr.Load(buf)
	tr.SetWidth(100)

	if err := tr.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if tr.State() != Playing || dev.starts != 1 || dev.started != buf {
		t.Fatalf("expected playing with buffer queued, state=%v starts=%d", tr.State(), dev.starts)
	}

	tr.Tick(0.3)
	if err := tr.Toggle(); err != nil {
		t.Fatal(err)
	}
	if tr.State() != Idle || tr.Position() != 0 || dev.busy {
		t.Fatalf("expected idle at 0 with device stopped, state=%v pos=%v", tr.State(), tr.Position())
	}
}

func TestToggleWithoutBuffer(t *testing.T) {
	tr := New(&fakeDevice{}, Options{})
	if err := tr.Toggle(); !errors.Is(err, ErrNoBuffer) {
		t.Fatalf("expected ErrNoBuffer, got %v", err)
	}
	if tr.State() != Idle {
		t.Fatal("transport left idle without a buffer")
	}
}

func TestToggleDeviceStartFailureStaysIdle(t *testing.T) {
	dev := &fakeDevice{startErr: errors.New("boom")}
	tr := New(dev, Options{})
	tr.Load(scenarioBuffer(t))
	if err := tr.Toggle(); err == nil {
		t.Fatal("expected start error")
	}
	if tr.State() != Idle {
		t.Fatal("expected idle after failed start")
	}
}

func TestToggleRestartsDrainingDevice(t *testing.T) {
	dev := &fakeDevice{busy: true}
	tr := New(dev, Options{})
	tr.Load(scenarioBuffer(t))
	dev.busy = true // still draining a previous run

	if err := tr.Toggle(); err != nil {
		t.Fatal(err)
	}
	if dev.starts != 1 || !dev.busy {
		t.Fatalf("expected a fresh start, starts=%d busy=%v", dev.starts, dev.busy)
	}
	if tr.Position() != 0 {
		t.Fatalf("Position() = %v, want 0", tr.Position())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	tr := New(&fakeDevice{}, Options{})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	_ = tr.Toggle()
	tr.Tick(0.2)

	for i := 0; i < 2; i++ {
		tr.Stop()
		if tr.State() != Idle || tr.Position() != 0 {
			t.Fatalf("stop #%d: state=%v pos=%v", i+1, tr.State(), tr.Position())
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	dev := &fakeDevice{}
	tr := New(dev, Options{})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)

	if got := tr.PixelsPerSecond(); got != 100 {
		t.Fatalf("PixelsPerSecond() = %v, want 100", got)
	}
	if err := tr.Toggle(); err != nil {
		t.Fatal(err)
	}

	if tr.Tick(0.5) {
		t.Fatal("playback ended early")
	}
	if math.Abs(tr.Position()-50) > 1e-9 {
		t.Fatalf("Position() after 0.5s = %v, want 50", tr.Position())
	}

	if !tr.Tick(0.5) {
		t.Fatal("expected playback to end after 1.0s")
	}
	if tr.State() != Idle || tr.Position() != 0 {
		t.Fatalf("after end: state=%v pos=%v", tr.State(), tr.Position())
	}
	if dev.busy {
		t.Fatal("device should be stopped when the playhead ends playback")
	}
}

func TestPlayheadMonotonicWhilePlaying(t *testing.T) {
	tr := New(nil, Options{})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(640)
	tr.SetSpeed(0.75)
	_ = tr.Toggle()

	prev := 0.0
	for i := 0; i < 1000 && tr.Playing(); i++ {
		if tr.Tick(1.0 / 60) {
			break
		}
		if tr.Position() < prev || tr.Position() > tr.Width() {
			t.Fatalf("tick %d: position %v (prev %v, width %v)", i, tr.Position(), prev, tr.Width())
		}
		prev = tr.Position()
	}
	if tr.Playing() {
		t.Fatal("playback never ended")
	}
}

func TestResizeDuringPlaybackKeepsEndTime(t *testing.T) {
	tests := []struct {
		name  string
		width float64
	}{
		{"shrink", 60},
		{"grow", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{}
			tr := New(dev, Options{})
			tr.Load(scenarioBuffer(t))
			tr.SetWidth(100)
			_ = tr.Toggle()

			tr.Tick(0.5)
			tr.SetWidth(tt.width)
			if math.Abs(tr.Fraction()-0.5) > 1e-9 {
				t.Fatalf("Fraction() after resize = %v, want 0.5", tr.Fraction())
			}
			if tr.Tick(0.2) || tr.Tick(0.29) {
				t.Fatalf("playback ended early at position %v of %v", tr.Position(), tr.Width())
			}
			if !dev.busy {
				t.Fatal("device stopped before the buffer finished")
			}
			if !tr.Tick(0.02) {
				t.Fatal("expected playback to end once the buffer duration elapsed")
			}
			if tr.Playing() {
				t.Fatal("transport should be idle after the end")
			}
		})
	}
}

func TestIdleDoesNotAdvance(t *testing.T) {
	tr := New(nil, Options{})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	if tr.Tick(5) || tr.Position() != 0 {
		t.Fatalf("idle tick moved playhead to %v", tr.Position())
	}
}

func TestSetSpeedRange(t *testing.T) {
	dev := &fakeDevice{}
	tr := New(dev, Options{})
	for _, m := range []float64{0.25, 4, 1.5} {
		if !tr.SetSpeed(m) {
			t.Fatalf("SetSpeed(%v) rejected", m)
		}
	}
	for _, m := range []float64{0.2, 4.01, 0, -1, math.NaN(), math.Inf(1)} {
		if tr.SetSpeed(m) {
			t.Fatalf("SetSpeed(%v) accepted", m)
		}
		if tr.Speed() != 1.5 {
			t.Fatalf("speed changed to %v by rejected SetSpeed(%v)", tr.Speed(), m)
		}
	}
	if dev.speed != 1.5 {
		t.Fatalf("device speed = %v, want 1.5 with pitch policy", dev.speed)
	}
}

func TestVisualSpeedPolicyLeavesDeviceAtNativeRate(t *testing.T) {
	dev := &fakeDevice{}
	tr := New(dev, Options{SpeedPolicy: VisualSpeed})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	tr.SetSpeed(0.5)
	_ = tr.Toggle()

	if dev.speed != 1 {
		t.Fatalf("device speed = %v, want 1", dev.speed)
	}
	tr.Tick(1)
	if math.Abs(tr.Position()-50) > 1e-9 {
		t.Fatalf("Position() = %v, want 50 at half visual speed", tr.Position())
	}
}

func TestCycleSpeedPresets(t *testing.T) {
	tr := New(nil, Options{})
	want := []float64{0.5, 0.25, 1, 0.5}
	for i, w := range want {
		tr.CycleSpeed()
		if tr.Speed() != w {
			t.Fatalf("cycle %d: speed %v, want %v", i, tr.Speed(), w)
		}
	}
	tr.SetSpeed(3)
	tr.CycleSpeed()
	if tr.Speed() != 1 {
		t.Fatalf("non-preset speed cycled to %v, want 1", tr.Speed())
	}
}

func TestAdjustSpeedClamps(t *testing.T) {
	tr := New(nil, Options{})
	for i := 0; i < 100; i++ {
		tr.AdjustSpeed(0.25)
	}
	if tr.Speed() != DefaultMaxSpeed {
		t.Fatalf("Speed() = %v, want %v", tr.Speed(), DefaultMaxSpeed)
	}
	for i := 0; i < 100; i++ {
		tr.AdjustSpeed(-0.1)
	}
	if tr.Speed() != DefaultMinSpeed {
		t.Fatalf("Speed() = %v, want %v", tr.Speed(), DefaultMinSpeed)
	}
}

func TestLoadWhilePlayingStopsFirst(t *testing.T) {
	dev := &fakeDevice{}
	tr := New(dev, Options{})
	first := scenarioBuffer(t)
	tr.Load(first)
	tr.SetWidth(100)
	_ = tr.Toggle()
	tr.Tick(0.25)

	second, err := audiobuf.Build(make(transcode.Signal, 8), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	tr.Load(second)

	if tr.State() != Idle || tr.Position() != 0 {
		t.Fatalf("after load: state=%v pos=%v", tr.State(), tr.Position())
	}
	if dev.busy || dev.started != nil {
		t.Fatal("previous buffer still queued on the device")
	}
	if tr.Buffer() != second {
		t.Fatal("new buffer not active")
	}
	if got := tr.PixelsPerSecond(); got != 50 {
		t.Fatalf("PixelsPerSecond() = %v, want 50 for a 2s buffer", got)
	}
}

func TestEndOnDrainWaitsForDevice(t *testing.T) {
	dev := &fakeDevice{}
	tr := New(dev, Options{EndPolicy: EndOnDrain})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	_ = tr.Toggle()

	if tr.Tick(2) {
		t.Fatal("ended before the device drained")
	}
	if tr.Position() != 100 {
		t.Fatalf("Position() = %v, want clamped at 100", tr.Position())
	}

	dev.busy = false
	if !tr.Tick(0.016) {
		t.Fatal("expected end once the device drained")
	}
	if tr.State() != Idle || tr.Position() != 0 {
		t.Fatalf("after drain: state=%v pos=%v", tr.State(), tr.Position())
	}
}

func TestEndOnDrainWithoutDeviceFallsBackToPlayhead(t *testing.T) {
	tr := New(nil, Options{EndPolicy: EndOnDrain})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	_ = tr.Toggle()
	if !tr.Tick(1) {
		t.Fatal("expected playhead to end playback without a device")
	}
}

func TestNoDevicePlaysSilently(t *testing.T) {
	tr := New(nil, Options{})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	if err := tr.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	tr.Tick(0.5)
	if tr.Position() != 50 {
		t.Fatalf("Position() = %v, want 50", tr.Position())
	}
	if tr.DevicePosition() != 0 {
		t.Fatal("expected no device position")
	}
	if tr.HasDevice() {
		t.Fatal("HasDevice() = true")
	}
}

func TestStatusText(t *testing.T) {
	tr := New(&fakeDevice{}, Options{})
	tr.Load(scenarioBuffer(t))
	tr.SetWidth(100)
	_ = tr.Toggle()
	tr.Tick(0.5)

	want := "▶ playing  speed 1.00x  0:00.50 / 0:01.00"
	if got := tr.Status(); got != want {
		t.Fatalf("Status() = %q, want %q", got, want)
	}
	if tr.Elapsed() != 500*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 500ms", tr.Elapsed())
	}
	if tr.DevicePosition() != 250*time.Millisecond {
		t.Fatalf("DevicePosition() = %v", tr.DevicePosition())
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseSpeedPolicy("visual"); err != nil || p != VisualSpeed {
		t.Fatalf("ParseSpeedPolicy(visual) = %v, %v", p, err)
	}
	if _, err := ParseSpeedPolicy("tempo"); err == nil {
		t.Fatal("expected error for unknown speed policy")
	}
	if p, err := ParseEndPolicy("drain"); err != nil || p != EndOnDrain {
		t.Fatalf("ParseEndPolicy(drain) = %v, %v", p, err)
	}
	if _, err := ParseEndPolicy("never"); err == nil {
		t.Fatal("expected error for unknown end policy")
	}
}
