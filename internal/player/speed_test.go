package player

import (
	"bytes"
	"io"
	"testing"
)

func frames(n int) []byte {
	out := make([]int16, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, int16(i), int16(-i))
	}
	return pcm16(out...)
}

func readAllSmall(t *testing.T, r io.Reader, size int) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, size)
	for i := 0; i < 10000; i++ {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
	t.Fatal("reader never reached EOF")
	return nil
}

func TestSpeedReaderPassthroughAtOne(t *testing.T) {
	src := frames(10)
	sr := newSpeedReader(bytes.NewReader(src), deviceFrameSize, 1)
	got := readAllSmall(t, sr, 16)
	if !bytes.Equal(got, src) {
		t.Fatal("1x output differs from source")
	}
}

func TestSpeedReaderDoubleDropsEveryOtherFrame(t *testing.T) {
	sr := newSpeedReader(bytes.NewReader(frames(8)), deviceFrameSize, 2)
	got := readAllSmall(t, sr, 64)
	want := pcm16(0, 0, 2, -2, 4, -4, 6, -6)
	if !bytes.Equal(got, want) {
		t.Fatalf("2x mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSpeedReaderHalfDuplicatesFrames(t *testing.T) {
	sr := newSpeedReader(bytes.NewReader(frames(3)), deviceFrameSize, 0.5)
	got := readAllSmall(t, sr, 8)
	want := pcm16(0, 0, 0, 0, 1, -1, 1, -1, 2, -2, 2, -2)
	if !bytes.Equal(got, want) {
		t.Fatalf("0.5x mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSpeedReaderOutputLengthScales(t *testing.T) {
	const n = 10000
	for _, speed := range []float64{0.25, 0.75, 1.5, 4} {
		sr := newSpeedReader(bytes.NewReader(frames(n)), deviceFrameSize, speed)
		got := len(readAllSmall(t, sr, 4096)) / deviceFrameSize
		want := float64(n) / speed
		if float64(got) < want-2 || float64(got) > want+2 {
			t.Fatalf("speed %v: %d frames, want about %.0f", speed, got, want)
		}
	}
}

func TestSpeedReaderChangesSpeedMidStream(t *testing.T) {
	sr := newSpeedReader(bytes.NewReader(frames(100)), deviceFrameSize, 1)
	buf := make([]byte, 10*deviceFrameSize)
	if _, err := sr.Read(buf); err != nil {
		t.Fatal(err)
	}
	sr.setSpeed(2)
	sr.setSpeed(-1) // ignored
	if sr.currentSpeed() != 2 {
		t.Fatalf("currentSpeed() = %v, want 2", sr.currentSpeed())
	}
	rest := readAllSmall(t, sr, 64)
	if got := len(rest) / deviceFrameSize; got != 45 {
		t.Fatalf("remaining frames = %d, want 45", got)
	}
}

func TestCountingReaderTracksBytes(t *testing.T) {
	cr := &countingReader{reader: bytes.NewReader(make([]byte, 100))}
	_, _ = io.ReadAll(cr)
	if cr.Pos() != 100 {
		t.Fatalf("Pos() = %d, want 100", cr.Pos())
	}
}

func TestIdleOutputIsSafe(t *testing.T) {
	o := &Output{}
	o.Stop()
	o.SetSpeed(2)
	if o.Busy() {
		t.Fatal("idle output reported busy")
	}
	if o.Position() != 0 {
		t.Fatal("idle output reported a position")
	}
	o.Close()
	o.Close()
	if err := o.Start(nil, 1); err == nil {
		t.Fatal("expected error starting a nil buffer")
	}
}

// shortReader hands out at most n bytes per Read.
type shortReader struct {
	r io.Reader
	n int
}

func (s *shortReader) Read(p []byte) (int, error) {
	if len(p) > s.n {
		p = p[:s.n]
	}
	return s.r.Read(p)
}

func TestSpeedReaderKeepsFramesWhole(t *testing.T) {
	src := frames(6)
	sr := newSpeedReader(&shortReader{r: bytes.NewReader(src), n: 6}, deviceFrameSize, 1)

	if n, err := sr.Read(make([]byte, deviceFrameSize-1)); n != 0 || err != nil {
		t.Fatalf("Read(short) = %d, %v; want 0, nil", n, err)
	}
	got := readAllSmall(t, sr, 2*deviceFrameSize+1)
	if len(got)%deviceFrameSize != 0 {
		t.Fatalf("output of %d bytes is not frame aligned", len(got))
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("split frames reordered:\n got %v\nwant %v", got, src)
	}
}

func TestSpeedReaderSmallReadServesPendingFirst(t *testing.T) {
	sr := newSpeedReader(bytes.NewReader(frames(8)), deviceFrameSize, 0.5)
	first := make([]byte, 2*deviceFrameSize)
	if _, err := sr.Read(first); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, pcm16(0, 0, 0, 0)) {
		t.Fatalf("first read = %v", first)
	}
	if n, _ := sr.Read(make([]byte, 1)); n != 0 {
		t.Fatalf("sub-frame read returned %d bytes", n)
	}
	next := make([]byte, deviceFrameSize)
	if _, err := sr.Read(next); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(next, pcm16(1, -1)) {
		t.Fatalf("pending frame skipped: got %v, want frame 1", next)
	}
}

func TestSpeedReaderReportsPendingBytes(t *testing.T) {
	sr := newSpeedReader(bytes.NewReader(frames(100)), deviceFrameSize, 2)
	buf := make([]byte, 10*deviceFrameSize)
	if _, err := sr.Read(buf); err != nil {
		t.Fatal(err)
	}
	// 10 output frames at 2x consume 20 source frames of the 100 pulled in.
	if got, want := sr.pendingBytes(), 80*deviceFrameSize; got != want {
		t.Fatalf("pendingBytes() = %d, want %d", got, want)
	}
}
