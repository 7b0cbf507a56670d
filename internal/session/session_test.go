package session

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/olivier-w/ynok/internal/audiobuf"
	"github.com/olivier-w/ynok/internal/export"
	"github.com/olivier-w/ynok/internal/media"
	"github.com/olivier-w/ynok/internal/transcode"
	"github.com/olivier-w/ynok/internal/transport"
)

func stripeGrid() *media.Grid {
	g := media.NewGrid(4, 1)
	for x := 0; x < 4; x++ {
		v := uint8(0)
		if x%2 == 1 {
			v = 255
		}
		g.Set(x, 0, color.NRGBA{R: v, G: v, B: v, A: 255})
	}
	return g
}

func newSession() *Session {
	tr := transport.New(nil, transport.Options{})
	return New(tr, Params{Mode: transcode.Unipolar, Channels: 1, SampleRate: 4}, nil)
}

func TestSetGridBuildsBuffer(t *testing.T) {
	s := newSession()
	if err := s.SetGrid(stripeGrid(), "stripes.png"); err != nil {
		t.Fatalf("SetGrid() error = %v", err)
	}
	buf := s.Buffer()
	if buf == nil {
		t.Fatal("no buffer after SetGrid")
	}
	if buf.Seconds() != 1 {
		t.Fatalf("Seconds() = %v, want 1", buf.Seconds())
	}
	want := transcode.Signal{0, 1, 0, 1}
	for i, v := range want {
		if buf.Samples()[i] != v {
			t.Fatalf("sample %d = %v, want %v", i, buf.Samples()[i], v)
		}
	}
	if s.Title() != "stripes.png" {
		t.Fatalf("Title() = %q", s.Title())
	}
}

func TestRebuildOnParamChange(t *testing.T) {
	s := newSession()
	if err := s.SetGrid(stripeGrid(), "stripes.png"); err != nil {
		t.Fatal(err)
	}
	if err := s.CycleChannels(); err != nil {
		t.Fatalf("CycleChannels() error = %v", err)
	}
	if got := s.Buffer().Seconds(); got != 0.5 {
		t.Fatalf("stereo Seconds() = %v, want 0.5", got)
	}
	if err := s.ToggleMode(); err != nil {
		t.Fatalf("ToggleMode() error = %v", err)
	}
	if got := s.Buffer().Samples()[0]; got != -1 {
		t.Fatalf("bipolar black = %v, want -1", got)
	}
	if err := s.CycleSampleRate(); err != nil {
		t.Fatalf("CycleSampleRate() error = %v", err)
	}
	if got := s.Params().SampleRate; got != 11025 {
		t.Fatalf("SampleRate = %d, want 11025", got)
	}
}

func TestRebuildFailureKeepsPreviousBuffer(t *testing.T) {
	s := newSession()
	if err := s.SetGrid(stripeGrid(), "stripes.png"); err != nil {
		t.Fatal(err)
	}
	before := s.Buffer()

	if err := s.SetGrid(media.NewGrid(0, 0), "empty.png"); !errors.Is(err, audiobuf.ErrDegenerate) {
		t.Fatalf("SetGrid(empty) error = %v, want ErrDegenerate", err)
	}
	if err := s.SetSampleRate(0); !errors.Is(err, audiobuf.ErrDegenerate) {
		t.Fatalf("SetSampleRate(0) error = %v, want ErrDegenerate", err)
	}
	if err := s.SetChannels(3); !errors.Is(err, audiobuf.ErrChannels) {
		t.Fatalf("SetChannels(3) error = %v, want ErrChannels", err)
	}
	if s.Buffer() != before || s.Path() != "stripes.png" || s.Params().SampleRate != 4 {
		t.Fatal("failed rebuild changed the session")
	}
}

func TestRebuildStopsPlayback(t *testing.T) {
	s := newSession()
	if err := s.SetGrid(stripeGrid(), "stripes.png"); err != nil {
		t.Fatal(err)
	}
	tr := s.Transport()
	if err := tr.Toggle(); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleMode(); err != nil {
		t.Fatal(err)
	}
	if tr.State() != transport.Idle {
		t.Fatalf("state after rebuild = %v, want Idle", tr.State())
	}
}

func TestParamsWithoutImage(t *testing.T) {
	s := newSession()
	if err := s.SetChannels(2); err != nil {
		t.Fatalf("SetChannels() error = %v", err)
	}
	if s.Params().Channels != 2 || s.Buffer() != nil {
		t.Fatalf("params = %+v, buffer = %v", s.Params(), s.Buffer())
	}
}

func TestOpenAndExport(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.White)
	path := filepath.Join(dir, "tiny.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s := newSession()
	if err := s.Open(path); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Grid().Width != 2 || s.Buffer().Len() != 4 {
		t.Fatalf("grid %dx?, buffer len %d", s.Grid().Width, s.Buffer().Len())
	}

	if err := s.Open(filepath.Join(dir, "missing.png")); !errors.Is(err, media.ErrLoad) {
		t.Fatalf("Open(missing) error = %v, want ErrLoad", err)
	}
	if s.Path() != path {
		t.Fatal("failed Open replaced the image")
	}

	out := filepath.Join(dir, s.DefaultExportName())
	if err := s.Export(out); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filepath.Base(out) != "tiny.wav" || !export.Exists(out) {
		t.Fatalf("export %s missing", out)
	}
}

func TestExportWithoutImage(t *testing.T) {
	s := newSession()
	err := s.Export(filepath.Join(t.TempDir(), "x.wav"))
	if !errors.Is(err, export.ErrEmptyBuffer) {
		t.Fatalf("Export() error = %v, want ErrEmptyBuffer", err)
	}
}

func TestExportJobCapturesBuffer(t *testing.T) {
	s := newSession()
	if err := s.SetGrid(stripeGrid(), "stripes.png"); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "snap.wav")
	job := s.ExportJob(out)

	if err := s.SetGrid(media.NewGrid(8, 8), "big.png"); err != nil {
		t.Fatal(err)
	}
	if err := job(); err != nil {
		t.Fatalf("job() error = %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	// 44-byte header plus four 16-bit samples.
	if info.Size() != 44+4*2 {
		t.Fatalf("exported %d bytes, want %d", info.Size(), 44+4*2)
	}
}
