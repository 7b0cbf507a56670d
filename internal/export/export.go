// Package export writes audio buffers to 16-bit PCM files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/olivier-w/ynok/internal/audiobuf"
)

var (
	// ErrExport is wrapped by every export failure.
	ErrExport = errors.New("export failed")
	// ErrEmptyBuffer is returned when there is nothing to write.
	ErrEmptyBuffer = errors.New("nothing to export")
)

// File writes buf to path as FLAC when the extension is .flac and as WAV
// otherwise. The file appears only once it has been written completely.
func File(buf *audiobuf.Buffer, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".flac") {
		return FLAC(buf, path)
	}
	return WAV(buf, path)
}

// Samples returns the quantized payload of buf, padded to whole frames.
func Samples(buf *audiobuf.Buffer) []int16 {
	src := buf.Samples()
	out := make([]int16, buf.Frames()*buf.Channels())
	for i, s := range src {
		out[i] = audiobuf.Quantize(s)
	}
	return out
}

func checkBuffer(buf *audiobuf.Buffer) error {
	if buf == nil || buf.Len() == 0 {
		return fmt.Errorf("%w: %w", ErrExport, ErrEmptyBuffer)
	}
	return nil
}

// writeAtomic writes through a temp file in the destination directory and
// renames it into place on success.
func writeAtomic(path string, write func(w io.WriteSeeker) error) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	// Hide Close from encoders that close their writer.
	if err = write(struct{ io.WriteSeeker }{f}); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

var invalidFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeFilename strips characters invalid in filenames and trims whitespace.
// Falls back to "output" if the result is empty.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "output"
	}
	return name
}

// DefaultName derives an export filename in the current directory from the
// source image path, e.g. "photos/cat.png" -> "cat.wav".
func DefaultName(imagePath, ext string) string {
	if ext == "" {
		ext = ".wav"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	base := filepath.Base(imagePath)
	if imagePath == "" || base == "." || base == string(filepath.Separator) {
		base = ""
	}
	return SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base))) + ext
}

// Exists reports whether path already exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
