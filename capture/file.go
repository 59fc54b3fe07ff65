package capture

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// File replays an interleaved unsigned 8-bit IQ recording such as rtl_sdr
// writes. The recording carries no metadata: the sample rate comes from
// the request, and center frequency and gain are ignored.
type File struct {
	Path string
	// Offset skips that many samples at the start of the recording.
	Offset int
}

// NewFile returns a source reading the recording at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Capture reads req.Samples samples after Offset. A recording that is too
// short fails with io.ErrUnexpectedEOF.
func (f *File) Capture(ctx context.Context, req Request) (core.IQ, error) {
	if err := req.Validate(); err != nil {
		return core.IQ{}, acquisitionError(f.Path, err)
	}

	samples, err := f.read(ctx, req.Samples)
	if err != nil {
		return core.IQ{}, acquisitionError(f.Path, err)
	}

	return core.IQ{Samples: samples, SampleRate: req.SampleRate}, nil
}

func (f *File) read(ctx context.Context, n int) ([]complex128, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	if f.Offset > 0 {
		if _, err := fh.Seek(int64(2*f.Offset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seeking to sample %d: %w", f.Offset, err)
		}
	}

	return ReadCU8(ctx, fh, n)
}
