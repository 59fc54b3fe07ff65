package capture

import (
	"context"
	"fmt"
	"io"
	"math"
)

// cu8Center is the midpoint of the unsigned 8-bit sample range.
const cu8Center = 127.5

// readChunk bounds each read so cancellation is observed between chunks.
const readChunk = 1 << 18

// DecodeCU8 converts interleaved unsigned 8-bit I/Q bytes to samples in
// [-1, 1] using (b-127.5)/127.5. It decodes min(len(dst), len(raw)/2)
// samples and returns that count.
func DecodeCU8(dst []complex128, raw []byte) int {
	n := min(len(dst), len(raw)/2)
	for i := range n {
		dst[i] = complex(
			(float64(raw[2*i])-cu8Center)/cu8Center,
			(float64(raw[2*i+1])-cu8Center)/cu8Center)
	}

	return n
}

// EncodeCU8 is the inverse of [DecodeCU8], rounding and clipping each rail
// to a byte. dst must hold 2*len(src) bytes.
func EncodeCU8(dst []byte, src []complex128) {
	for i, x := range src {
		dst[2*i] = quantize(real(x))
		dst[2*i+1] = quantize(imag(x))
	}
}

func quantize(v float64) byte {
	b := math.Round(v*cu8Center + cu8Center)

	return byte(max(0, min(255, b)))
}

// ReadCU8 reads exactly n samples from r.
func ReadCU8(ctx context.Context, r io.Reader, n int) ([]complex128, error) {
	out := make([]complex128, n)
	buf := make([]byte, 2*min(n, readChunk))

	for done := 0; done < n; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		want := min(n-done, readChunk)
		if _, err := io.ReadFull(r, buf[:2*want]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, fmt.Errorf("read %d of %d samples: %w", done, n, err)
		}

		done += DecodeCU8(out[done:], buf[:2*want])
	}

	return out, nil
}

// discard skips n samples of r.
func discard(r io.Reader, n int) error {
	if n <= 0 {
		return nil
	}

	_, err := io.CopyN(io.Discard, r, int64(2*n))

	return err
}
