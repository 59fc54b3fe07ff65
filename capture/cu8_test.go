package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"math/cmplx"
	"testing"
)

func TestDecodeCU8(t *testing.T) {
	dst := make([]complex128, 3)

	n := DecodeCU8(dst, []byte{0, 255, 127, 128, 200})
	if n != 2 {
		t.Fatalf("decoded %d samples, want 2", n)
	}

	if dst[0] != complex(-1, 1) {
		t.Fatalf("dst[0] = %v, want -1+1i", dst[0])
	}

	want := complex(-0.5/127.5, 0.5/127.5)
	if cmplx.Abs(dst[1]-want) > 1e-15 {
		t.Fatalf("dst[1] = %v, want %v", dst[1], want)
	}
}

func TestEncodeDecodeCU8(t *testing.T) {
	src := []complex128{0, 1 - 1i, 0.5 + 0.25i, 2 - 3i}
	raw := make([]byte, 2*len(src))
	EncodeCU8(raw, src)

	got := make([]complex128, len(src))
	DecodeCU8(got, raw)

	// Half a step of quantization, or clipping to full scale.
	for i, x := range src {
		want := complex(math.Max(-1, math.Min(1, real(x))), math.Max(-1, math.Min(1, imag(x))))
		if cmplx.Abs(got[i]-want) > 1/127.5 {
			t.Fatalf("sample %d: got %v, want %v", i, got[i], want)
		}
	}
}

func TestReadCU8Short(t *testing.T) {
	_, err := ReadCU8(context.Background(), bytes.NewReader(make([]byte, 9)), 5)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}

	_, err = ReadCU8(context.Background(), bytes.NewReader(nil), 5)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("empty reader: err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReadCU8Chunks(t *testing.T) {
	n := readChunk + 123
	raw := make([]byte, 2*n)

	for i := range raw {
		raw[i] = byte(i)
	}

	got, err := ReadCU8(context.Background(), bytes.NewReader(raw), n)
	if err != nil {
		t.Fatal(err)
	}

	last := complex((float64(raw[2*n-2])-127.5)/127.5, (float64(raw[2*n-1])-127.5)/127.5)
	if len(got) != n || got[n-1] != last {
		t.Fatalf("len=%d last=%v, want %d and %v", len(got), got[len(got)-1], n, last)
	}
}

func TestReadCU8Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ReadCU8(ctx, bytes.NewReader(make([]byte, 8)), 4); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
