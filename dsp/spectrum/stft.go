package spectrum

import (
	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// SpectrogramConfig sets the framing of [STFT].
type SpectrogramConfig struct {
	FrameLength int
	Overlap     int
}

// STFT computes a power spectrogram of sig in dB, 10*log10(P+1e-12).
//
// Frames advance by FrameLength-Overlap samples and are windowed, detrended
// and scaled exactly like [Welch] segments, but kept individually. Frame
// times are the frame centres.
func STFT(sig core.Real, cfg SpectrogramConfig, opts ...Option) (Spectrogram, error) {
	if err := sig.Validate(); err != nil {
		return Spectrogram{}, err
	}

	f, err := newFramer(len(sig.Samples), cfg.FrameLength, cfg.Overlap, sig.SampleRate, opts)
	if err != nil {
		return Spectrogram{}, err
	}

	power := make([][]float64, f.bins())
	for k := range power {
		power[k] = make([]float64, f.frames)
	}

	times := make([]float64, f.frames)

	for i := range f.frames {
		p, err := f.periodogram(sig.Samples, i)
		if err != nil {
			return Spectrogram{}, err
		}

		for k, v := range p {
			power[k][i] = core.PowerToDBFloor(v)
		}

		times[i] = f.center(i)
	}

	return Spectrogram{Freqs: f.freqs(), Times: times, Power: power}, nil
}
