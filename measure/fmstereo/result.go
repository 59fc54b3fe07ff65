package fmstereo

import (
	"github.com/cwbudde/algo-fmscope/dsp/resample"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
)

// Result holds the full-band estimator outputs of one run.
type Result struct {
	// Rate is the sample rate of the demodulated signal.
	Rate    float64        `json:"rate"`
	Ratio   resample.Ratio `json:"ratio"`
	Samples int            `json:"samples"`
	Display spectrum.Band  `json:"display"`

	// Window is the analysis window name. NoiseBandwidthHz is the
	// equivalent noise bandwidth of one PSD bin.
	Window           string  `json:"window"`
	NoiseBandwidthHz float64 `json:"noise_bandwidth_hz"`

	// PSD is the Welch estimate in rad²/Hz.
	PSD spectrum.Curve `json:"psd"`
	// FFT is the single-window magnitude in dB.
	FFT         spectrum.Curve       `json:"fft"`
	Spectrogram spectrum.Spectrogram `json:"spectrogram"`

	Report Report `json:"report"`
}

// View is the presentation form of a [Result]: each estimate masked to one
// band.
type View struct {
	Band        spectrum.Band        `json:"band"`
	PSD         spectrum.Curve       `json:"psd"`
	FFT         spectrum.Curve       `json:"fft"`
	Spectrogram spectrum.Spectrogram `json:"spectrogram"`
}

// View masks the estimates to the configured display band.
func (r *Result) View() View {
	v, _ := r.ViewBand(r.Display)
	return v
}

// ViewBand masks the estimates to b. The full-band estimates are left
// untouched, so any number of views can be taken.
func (r *Result) ViewBand(b spectrum.Band) (View, error) {
	if err := b.Validate(); err != nil {
		return View{}, err
	}

	return View{
		Band:        b,
		PSD:         r.PSD.Mask(b),
		FFT:         r.FFT.Mask(b),
		Spectrogram: r.Spectrogram.Mask(b),
	}, nil
}
