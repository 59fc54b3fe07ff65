// Package spectrum estimates the frequency content of real signals.
//
// Three estimators share one framing model: [Welch] averages density-scaled
// periodograms of overlapping segments, [FFT] takes a single windowed
// transform, and [STFT] keeps every frame to build a spectrogram. Results
// are plain [Curve] and [Spectrogram] values; [Band] masks select a
// frequency range after estimation.
//
// Transforms run on algo-fft plans; a length the planner rejects is
// reported as an error.
package spectrum
