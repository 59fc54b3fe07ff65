// Package fmstereo analyzes the demodulated baseband of an FM broadcast.
//
// A capture centred on a station is shifted, channel filtered, amplitude
// limited, resampled to the analysis rate and FM-demodulated. Three
// estimators then describe the stereo multiplex: a Welch PSD, a single
// windowed FFT and an STFT spectrogram. A [Report] reads the 19 kHz pilot,
// the 38 kHz stereo subcarrier and the 57 kHz RDS carrier off the PSD.
//
// # Usage
//
//	cfg := fmstereo.DefaultConfig()
//	cfg.StationHz = 98.5e6
//	a, err := fmstereo.New(cfg, fmstereo.WithLogger(logger))
//	if err != nil {
//	    return err // configuration error, nothing was captured
//	}
//	res, err := a.Run(ctx, capture.NewRTLTCP("127.0.0.1:1234"))
//	view := res.View() // PSD, FFT and spectrogram masked to 0-60 kHz
//
// Every stage allocates its output; inputs are never modified.
package fmstereo
