// Package resample provides rational sample-rate conversion of complex
// baseband buffers using a polyphase FIR with anti-aliasing defaults.
//
// The prototype low-pass is a Kaiser-windowed sinc with 2*Z*max(up,down)+1
// taps, cut off at 1/max(up,down) of the upsampled Nyquist and scaled to a
// DC gain of up. It is centered on the output grid, so output sample m lines
// up with input time m*down/up and the converter adds no delay. Samples
// outside the buffer are treated as zero.
//
// Quality modes:
//   - QualityFast: fewer taps, wider transition band
//   - QualityBalanced: default mode
//   - QualityBest: higher attenuation
//
// Default quality/performance matrix:
//
//	mode            zero crossings   kaiser beta   nominal stopband
//	QualityFast     6                5.0           ~50 dB
//	QualityBalanced 10               5.0           ~55 dB
//	QualityBest     16               8.6           ~85 dB
//
// Common workflows:
//   - NewRational(up, down, opts...)
//   - NewForRates(inRate, outRate, opts...)
//   - RatioForRates(inRate, outRate, opts...)
//   - Resample(input, up, down, opts...)
package resample
