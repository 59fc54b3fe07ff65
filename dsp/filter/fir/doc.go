// Package fir designs and applies linear-phase FIR low-pass filters to
// complex baseband samples.
//
// [LowPass] designs a windowed-sinc prototype with an odd tap count, so the
// response is symmetric and the group delay is a constant (numTaps-1)/2
// samples. [Filter] is a direct-form runtime with a circular delay line.
// [ApplyIQ] performs causal block filtering of a whole [core.IQ] buffer and
// switches to FFT overlap-save for long kernels; both paths produce the same
// samples up to rounding.
package fir
