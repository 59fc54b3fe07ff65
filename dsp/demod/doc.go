// Package demod recovers the baseband composite from FM-modulated IQ samples.
//
// The discriminator computes the phase step between consecutive samples,
//
//	y[k] = arg(x[k+1] * conj(x[k]))
//
// which is the instantaneous frequency in radians per sample. The principal
// value keeps every output in (-pi, pi], so deviations up to half the sample
// rate are represented without ambiguity.
package demod
