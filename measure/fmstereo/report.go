package fmstereo

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fmscope/dsp/core"
	"github.com/cwbudde/algo-fmscope/dsp/signal"
	"github.com/cwbudde/algo-fmscope/dsp/spectrum"
	frequencystats "github.com/cwbudde/algo-fmscope/stats/frequency"
	timestats "github.com/cwbudde/algo-fmscope/stats/time"
)

// Landmark and region names.
const (
	LandmarkPilot      = "pilot"
	LandmarkSubcarrier = "subcarrier"
	LandmarkRDS        = "rds"

	RegionMono   = "mono"
	RegionStereo = "stereo"
)

const (
	// DetectionProminenceDB is the margin over the floor that marks a
	// landmark as present.
	DetectionProminenceDB = 10.0
	// landmarkSearchBins is the half-width of the landmark search window.
	landmarkSearchBins = 2
)

// Landmark is a fixed multiplex frequency read off the PSD.
type Landmark struct {
	Name   string        `json:"name"`
	FreqHz float64       `json:"freq_hz"`
	Peak   spectrum.Peak `json:"peak"`

	LevelDB      float64 `json:"level_db"`
	FloorDB      float64 `json:"floor_db"`
	ProminenceDB float64 `json:"prominence_db"`
	Detected     bool    `json:"detected"`

	// DeviationHz is the coherent tone amplitude at FreqHz in the
	// demodulated signal; Injection relates it to 75 kHz. A suppressed
	// carrier such as the 38 kHz subcarrier reads close to zero even when
	// its sidebands are strong.
	DeviationHz float64 `json:"deviation_hz"`
	Injection   float64 `json:"injection"`
}

// Region is a stretch of the multiplex summarized by band statistics.
type Region struct {
	Name  string               `json:"name"`
	Stats frequencystats.Stats `json:"stats"`
}

// Report summarizes the stereo multiplex of one run.
type Report struct {
	// FloorDB is the median PSD level of the display band.
	FloorDB   float64             `json:"floor_db"`
	Landmarks []Landmark          `json:"landmarks"`
	Regions   []Region            `json:"regions"`
	Deviation timestats.Deviation `json:"deviation"`
}

var (
	landmarks = []struct {
		name string
		freq float64
	}{
		{LandmarkPilot, signal.PilotHz},
		{LandmarkSubcarrier, signal.SubcarrierHz},
		{LandmarkRDS, signal.RDSHz},
	}

	regions = []struct {
		name string
		band spectrum.Band
	}{
		{RegionMono, spectrum.Band{Low: 0, High: 15e3}},
		{RegionStereo, spectrum.Band{Low: 23e3, High: 53e3}},
	}
)

// NewReport reads the landmarks and regions off psd and measures the
// deviation of fm, the discriminator output psd was estimated from.
// Landmarks and regions beyond the PSD's last bin are left out.
func NewReport(psd spectrum.Curve, fm core.Real, display spectrum.Band) (Report, error) {
	if psd.Len() < 2 {
		return Report{}, fmt.Errorf("%w: psd has %d bins", spectrum.ErrNoBins, psd.Len())
	}

	top := psd.Freqs[psd.Len()-1]

	floor, err := frequencystats.Calculate(psd, display)
	if err != nil {
		return Report{}, fmt.Errorf("display band: %w", err)
	}

	deviation, err := timestats.DeviationOf(fm, signal.MaxDeviationHz)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		FloorDB:   floor.FloorDB,
		Deviation: deviation,
	}

	var (
		names []string
		freqs []float64
	)

	for _, lm := range landmarks {
		if lm.freq < top {
			names = append(names, lm.name)
			freqs = append(freqs, lm.freq)
		}
	}

	amps, err := spectrum.ToneAmplitudes(fm, freqs...)
	if err != nil {
		return Report{}, err
	}

	tol := landmarkSearchBins * psd.Resolution()
	for i, name := range names {
		peak, err := psd.PeakNear(freqs[i], tol)
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", name, err)
		}

		devHz := amps[i] * fm.SampleRate / (2 * math.Pi)

		lm := Landmark{
			Name:        name,
			FreqHz:      freqs[i],
			Peak:        peak,
			LevelDB:     core.PowerToDBFloor(peak.Value),
			FloorDB:     r.FloorDB,
			DeviationHz: devHz,
			Injection:   devHz / signal.MaxDeviationHz,
		}
		lm.ProminenceDB = lm.LevelDB - lm.FloorDB
		lm.Detected = lm.ProminenceDB >= DetectionProminenceDB

		r.Landmarks = append(r.Landmarks, lm)
	}

	for _, rg := range regions {
		if rg.band.Low >= top {
			continue
		}

		stats, err := frequencystats.Calculate(psd, rg.band)
		if err != nil {
			return Report{}, fmt.Errorf("%s region: %w", rg.name, err)
		}

		r.Regions = append(r.Regions, Region{Name: rg.name, Stats: stats})
	}

	return r, nil
}

// Landmark returns the landmark called name.
func (r Report) Landmark(name string) (Landmark, bool) {
	for _, lm := range r.Landmarks {
		if lm.Name == name {
			return lm, true
		}
	}

	return Landmark{}, false
}

// Region returns the region called name.
func (r Report) Region(name string) (Region, bool) {
	for _, rg := range r.Regions {
		if rg.Name == name {
			return rg, true
		}
	}

	return Region{}, false
}

// Stereo reports whether a pilot was detected.
func (r Report) Stereo() bool {
	lm, ok := r.Landmark(LandmarkPilot)
	return ok && lm.Detected
}
