package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-fmscope/dsp/core"
)

// ErrBadDongle indicates a server that did not answer with an rtl_tcp
// dongle header.
var ErrBadDongle = errors.New("capture: not an rtl_tcp server")

var dongleMagic = [...]byte{'R', 'T', 'L', '0'}

// DongleInfo is the header an rtl_tcp server sends on connection.
type DongleInfo struct {
	Magic     [4]byte
	Tuner     uint32
	GainCount uint32
}

// Valid checks the received magic number matches 'RTL0'.
func (d DongleInfo) Valid() bool {
	return d.Magic == dongleMagic
}

// TunerName returns the tuner chip reported by the server.
func (d DongleInfo) TunerName() string {
	names := [...]string{"unknown", "E4000", "FC0012", "FC0013", "FC2580", "R820T", "R828D"}
	if int(d.Tuner) < len(names) {
		return names[d.Tuner]
	}

	return fmt.Sprintf("tuner(%d)", d.Tuner)
}

type command struct {
	Command   uint8
	Parameter uint32
}

// Command constants defined in rtl_tcp.c
const (
	cmdCenterFreq = iota + 1
	cmdSampleRate
	cmdTunerGainMode
	cmdTunerGain
	cmdFreqCorrection
	cmdTunerIfGain
	cmdTestMode
	cmdAGCMode
)

const defaultSettleSamples = 1 << 15

// RTLTCP captures from an rtl_tcp server.
type RTLTCP struct {
	// Addr is the server address, host:port.
	Addr string
	// DialTimeout bounds connection setup. Zero means no limit beyond ctx.
	DialTimeout time.Duration
	// SettleSamples are read and dropped after tuning, while the dongle
	// still streams at its previous settings.
	SettleSamples int
	// FreqCorrectionPPM is sent when non-zero.
	FreqCorrectionPPM int

	logger *zap.Logger
}

// RTLTCPOption configures an [RTLTCP] source.
type RTLTCPOption func(*RTLTCP)

// WithRTLTCPLogger sets the logger used for connection diagnostics.
func WithRTLTCPLogger(l *zap.Logger) RTLTCPOption {
	return func(s *RTLTCP) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSettleSamples overrides the number of samples dropped after tuning.
func WithSettleSamples(n int) RTLTCPOption {
	return func(s *RTLTCP) {
		if n >= 0 {
			s.SettleSamples = n
		}
	}
}

// WithFreqCorrection sets the tuner frequency correction in ppm.
func WithFreqCorrection(ppm int) RTLTCPOption {
	return func(s *RTLTCP) {
		s.FreqCorrectionPPM = ppm
	}
}

// NewRTLTCP returns a source for the rtl_tcp server at addr.
func NewRTLTCP(addr string, opts ...RTLTCPOption) *RTLTCP {
	s := &RTLTCP{
		Addr:          addr,
		DialTimeout:   5 * time.Second,
		SettleSamples: defaultSettleSamples,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func (s *RTLTCP) name() string { return "rtltcp://" + s.Addr }

// Capture connects, tunes the dongle and reads req.Samples samples. Each
// call uses its own connection.
func (s *RTLTCP) Capture(ctx context.Context, req Request) (core.IQ, error) {
	if err := req.Validate(); err != nil {
		return core.IQ{}, acquisitionError(s.name(), err)
	}

	samples, err := s.capture(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}

		return core.IQ{}, acquisitionError(s.name(), err)
	}

	return core.IQ{Samples: samples, SampleRate: req.SampleRate}, nil
}

func (s *RTLTCP) capture(ctx context.Context, req Request) ([]complex128, error) {
	dialer := net.Dialer{Timeout: s.DialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to spectrum server: %w", err)
	}
	defer conn.Close()

	// Unblock reads and writes once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	r := bufio.NewReaderSize(conn, readChunk)

	var info DongleInfo
	if err := binary.Read(r, binary.BigEndian, &info); err != nil {
		return nil, fmt.Errorf("getting dongle information: %w", err)
	}

	if !info.Valid() {
		return nil, fmt.Errorf("%w: bad magic number %q", ErrBadDongle, info.Magic)
	}

	s.logger.Debug("rtl_tcp connected",
		zap.String("addr", s.Addr),
		zap.String("tuner", info.TunerName()),
		zap.Uint32("gains", info.GainCount))

	if err := s.tune(conn, req); err != nil {
		return nil, err
	}

	if err := discard(r, s.SettleSamples); err != nil {
		return nil, fmt.Errorf("settling: %w", err)
	}

	start := time.Now()

	samples, err := ReadCU8(ctx, r, req.Samples)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("rtl_tcp capture done",
		zap.Int("samples", len(samples)),
		zap.Duration("elapsed", time.Since(start)))

	return samples, nil
}

// tune sends sample rate, center frequency and manual gain, and turns the
// RTL2832 AGC off.
func (s *RTLTCP) tune(conn net.Conn, req Request) error {
	cmds := []command{
		{cmdSampleRate, uint32(math.Round(req.SampleRate))},
		{cmdCenterFreq, uint32(math.Round(req.CenterHz))},
		{cmdTunerGainMode, 1},
		{cmdTunerGain, uint32(int32(math.Round(req.GainDB * 10)))},
		{cmdAGCMode, 0},
	}

	if s.FreqCorrectionPPM != 0 {
		cmds = append(cmds, command{cmdFreqCorrection, uint32(int32(s.FreqCorrectionPPM))})
	}

	for _, c := range cmds {
		if err := binary.Write(conn, binary.BigEndian, c); err != nil {
			return fmt.Errorf("sending command %d: %w", c.Command, err)
		}
	}

	return nil
}
