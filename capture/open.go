package capture

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Open resolves a source specification: "synthetic", "rtltcp://host:port",
// or a path to a .cu8 recording.
func Open(spec string, logger *zap.Logger) (Source, error) {
	switch {
	case spec == "" || spec == "synthetic":
		return NewSynthetic(), nil
	case strings.HasPrefix(spec, "rtltcp://"):
		addr := strings.TrimPrefix(spec, "rtltcp://")
		if addr == "" {
			return nil, fmt.Errorf("%w: empty rtl_tcp address", ErrInvalidRequest)
		}

		return NewRTLTCP(addr, WithRTLTCPLogger(logger)), nil
	default:
		return NewFile(spec), nil
	}
}
