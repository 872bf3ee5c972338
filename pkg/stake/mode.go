package stake

import (
	"fmt"
	"strings"

	"github.com/iwvelando/stake-distributor/pkg/constants"
)

// RoundingMode selects how far each computed stake is rounded up.
type RoundingMode int

const (
	// RoundingInteger rounds every stake up to the next whole unit.
	RoundingInteger RoundingMode = iota
	// RoundingExact keeps cents precision for currencies that support it.
	RoundingExact
)

func (m RoundingMode) String() string {
	switch m {
	case RoundingInteger:
		return constants.RoundingInteger
	case RoundingExact:
		return constants.RoundingExact
	default:
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
}

// ParseRoundingMode maps a configuration value onto a RoundingMode. An empty
// value selects the default mode.
func ParseRoundingMode(value string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return ParseRoundingMode(constants.DefaultRounding)
	case constants.RoundingInteger, "int", "whole":
		return RoundingInteger, nil
	case constants.RoundingExact, "cents", "decimal":
		return RoundingExact, nil
	default:
		return RoundingInteger, fmt.Errorf("expected rounding mode of %s or %s, got %s",
			constants.RoundingInteger, constants.RoundingExact, value)
	}
}
