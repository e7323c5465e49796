package strategy

import (
	"fmt"
	"sort"
)

// Defaults for the named strategies.
const (
	DefaultAlpha        = 0.6
	DefaultVIXThreshold = 20.0
	DefaultVIXScale     = 1000.0
	DefaultMAWindow     = 200
	DefaultMABuffer     = 0.02
)

type ParamInfo struct {
	Name        string
	Type        string
	Description string
	Default     interface{}
}

type Info struct {
	Name        string
	Description string
	NeedsRegime bool
	Params      []ParamInfo
}

var catalog = []Info{
	{
		Name:        "original",
		Description: "Blend of the normalized threshold-rebalancing signal and the month-end calendar position, traded on the spread.",
		Params: []ParamInfo{
			{Name: "alpha", Type: "float", Description: "Weight of the threshold signal (1-alpha goes to the calendar position)", Default: DefaultAlpha},
		},
	},
	{
		Name:        "retail",
		Description: "Calendar position only: fade the month-end drift, then revert on the last trading day.",
	},
	{
		Name:        "threshold",
		Description: "Normalized threshold-rebalancing signal only.",
	},
	{
		Name:        "vix",
		Description: "Calendar hedge while the volatility index is above a threshold, fully long the risk asset otherwise.",
		NeedsRegime: true,
		Params: []ParamInfo{
			{Name: "threshold", Type: "float", Description: "Volatility index level that activates the hedge", Default: DefaultVIXThreshold},
			{Name: "scale", Type: "float", Description: "Multiplier from threshold to the units stored in the regime file", Default: DefaultVIXScale},
		},
	},
	{
		Name:        "ma",
		Description: "Calendar hedge while the risk asset trades below its moving average, with a hysteresis band.",
		Params: []ParamInfo{
			{Name: "window", Type: "int", Description: "Moving average length in trading days", Default: DefaultMAWindow},
			{Name: "buffer", Type: "float", Description: "Relative band around the average", Default: DefaultMABuffer},
		},
	},
}

// Catalog lists the strategies ByName can build.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, s := range catalog {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// ByName builds a fresh strategy instance. Missing params take their defaults.
func ByName(name string, params map[string]interface{}) (Strategy, error) {
	switch name {
	case "original", "":
		return NewBlend(numParam(params, "alpha", DefaultAlpha)), nil
	case "retail", "calendar":
		return NewCalendarOnly(), nil
	case "threshold":
		return NewThresholdOnly(), nil
	case "vix":
		return NewVIXFilter(
			numParam(params, "threshold", DefaultVIXThreshold),
			numParam(params, "scale", DefaultVIXScale),
		), nil
	case "ma":
		window := int(numParam(params, "window", DefaultMAWindow))
		if window <= 0 {
			return nil, fmt.Errorf("ma window must be positive, got %d", window)
		}
		return NewMAFilter(window, numParam(params, "buffer", DefaultMABuffer)), nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", name)
	}
}

// NeedsRegime reports whether the named strategy reads the regime column.
func NeedsRegime(name string) bool {
	for _, s := range catalog {
		if s.Name == name {
			return s.NeedsRegime
		}
	}
	return false
}

func numParam(m map[string]interface{}, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case float32:
			return float64(x)
		case int:
			return float64(x)
		case int64:
			return float64(x)
		}
	}
	return def
}
