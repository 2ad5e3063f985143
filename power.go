package pixels

import (
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Environment variables consulted for the default power preference. Only
// their presence matters; the value is ignored.
const (
	EnvHighPerformance = "PIXELS_HIGH_PERF"
	EnvLowPower        = "PIXELS_LOW_POWER"
)

// PowerPreference selects which kind of GPU adapter Build prefers.
type PowerPreference uint8

const (
	// PowerPreferenceDefault takes the first discrete or integrated adapter.
	PowerPreferenceDefault PowerPreference = iota

	// PowerPreferenceLowPower prefers integrated adapters.
	PowerPreferenceLowPower

	// PowerPreferenceHighPerformance prefers discrete adapters.
	PowerPreferenceHighPerformance
)

// String returns the preference name.
func (p PowerPreference) String() string {
	switch p {
	case PowerPreferenceLowPower:
		return "LowPower"
	case PowerPreferenceHighPerformance:
		return "HighPerformance"
	default:
		return "Default"
	}
}

// AdapterOptions configures adapter selection.
type AdapterOptions struct {
	PowerPreference PowerPreference
}

// DefaultPowerPreference returns the preference implied by the environment.
// PIXELS_HIGH_PERF wins over PIXELS_LOW_POWER when both are set.
func DefaultPowerPreference() PowerPreference {
	if _, ok := os.LookupEnv(EnvHighPerformance); ok {
		return PowerPreferenceHighPerformance
	}
	if _, ok := os.LookupEnv(EnvLowPower); ok {
		return PowerPreferenceLowPower
	}
	return PowerPreferenceDefault
}

// SelectAdapter picks an adapter according to the preference. Discrete and
// integrated GPUs are preferred over other device types and the requested
// kind is preferred over the other; ties go to the earlier adapter. Returns
// nil only when adapters is empty.
func SelectAdapter(adapters []hal.ExposedAdapter, pref PowerPreference) *hal.ExposedAdapter {
	var selected *hal.ExposedAdapter
	best := -1
	for i := range adapters {
		if r := adapterRank(&adapters[i], pref); r > best {
			selected, best = &adapters[i], r
		}
	}
	return selected
}

func adapterRank(a *hal.ExposedAdapter, pref PowerPreference) int {
	discrete := a.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU
	integrated := a.Info.DeviceType == gputypes.DeviceTypeIntegratedGPU
	switch {
	case pref == PowerPreferenceHighPerformance && discrete,
		pref == PowerPreferenceLowPower && integrated:
		return 2
	case discrete || integrated:
		return 1
	default:
		return 0
	}
}
