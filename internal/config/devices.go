package config

// This file describes the station inventory of the floor: how many
// numbered units of each device kind are installed.  Unit numbers run
// from 1 to the configured limit.  The defaults match a typical floor
// and can be overridden per kind via environment variables so a venue
// can grow without a code change.

import (
	"strings"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// defaultDeviceLimits is the installed unit count per device kind.
var defaultDeviceLimits = map[string]int{
	model.DevicePS:      6,
	model.DevicePC:      10,
	model.DeviceVR:      2,
	model.DeviceWheel:   2,
	model.DeviceMetaBat: 1,
}

// LoadDeviceLimits returns the unit limit per device kind, applying
// environment overrides of the form DEVICE_LIMIT_PS, DEVICE_LIMIT_PC and
// so on.  A malformed or non-positive override keeps the default.
func LoadDeviceLimits() map[string]int {
	limits := make(map[string]int, len(defaultDeviceLimits))
	for kind, def := range defaultDeviceLimits {
		limits[kind] = envInt("DEVICE_LIMIT_"+strings.ToUpper(kind), def)
		if limits[kind] < 1 {
			limits[kind] = def
		}
	}
	return limits
}
