package model

// Device kinds available on the floor.  VR and MetaBat share a rate
// table and are interchangeable for pricing purposes; they remain
// distinct kinds because they occupy different physical units.
const (
	DevicePS      = "ps"
	DevicePC      = "pc"
	DeviceVR      = "vr"
	DeviceWheel   = "wheel"
	DeviceMetaBat = "metabat"
)

// DeviceKinds lists every kind in a stable order.  Used when iterating
// over allocations so output (availability responses, reports) is
// deterministic.
var DeviceKinds = []string{DevicePS, DevicePC, DeviceVR, DeviceWheel, DeviceMetaBat}

// IsDeviceKind reports whether s names a known device kind.
func IsDeviceKind(s string) bool {
	for _, k := range DeviceKinds {
		if k == s {
			return true
		}
	}
	return false
}

// DeviceClaims maps a device kind to the numbered units a session has
// claimed, e.g. {"ps": [2, 5]} means PS machines #2 and #5.  A kind
// that is absent holds no units.  Unit numbers are 1-based and their
// exclusivity across active sessions is enforced by the session
// registry, not by this type.
type DeviceClaims map[string][]int

// Counts reduces the claims to a per-kind unit count, the shape the
// price calculator consumes.
func (d DeviceClaims) Counts() map[string]int {
	counts := make(map[string]int, len(d))
	for kind, units := range d {
		if len(units) > 0 {
			counts[kind] = len(units)
		}
	}
	return counts
}

// Merge folds the units of other into d, kind by kind.  Claims are
// additive for the life of a session; units are only released when the
// session completes or is deleted.
func (d DeviceClaims) Merge(other DeviceClaims) {
	for kind, units := range other {
		d[kind] = append(d[kind], units...)
	}
}

// Total returns the number of claimed units across all kinds.
func (d DeviceClaims) Total() int {
	n := 0
	for _, units := range d {
		n += len(units)
	}
	return n
}
