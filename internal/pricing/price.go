package pricing

import "errors"

// Validation errors returned by PriceFor.  The ledger surfaces these
// as validation failures to callers.
var (
	ErrNegativeDuration = errors.New("pricing: duration minutes must be non-negative")
	ErrNoPeople         = errors.New("pricing: people count must be at least 1")
	ErrNegativeCount    = errors.New("pricing: device counts must be non-negative")
)

// Allocation maps a device kind to the number of units of that kind in
// a session.  A kind that is absent counts as zero.
type Allocation map[string]int

// HasVR reports whether the allocation contains any VR or MetaBat
// units.  The two kinds share a rate table and are fungible for
// pricing.
func (a Allocation) HasVR() bool { return a["vr"]+a["metabat"] > 0 }

func (a Allocation) hasPS() bool    { return a["ps"] > 0 }
func (a Allocation) hasPC() bool    { return a["pc"] > 0 }
func (a Allocation) hasWheel() bool { return a["wheel"] > 0 }

// PriceFor computes the total price of a device-time block in whole
// currency units.  Pure and deterministic.
//
// Device-kind precedence: VR/MetaBat is priced exclusively and
// overrides every other kind in the allocation.  Otherwise HappyHour
// sums the contributions of each kind present, while NormalHour and
// FunNight pick exactly one kind by Wheel > PC > PS priority.
// Fallback ignores the device mix entirely.  These asymmetries are the
// café's actual rate card and must not be "normalised".
func PriceFor(minutes, people int, devices Allocation, w Window) (int64, error) {
	if minutes < 0 {
		return 0, ErrNegativeDuration
	}
	if people < 1 {
		return 0, ErrNoPeople
	}
	for _, n := range devices {
		if n < 0 {
			return 0, ErrNegativeCount
		}
	}

	heads := int64(people)

	if devices.HasVR() {
		return vrPrice(minutes, heads), nil
	}

	switch w {
	case HappyHour:
		return happyHourPrice(minutes, heads, devices), nil
	case NormalHour:
		return eveningPrice(minutes, heads, devices, normalWheel, normalPC, normalPS), nil
	case FunNight:
		return eveningPrice(minutes, heads, devices, funNightWheel, funNightPC, funNightPS), nil
	default:
		// Flat per person-hour.  Integer division: partial hours
		// bill pro-rata in whole units.
		return int64(minutes) * heads * fallbackPerHeadHour / 60, nil
	}
}

// vrPrice applies the VR duration tiers.  Beyond an hour the price
// pro-rates continuously per minute rather than in blocks.  Note the
// lowest tier makes even a zero-minute block cost the 15-minute price;
// that quirk is intentional and pinned by tests.
func vrPrice(minutes int, heads int64) int64 {
	switch {
	case minutes <= 15:
		return vrCard.UpTo15PerHead * heads
	case minutes <= 30:
		return vrCard.UpTo30PerHead * heads
	case minutes <= 60:
		return vrCard.UpTo60PerHead * heads
	default:
		return int64(minutes) * vrCard.PerMinutePerHead * heads
	}
}

// happyHourPrice sums the per-kind contributions of a mixed
// allocation.
func happyHourPrice(minutes int, heads int64, devices Allocation) int64 {
	blocks := overageBlocks(minutes)
	var total int64

	if devices.hasPS() {
		if minutes <= 30 {
			total += happyPS.ShortPerHead * heads
		} else {
			base := happyPS.BasePerHead * heads
			if heads == 1 {
				base = happyPSSoloBase
			}
			total += base + blocks*happyPS.OveragePerBlock*heads
		}
	}
	if devices.hasPC() {
		if minutes <= 30 {
			total += happyPC.ShortPerHead * heads
		} else {
			total += happyPC.BasePerHead*heads + blocks*happyPC.OveragePerBlock*heads
		}
	}
	if devices.hasWheel() {
		if minutes <= 30 {
			total += happyWheel.ShortPerHead * heads
		} else {
			// Wheel overage is flat, not per head.
			total += happyWheel.BasePerHead*heads + blocks*happyWheel.OveragePerBlock
		}
	}
	return total
}

// eveningPrice covers NormalHour and FunNight, where exactly one
// device kind is billed by Wheel > PC > PS priority.
func eveningPrice(minutes int, heads int64, devices Allocation, wheel wheelRates, pc pcRates, ps psTieredRates) int64 {
	blocks := overageBlocks(minutes)

	switch {
	case devices.hasWheel():
		if minutes <= 30 {
			return wheel.ShortPerHead * heads
		}
		return (wheel.Base + blocks*wheel.OveragePerBlock) * heads

	case devices.hasPC():
		if minutes > pc.FlatAfterMinutes {
			// Flat hourly beyond three hours, no blocking.
			return pc.FlatPerHeadHour * heads * int64(minutes) / 60
		}
		return (pc.Base + blocks*pc.OveragePerBlock) * heads

	case devices.hasPS():
		var base int64
		switch {
		case heads == 1:
			base = ps.SoloBase
		case heads == 2 && ps.DuoBase > 0:
			base = ps.DuoBase
		default:
			base = ps.PerHeadBase * heads
		}
		return base + blocks*ps.OveragePerBlock*heads

	default:
		return 0
	}
}
