package pricing

// The rate card is encoded as one explicit constant structure rather
// than inline conditionals so every boundary figure is auditable and
// testable in isolation.  Two historical copies of this table existed;
// rateCardVersion names the reconciled one in force (see DESIGN.md for
// the boundary choices).
const rateCardVersion = "2024-backend"

// overageBlockMinutes is the billing granularity beyond the first
// priced hour.  Overage is always rounded up, so one minute into a new
// block bills the full block.
const overageBlockMinutes = 30

// vrRates prices VR and MetaBat units.  VR has no HappyHour variant:
// the same duration tiers apply in every window, and beyond an hour
// the price pro-rates continuously per minute instead of in blocks.
type vrRates struct {
	UpTo15PerHead    int64
	UpTo30PerHead    int64
	UpTo60PerHead    int64
	PerMinutePerHead int64 // beyond 60 minutes
}

// shortBaseOverage is the common "first block + overage blocks" shape:
// a flat short-session price for up to 30 minutes, a first-hour base,
// and a per-block overage charge beyond 60 minutes.
type shortBaseOverage struct {
	ShortPerHead    int64 // <= 30 minutes
	BasePerHead     int64 // first hour
	OveragePerBlock int64
}

// psTieredRates prices PS sessions outside HappyHour, where the
// first-hour base depends on party size.
type psTieredRates struct {
	SoloBase        int64 // peopleCount == 1
	DuoBase         int64 // peopleCount == 2 (0 means: fall through to PerHeadBase)
	PerHeadBase     int64 // peopleCount >= 3 (or >= 2 when DuoBase is 0)
	OveragePerBlock int64 // multiplied by headcount
}

// pcRates prices PC sessions outside HappyHour.  Sessions longer than
// FlatAfterMinutes switch to a flat hourly per-head rate with no
// blocking.
type pcRates struct {
	Base             int64 // first hour, multiplied by headcount with overage
	OveragePerBlock  int64
	FlatAfterMinutes int
	FlatPerHeadHour  int64
}

// wheelRates prices racing-wheel sessions outside HappyHour.  Base and
// overage are summed first, then multiplied by headcount.
type wheelRates struct {
	ShortPerHead    int64
	Base            int64
	OveragePerBlock int64
}

var (
	vrCard = vrRates{
		UpTo15PerHead:    50,
		UpTo30PerHead:    100,
		UpTo60PerHead:    180,
		PerMinutePerHead: 3, // 180 per hour, pro-rated
	}

	// HappyHour: PS/PC/Wheel contributions are additive across a mixed
	// allocation.  Note the Wheel overage is a flat charge, not per
	// head; that asymmetry comes from the original card.
	happyPS               = shortBaseOverage{ShortPerHead: 40, BasePerHead: 45, OveragePerBlock: 30}
	happyPSSoloBase int64 = 90
	happyPC               = shortBaseOverage{ShortPerHead: 40, BasePerHead: 50, OveragePerBlock: 30}
	happyWheel            = shortBaseOverage{ShortPerHead: 80, BasePerHead: 120, OveragePerBlock: 60}

	normalPS    = psTieredRates{SoloBase: 140, DuoBase: 120, PerHeadBase: 50, OveragePerBlock: 40}
	normalPC    = pcRates{Base: 60, OveragePerBlock: 40, FlatAfterMinutes: 180, FlatPerHeadHour: 50}
	normalWheel = wheelRates{ShortPerHead: 90, Base: 150, OveragePerBlock: 75}

	funNightPS    = psTieredRates{SoloBase: 100, DuoBase: 0, PerHeadBase: 50, OveragePerBlock: 30}
	funNightPC    = pcRates{Base: 50, OveragePerBlock: 30, FlatAfterMinutes: 180, FlatPerHeadHour: 50}
	funNightWheel = wheelRates{ShortPerHead: 90, Base: 150, OveragePerBlock: 75}

	// Fallback (06:00-08:59 gap): flat per person-hour, device mix
	// ignored entirely.
	fallbackPerHeadHour int64 = 50
)

// RateCardVersion exposes the rate card identifier for logs and
// reports.
func RateCardVersion() string { return rateCardVersion }

// overageBlocks converts minutes beyond the first hour into billed
// 30-minute blocks, rounding up.
func overageBlocks(minutes int) int64 {
	extra := minutes - 60
	if extra <= 0 {
		return 0
	}
	return int64((extra + overageBlockMinutes - 1) / overageBlockMinutes)
}
