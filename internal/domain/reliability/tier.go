package reliability

// Tier is the purchase recommendation derived from a score.
type Tier string

// Recommendation tiers, best first.
const (
	TierBuy               Tier = "buy"
	TierBuyWithInspection Tier = "buy_with_inspection"
	TierCaution           Tier = "caution"
	TierAvoid             Tier = "avoid"
)

// Tier breakpoints.
const (
	buyThreshold        = 80
	inspectionThreshold = 65
	cautionThreshold    = 50
)

// TierFor maps score to a tier. The mapping is monotonic in score.
func TierFor(score int) Tier {
	switch {
	case score >= buyThreshold:
		return TierBuy
	case score >= inspectionThreshold:
		return TierBuyWithInspection
	case score >= cautionThreshold:
		return TierCaution
	default:
		return TierAvoid
	}
}

// Rank orders tiers from worst (0) to best (3).
func (t Tier) Rank() int {
	switch t {
	case TierBuy:
		return 3
	case TierBuyWithInspection:
		return 2
	case TierCaution:
		return 1
	default:
		return 0
	}
}

var tierTemplates = map[Tier]string{
	TierBuy:               "This %s scores %d/100 and looks like a sound purchase.",
	TierBuyWithInspection: "This %s scores %d/100. It is a reasonable buy after an independent pre-purchase inspection.",
	TierCaution:           "This %s scores %d/100. Buy only with a full service history and a price that reflects the risks.",
	TierAvoid:             "This %s scores %d/100. Expect significant repair costs; we advise against buying it.",
}
