package reliability

// mileageBand is one row of the mileage ladder. The same row drives the
// score adjustment and the narrative clause so the two cannot drift apart.
type mileageBand struct {
	name       string
	matches    func(km int) bool
	adjustment int
	clause     string
}

// mileageBands is evaluated top to bottom; the first match wins.
var mileageBands = []mileageBand{
	{
		name:       "over_200k",
		matches:    func(km int) bool { return km > 200_000 },
		adjustment: -25,
		clause:     "With more than 200,000 km it is close to the end of its expected service life and major components may need replacement soon.",
	},
	{
		name:       "over_150k",
		matches:    func(km int) bool { return km > 150_000 },
		adjustment: -20,
		clause:     "Beyond 150,000 km, wear parts such as the clutch, suspension and timing components deserve a close inspection.",
	},
	{
		name:       "over_120k",
		matches:    func(km int) bool { return km > 120_000 },
		adjustment: -15,
		clause:     "At over 120,000 km, expect upcoming work on brakes, suspension and the cooling system.",
	},
	{
		name:       "over_100k",
		matches:    func(km int) bool { return km > 100_000 },
		adjustment: -10,
		clause:     "Past 100,000 km the major services should be documented in the service book.",
	},
	{
		name:       "over_80k",
		matches:    func(km int) bool { return km > 80_000 },
		adjustment: -5,
		clause:     "Mileage above 80,000 km is normal for most used cars if the service history is complete.",
	},
	{
		name:       "under_30k",
		matches:    func(km int) bool { return km < 30_000 },
		adjustment: 5,
		clause:     "Low mileage under 30,000 km suggests little wear.",
	},
	{
		name:       "average",
		matches:    func(int) bool { return true },
		adjustment: 0,
		clause:     "Mileage between 30,000 and 80,000 km is average.",
	},
}

func bandFor(km int) mileageBand {
	for _, b := range mileageBands {
		if b.matches(km) {
			return b
		}
	}
	return mileageBands[len(mileageBands)-1]
}

// MileageAdjustment returns the score adjustment for km.
func MileageAdjustment(km int) int {
	return bandFor(km).adjustment
}

// AgeAdjustment returns the score adjustment for a vehicle of age years.
func AgeAdjustment(age int) int {
	switch {
	case age > 10:
		return -10
	case age > 5:
		return -5
	default:
		return 0
	}
}
