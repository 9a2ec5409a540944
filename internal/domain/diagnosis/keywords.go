package diagnosis

import (
	"strings"

	"github.com/okian/carwise/internal/domain/knowledge"
)

// keywords maps each category to lower-case fragments that point at it.
var keywords = map[knowledge.Category][]string{
	knowledge.Engine: {
		"engine", "misfire", "stall", "knock", "smoke", "oil", "power loss",
		"loss of power", "rough idle", "check engine", "hesitat", "timing",
	},
	knowledge.Transmission: {
		"gear", "transmission", "clutch", "shift", "slipping", "judder", "jerk",
	},
	knowledge.Electrical: {
		"battery", "alternator", "fuse", "electrical", "electronic", "warning light",
		"won't start", "wont start", "no start", "dashboard", "flicker",
	},
	knowledge.Brakes: {
		"brake", "braking", "squeal", "grinding", "pedal", "abs",
	},
	knowledge.Suspension: {
		"suspension", "clunk", "bump", "steering", "vibrat", "shock", "pulls to",
		"wobble",
	},
	knowledge.Cooling: {
		"overheat", "coolant", "temperature", "radiator", "steam", "thermostat",
	},
}

// Classify returns the categories the symptom text points at, in
// presentation order. Unrecognised text yields an empty slice.
func Classify(symptoms string) []knowledge.Category {
	text := strings.ToLower(symptoms)
	out := make([]knowledge.Category, 0, len(knowledge.Categories))
	for _, c := range knowledge.Categories {
		for _, kw := range keywords[c] {
			if strings.Contains(text, kw) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
