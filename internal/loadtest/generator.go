package loadtest

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/carwise/internal/domain/model"
)

var (
	brands = []model.RepairVehicle{
		{Brand: "Volkswagen", Model: "Golf"},
		{Brand: "BMW", Model: "3 Series"},
		{Brand: "Audi", Model: "A4"},
		{Brand: "Toyota", Model: "Corolla"},
		{Brand: "Mercedes-Benz", Model: "C-Class"},
		{Brand: "Skoda", Model: "Octavia"},
	}
	severities = []model.DamageSeverity{model.SeverityMinor, model.SeverityModerate, model.SeveritySevere}
)

// generateRequests builds n repair requests against garages. A replayRatio
// share of them reuse the body and request_id of an earlier request.
func generateRequests(n int, garages []model.Garage, replayRatio float64, seed uint64, now time.Time) []model.RepairRequest {
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]model.RepairRequest, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && rng.Float64() < replayRatio {
			out = append(out, out[rng.IntN(len(out))])
			continue
		}
		out = append(out, newRequest(rng, garages[rng.IntN(len(garages))], now))
	}
	return out
}

func newRequest(rng *rand.Rand, g model.Garage, now time.Time) model.RepairRequest {
	v := brands[rng.IntN(len(brands))]
	v.ModelYear = now.Year() - rng.IntN(15)
	return model.RepairRequest{
		RequestID:    uuid.NewString(),
		GarageID:     g.ID,
		Vehicle:      v,
		DamageType:   pickDamage(rng, g),
		Severity:     severities[rng.IntN(len(severities))],
		Description:  "load test",
		ContactEmail: "loadtest@example.com",
	}
}

// pickDamage prefers a damage type the garage lists as a service.
func pickDamage(rng *rand.Rand, g model.Garage) string {
	var offered []string
	for _, d := range model.DamageTypes {
		if g.Offers(d) {
			offered = append(offered, d)
		}
	}
	if len(offered) == 0 {
		offered = model.DamageTypes
	}
	return offered[rng.IntN(len(offered))]
}
