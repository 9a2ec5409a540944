package vehicle

import "strings"

// Brand classes used by the estimators. These are fixed lookups.
var (
	reliableBrands = map[string]struct{}{
		"Toyota": {}, "Honda": {}, "Mazda": {}, "Lexus": {}, "Subaru": {}, "Suzuki": {},
	}
	premiumBrands = map[string]struct{}{
		"BMW": {}, "Mercedes-Benz": {}, "Audi": {}, "Porsche": {}, "Land Rover": {}, "Jaguar": {},
	}
)

// brandNames maps lower-case spellings to the canonical brand name.
var brandNames = map[string]string{
	"alfa romeo":    "Alfa Romeo",
	"audi":          "Audi",
	"bmw":           "BMW",
	"citroen":       "Citroën",
	"citroën":       "Citroën",
	"dacia":         "Dacia",
	"fiat":          "Fiat",
	"ford":          "Ford",
	"honda":         "Honda",
	"hyundai":       "Hyundai",
	"jaguar":        "Jaguar",
	"kia":           "Kia",
	"land rover":    "Land Rover",
	"landrover":     "Land Rover",
	"lexus":         "Lexus",
	"mazda":         "Mazda",
	"mercedes":      "Mercedes-Benz",
	"mercedes-benz": "Mercedes-Benz",
	"mercedes benz": "Mercedes-Benz",
	"nissan":        "Nissan",
	"opel":          "Opel",
	"peugeot":       "Peugeot",
	"porsche":       "Porsche",
	"renault":       "Renault",
	"seat":          "Seat",
	"skoda":         "Skoda",
	"škoda":         "Skoda",
	"subaru":        "Subaru",
	"suzuki":        "Suzuki",
	"tesla":         "Tesla",
	"toyota":        "Toyota",
	"volkswagen":    "Volkswagen",
	"vw":            "Volkswagen",
	"volvo":         "Volvo",
}

// CanonicalBrand returns the canonical spelling of brand. Unknown brands are
// returned trimmed but otherwise unchanged.
func CanonicalBrand(brand string) string {
	trimmed := strings.TrimSpace(brand)
	if name, ok := brandNames[strings.ToLower(trimmed)]; ok {
		return name
	}
	return trimmed
}

// IsReliable reports whether brand is in the known-reliable set.
func IsReliable(brand string) bool {
	_, ok := reliableBrands[CanonicalBrand(brand)]
	return ok
}

// IsPremium reports whether brand is in the known premium/complex set.
func IsPremium(brand string) bool {
	_, ok := premiumBrands[CanonicalBrand(brand)]
	return ok
}
