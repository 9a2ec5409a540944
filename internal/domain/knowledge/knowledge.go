// Package knowledge holds the static table of known issues per symptom
// category and brand, used by the reliability estimator and the diagnoser.
package knowledge

import (
	"github.com/okian/carwise/internal/domain/vehicle"
)

// Category groups issues by the vehicle system they affect.
type Category string

// Symptom categories.
const (
	Engine       Category = "engine"
	Transmission Category = "transmission"
	Electrical   Category = "electrical"
	Brakes       Category = "brakes"
	Suspension   Category = "suspension"
	Cooling      Category = "cooling"
)

// Categories lists every category in presentation order.
var Categories = []Category{Engine, Transmission, Electrical, Brakes, Suspension, Cooling}

// Severity ranks how urgent an issue is.
type Severity string

// Severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one known problem pattern.
type Issue struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Source      string   `json:"source"`
	Category    Category `json:"category"`
}

const defaultKey = "default"

// Lookup returns the issue recorded for (category, brand). For the
// transmission category a gearbox-specific row ("Brand/DCT") wins over the
// plain brand row. Unlisted brands fall back to the category default.
func Lookup(category Category, brand string, transmission vehicle.TransmissionType) Issue {
	rows := table[category]
	brand = vehicle.CanonicalBrand(brand)

	keys := []string{brand, defaultKey}
	if category == Transmission && transmission != "" {
		gearbox := string(transmission)
		keys = []string{brand + "/" + gearbox, brand, defaultKey + "/" + gearbox, defaultKey}
	}
	for _, k := range keys {
		if is, ok := rows[k]; ok {
			is.Category = category
			return is
		}
	}
	return Issue{}
}

// HighMileage is appended to assessments of vehicles past the high-mileage threshold.
func HighMileage() Issue {
	return Issue{
		Title:       "High mileage wear",
		Description: "Past 150,000 km the clutch, suspension bushings, wheel bearings and timing components are often near the end of their life. Budget for replacements and ask for receipts.",
		Severity:    SeverityWarning,
		Source:      "Workshop experience",
		Category:    Engine,
	}
}

var table = map[Category]map[string]Issue{
	Engine: {
		"Volkswagen": {
			Title:       "Timing chain tensioner (TSI)",
			Description: "Early 1.2 and 1.4 TSI engines are known for stretched timing chains. A rattle on cold start is the usual warning sign.",
			Severity:    SeverityWarning,
			Source:      "ADAC Pannenstatistik",
		},
		"Audi": {
			Title:       "Oil consumption (2.0 TFSI)",
			Description: "Some 2.0 TFSI engines burn oil because of piston ring design. Check the service history for oil consumption tests.",
			Severity:    SeverityWarning,
			Source:      "Manufacturer service bulletin",
		},
		"BMW": {
			Title:       "Timing chain wear (N47 diesel)",
			Description: "N47 diesel engines can suffer timing chain failure at the gearbox end. Repairs require engine removal.",
			Severity:    SeverityError,
			Source:      "Owner forums",
		},
		"Mercedes-Benz": {
			Title:       "Injector seal leaks",
			Description: "Diesel engines may leak at the injector seals, causing a tar-like deposit and a smell of exhaust in the cabin.",
			Severity:    SeverityWarning,
			Source:      "Workshop experience",
		},
		"Ford": {
			Title:       "Wet timing belt (1.0 EcoBoost)",
			Description: "The oil-immersed timing belt can degrade and clog the oil pickup. Replace at the recommended interval.",
			Severity:    SeverityError,
			Source:      "Manufacturer service bulletin",
		},
		"Peugeot": {
			Title:       "PureTech timing belt degradation",
			Description: "1.2 PureTech engines shed belt material into the oil. Look for oil pressure warnings and belt inspections in the history.",
			Severity:    SeverityError,
			Source:      "ADAC Pannenstatistik",
		},
		"Renault": {
			Title:       "Oil consumption (1.2 TCe)",
			Description: "Early 1.2 TCe engines are prone to high oil consumption that can end in engine damage.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		"Hyundai": {
			Title:       "Carbon build-up (GDI)",
			Description: "Direct-injection engines accumulate intake valve deposits, leading to rough idle at higher mileage.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
		"Kia": {
			Title:       "Carbon build-up (GDI)",
			Description: "Direct-injection engines accumulate intake valve deposits, leading to rough idle at higher mileage.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
		"Toyota": {
			Title:       "Routine maintenance only",
			Description: "Toyota engines have a strong reliability record. Regular oil changes are the main requirement.",
			Severity:    SeverityInfo,
			Source:      "TÜV Report",
		},
		"Honda": {
			Title:       "Valve clearance adjustment",
			Description: "Many Honda engines need periodic valve clearance checks. Otherwise the engines are very durable.",
			Severity:    SeverityInfo,
			Source:      "TÜV Report",
		},
		"Mazda": {
			Title:       "Oil dilution (Skyactiv-D)",
			Description: "Diesel particulate filter regenerations can dilute engine oil on short-trip cars. Petrol engines are robust.",
			Severity:    SeverityInfo,
			Source:      "Owner forums",
		},
		defaultKey: {
			Title:       "General engine inspection",
			Description: "Check for oil leaks, unusual noises and warning lights, and confirm the service intervals were respected.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
	},
	Transmission: {
		"Volkswagen/DCT": {
			Title:       "DSG mechatronic unit (DQ200)",
			Description: "The dry-clutch 7-speed DSG is known for mechatronic and clutch pack failures. Judder when pulling away is a warning sign.",
			Severity:    SeverityError,
			Source:      "ADAC Pannenstatistik",
		},
		"Ford/DCT": {
			Title:       "PowerShift clutch judder",
			Description: "The dry dual-clutch PowerShift gearbox often shudders at low speed and may need clutch and control unit replacement.",
			Severity:    SeverityError,
			Source:      "Manufacturer service bulletin",
		},
		"Nissan/CVT": {
			Title:       "CVT belt and bearing wear",
			Description: "Jatco CVTs can whine or slip as the belt and bearings wear. Fluid changes every 60,000 km help.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		"Toyota/CVT": {
			Title:       "e-CVT is low maintenance",
			Description: "Toyota hybrid e-CVT units have few known failures.",
			Severity:    SeverityInfo,
			Source:      "TÜV Report",
		},
		"Mercedes-Benz": {
			Title:       "7G-Tronic conductor plate",
			Description: "Faulty conductor plates cause harsh shifts or limp mode. Fluid and filter service history matters.",
			Severity:    SeverityWarning,
			Source:      "Workshop experience",
		},
		"BMW": {
			Title:       "ZF automatic fluid service",
			Description: "ZF gearboxes are robust but benefit from a fluid change around 100,000 km despite 'lifetime' fill claims.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
		"Opel": {
			Title:       "M32 gearbox bearing wear",
			Description: "The M32 six-speed manual gearbox is prone to bearing wear, audible as a whine in 5th and 6th gear.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		defaultKey + "/DCT": {
			Title:       "Dual-clutch service",
			Description: "Dual-clutch gearboxes need regular fluid service. Check for hesitation or judder at low speed.",
			Severity:    SeverityWarning,
			Source:      "Workshop experience",
		},
		defaultKey + "/CVT": {
			Title:       "CVT fluid service",
			Description: "CVTs are sensitive to fluid condition. Ask whether the fluid has been changed.",
			Severity:    SeverityWarning,
			Source:      "Workshop experience",
		},
		defaultKey: {
			Title:       "Gearbox check",
			Description: "Test all gears, listen for whining or grinding, and check clutch bite point on manual cars.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
	},
	Electrical: {
		"BMW": {
			Title:       "Electronic control modules",
			Description: "Footwell and comfort modules may fail after water ingress. Check windows, locks and lights.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		"Mercedes-Benz": {
			Title:       "Sensor and wiring faults",
			Description: "Parking sensors, window regulators and SAM units are common electrical complaints.",
			Severity:    SeverityWarning,
			Source:      "ADAC Pannenstatistik",
		},
		"Volkswagen": {
			Title:       "Infotainment and sensors",
			Description: "Infotainment freezes and faulty sensors are reported; software updates often fix them.",
			Severity:    SeverityInfo,
			Source:      "Manufacturer service bulletin",
		},
		"Renault": {
			Title:       "Keycard and electronics",
			Description: "Keycard readers and dashboard electronics are known weak points.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		"Peugeot": {
			Title:       "BSI module faults",
			Description: "The body control module can trigger unrelated warnings and drain the battery.",
			Severity:    SeverityWarning,
			Source:      "Workshop experience",
		},
		"Tesla": {
			Title:       "Touchscreen and door handles",
			Description: "Early screens suffered from memory wear; retracting door handles may fail.",
			Severity:    SeverityInfo,
			Source:      "Manufacturer service bulletin",
		},
		defaultKey: {
			Title:       "Battery and electrics",
			Description: "Test the battery, all lights and electric windows, and read the fault memory with a diagnostic tool.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
	},
	Brakes: {
		"Tesla": {
			Title:       "Rear caliper corrosion",
			Description: "Regenerative braking leaves friction brakes idle, so calipers and discs may corrode.",
			Severity:    SeverityInfo,
			Source:      "TÜV Report",
		},
		defaultKey: {
			Title:       "Brake wear",
			Description: "Squealing or grinding usually means worn pads or discs. A pulsing pedal points to warped discs.",
			Severity:    SeverityWarning,
			Source:      "Workshop experience",
		},
	},
	Suspension: {
		"Mercedes-Benz": {
			Title:       "Air suspension leaks",
			Description: "Air suspension struts and compressors wear with age; the car sitting low overnight is a warning sign.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		"Audi": {
			Title:       "Control arm bushings",
			Description: "Front control arm bushings wear and cause knocking over bumps.",
			Severity:    SeverityInfo,
			Source:      "TÜV Report",
		},
		defaultKey: {
			Title:       "Suspension wear",
			Description: "Clunks over bumps or uneven tyre wear point to worn shocks, bushings or ball joints.",
			Severity:    SeverityInfo,
			Source:      "Workshop experience",
		},
	},
	Cooling: {
		"BMW": {
			Title:       "Water pump and thermostat",
			Description: "Electric water pumps and thermostats fail regularly on six-cylinder engines.",
			Severity:    SeverityWarning,
			Source:      "Owner forums",
		},
		defaultKey: {
			Title:       "Cooling system check",
			Description: "Overheating points to low coolant, a failing thermostat, water pump or a head gasket leak. Stop driving if the gauge climbs.",
			Severity:    SeverityError,
			Source:      "Workshop experience",
		},
	},
}
