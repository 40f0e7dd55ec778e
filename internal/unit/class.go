package unit

// Class categorizes a unit and selects its template.
type Class string

const (
	ClassDestroyer  Class = "destroyer"
	ClassCruiser    Class = "cruiser"
	ClassBattleship Class = "battleship"
	ClassCarrier    Class = "carrier"
	ClassTransport  Class = "transport"
)

// Template carries the standard specification for a unit class. Speeds are
// knots, ranges nautical miles.
type Template struct {
	HullPrefix     string
	MaxSpeed       float64
	CruiseSpeed    float64
	MaxHealth      float64
	MaxFuel        float64
	Armor          float64
	DetectionRange float64
	WeaponRange    float64
	WeaponDamage   float64
	Crew           int
	Tonnage        int
}

// templates holds per-class specifications. Speeds follow representative
// WWII designs (Fletcher, Baltimore, Iowa, Essex, Liberty).
var templates = map[Class]Template{
	ClassDestroyer: {
		HullPrefix:     "DD",
		MaxSpeed:       35.0,
		CruiseSpeed:    15.0,
		MaxHealth:      100.0,
		MaxFuel:        1000.0,
		Armor:          0.05,
		DetectionRange: 10.0,
		WeaponRange:    8.0,
		WeaponDamage:   15.0,
		Crew:           329,
		Tonnage:        2500,
	},
	ClassCruiser: {
		HullPrefix:     "CA",
		MaxSpeed:       33.0,
		CruiseSpeed:    15.0,
		MaxHealth:      150.0,
		MaxFuel:        1200.0,
		Armor:          0.15,
		DetectionRange: 12.0,
		WeaponRange:    12.0,
		WeaponDamage:   25.0,
		Crew:           1142,
		Tonnage:        14500,
	},
	ClassBattleship: {
		HullPrefix:     "BB",
		MaxSpeed:       28.0,
		CruiseSpeed:    14.0,
		MaxHealth:      250.0,
		MaxFuel:        1500.0,
		Armor:          0.35,
		DetectionRange: 14.0,
		WeaponRange:    18.0,
		WeaponDamage:   40.0,
		Crew:           2700,
		Tonnage:        45000,
	},
	ClassCarrier: {
		HullPrefix:     "CV",
		MaxSpeed:       33.0,
		CruiseSpeed:    15.0,
		MaxHealth:      175.0,
		MaxFuel:        2000.0,
		Armor:          0.20,
		DetectionRange: 16.0,
		WeaponRange:    3.0,
		WeaponDamage:   5.0,
		Crew:           2600,
		Tonnage:        27100,
	},
	ClassTransport: {
		HullPrefix:     "AP",
		MaxSpeed:       16.0,
		CruiseSpeed:    11.0,
		MaxHealth:      80.0,
		MaxFuel:        1800.0,
		Armor:          0.0,
		DetectionRange: 8.0,
		WeaponRange:    0.0,
		WeaponDamage:   0.0,
		Crew:           41,
		Tonnage:        14245,
	},
}

// TemplateFor returns the class template, false for an unknown class.
func TemplateFor(c Class) (Template, bool) {
	t, ok := templates[c]
	return t, ok
}

// Classes lists all known unit classes.
func Classes() []Class {
	return []Class{ClassDestroyer, ClassCruiser, ClassBattleship, ClassCarrier, ClassTransport}
}

// DefaultAttributes builds attributes for a class at full health and fuel.
func DefaultAttributes(c Class, t Template) Attributes {
	return Attributes{
		Class:          c,
		MaxSpeed:       t.MaxSpeed,
		CruiseSpeed:    t.CruiseSpeed,
		MaxHealth:      t.MaxHealth,
		Health:         t.MaxHealth,
		MaxFuel:        t.MaxFuel,
		Fuel:           t.MaxFuel,
		Armor:          t.Armor,
		DetectionRange: t.DetectionRange,
		WeaponRange:    t.WeaponRange,
		WeaponDamage:   t.WeaponDamage,
		Crew:           t.Crew,
		Tonnage:        t.Tonnage,
	}
}
