package emission

import "sort"

type Category string

const (
	CategoryTransportation Category = "transportation"
	CategoryEnergy         Category = "energy"
	CategoryFood           Category = "food"
	CategoryWaste          Category = "waste"
)

var categoryOrder = []Category{
	CategoryTransportation,
	CategoryEnergy,
	CategoryFood,
	CategoryWaste,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := factors[c]
	return ok
}

// Factor is one row of the emission factor table (kg CO2e per unit).
type Factor struct {
	Category      Category `json:"category"`
	Activity      string   `json:"activity"`
	Unit          string   `json:"unit"`
	KgCO2ePerUnit float64  `json:"kgCo2ePerUnit"`
}

type entry struct {
	unit   string
	factor float64
}

// factors is hand-authored configuration; it is never mutated at runtime.
var factors = map[Category]map[string]entry{
	CategoryTransportation: {
		"Car (Petrol)":           {"km", 0.21},
		"Car (Diesel)":           {"km", 0.26},
		"Motorcycle":             {"km", 0.11},
		"Bus":                    {"km", 0.08},
		"Train":                  {"km", 0.04},
		"Flight (Domestic)":      {"km", 0.25},
		"Flight (International)": {"km", 0.30},
		"Auto Rickshaw":          {"km", 0.15},
	},
	CategoryEnergy: {
		"Electricity":      {"kWh", 0.82},
		"Natural Gas":      {"cubic meters", 2.00},
		"LPG":              {"kg", 3.00},
		"Coal":             {"kg", 2.40},
		"Diesel Generator": {"liters", 2.70},
	},
	CategoryFood: {
		"Beef":           {"kg", 27.00},
		"Chicken":        {"kg", 6.90},
		"Fish":           {"kg", 6.10},
		"Pork":           {"kg", 12.10},
		"Dairy Products": {"liters", 3.20},
		"Rice":           {"kg", 2.70},
		"Vegetables":     {"kg", 2.00},
		"Fruits":         {"kg", 1.10},
	},
	CategoryWaste: {
		"General Waste":    {"kg", 0.50},
		"Plastic Waste":    {"kg", 6.00},
		"Paper Waste":      {"kg", 3.30},
		"Food Waste":       {"kg", 3.80},
		"Electronic Waste": {"kg", 300.00},
	},
}

// Categories returns the known categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Lookup returns the factor for an activity within a category.
func Lookup(category Category, activity string) (Factor, error) {
	sub, ok := factors[category]
	if !ok {
		return Factor{}, &LookupError{Category: category, Activity: activity, err: ErrUnknownCategory}
	}
	e, ok := sub[activity]
	if !ok {
		return Factor{}, &LookupError{Category: category, Activity: activity, err: ErrUnknownActivity}
	}
	return Factor{Category: category, Activity: activity, Unit: e.unit, KgCO2ePerUnit: e.factor}, nil
}

// Activities returns the factors of one category sorted by activity name.
func Activities(category Category) ([]Factor, error) {
	sub, ok := factors[category]
	if !ok {
		return nil, &LookupError{Category: category, err: ErrUnknownCategory}
	}
	out := make([]Factor, 0, len(sub))
	for name, e := range sub {
		out = append(out, Factor{Category: category, Activity: name, Unit: e.unit, KgCO2ePerUnit: e.factor})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Activity < out[j].Activity })
	return out, nil
}

// Table returns a copy of the whole table grouped in category order.
func Table() []Factor {
	var out []Factor
	for _, c := range categoryOrder {
		rows, _ := Activities(c)
		out = append(out, rows...)
	}
	return out
}
