package types

// Measurement is one daily observation. Precipitation and Temperature are nil
// where the dataset has no value.
type Measurement struct {
	StationID     string   `json:"station"`
	Date          string   `json:"date"`
	Precipitation *float64 `json:"prcp"`
	Temperature   *float64 `json:"tobs"`
}

// DateRange selects measurements by their date string. Bounds are compared
// lexicographically and are inclusive; an empty To leaves the range open.
type DateRange struct {
	From string
	To   string
}

// TemperatureStats holds min/avg/max temperature over a range. All three are
// nil when the range holds no temperature readings.
type TemperatureStats struct {
	Min *float64 `json:"TMIN"`
	Avg *float64 `json:"TAVG"`
	Max *float64 `json:"TMAX"`
}
