package model

// Band is one step of an ascending threshold table: a score is inside the
// band when it is <= Max and above every earlier Max.
type Band struct {
	Max   float64 `json:"max" yaml:"max" mapstructure:"max"`
	Label string  `json:"label" yaml:"label" mapstructure:"label"`
}

// Bands is an ordered set of ascending score thresholds plus an overflow
// label for scores above the last threshold. All band tables in this engine
// are defined on the severity scale (0 best, 100+ worst); callers scoring on
// the suitability scale label 100-score.
type Bands struct {
	Steps    []Band `json:"steps" yaml:"steps" mapstructure:"steps"`
	Overflow string `json:"overflow" yaml:"overflow" mapstructure:"overflow"`
}

// Label returns the band label for a severity score.
func (b Bands) Label(score float64) string {
	for _, s := range b.Steps {
		if score <= s.Max {
			return s.Label
		}
	}
	return b.Overflow
}

// Index returns the position of the band containing score; len(Steps) means
// the overflow band. Recommendation catalogs key on this index.
func (b Bands) Index(score float64) int {
	for i, s := range b.Steps {
		if score <= s.Max {
			return i
		}
	}
	return len(b.Steps)
}

// DefaultIndexBands is the composite-index category table.
func DefaultIndexBands() Bands {
	return Bands{
		Steps: []Band{
			{Max: 20, Label: "Excellent"},
			{Max: 40, Label: "Good"},
			{Max: 60, Label: "Moderate"},
			{Max: 80, Label: "Poor"},
			{Max: 100, Label: "Very Poor"},
		},
		Overflow: "Extremely Poor",
	}
}

// DefaultStatusBands is the area-query status table, also on the severity
// scale: a suitability score s is labelled with Label(100-s), so s >= 80
// lands in the first band.
func DefaultStatusBands() Bands {
	return Bands{
		Steps: []Band{
			{Max: 20, Label: "Excellent"},
			{Max: 40, Label: "Good"},
			{Max: 60, Label: "Moderate"},
			{Max: 80, Label: "Limited"},
		},
		Overflow: "Poor",
	}
}
