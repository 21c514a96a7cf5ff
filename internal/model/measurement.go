package model

// Measurement is one observation of a criterion at a grid point on a date.
// Dates are ISO strings (YYYY-MM-DD) so lexical order is chronological order.
type Measurement struct {
	Date   string  `csv:"date" json:"date"`
	Lat    float64 `csv:"lat" json:"lat"`
	Lon    float64 `csv:"lon" json:"lon"`
	GridID int     `csv:"grid_id" json:"grid_id"`
	Value  float64 `csv:"value" json:"value"`
	Units  string  `csv:"units,omitempty" json:"units,omitempty"`
}

// MeasurementTable holds every observation for one criterion.
// Tables are append-only: new dates are added, existing rows never edited.
type MeasurementTable struct {
	Criterion string        `json:"criterion"`
	Rows      []Measurement `json:"rows"`
}

// Len returns the number of rows.
func (t *MeasurementTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds rows to the table.
func (t *MeasurementTable) Append(rows ...Measurement) {
	t.Rows = append(t.Rows, rows...)
}

// LatestDate returns the most recent date present in the table, or "" when
// the table is empty.
func (t *MeasurementTable) LatestDate() string {
	var latest string
	for i := range t.Rows {
		if t.Rows[i].Date > latest {
			latest = t.Rows[i].Date
		}
	}
	return latest
}

// Dates returns the distinct dates present in the table, in first-seen order.
func (t *MeasurementTable) Dates() []string {
	seen := make(map[string]bool)
	var dates []string
	for i := range t.Rows {
		d := t.Rows[i].Date
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return dates
}
