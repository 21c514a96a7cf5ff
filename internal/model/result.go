package model

// NormalizedScore is one criterion's score at one grid point. Ephemeral:
// computed on read, never primary state.
type NormalizedScore struct {
	GridID    int     `json:"grid_id"`
	Criterion string  `json:"criterion"`
	Score     float64 `json:"score"`
	Category  string  `json:"category"`
}

// CompositeResult is the weighted multi-criteria index at one grid point and
// date. Score is meaningful only when Defined is true; a point where every
// criterion was missing is explicitly undefined, not zero.
type CompositeResult struct {
	GridID    int     `json:"grid_id"`
	Date      string  `json:"date"`
	Score     float64 `json:"index_score"`
	Category  string  `json:"category"`
	WeightSum float64 `json:"contributing_weight_sum"`
	Defined   bool    `json:"defined"`
}

// NoDataStatus marks a criterion with no contained points in an area query.
const NoDataStatus = "No Data"

// InsufficientDataStatus is the overall status when no dataset yielded any
// contained point.
const InsufficientDataStatus = "Insufficient Data"

// CriterionSummary is the per-criterion slice of an area query result.
// PointCount always accompanies the score so callers can tell a one-point
// result from a thousand-point one.
type CriterionSummary struct {
	Score           float64  `json:"mean_score"`
	Status          string   `json:"status_label"`
	MeanValue       float64  `json:"mean_value"`
	Units           string   `json:"units,omitempty"`
	PointCount      int      `json:"point_count"`
	Recommendations []string `json:"recommendations,omitempty"`
	NoData          bool     `json:"no_data"`
}

// AreaResult is the full answer to a user-drawn polygon query. Returned by
// value; the engine keeps no reference to it.
type AreaResult struct {
	PerCriterion  map[string]CriterionSummary `json:"per_criterion"`
	OverallScore  float64                     `json:"overall_score"`
	OverallStatus string                      `json:"overall_status"`
	AreaKM2       float64                     `json:"area_km2"`
	PointCount    int                         `json:"point_count"`
	Orientation   string                      `json:"orientation_used"`
	Priority      []string                    `json:"priority_recommendations,omitempty"`
	General       []string                    `json:"general_recommendations,omitempty"`
}
