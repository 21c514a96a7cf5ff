// Package scoring normalizes raw measurements against guideline values and
// combines normalized criteria into composite indices.
//
// Two scales exist and both are exposed by name, because the system has call
// sites that want each: Severity (0 best, 100 worst; the health-risk scale
// the composite index runs on) and Suitability (100 best, 0 worst; the
// goodness scale area queries report). They are exact complements. Using the
// wrong one is a sign bug, so neither is called "normalize".
package scoring

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// Severity maps a raw measurement onto [0,100] where 0 is harmless and 100
// means the guideline is fully consumed (or, for higher-is-better criteria,
// the value is entirely absent). The boolean is false when the input is NaN:
// an absent measurement is absent, never zero.
func Severity(value, guideline float64, dir model.Direction) (float64, bool) {
	if math.IsNaN(value) || guideline <= 0 {
		return 0, false
	}
	ratio := math.Min(100, 100*value/guideline)
	if ratio < 0 {
		ratio = 0
	}
	if dir == model.HigherIsBetter {
		// Shortfall against the target is the hazard.
		return 100 - ratio, true
	}
	return ratio, true
}

// Suitability is the complementary goodness score: 100-Severity.
func Suitability(value, guideline float64, dir model.Direction) (float64, bool) {
	sev, ok := Severity(value, guideline, dir)
	if !ok {
		return 0, false
	}
	return 100 - sev, true
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a criterion key like "heat_greenspace" as
// "Heat Greenspace" for status labels and reports.
func DisplayName(criterion string) string {
	return titleCaser.String(strings.ReplaceAll(criterion, "_", " "))
}
