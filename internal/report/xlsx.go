// Package report writes analysis results to spreadsheet files for sharing
// with non-technical stakeholders.
package report

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/zagros-analytics/suitability-cli/internal/model"
	"github.com/zagros-analytics/suitability-cli/internal/scoring"
)

// WriteCompositeXLSX writes one date's composite index to a workbook.
func WriteCompositeXLSX(path, date string, results []model.CompositeResult) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Composite Index")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Grid ID", "Date", "Index Score", "Category", "Weight Sum"} {
		header.AddCell().Value = h
	}
	for _, r := range results {
		if !r.Defined {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetInt(r.GridID)
		row.AddCell().Value = r.Date
		row.AddCell().SetFloat(r.Score)
		row.AddCell().Value = r.Category
		row.AddCell().SetFloat(r.WeightSum)
	}

	meta := sheet.AddRow()
	meta.AddCell().Value = "date"
	meta.AddCell().Value = date

	return eris.Wrapf(file.Save(path), "report: save %s", path)
}

// WriteAreaXLSX writes an area query result: one summary sheet and one
// per-criterion sheet.
func WriteAreaXLSX(path string, result model.AreaResult) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	addPair(summary, "Overall Status", result.OverallStatus)
	addFloatPair(summary, "Overall Score", result.OverallScore)
	addFloatPair(summary, "Area (km2)", result.AreaKM2)
	addPair(summary, "Orientation", result.Orientation)
	for _, rec := range result.Priority {
		addPair(summary, "Priority", rec)
	}
	for _, rec := range result.General {
		addPair(summary, "Recommendation", rec)
	}

	criteria, err := file.AddSheet("Criteria")
	if err != nil {
		return eris.Wrap(err, "report: add criteria sheet")
	}
	header := criteria.AddRow()
	for _, h := range []string{"Criterion", "Status", "Score", "Mean Value", "Units", "Points"} {
		header.AddCell().Value = h
	}

	names := make([]string, 0, len(result.PerCriterion))
	for name := range result.PerCriterion {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := result.PerCriterion[name]
		row := criteria.AddRow()
		row.AddCell().Value = scoring.DisplayName(name)
		row.AddCell().Value = s.Status
		row.AddCell().SetFloat(s.Score)
		row.AddCell().SetFloat(s.MeanValue)
		row.AddCell().Value = s.Units
		row.AddCell().SetInt(s.PointCount)
	}

	return eris.Wrapf(file.Save(path), "report: save %s", path)
}

func addPair(sheet *xlsx.Sheet, key, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = key
	row.AddCell().Value = value
}

func addFloatPair(sheet *xlsx.Sheet, key string, value float64) {
	row := sheet.AddRow()
	row.AddCell().Value = key
	row.AddCell().SetFloat(value)
}
