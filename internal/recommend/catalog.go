// Package recommend turns per-criterion status labels into actionable
// guidance. The built-in catalog covers the default pollutant family; a YAML
// file can override or extend it per deployment.
package recommend

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Catalog maps criteria and status labels to recommended actions. General
// holds actions keyed on the overall area status.
type Catalog struct {
	Criteria map[string]map[string][]string `yaml:"criteria"`
	General  map[string][]string            `yaml:"general"`
}

// priorityKeywords flag an action as urgent. Matching is case-insensitive
// substring search.
var priorityKeywords = []string{"urgent", "critical", "immediate", "required"}

// Default is the built-in catalog for the six-pollutant family.
func Default() *Catalog {
	return &Catalog{
		Criteria: map[string]map[string][]string{
			"no2": {
				"Moderate": {
					"Monitor traffic density during peak hours",
					"Consider low-emission zones on main corridors",
				},
				"Limited": {
					"Traffic reduction measures required on arterial roads",
					"Expand public transport coverage in the area",
				},
				"Poor": {
					"Urgent: restrict heavy vehicle access",
					"Immediate review of nearby combustion sources",
				},
			},
			"so2": {
				"Moderate": {
					"Audit fuel quality at nearby industrial sites",
				},
				"Limited": {
					"Low-sulfur fuel switch required at local generators",
				},
				"Poor": {
					"Critical: inspect and curtail industrial SO2 emitters",
					"Advise sensitive groups to limit outdoor exposure",
				},
			},
			"co": {
				"Moderate": {
					"Check ventilation around enclosed traffic areas",
				},
				"Limited": {
					"Vehicle emission testing required in the district",
				},
				"Poor": {
					"Urgent: investigate incomplete-combustion sources",
				},
			},
			"hcho": {
				"Moderate": {
					"Survey solvent and coating businesses in the area",
				},
				"Limited": {
					"VOC controls required at identified formaldehyde sources",
				},
				"Poor": {
					"Immediate containment of formaldehyde emitters",
				},
			},
			"aer_ai": {
				"Moderate": {
					"Track dust events and construction activity",
				},
				"Limited": {
					"Dust suppression required at construction and unpaved sites",
				},
				"Poor": {
					"Urgent: issue particulate advisories for outdoor work",
				},
			},
			"o3": {
				"Moderate": {
					"Monitor column ozone trend against seasonal baseline",
				},
				"Limited": {
					"UV exposure advisories required during low-column periods",
				},
				"Poor": {
					"Critical: sustained ozone column depletion, escalate to regional monitoring",
				},
			},
		},
		General: map[string][]string{
			"Moderate": {
				"Suitable for most uses with routine monitoring",
			},
			"Limited": {
				"Site improvements required before residential development",
			},
			"Poor": {
				"Not recommended for sensitive land uses without remediation",
			},
		},
	}
}

// Load reads a YAML catalog and merges it over the default: criterion/status
// entries in the file replace the built-in ones, everything else keeps the
// defaults. An empty path returns the default catalog unchanged.
func Load(path string) (*Catalog, error) {
	catalog := Default()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "recommend: read catalog %s", path)
	}
	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "recommend: parse catalog %s", path)
	}

	for criterion, byStatus := range override.Criteria {
		if catalog.Criteria[criterion] == nil {
			catalog.Criteria[criterion] = map[string][]string{}
		}
		for status, actions := range byStatus {
			catalog.Criteria[criterion][status] = actions
		}
	}
	for status, actions := range override.General {
		catalog.General[status] = actions
	}
	return catalog, nil
}

// For returns the actions for a criterion at a given status label. Unknown
// criteria and clean statuses yield nothing.
func (c *Catalog) For(criterion, status string) []string {
	byStatus, ok := c.Criteria[criterion]
	if !ok {
		return nil
	}
	return byStatus[status]
}

// GeneralFor returns the overall-area actions for a status label.
func (c *Catalog) GeneralFor(status string) []string {
	return c.General[status]
}

// Partition splits actions into priority and general lists, deduplicating
// while preserving first-seen order. An action is priority when it carries an
// urgency keyword.
func Partition(actions []string) (priority, general []string) {
	seen := make(map[string]bool, len(actions))
	for _, a := range actions {
		if seen[a] {
			continue
		}
		seen[a] = true
		if isPriority(a) {
			priority = append(priority, a)
		} else {
			general = append(general, a)
		}
	}
	return priority, general
}

func isPriority(action string) bool {
	lower := strings.ToLower(action)
	for _, kw := range priorityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
