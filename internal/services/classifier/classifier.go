package classifier

import (
	"regexp"
	"strings"

	"crowdlog/internal/models"
)

// Plan detection keywords, matched case-sensitively
var PlanKeywords = []string{
	"予算", "計画",
	"Plan", "Budget",
}

// Short plan markers that must match the whole cell
var PlanExact = []string{"予"}

// Actual detection keywords, matched case-sensitively
var ActualKeywords = []string{
	"実績",
	"Actual",
}

// Short actual markers that must match the whole cell
var ActualExact = []string{"実"}

var (
	dayUnitPattern  = regexp.MustCompile(`(?i)(人日|日|\bdays?\b|\bd\b)`)
	hourUnitPattern = regexp.MustCompile(`(?i)(人時|時間|h|hours?|hr\b)`)
)

// ClassifyType resolves a plan/actual cell. ok is false when the value
// carries neither marker.
func ClassifyType(raw string) (t models.RecordType, ok bool) {
	value := strings.TrimSpace(raw)

	if containsAny(value, PlanKeywords) || equalsAny(value, PlanExact) {
		return models.Plan, true
	}
	if containsAny(value, ActualKeywords) || equalsAny(value, ActualExact) {
		return models.Actual, true
	}
	return "", false
}

// UnitMultiplier returns the factor converting a cell in the given unit to
// hours. Day units give HoursPerDay, hour units give 1. known is false for a
// non-empty unit that matches neither; those are treated as hours.
func UnitMultiplier(raw string) (multiplier float64, known bool) {
	unit := strings.TrimSpace(raw)
	switch {
	case unit == "":
		return 1, true
	case dayUnitPattern.MatchString(unit):
		return models.HoursPerDay, true
	case hourUnitPattern.MatchString(unit):
		return 1, true
	}
	return 1, false
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func equalsAny(text string, values []string) bool {
	for _, v := range values {
		if text == v {
			return true
		}
	}
	return false
}
