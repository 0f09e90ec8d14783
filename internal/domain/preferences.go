package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPreferences renders a preference record into the constraint block
// embedded in the modification prompt. Output is deterministic: fields appear
// in a fixed order and absent fields are omitted entirely, never rendered as
// zero or empty.
func FormatPreferences(prefs *Preferences) string {
	if prefs == nil {
		return ""
	}

	lines := make([]string, 0, 7)

	if prefs.DietType != "" {
		lines = append(lines, "Diet type: "+prefs.DietType)
	}
	if prefs.DailyCalorieTarget > 0 {
		lines = append(lines, fmt.Sprintf("Daily calorie target: %d", prefs.DailyCalorieTarget))
	}
	if len(prefs.Allergies) > 0 {
		lines = append(lines, "Allergies: "+strings.Join(prefs.Allergies, ", "))
	}
	if len(prefs.Intolerances) > 0 {
		lines = append(lines, "Intolerances: "+strings.Join(prefs.Intolerances, ", "))
	}
	if len(prefs.PreferredCuisines) > 0 {
		lines = append(lines, "Preferred cuisines: "+strings.Join(prefs.PreferredCuisines, ", "))
	}
	if len(prefs.ExcludedIngredients) > 0 {
		lines = append(lines, "Excluded ingredients: "+strings.Join(prefs.ExcludedIngredients, ", "))
	}
	if macros := formatMacros(prefs); macros != "" {
		lines = append(lines, macros)
	}

	return strings.Join(lines, "\n")
}

// formatMacros renders the single combined macro line. Partial records are
// valid: absent macros are dropped individually, in protein/fat/carbohydrate
// order, and a record with none yields no line at all.
func formatMacros(prefs *Preferences) string {
	parts := make([]string, 0, 3)

	if prefs.ProteinPercent != nil {
		parts = append(parts, "Protein: "+percent(*prefs.ProteinPercent))
	}
	if prefs.FatPercent != nil {
		parts = append(parts, "Fats: "+percent(*prefs.FatPercent))
	}
	if prefs.CarbPercent != nil {
		parts = append(parts, "Carbohydrates: "+percent(*prefs.CarbPercent))
	}

	if len(parts) == 0 {
		return ""
	}
	return "Macro distribution: " + strings.Join(parts, ", ")
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
