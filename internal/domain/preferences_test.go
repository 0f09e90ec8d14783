package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dishcraft/dishcraft/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestFormatPreferences(t *testing.T) {
	t.Run("should render every present field on its own line in fixed order", func(t *testing.T) {
		prefs := &domain.Preferences{
			DietType:            "vegetarian",
			DailyCalorieTarget:  1800,
			Allergies:           []string{"peanuts", "shellfish"},
			Intolerances:        []string{"lactose"},
			PreferredCuisines:   []string{"italian", "thai"},
			ExcludedIngredients: []string{"cilantro"},
			ProteinPercent:      floatPtr(30),
			FatPercent:          floatPtr(20),
			CarbPercent:         floatPtr(50),
		}

		got := domain.FormatPreferences(prefs)
		want := strings.Join([]string{
			"Diet type: vegetarian",
			"Daily calorie target: 1800",
			"Allergies: peanuts, shellfish",
			"Intolerances: lactose",
			"Preferred cuisines: italian, thai",
			"Excluded ingredients: cilantro",
			"Macro distribution: Protein: 30%, Fats: 20%, Carbohydrates: 50%",
		}, "\n")
		require.Equal(t, want, got)
	})

	t.Run("should omit absent fields entirely", func(t *testing.T) {
		prefs := &domain.Preferences{DietType: "keto"}

		got := domain.FormatPreferences(prefs)
		require.Equal(t, "Diet type: keto", got)
		require.NotContains(t, got, "calorie")
		require.NotContains(t, got, "0%")
	})

	t.Run("should render partial macro sets without the missing macro", func(t *testing.T) {
		prefs := &domain.Preferences{
			ProteinPercent: floatPtr(30),
			CarbPercent:    floatPtr(50),
		}

		got := domain.FormatPreferences(prefs)
		require.Equal(t, "Macro distribution: Protein: 30%, Carbohydrates: 50%", got)
		require.NotContains(t, got, "Fats")
	})

	t.Run("should drop the macro line when no macro is set", func(t *testing.T) {
		prefs := &domain.Preferences{DietType: "vegan"}
		require.NotContains(t, domain.FormatPreferences(prefs), "Macro distribution")
	})

	t.Run("should render fractional percentages without trailing zeros", func(t *testing.T) {
		prefs := &domain.Preferences{ProteinPercent: floatPtr(32.5)}
		require.Equal(t, "Macro distribution: Protein: 32.5%", domain.FormatPreferences(prefs))
	})

	t.Run("should return empty for a nil record", func(t *testing.T) {
		require.Equal(t, "", domain.FormatPreferences(nil))
	})
}
