package domain

import "time"

// Preferences is a user's stored dietary constraint record. Any field may be
// absent; absent fields are omitted from the rendered constraint block.
type Preferences struct {
	DietType            string   `json:"diet_type,omitempty"`
	DailyCalorieTarget  int      `json:"daily_calorie_target,omitempty"`
	Allergies           []string `json:"allergies,omitempty"`
	Intolerances        []string `json:"intolerances,omitempty"`
	PreferredCuisines   []string `json:"preferred_cuisines,omitempty"`
	ExcludedIngredients []string `json:"excluded_ingredients,omitempty"`
	ProteinPercent      *float64 `json:"protein_percent,omitempty"`
	FatPercent          *float64 `json:"fat_percent,omitempty"`
	CarbPercent         *float64 `json:"carb_percent,omitempty"`
}

// ModificationError is one persisted audit row for a failed modification
// attempt. Rows are write-once; nothing in the system updates or deletes them.
type ModificationError struct {
	RecipeSnippet string    `json:"recipe_snippet"`
	Code          int       `json:"code"`
	Description   string    `json:"description"`
	Model         string    `json:"model"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Completion is the reply from one successful model call.
type Completion struct {
	Content     string `json:"content"`
	TotalTokens int    `json:"total_tokens"`
}
