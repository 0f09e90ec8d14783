// Package domain holds the recipe-modification service, its collaborator
// interfaces, and the failure taxonomy shared across the application.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dishcraft/dishcraft/internal/observability"
)

// Recipe text bounds. Shorter text carries too little information to modify;
// longer text will not fit the model context alongside the instructions.
const (
	MinRecipeLength = 100
	MaxRecipeLength = 8000
)

// auditSnippetLength bounds the recipe excerpt persisted with a failure.
const auditSnippetLength = 1000

// Generation parameters for recipe rewriting: creative enough to rework a
// dish, bounded enough to return a complete recipe.
const (
	modificationTemperature = 0.7
	modificationMaxTokens   = 2000
)

const (
	promptHeader = "Modify the following recipe so it satisfies every dietary requirement listed below.\n\nDietary requirements:\n"
	promptFooter = "\n\nReturn the complete modified recipe, including the full ingredient list and all preparation steps."
)

// ModifierService orchestrates one recipe modification: validate the text,
// load the user's preferences, prompt the model, validate the reply, and
// record an audit row for every failure on the way out.
type ModifierService struct {
	preferences PreferencesStore
	audit       AuditStore
	client      Completer
}

// NewModifierService creates a new modifier service (DI constructor).
func NewModifierService(preferences PreferencesStore, audit AuditStore, client Completer) *ModifierService {
	return &ModifierService{
		preferences: preferences,
		audit:       audit,
		client:      client,
	}
}

// ModifyRecipe rewrites recipeText according to the stored preferences of
// userID. The reply is returned exactly as the model produced it; callers
// must not assume surrounding whitespace has been stripped.
func (s *ModifierService) ModifyRecipe(ctx context.Context, recipeText, userID string) (string, error) {
	modified, err := s.modify(ctx, recipeText, userID)
	if err != nil {
		s.recordFailure(ctx, recipeText, err)
		return "", err
	}
	return modified, nil
}

func (s *ModifierService) modify(ctx context.Context, recipeText, userID string) (string, error) {
	if strings.TrimSpace(recipeText) == "" {
		return "", fmt.Errorf("%w: recipe text is empty", ErrInvalidInput)
	}
	if n := len([]rune(recipeText)); n < MinRecipeLength {
		return "", fmt.Errorf("%w: recipe text is %d characters, minimum is %d", ErrInvalidInput, n, MinRecipeLength)
	} else if n > MaxRecipeLength {
		return "", fmt.Errorf("%w: recipe text is %d characters, maximum is %d", ErrInvalidInput, n, MaxRecipeLength)
	}

	prefs, err := s.preferences.GetUserPreferences(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		return "", fmt.Errorf("%w: user %s has no dietary preferences on file", ErrPreferencesNotFound, userID)
	}

	prompt := promptHeader + FormatPreferences(prefs) + "\n\nOriginal recipe:\n" + recipeText + promptFooter

	temperature := modificationTemperature
	maxTokens := modificationMaxTokens
	completion, err := s.client.SendMessage(ctx, prompt, &GenerationOverrides{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(completion.Content) == "" {
		return "", fmt.Errorf("%w: model returned a blank modification", ErrEmptyCompletion)
	}

	return completion.Content, nil
}

// recordFailure writes one audit row for the failed attempt. A failed write
// is logged and swallowed so it never masks the original error.
func (s *ModifierService) recordFailure(ctx context.Context, recipeText string, cause error) {
	record := &ModificationError{
		RecipeSnippet: snippet(recipeText, auditSnippetLength),
		Code:          CodeFor(cause),
		Description:   cause.Error(),
		Model:         s.client.Model(),
		OccurredAt:    time.Now(),
	}

	if err := s.audit.Insert(ctx, record); err != nil {
		observability.FromContext(ctx).Warn("failed to write modification audit row",
			observability.Int("code", record.Code),
			observability.Error(err),
		)
	}
}

func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
