package domain_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dishcraft/dishcraft/internal/domain"
)

// mockPreferences is a mock implementation of domain.PreferencesStore.
type mockPreferences struct {
	prefs *domain.Preferences
	err   error
}

func (m *mockPreferences) GetUserPreferences(_ context.Context, _ string) (*domain.Preferences, error) {
	return m.prefs, m.err
}

// mockAudit is a mock implementation of domain.AuditStore.
type mockAudit struct {
	mu        sync.Mutex
	rows      []*domain.ModificationError
	insertErr error
}

func (m *mockAudit) Insert(_ context.Context, record *domain.ModificationError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, record)
	return nil
}

func (m *mockAudit) all() []*domain.ModificationError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ModificationError(nil), m.rows...)
}

// mockCompleter is a mock implementation of domain.Completer.
type mockCompleter struct {
	mu        sync.Mutex
	prompts   []string
	overrides []*domain.GenerationOverrides
	reply     func(prompt string) (*domain.Completion, error)
}

func (m *mockCompleter) SendMessage(_ context.Context, text string, overrides *domain.GenerationOverrides) (*domain.Completion, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, text)
	m.overrides = append(m.overrides, overrides)
	m.mu.Unlock()
	return m.reply(text)
}

func (m *mockCompleter) Model() string {
	return "gpt-4o-mini"
}

func fixedReply(content string) func(string) (*domain.Completion, error) {
	return func(string) (*domain.Completion, error) {
		return &domain.Completion{Content: content, TotalTokens: 100}, nil
	}
}

func validRecipe() string {
	return strings.Repeat("Chop the onions finely and sweat them in butter. ", 4)
}

func newService(prefs *mockPreferences, audit *mockAudit, client *mockCompleter) *domain.ModifierService {
	return domain.NewModifierService(prefs, audit, client)
}

func TestModifyRecipe(t *testing.T) {
	somePrefs := &domain.Preferences{DietType: "vegan", Allergies: []string{"peanuts"}}

	t.Run("should return the model reply unmodified", func(t *testing.T) {
		client := &mockCompleter{reply: fixedReply("\n  Modified recipe with tofu.\n")}
		svc := newService(&mockPreferences{prefs: somePrefs}, &mockAudit{}, client)

		got, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.NoError(t, err)
		// No trimming: callers must not assume whitespace was stripped.
		require.Equal(t, "\n  Modified recipe with tofu.\n", got)
	})

	t.Run("should embed the preference block and recipe in the prompt", func(t *testing.T) {
		client := &mockCompleter{reply: fixedReply("done")}
		svc := newService(&mockPreferences{prefs: somePrefs}, &mockAudit{}, client)

		recipe := validRecipe()
		_, err := svc.ModifyRecipe(context.Background(), recipe, "u1")
		require.NoError(t, err)

		require.Len(t, client.prompts, 1)
		prompt := client.prompts[0]
		require.Contains(t, prompt, "Diet type: vegan")
		require.Contains(t, prompt, "Allergies: peanuts")
		require.Contains(t, prompt, recipe)
	})

	t.Run("should use the fixed rewriting generation parameters", func(t *testing.T) {
		client := &mockCompleter{reply: fixedReply("done")}
		svc := newService(&mockPreferences{prefs: somePrefs}, &mockAudit{}, client)

		_, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.NoError(t, err)

		require.Len(t, client.overrides, 1)
		require.NotNil(t, client.overrides[0])
		require.Equal(t, 0.7, *client.overrides[0].Temperature)
		require.Equal(t, 2000, *client.overrides[0].MaxTokens)
	})

	t.Run("should reject empty recipe text and audit it as 400", func(t *testing.T) {
		audit := &mockAudit{}
		client := &mockCompleter{reply: fixedReply("unused")}
		svc := newService(&mockPreferences{prefs: somePrefs}, audit, client)

		_, err := svc.ModifyRecipe(context.Background(), "   \n\t ", "u1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		rows := audit.all()
		require.Len(t, rows, 1)
		require.Equal(t, 400, rows[0].Code)
		require.Empty(t, client.prompts)
	})

	t.Run("should enforce the recipe length bounds exactly", func(t *testing.T) {
		client := &mockCompleter{reply: fixedReply("done")}
		svc := newService(&mockPreferences{prefs: somePrefs}, &mockAudit{}, client)
		ctx := context.Background()

		_, err := svc.ModifyRecipe(ctx, strings.Repeat("a", domain.MinRecipeLength-1), "u1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.ModifyRecipe(ctx, strings.Repeat("a", domain.MinRecipeLength), "u1")
		require.NoError(t, err)

		_, err = svc.ModifyRecipe(ctx, strings.Repeat("a", domain.MaxRecipeLength), "u1")
		require.NoError(t, err)

		_, err = svc.ModifyRecipe(ctx, strings.Repeat("a", domain.MaxRecipeLength+1), "u1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("should reject with 422 and one audit row when preferences are missing", func(t *testing.T) {
		audit := &mockAudit{}
		client := &mockCompleter{reply: fixedReply("unused")}
		svc := newService(&mockPreferences{prefs: nil}, audit, client)

		_, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.ErrorIs(t, err, domain.ErrPreferencesNotFound)

		rows := audit.all()
		require.Len(t, rows, 1)
		require.Equal(t, 422, rows[0].Code)
		require.Equal(t, "gpt-4o-mini", rows[0].Model)
		require.False(t, rows[0].OccurredAt.IsZero())
		require.Empty(t, client.prompts)
	})

	t.Run("should reject a whitespace-only reply even though the call succeeded", func(t *testing.T) {
		audit := &mockAudit{}
		client := &mockCompleter{reply: fixedReply("  \n \t ")}
		svc := newService(&mockPreferences{prefs: somePrefs}, audit, client)

		_, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.ErrorIs(t, err, domain.ErrEmptyCompletion)
		require.Len(t, audit.all(), 1)
	})

	t.Run("should audit upstream failures with their classified code", func(t *testing.T) {
		audit := &mockAudit{}
		client := &mockCompleter{reply: func(string) (*domain.Completion, error) {
			return nil, fmt.Errorf("send: %w", domain.ErrRateLimited)
		}}
		svc := newService(&mockPreferences{prefs: somePrefs}, audit, client)

		_, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.ErrorIs(t, err, domain.ErrRateLimited)

		rows := audit.all()
		require.Len(t, rows, 1)
		require.Equal(t, 429, rows[0].Code)
	})

	t.Run("should bound the audited recipe snippet to 1000 characters", func(t *testing.T) {
		audit := &mockAudit{}
		client := &mockCompleter{reply: func(string) (*domain.Completion, error) {
			return nil, domain.ErrUpstreamUnavailable
		}}
		svc := newService(&mockPreferences{prefs: somePrefs}, audit, client)

		long := strings.Repeat("b", 5000)
		_, err := svc.ModifyRecipe(context.Background(), long, "u1")
		require.Error(t, err)

		rows := audit.all()
		require.Len(t, rows, 1)
		require.Len(t, rows[0].RecipeSnippet, 1000)
		require.Equal(t, long[:1000], rows[0].RecipeSnippet)
	})

	t.Run("should not mask the original error when the audit write fails", func(t *testing.T) {
		audit := &mockAudit{insertErr: errors.New("disk full")}
		client := &mockCompleter{reply: fixedReply("unused")}
		svc := newService(&mockPreferences{prefs: nil}, audit, client)

		_, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.ErrorIs(t, err, domain.ErrPreferencesNotFound)
	})

	t.Run("should surface preference store failures without classification", func(t *testing.T) {
		audit := &mockAudit{}
		client := &mockCompleter{reply: fixedReply("unused")}
		svc := newService(&mockPreferences{err: errors.New("redis gone")}, audit, client)

		_, err := svc.ModifyRecipe(context.Background(), validRecipe(), "u1")
		require.Error(t, err)

		rows := audit.all()
		require.Len(t, rows, 1)
		require.Equal(t, 500, rows[0].Code)
	})

	t.Run("should keep concurrent calls independent", func(t *testing.T) {
		// Echo a marker derived from the prompt so each caller can verify
		// it got its own reply.
		client := &mockCompleter{reply: func(prompt string) (*domain.Completion, error) {
			for _, marker := range []string{"alpha", "bravo", "charlie"} {
				if strings.Contains(prompt, "recipe-"+marker) {
					return &domain.Completion{Content: "modified-" + marker}, nil
				}
			}
			return nil, errors.New("unknown prompt")
		}}
		svc := newService(&mockPreferences{prefs: somePrefs}, &mockAudit{}, client)

		var wg sync.WaitGroup
		results := make([]string, 3)
		errs := make([]error, 3)

		for i, marker := range []string{"alpha", "bravo", "charlie"} {
			wg.Add(1)
			go func(i int, marker string) {
				defer wg.Done()
				recipe := "recipe-" + marker + " " + validRecipe()
				results[i], errs[i] = svc.ModifyRecipe(context.Background(), recipe, fmt.Sprintf("u%d", i))
			}(i, marker)
		}
		wg.Wait()

		for i, marker := range []string{"alpha", "bravo", "charlie"} {
			require.NoError(t, errs[i])
			require.Equal(t, "modified-"+marker, results[i])
		}
	})
}
