package domain

import "context"

// Completer sends one prompt to the model endpoint and returns its reply.
type Completer interface {
	// SendMessage sends user text to the model using the client's active
	// system message and model configuration.
	SendMessage(ctx context.Context, text string, overrides *GenerationOverrides) (*Completion, error)

	// Model returns the identifier of the currently configured model.
	Model() string
}

// GenerationOverrides carries per-call sampling parameters. Nil fields fall
// back to the client defaults.
type GenerationOverrides struct {
	Temperature *float64
	MaxTokens   *int
}

// PreferencesStore looks up stored dietary preferences.
type PreferencesStore interface {
	// GetUserPreferences returns the record for userID, or nil when the user
	// has none on file. A nil record with a nil error is not a failure.
	GetUserPreferences(ctx context.Context, userID string) (*Preferences, error)
}

// AuditStore persists modification failures.
type AuditStore interface {
	// Insert appends one audit row. Rows are never updated or deleted.
	Insert(ctx context.Context, record *ModificationError) error
}
