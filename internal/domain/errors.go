package domain

import "errors"

// Modification failure taxonomy. Every failure leaving the modifier service
// is one of these sentinels (possibly wrapped); classification happens at the
// point of detection, never by inspecting error text.
var (
	// ErrInvalidInput indicates the recipe text failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPreferencesNotFound indicates the user has no dietary preferences on file.
	ErrPreferencesNotFound = errors.New("dietary preferences not found")

	// ErrUpstreamAuth indicates the model endpoint rejected the credential.
	ErrUpstreamAuth = errors.New("upstream authentication failed")

	// ErrRateLimited indicates the model endpoint rate-limited the request
	// and retries were exhausted.
	ErrRateLimited = errors.New("upstream rate limit exceeded")

	// ErrUpstreamUnavailable indicates the model endpoint kept failing with
	// server or transport errors until retries were exhausted.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrEmptyCompletion indicates the model returned an empty or
	// whitespace-only reply on an otherwise successful call.
	ErrEmptyCompletion = errors.New("empty completion from model")
)

// Stable numeric codes persisted in audit rows and spoken by the HTTP layer.
const (
	CodeInvalidInput        = 400
	CodeUpstreamAuth        = 401
	CodePreferencesNotFound = 422
	CodeRateLimited         = 429
	CodeUnknown             = 500
	CodeUpstreamUnavailable = 503
)

// CodeFor maps a classified error to its stable numeric code.
// Unrecognized errors fall through to CodeUnknown.
func CodeFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrUpstreamAuth):
		return CodeUpstreamAuth
	case errors.Is(err, ErrPreferencesNotFound):
		return CodePreferencesNotFound
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrUpstreamUnavailable):
		return CodeUpstreamUnavailable
	default:
		return CodeUnknown
	}
}
