package llm

import (
	"errors"
	"fmt"
)

// Message roles accepted by the chat completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Sampling parameter bounds. Values outside these fail validation; nothing
// is clamped silently.
const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minMaxTokens   = 1
	maxMaxTokens   = 4096
	minTopP        = 0.0
	maxTopP        = 1.0
	minPenalty     = -2.0
	maxPenalty     = 2.0
)

// Params holds model sampling parameters. Nil fields are unset and fall back
// to whatever they are merged over.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
}

// DefaultParams returns the client's starting parameter set.
func DefaultParams() Params {
	temperature := 1.0
	maxTokens := 1024
	return Params{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
}

// Validate checks every set field against its bound.
func (p Params) Validate() error {
	if p.Temperature != nil && (*p.Temperature < minTemperature || *p.Temperature > maxTemperature) {
		return fmt.Errorf("temperature %v out of range [%v, %v]", *p.Temperature, minTemperature, maxTemperature)
	}
	if p.MaxTokens != nil && (*p.MaxTokens < minMaxTokens || *p.MaxTokens > maxMaxTokens) {
		return fmt.Errorf("max_tokens %d out of range [%d, %d]", *p.MaxTokens, minMaxTokens, maxMaxTokens)
	}
	if p.TopP != nil && (*p.TopP < minTopP || *p.TopP > maxTopP) {
		return fmt.Errorf("top_p %v out of range [%v, %v]", *p.TopP, minTopP, maxTopP)
	}
	if p.FrequencyPenalty != nil && (*p.FrequencyPenalty < minPenalty || *p.FrequencyPenalty > maxPenalty) {
		return fmt.Errorf("frequency_penalty %v out of range [%v, %v]", *p.FrequencyPenalty, minPenalty, maxPenalty)
	}
	if p.PresencePenalty != nil && (*p.PresencePenalty < minPenalty || *p.PresencePenalty > maxPenalty) {
		return fmt.Errorf("presence_penalty %v out of range [%v, %v]", *p.PresencePenalty, minPenalty, maxPenalty)
	}
	return nil
}

// MergeParams layers override on top of base, field by field. Set override
// fields win; unset ones keep the base value.
func MergeParams(base, override Params) Params {
	merged := base
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	return merged
}

// Message is a single chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// providerDirective pins the request to the named model's own backend.
// Fallback to an alternate provider would change model behavior without the
// caller knowing, so it stays disabled.
type providerDirective struct {
	AllowFallbacks    bool `json:"allow_fallbacks"`
	RequireParameters bool `json:"require_parameters"`
}

// Payload is one chat completions request body. Built fresh per call and
// never mutated afterwards.
type Payload struct {
	Model            string            `json:"model"`
	Messages         []Message         `json:"messages"`
	Temperature      *float64          `json:"temperature,omitempty"`
	MaxTokens        *int              `json:"max_tokens,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	FrequencyPenalty *float64          `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64          `json:"presence_penalty,omitempty"`
	Provider         providerDirective `json:"provider"`
}

// NewPayload builds a request payload: exactly two messages, system first,
// with params already merged and validated by the caller.
func NewPayload(model, systemMessage, userMessage string, params Params) (*Payload, error) {
	if model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if userMessage == "" {
		return nil, errors.New("user message cannot be empty")
	}

	return &Payload{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemMessage},
			{Role: RoleUser, Content: userMessage},
		},
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		TopP:             params.TopP,
		FrequencyPenalty: params.FrequencyPenalty,
		PresencePenalty:  params.PresencePenalty,
		Provider: providerDirective{
			AllowFallbacks:    false,
			RequireParameters: true,
		},
	}, nil
}
