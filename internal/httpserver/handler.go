package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dishcraft/dishcraft/internal/domain"
	"github.com/dishcraft/dishcraft/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	modifier *domain.ModifierService
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(modifier *domain.ModifierService) *Handler {
	return &Handler{
		modifier: modifier,
	}
}

type modifyRequest struct {
	RecipeText string `json:"recipe_text"`
	UserID     string `json:"user_id"`
}

type modifyResponse struct {
	ModifiedRecipe string `json:"modified_recipe"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleModify processes recipe modification requests.
func (h *Handler) HandleModify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request.
	var req modifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// Inject the acting user into context for downstream logging.
	ctx = observability.WithUserID(ctx, req.UserID)

	logger := observability.FromContext(ctx)
	logger.Info("modification request received",
		observability.Int("recipe_length", len(req.RecipeText)),
	)

	modified, err := h.modifier.ModifyRecipe(ctx, req.RecipeText, req.UserID)
	if err != nil {
		code := domain.CodeFor(err)
		logger.Error("modification failed",
			observability.Int("code", code),
			observability.Error(err),
		)
		// The mapped category is all the caller gets; upstream error text
		// stays out of the response body.
		writeError(w, code, categoryDescription(code))
		return
	}

	logger.Info("modification succeeded",
		observability.Int("reply_length", len(modified)),
	)

	w.Header().Set("Content-Type", "application/json")
	if encodeErr := json.NewEncoder(w).Encode(modifyResponse{ModifiedRecipe: modified}); encodeErr != nil {
		logger.Error("failed to encode response", observability.Error(encodeErr))
	}
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// categoryDescription maps a taxonomy code to its user-facing description.
func categoryDescription(code int) string {
	switch code {
	case domain.CodeInvalidInput:
		return "recipe text is missing, too short, or too long"
	case domain.CodeUpstreamAuth:
		return "the modification service is not authorized"
	case domain.CodePreferencesNotFound:
		return "no dietary preferences on file for this user"
	case domain.CodeRateLimited:
		return "the modification service is rate limited, try again later"
	case domain.CodeUpstreamUnavailable:
		return "the modification service is temporarily unavailable"
	default:
		return "recipe modification failed"
	}
}
