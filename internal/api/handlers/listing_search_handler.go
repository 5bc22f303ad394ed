package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

const maxSearchBodyBytes = 64 << 10

// ListingSearcher runs listing searches
type ListingSearcher interface {
	Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error)
}

// ListingSearchHandler handles listing search HTTP requests
type ListingSearchHandler struct {
	searcher ListingSearcher
}

// NewListingSearchHandler creates a new listing search handler
func NewListingSearchHandler(searcher ListingSearcher) *ListingSearchHandler {
	return &ListingSearchHandler{
		searcher: searcher,
	}
}

// SearchListings handles POST /api/listings/search
func (h *ListingSearchHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	var req SearchListingsRequest
	body := http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)
	// an empty body searches with defaults
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.searcher.Search(r.Context(), req.Criteria())
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Type {
			case apperrors.ErrorTypeValidation:
				respondWithError(w, http.StatusBadRequest, appErr.Message)
				return
			case apperrors.ErrorTypeRateLimited:
				respondWithError(w, http.StatusTooManyRequests, appErr.Message)
				return
			}
		}
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("listing search failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, toSearchListingsResponse(result))
}
