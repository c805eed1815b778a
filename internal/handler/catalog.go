package handler

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
)

type catalogHandler struct {
	catalogService        *service.CatalogService
	recommendationService *service.RecommendationService
}

func NewCatalogHandler(catalogService *service.CatalogService, recommendationService *service.RecommendationService) *catalogHandler {
	return &catalogHandler{
		catalogService:        catalogService,
		recommendationService: recommendationService,
	}
}

func (h *catalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalogService.Browse(r.Context(), service.BrowseParams{
		Search:  q.Get("search"),
		GenreID: q.Get("genre"),
		Sort:    q.Get("sort"),
		Page:    intParam(r, "page", 1),

		MinRating: floatParam(r, "min_rating"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *catalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalogService.Featured(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *catalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalogService.Genres(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// Book is public; signed-in readers also get their own state for the book.
func (h *catalogHandler) Book(w http.ResponseWriter, r *http.Request) {
	view, err := h.catalogService.Book(r.Context(), r.PathValue("id"), ctxkeys.User(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *catalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recs, err := h.recommendationService.ForUser(r.Context(), user.ID, intParam(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *catalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	books, err := h.recommendationService.Trending(r.Context(), intParam(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *catalogHandler) Similar(w http.ResponseWriter, r *http.Request) {
	books, err := h.recommendationService.Similar(r.Context(), r.PathValue("id"), intParam(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}
