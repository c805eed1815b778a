package handler

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
)

type libraryHandler struct {
	libraryService *service.LibraryService
}

func NewLibraryHandler(libraryService *service.LibraryService) *libraryHandler {
	return &libraryHandler{libraryService: libraryService}
}

func (h *libraryHandler) Library(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	items, err := h.libraryService.Library(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *libraryHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	result, err := h.libraryService.Purchase(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *libraryHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	books, err := h.libraryService.Wishlist(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *libraryHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	item, err := h.libraryService.AddToWishlist(r.Context(), user.ID, r.PathValue("bookID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *libraryHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.libraryService.RemoveFromWishlist(r.Context(), user.ID, r.PathValue("bookID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *libraryHandler) ReadingLists(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	lists, err := h.libraryService.ReadingLists(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *libraryHandler) CreateReadingList(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.NewReadingList
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	list, err := h.libraryService.CreateReadingList(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *libraryHandler) DeleteReadingList(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.libraryService.DeleteReadingList(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *libraryHandler) AddToReadingList(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.libraryService.AddToReadingList(r.Context(), user.ID, r.PathValue("id"), r.PathValue("bookID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *libraryHandler) RemoveFromReadingList(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.libraryService.RemoveFromReadingList(r.Context(), user.ID, r.PathValue("id"), r.PathValue("bookID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
