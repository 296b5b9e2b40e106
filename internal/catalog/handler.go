package catalog

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/storefront/internal/errors"
)

// Handler serves a Client as the product API:
//
//	GET /products          page of products (query: page, current, limit, search, category1, category2, sort)
//	GET /products/{id}     one product
//	GET /categories        category tree
//
// Mount it under /api.
func Handler(c Client, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &apiHandler{client: c, logger: logger}

	r := chi.NewRouter()
	r.Get("/products", h.products)
	r.Get("/products/{id}", h.product)
	r.Get("/categories", h.categories)
	return r
}

type apiHandler struct {
	client Client
	logger *slog.Logger
}

func (h *apiHandler) products(w http.ResponseWriter, r *http.Request) {
	list, err := h.client.Products(r.Context(), QueryFromValues(r.URL.Query()))
	if err != nil {
		h.fail(w, r, errors.New("SF023").Wrap(err))
		return
	}
	h.write(w, http.StatusOK, list)
}

func (h *apiHandler) product(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.client.Product(r.Context(), id)
	if err != nil {
		h.fail(w, r, errors.New("SF020").WithDetailf("no product with id %s", id).Wrap(err))
		return
	}
	h.write(w, http.StatusOK, p)
}

func (h *apiHandler) categories(w http.ResponseWriter, r *http.Request) {
	c, err := h.client.Categories(r.Context())
	if err != nil {
		h.fail(w, r, errors.New("SF023").Wrap(err))
		return
	}
	h.write(w, http.StatusOK, c)
}

func (h *apiHandler) fail(w http.ResponseWriter, r *http.Request, err *errors.Error) {
	status := http.StatusInternalServerError
	if stderrors.Is(err, ErrNotFound) {
		status = http.StatusNotFound
	} else {
		h.logger.Error("catalog: request failed", "path", r.URL.Path, "error", err)
	}
	h.write(w, status, err)
}

func (h *apiHandler) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("catalog: response encode failed", "error", err)
	}
}
