package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"catalog/internal/apperr"
	"catalog/internal/model"
	"catalog/internal/service"
	"catalog/pkg/ptr"
	"catalog/pkg/zerror"
)

type productHandler struct {
	productSvc service.ProductService
	srv        *Service
}

func newProductHandler(productSvc service.ProductService, srv *Service) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		srv:        srv,
	}
}

// ProductResponse is the wire shape of a product, matching the persisted
// record shape of the API contract.
type ProductResponse struct {
	ID           uuid.UUID `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Availability bool      `json:"availability"`
	Slug         string    `json:"slug"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Image:        p.Image,
		Category:     string(p.Category),
		Price:        p.Price,
		Availability: p.Availability,
		Slug:         p.Slug,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductResponses(products []model.Product) []ProductResponse {
	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	return items
}

type listProductsResponse struct {
	Products   []ProductResponse  `json:"products"`
	Pagination service.Pagination `json:"pagination"`
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	params := parseListQuery(r.URL.Query())

	products, pagination, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		h.srv.writeError(w, r, opError(err, apperr.FetchProductsErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusOK, listProductsResponse{
		Products:   toProductResponses(products),
		Pagination: pagination,
	})
}

func (h *productHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.productSvc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.srv.writeError(w, r, opError(err, apperr.FetchProductErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusOK, toProductResponse(product))
}

func (h *productHandler) getRelated(w http.ResponseWriter, r *http.Request) {
	related, err := h.productSvc.GetRelated(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.srv.writeError(w, r, opError(err, apperr.FetchRelatedErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusOK, toProductResponses(related))
}

type createProductRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Availability *bool   `json:"availability"`
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.srv.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Title:        req.Title,
		Description:  req.Description,
		Image:        req.Image,
		Category:     model.Category(req.Category),
		Price:        req.Price,
		Availability: req.Availability,
	})
	if err != nil {
		h.srv.writeError(w, r, opError(err, apperr.CreateProductErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusCreated, toProductResponse(product))
}

type updateProductRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Image        *string  `json:"image"`
	Category     *string  `json:"category"`
	Price        *float64 `json:"price"`
	Availability *bool    `json:"availability"`
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.srv.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	params := service.UpdateProductParams{
		Title:        req.Title,
		Description:  req.Description,
		Image:        req.Image,
		Price:        req.Price,
		Availability: req.Availability,
	}
	if req.Category != nil {
		params.Category = ptr.New(model.Category(*req.Category))
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), chi.URLParam(r, "slug"), params)
	if err != nil {
		h.srv.writeError(w, r, opError(err, apperr.UpdateProductErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusOK, toProductResponse(product))
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.productSvc.DeleteProduct(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.srv.writeError(w, r, opError(err, apperr.DeleteProductErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}

type generateSlugRequest struct {
	Title string `json:"title"`
}

func (h *productHandler) generateSlug(w http.ResponseWriter, r *http.Request) {
	var req generateSlugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.srv.writeError(w, r, apperr.TitleRequiredErr.WrapParent(err))
		return
	}

	slug, err := h.productSvc.GenerateSlug(r.Context(), req.Title)
	if err != nil {
		h.srv.writeError(w, r, opError(err, apperr.GenerateSlugErr))
		return
	}

	h.srv.writeJSON(w, r, http.StatusOK, map[string]string{"slug": slug})
}

// parseListQuery translates the raw query string into service params.
// Missing or non-numeric page/limit fall back to the service defaults;
// unparseable price bounds are ignored.
func parseListQuery(q url.Values) service.ListProductsParams {
	params := service.ListProductsParams{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}

	if categories := q.Get("categories"); categories != "" {
		params.Categories = strings.Split(categories, ",")
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		params.MinPrice = ptr.New(v)
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		params.MaxPrice = ptr.New(v)
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = v
	}

	return params
}

// opError keeps classified service errors intact and wraps everything else
// in the operation's 500 error so the client sees a stable message.
func opError(err error, internalErr zerror.ZError) error {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return err
	}
	return internalErr.WrapParent(err)
}
