package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog/internal/apperr"
	"catalog/internal/model"
	"catalog/internal/repository"
	"catalog/internal/storage/cache"
	"catalog/pkg/validator"
)

const (
	defaultPage  = 1
	defaultLimit = 12

	relatedLimit = 4

	// TagRelated groups cached related-product lists so a mutation in any
	// category invalidates them all.
	tagRelated = "products:related"
)

// Pagination describes the page of a filtered listing. Total counts every
// product matching the filter; Pages is ceil(Total/Limit).
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListProductsParams carries the externally-supplied filter, already split
// out of the query string but not yet normalized.
type ListProductsParams struct {
	Search     string
	Categories []string
	MinPrice   *float64
	MaxPrice   *float64
	Sort       string
	Page       int
	Limit      int
}

type CreateProductParams struct {
	Title        string         `validate:"required,max=200"`
	Description  string         `validate:"required"`
	Image        string         `validate:"required,url"`
	Category     model.Category `validate:"required,enum"`
	Price        float64        `validate:"gte=0"`
	Availability *bool
}

// UpdateProductParams applies only the fields that are non-nil; omitted
// fields keep their prior values. The merged product is validated with the
// same rules as creation.
type UpdateProductParams struct {
	Title        *string
	Description  *string
	Image        *string
	Category     *model.Category
	Price        *float64
	Availability *bool
}

type ProductService interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, Pagination, error)
	GetBySlug(ctx context.Context, slug string) (model.Product, error)
	GetRelated(ctx context.Context, slug string) ([]model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, slug string, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, slug string) error
	// GenerateSlug previews the unique slug a title would receive. The
	// preview can be stale by the time an actual create lands; the caller
	// tolerates that race.
	GenerateSlug(ctx context.Context, title string) (string, error)
}

type productService struct {
	productRepo repository.ProductRepository
	validator   validator.Validator
	queryCache  *cache.QueryCache
}

func NewProductService(
	productRepo repository.ProductRepository,
	v validator.Validator,
	queryCache *cache.QueryCache,
) ProductService {
	return &productService{
		productRepo: productRepo,
		validator:   v,
		queryCache:  queryCache,
	}
}

type listCacheEntry struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, Pagination, error) {
	page := params.Page
	if page < 1 {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	key := cache.ListKey(params.Search, params.Categories, params.MinPrice, params.MaxPrice, params.Sort, page, limit)
	var cached listCacheEntry
	if s.queryCache.Get(ctx, key, &cached) {
		return cached.Products, cached.Pagination, nil
	}

	categories := make([]model.Category, 0, len(params.Categories))
	for _, c := range params.Categories {
		categories = append(categories, model.Category(c))
	}

	products, total, err := s.productRepo.List(ctx, repository.ListParams{
		Search:     params.Search,
		Categories: categories,
		MinPrice:   params.MinPrice,
		MaxPrice:   params.MaxPrice,
		Sort:       sortFromString(params.Sort),
		Skip:       (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("product repository list: %w", err)
	}

	pagination := Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}

	s.queryCache.Set(ctx, key, listCacheEntry{Products: products, Pagination: pagination}, cache.TagProductLists)

	return products, pagination, nil
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (model.Product, error) {
	key := cache.ProductKey(slug)
	var cached model.Product
	if s.queryCache.Get(ctx, key, &cached) {
		return cached, nil
	}

	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("product repository get by slug: %w", err)
	}

	s.queryCache.Set(ctx, key, product)

	return product, nil
}

func (s *productService) GetRelated(ctx context.Context, slug string) ([]model.Product, error) {
	product, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := cache.RelatedKey(slug)
	var cached []model.Product
	if s.queryCache.Get(ctx, key, &cached) {
		return cached, nil
	}

	related, err := s.productRepo.ListRelated(ctx, product.Category, product.ID, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("product repository list related: %w", err)
	}

	s.queryCache.Set(ctx, key, related, tagRelated)

	return related, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	params.Title = strings.TrimSpace(params.Title)
	params.Description = strings.TrimSpace(params.Description)

	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	// Slug assignment is an explicit step here rather than a persistence
	// hook, so the collision loop is visible at the call site.
	productSlug, err := s.productRepo.ResolveUniqueSlug(ctx, params.Title, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("resolve unique slug: %w", err)
	}

	availability := true
	if params.Availability != nil {
		availability = *params.Availability
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:           id,
		Title:        params.Title,
		Description:  params.Description,
		Image:        params.Image,
		Category:     params.Category,
		Price:        params.Price,
		Availability: availability,
		Slug:         productSlug,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("product repository create: %w", err)
	}

	s.invalidate(ctx, product.Slug)

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, slug string, params UpdateProductParams) (model.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("product repository get by slug: %w", err)
	}

	titleChanged := false
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		titleChanged = title != product.Title
		product.Title = title
	}
	if params.Description != nil {
		product.Description = strings.TrimSpace(*params.Description)
	}
	if params.Image != nil {
		product.Image = *params.Image
	}
	if params.Category != nil {
		product.Category = *params.Category
	}
	if params.Price != nil {
		product.Price = *params.Price
	}
	if params.Availability != nil {
		product.Availability = *params.Availability
	}

	merged := CreateProductParams{
		Title:        product.Title,
		Description:  product.Description,
		Image:        product.Image,
		Category:     product.Category,
		Price:        product.Price,
		Availability: &product.Availability,
	}
	if err := s.validator.Validate(merged); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	if titleChanged {
		// Recompute excluding our own row so an unchanged collision suffix
		// is not shuffled around.
		newSlug, err := s.productRepo.ResolveUniqueSlug(ctx, product.Title, &product.ID)
		if err != nil {
			return model.Product{}, fmt.Errorf("resolve unique slug: %w", err)
		}
		product.Slug = newSlug
	}

	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr.WrapParent(err)
		}
		return model.Product{}, fmt.Errorf("product repository update: %w", err)
	}

	s.invalidate(ctx, slug, product.Slug)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, slug string) error {
	deleted, err := s.productRepo.Delete(ctx, slug)
	if err != nil {
		return fmt.Errorf("product repository delete: %w", err)
	}
	if !deleted {
		return apperr.ProductNotFoundErr
	}

	s.invalidate(ctx, slug)

	return nil
}

func (s *productService) GenerateSlug(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.TitleRequiredErr
	}

	productSlug, err := s.productRepo.ResolveUniqueSlug(ctx, title, nil)
	if err != nil {
		return "", fmt.Errorf("resolve unique slug: %w", err)
	}

	return productSlug, nil
}

// invalidate drops every cached list and related set plus the detail entries
// for the touched slugs, so reads after a mutation see fresh data.
func (s *productService) invalidate(ctx context.Context, slugs ...string) {
	s.queryCache.Invalidate(ctx, cache.TagProductLists, tagRelated)

	keys := make([]string, 0, len(slugs)*2)
	for _, slug := range slugs {
		keys = append(keys, cache.ProductKey(slug), cache.RelatedKey(slug))
	}
	s.queryCache.Delete(ctx, keys...)
}

func sortFromString(sort string) repository.Sort {
	switch sort {
	case "price_asc":
		return repository.SortPriceAsc
	case "price_desc":
		return repository.SortPriceDesc
	default:
		return repository.SortTitleAsc
	}
}
