package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/model"
	"catalog/internal/repository"
	"catalog/internal/service"
	"catalog/internal/storage/db"
	"catalog/pkg/ptr"
	"catalog/pkg/slug"
	"catalog/pkg/validator"
	"catalog/pkg/zerror"
)

// fakeRepo is an in-memory ProductRepository. Filtering, sorting and the
// slug collision loop mirror the SQL-backed implementation.
type fakeRepo struct {
	products []model.Product
}

var _ repository.ProductRepository = (*fakeRepo)(nil)

func (r *fakeRepo) WithDB(_ db.DB) repository.ProductRepository {
	return r
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) ([]model.Product, int64, error) {
	matched := make([]model.Product, 0)
	for _, p := range r.products {
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(params.Search)) {
			continue
		}
		if len(params.Categories) > 0 {
			found := false
			for _, c := range params.Categories {
				if p.Category == c {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if params.MinPrice != nil && p.Price < *params.MinPrice {
			continue
		}
		if params.MaxPrice != nil && p.Price > *params.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}

	switch params.Sort {
	case repository.SortPriceAsc:
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case repository.SortPriceDesc:
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	default:
		sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })
	}

	total := int64(len(matched))

	if params.Skip >= len(matched) {
		return []model.Product{}, total, nil
	}
	matched = matched[params.Skip:]
	if params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}

	return matched, total, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, productSlug string) (model.Product, error) {
	for _, p := range r.products {
		if p.Slug == productSlug {
			return p, nil
		}
	}
	return model.Product{}, repository.ErrNotFound
}

func (r *fakeRepo) ListRelated(_ context.Context, category model.Category, excludeID uuid.UUID, limit int) ([]model.Product, error) {
	related := make([]model.Product, 0)
	for _, p := range r.products {
		if p.Category != category || p.ID == excludeID {
			continue
		}
		related = append(related, p)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

func (r *fakeRepo) Create(_ context.Context, product model.Product) error {
	r.products = append(r.products, product)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, product model.Product) error {
	for i, p := range r.products {
		if p.ID == product.ID {
			r.products[i] = product
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, productSlug string) (bool, error) {
	for i, p := range r.products {
		if p.Slug == productSlug {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) SlugExists(_ context.Context, candidate string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range r.products {
		if p.Slug == candidate && (excludeID == nil || p.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ResolveUniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := slug.Make(title)
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := r.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func newTestService(t *testing.T, products ...model.Product) (service.ProductService, *fakeRepo) {
	t.Helper()

	repo := &fakeRepo{products: products}
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	return service.NewProductService(repo, v, nil), repo
}

func newProduct(title string, category model.Category, price float64) model.Product {
	id, _ := uuid.NewV7()
	now := time.Now().UTC()
	return model.Product{
		ID:           id,
		Title:        title,
		Description:  "description of " + title,
		Image:        "https://example.com/" + slug.Make(title) + ".jpg",
		Category:     category,
		Price:        price,
		Availability: true,
		Slug:         slug.Make(title),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func validCreateParams() service.CreateProductParams {
	return service.CreateProductParams{
		Title:       "Leather Belt",
		Description: "Full-grain leather belt with brass buckle.",
		Image:       "https://example.com/belt.jpg",
		Category:    model.CategoryAccessories,
		Price:       35,
	}
}

func assertZErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	var zErr zerror.ZError
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, code, zErr.Code())
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns base slug and defaults availability", func(t *testing.T) {
		svc, repo := newTestService(t)

		product, err := svc.CreateProduct(ctx, validCreateParams())
		require.NoError(t, err)

		assert.Equal(t, "leather-belt", product.Slug)
		assert.True(t, product.Availability)
		assert.Len(t, repo.products, 1)
		assert.False(t, product.CreatedAt.IsZero())
	})

	t.Run("resolves slug collisions with numeric suffix", func(t *testing.T) {
		shoes := newProduct("Shoes", model.CategoryShoes, 49)
		shoesOne := newProduct("Shoes", model.CategoryShoes, 59)
		shoesOne.Slug = "shoes-1"
		svc, _ := newTestService(t, shoes, shoesOne)

		params := validCreateParams()
		params.Title = "Shoes"
		product, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)

		assert.Equal(t, "shoes-2", product.Slug)
	})

	t.Run("trims title and description", func(t *testing.T) {
		svc, _ := newTestService(t)

		params := validCreateParams()
		params.Title = "  Leather Belt  "
		params.Description = "  padded  "
		product, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)

		assert.Equal(t, "Leather Belt", product.Title)
		assert.Equal(t, "padded", product.Description)
	})

	t.Run("explicit availability false is kept", func(t *testing.T) {
		svc, _ := newTestService(t)

		params := validCreateParams()
		params.Availability = ptr.New(false)
		product, err := svc.CreateProduct(ctx, params)
		require.NoError(t, err)

		assert.False(t, product.Availability)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		svc, _ := newTestService(t)

		params := validCreateParams()
		params.Price = -5
		_, err := svc.CreateProduct(ctx, params)

		assertZErrorCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		svc, _ := newTestService(t)

		for name, mutate := range map[string]func(*service.CreateProductParams){
			"empty title":           func(p *service.CreateProductParams) { p.Title = "   " },
			"empty description":     func(p *service.CreateProductParams) { p.Description = "" },
			"missing image":         func(p *service.CreateProductParams) { p.Image = "" },
			"malformed image":       func(p *service.CreateProductParams) { p.Image = "not a url" },
			"unknown category":      func(p *service.CreateProductParams) { p.Category = "Furniture" },
			"title over 200 chars":  func(p *service.CreateProductParams) { p.Title = strings.Repeat("a", 201) },
			"lowercased enum value": func(p *service.CreateProductParams) { p.Category = "shoes" },
		} {
			t.Run(name, func(t *testing.T) {
				params := validCreateParams()
				mutate(&params)
				_, err := svc.CreateProduct(ctx, params)
				assertZErrorCode(t, err, "VALIDATION_FAILED")
			})
		}
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("same title keeps existing slug", func(t *testing.T) {
		shoes := newProduct("Shoes", model.CategoryShoes, 49)
		suffixed := newProduct("Shoes", model.CategoryShoes, 59)
		suffixed.Slug = "shoes-1"
		svc, _ := newTestService(t, shoes, suffixed)

		updated, err := svc.UpdateProduct(ctx, "shoes-1", service.UpdateProductParams{
			Title: ptr.New("Shoes"),
		})
		require.NoError(t, err)

		assert.Equal(t, "shoes-1", updated.Slug)
	})

	t.Run("changed title recomputes slug excluding self", func(t *testing.T) {
		sneakers := newProduct("Sneakers", model.CategoryShoes, 49)
		boots := newProduct("Boots", model.CategoryShoes, 89)
		svc, _ := newTestService(t, sneakers, boots)

		updated, err := svc.UpdateProduct(ctx, "boots", service.UpdateProductParams{
			Title: ptr.New("Sneakers"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Sneakers", updated.Title)
		assert.Equal(t, "sneakers-1", updated.Slug)
	})

	t.Run("partial update leaves other fields intact", func(t *testing.T) {
		watch := newProduct("Watch", model.CategoryAccessories, 149)
		svc, repo := newTestService(t, watch)

		updated, err := svc.UpdateProduct(ctx, "watch", service.UpdateProductParams{
			Price: ptr.New(129.0),
		})
		require.NoError(t, err)

		assert.Equal(t, 129.0, updated.Price)
		assert.Equal(t, "Watch", updated.Title)
		assert.Equal(t, watch.Description, updated.Description)
		assert.Equal(t, "watch", updated.Slug)
		assert.Equal(t, 129.0, repo.products[0].Price)
	})

	t.Run("merged record is validated", func(t *testing.T) {
		watch := newProduct("Watch", model.CategoryAccessories, 149)
		svc, _ := newTestService(t, watch)

		_, err := svc.UpdateProduct(ctx, "watch", service.UpdateProductParams{
			Price: ptr.New(-1.0),
		})
		assertZErrorCode(t, err, "VALIDATION_FAILED")

		_, err = svc.UpdateProduct(ctx, "watch", service.UpdateProductParams{
			Title: ptr.New("   "),
		})
		assertZErrorCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("unknown slug", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.UpdateProduct(ctx, "missing", service.UpdateProductParams{})
		assertZErrorCode(t, err, "PRODUCT_NOT_FOUND")
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("price bounds are inclusive", func(t *testing.T) {
		svc, _ := newTestService(t,
			newProduct("Cheap", model.CategoryClothing, 49.99),
			newProduct("Lower Edge", model.CategoryClothing, 50),
			newProduct("Middle", model.CategoryClothing, 75),
			newProduct("Upper Edge", model.CategoryClothing, 100),
			newProduct("Expensive", model.CategoryClothing, 100.01),
		)

		products, _, err := svc.ListProducts(ctx, service.ListProductsParams{
			MinPrice: ptr.New(50.0),
			MaxPrice: ptr.New(100.0),
		})
		require.NoError(t, err)

		require.Len(t, products, 3)
		for _, p := range products {
			assert.GreaterOrEqual(t, p.Price, 50.0)
			assert.LessOrEqual(t, p.Price, 100.0)
		}
	})

	t.Run("no bounds returns everything", func(t *testing.T) {
		svc, _ := newTestService(t,
			newProduct("A", model.CategoryClothing, 10),
			newProduct("B", model.CategoryClothing, 20),
		)

		_, pagination, err := svc.ListProducts(ctx, service.ListProductsParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), pagination.Total)
	})

	t.Run("pagination math", func(t *testing.T) {
		products := make([]model.Product, 0, 25)
		for i := 0; i < 25; i++ {
			p := newProduct(fmt.Sprintf("Product %02d", i), model.CategoryElectronics, float64(i))
			products = append(products, p)
		}
		svc, _ := newTestService(t, products...)

		page1, pagination, err := svc.ListProducts(ctx, service.ListProductsParams{})
		require.NoError(t, err)
		assert.Len(t, page1, 12)
		assert.Equal(t, service.Pagination{Page: 1, Limit: 12, Total: 25, Pages: 3}, pagination)

		page3, pagination, err := svc.ListProducts(ctx, service.ListProductsParams{Page: 3})
		require.NoError(t, err)
		assert.Len(t, page3, 1)
		assert.Equal(t, 3, pagination.Page)
	})

	t.Run("defaults applied for zero page and limit", func(t *testing.T) {
		svc, _ := newTestService(t, newProduct("A", model.CategoryClothing, 10))

		_, pagination, err := svc.ListProducts(ctx, service.ListProductsParams{Page: 0, Limit: 0})
		require.NoError(t, err)
		assert.Equal(t, 1, pagination.Page)
		assert.Equal(t, 12, pagination.Limit)
	})

	t.Run("sorting", func(t *testing.T) {
		svc, _ := newTestService(t,
			newProduct("Banana Stand", model.CategoryAccessories, 30),
			newProduct("Apple Stand", model.CategoryAccessories, 20),
			newProduct("Cherry Stand", model.CategoryAccessories, 10),
		)

		byTitle, _, err := svc.ListProducts(ctx, service.ListProductsParams{Sort: "nonsense"})
		require.NoError(t, err)
		assert.Equal(t, "Apple Stand", byTitle[0].Title)

		asc, _, err := svc.ListProducts(ctx, service.ListProductsParams{Sort: "price_asc"})
		require.NoError(t, err)
		assert.Equal(t, 10.0, asc[0].Price)

		desc, _, err := svc.ListProducts(ctx, service.ListProductsParams{Sort: "price_desc"})
		require.NoError(t, err)
		assert.Equal(t, 30.0, desc[0].Price)
	})

	t.Run("category set filter", func(t *testing.T) {
		svc, _ := newTestService(t,
			newProduct("Shirt", model.CategoryClothing, 15),
			newProduct("Boots", model.CategoryShoes, 80),
			newProduct("Phone", model.CategoryElectronics, 500),
		)

		products, _, err := svc.ListProducts(ctx, service.ListProductsParams{
			Categories: []string{"Clothing", "Shoes"},
		})
		require.NoError(t, err)

		require.Len(t, products, 2)
		for _, p := range products {
			assert.NotEqual(t, model.CategoryElectronics, p.Category)
		}
	})
}

func TestGetBySlug(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t, newProduct("Watch", model.CategoryAccessories, 149))

	product, err := svc.GetBySlug(ctx, "watch")
	require.NoError(t, err)
	assert.Equal(t, "Watch", product.Title)

	_, err = svc.GetBySlug(ctx, "missing")
	assertZErrorCode(t, err, "PRODUCT_NOT_FOUND")
}

func TestGetRelated(t *testing.T) {
	ctx := context.Background()

	products := []model.Product{newProduct("Phone", model.CategoryElectronics, 699)}
	for i := 0; i < 6; i++ {
		products = append(products, newProduct(fmt.Sprintf("Gadget %d", i), model.CategoryElectronics, float64(50+i)))
	}
	products = append(products, newProduct("Shirt", model.CategoryClothing, 15))
	svc, _ := newTestService(t, products...)

	related, err := svc.GetRelated(ctx, "phone")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(related), 4)
	for _, p := range related {
		assert.Equal(t, model.CategoryElectronics, p.Category)
		assert.NotEqual(t, "phone", p.Slug)
	}

	_, err = svc.GetRelated(ctx, "missing")
	assertZErrorCode(t, err, "PRODUCT_NOT_FOUND")
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	svc, repo := newTestService(t, newProduct("Watch", model.CategoryAccessories, 149))

	require.NoError(t, svc.DeleteProduct(ctx, "watch"))
	assert.Empty(t, repo.products)

	err := svc.DeleteProduct(ctx, "watch")
	assertZErrorCode(t, err, "PRODUCT_NOT_FOUND")
}

func TestGenerateSlug(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a title", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.GenerateSlug(ctx, "   ")
		assertZErrorCode(t, err, "TITLE_REQUIRED")
	})

	t.Run("previews next free slug", func(t *testing.T) {
		shoes := newProduct("Shoes", model.CategoryShoes, 49)
		svc, _ := newTestService(t, shoes)

		got, err := svc.GenerateSlug(ctx, "Shoes")
		require.NoError(t, err)
		assert.Equal(t, "shoes-1", got)
	})
}
