package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"catalog/internal/model"
	"catalog/internal/storage/db"
	"catalog/pkg/slug"
)

// ErrNotFound is returned when no product matches the given slug.
var ErrNotFound = errors.New("product not found")

// Sort enumerates the supported list orderings.
type Sort uint8

const (
	SortTitleAsc Sort = iota
	SortPriceAsc
	SortPriceDesc
)

// ListParams is a conjunction of optional predicates narrowing the product
// list, plus ordering and pagination. Zero values mean "no constraint".
type ListParams struct {
	// Search matches as a case-insensitive title substring.
	Search string
	// Categories restricts to products whose category is in the set.
	Categories []model.Category
	// MinPrice/MaxPrice are inclusive bounds, independently optional.
	MinPrice *float64
	MaxPrice *float64

	Sort  Sort
	Skip  int
	Limit int
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository

	// List returns the filtered page and the total count of products
	// matching the filter ignoring pagination.
	List(ctx context.Context, params ListParams) ([]model.Product, int64, error)
	GetBySlug(ctx context.Context, productSlug string) (model.Product, error)
	// ListRelated returns up to limit products sharing the category,
	// excluding the product itself. No secondary ordering is guaranteed.
	ListRelated(ctx context.Context, category model.Category, excludeID uuid.UUID, limit int) ([]model.Product, error)
	Create(ctx context.Context, product model.Product) error
	Update(ctx context.Context, product model.Product) error
	// Delete reports whether a product with the slug existed.
	Delete(ctx context.Context, productSlug string) (bool, error)

	SlugExists(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error)
	// ResolveUniqueSlug derives the base slug from title and appends an
	// incrementing numeric suffix until no other product holds it.
	ResolveUniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, title, description, image, category, price, availability, slug, created_at, updated_at`

func (r productRepository) List(ctx context.Context, params ListParams) ([]model.Product, int64, error) {
	where, args := buildFilter(params)

	var total int64
	countQuery := `SELECT count(*) FROM products` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderClause(params.Sort), len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Skip)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan products: %w", err)
	}

	return products, total, nil
}

func (r productRepository) GetBySlug(ctx context.Context, productSlug string) (model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE slug = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRow(ctx, query, productSlug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("get product by slug: %w", err)
	}

	return product, nil
}

func (r productRepository) ListRelated(ctx context.Context, category model.Category, excludeID uuid.UUID, limit int) ([]model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE category = $1 AND id <> $2 ORDER BY created_at DESC LIMIT $3`,
		productColumns)

	rows, err := r.db.Query(ctx, query, string(category), excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list related products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("scan related products: %w", err)
	}

	return products, nil
}

func (r productRepository) Create(ctx context.Context, product model.Product) error {
	price, err := numericPrice(product.Price)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, title, description, image, category, price, availability, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Title, product.Description, product.Image, string(product.Category),
		price, product.Availability, product.Slug, product.CreatedAt, product.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r productRepository) Update(ctx context.Context, product model.Product) error {
	price, err := numericPrice(product.Price)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET title = $2, description = $3, image = $4, category = $5, price = $6,
			availability = $7, slug = $8, updated_at = $9
		WHERE id = $1`,
		product.ID, product.Title, product.Description, product.Image, string(product.Category),
		price, product.Availability, product.Slug, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r productRepository) Delete(ctx context.Context, productSlug string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE slug = $1`, productSlug)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r productRepository) SlugExists(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2)
		)`,
		candidate, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}

	return exists, nil
}

func (r productRepository) ResolveUniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := slug.Make(title)
	candidate := base

	// One round-trip per collision; no iteration cap, matching the original
	// behavior. The unique index on products.slug is the hard backstop
	// against a concurrent insert of the same title.
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

func buildFilter(params ListParams) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if params.Search != "" {
		args = append(args, "%"+escapeLike(params.Search)+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if len(params.Categories) > 0 {
		categories := make([]string, len(params.Categories))
		for i, c := range params.Categories {
			categories[i] = string(c)
		}
		args = append(args, categories)
		conds = append(conds, fmt.Sprintf("category = ANY($%d)", len(args)))
	}
	if params.MinPrice != nil {
		args = append(args, *params.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if params.MaxPrice != nil {
		args = append(args, *params.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(sort Sort) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC"
	case SortPriceDesc:
		return "price DESC"
	default:
		return "title ASC"
	}
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func numericPrice(price float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%f", price)); err != nil {
		return n, fmt.Errorf("scan price: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p        model.Product
		category string
		price    pgtype.Numeric
	)

	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Image, &category,
		&price, &p.Availability, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Product{}, err
	}

	priceVal, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}

	p.Category = model.Category(category)
	p.Price = priceVal.Float64

	return p, nil
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
