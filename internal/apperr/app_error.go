package apperr

import "catalog/pkg/zerror"

var (
	// ValidationErr wraps input validation failures; the HTTP layer turns the
	// wrapped validator errors into per-field details.
	ValidationErr = zerror.NewValidationFailed("VALIDATION_FAILED", "validation error")

	// TitleRequiredErr is returned by slug generation when no title is given.
	TitleRequiredErr = zerror.NewValidationFailed("TITLE_REQUIRED", "Title is required")

	// ProductNotFoundErr is returned whenever a slug matches no product.
	ProductNotFoundErr = zerror.NewNotFound("PRODUCT_NOT_FOUND", "Product not found")
)

// Operation-scoped internal errors. The client sees the message; the parent
// error is logged server-side (and exposed only when debug errors are on).
var (
	FetchProductsErr = zerror.NewInternalServerError("FETCH_PRODUCTS_FAILED", "Error fetching products")
	FetchProductErr  = zerror.NewInternalServerError("FETCH_PRODUCT_FAILED", "Error fetching product")
	FetchRelatedErr  = zerror.NewInternalServerError("FETCH_RELATED_FAILED", "Error fetching related products")
	CreateProductErr = zerror.NewInternalServerError("CREATE_PRODUCT_FAILED", "Error creating product")
	UpdateProductErr = zerror.NewInternalServerError("UPDATE_PRODUCT_FAILED", "Error updating product")
	DeleteProductErr = zerror.NewInternalServerError("DELETE_PRODUCT_FAILED", "Error deleting product")
	GenerateSlugErr  = zerror.NewInternalServerError("GENERATE_SLUG_FAILED", "Error generating slug")
)
