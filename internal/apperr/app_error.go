package apperr

import "github.com/tuanvumaihuynh/storefront-catalog/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	InvalidReferenceCode  = "INVALID_REFERENCE"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
	CategoryExistsCode    = "CATEGORY_EXISTS"
	UnauthorizedErrorCode = "UNAUTHORIZED"
	ForbiddenErrorCode    = "FORBIDDEN"
	TooManyRequestsCode   = "TOO_MANY_REQUESTS"
)

var (
	ValidationErr       = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	InvalidReferenceErr = zerror.NewBadRequest(InvalidReferenceCode, "invalid categoryId")
	ProductNotFoundErr  = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	CategoryExistsErr   = zerror.NewConflict(CategoryExistsCode, "category already exists")
	UnauthorizedErr     = zerror.NewUnauthorized(UnauthorizedErrorCode, "missing or invalid token")
	ForbiddenErr        = zerror.NewForbidden(ForbiddenErrorCode, "admin access required")
	TooManyRequestsErr  = zerror.NewTooManyRequests(TooManyRequestsCode, "too many requests")
)
