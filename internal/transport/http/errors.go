package http

import (
	"errors"

	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/constants"
	"github.com/linkatalog/linkatalog/internal/infrastructure/logger"
	"github.com/linkatalog/linkatalog/pkg/httputils"
	"go.uber.org/zap"

	nethttp "net/http"
)

// writeCatalogError maps a catalog service error onto the API envelope.
// notFound picks the entity-specific NOT_FOUND error for the route.
func writeCatalogError(w nethttp.ResponseWriter, r *nethttp.Request, err error, notFound constants.APIError) {
	var validationErr *catalog.ValidationError
	switch {
	case errors.As(err, &validationErr):
		httputils.WriteAPIError(w, r, constants.ErrValidation.WithMessage(validationErr.Error()))
	case errors.Is(err, catalog.ErrNotFound):
		httputils.WriteAPIError(w, r, notFound)
	case errors.Is(err, catalog.ErrUnauthorized):
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
	case errors.Is(err, catalog.ErrForbidden):
		httputils.WriteAPIError(w, r, constants.ErrForbidden)
	case errors.Is(err, catalog.ErrCategoryNameTaken):
		httputils.WriteAPIError(w, r, constants.ErrCategoryNameTaken)
	case errors.Is(err, catalog.ErrInvalidRange):
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("from must be <= to"))
	default:
		logger.Error("catalog operation failed", zap.Error(err), zap.String("path", r.URL.Path))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
	}
}
