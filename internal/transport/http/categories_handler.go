package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/constants"
	appvalidation "github.com/linkatalog/linkatalog/internal/infrastructure/validation"
	"github.com/linkatalog/linkatalog/internal/transport/http/middleware"
	"github.com/linkatalog/linkatalog/pkg/httputils"
	"github.com/go-playground/validator/v10"
)

type CategoriesHandler struct {
	svc *catalog.Service
}

func NewCategoriesHandler(svc *catalog.Service) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,notblank"`
}

type categoryDetailResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(category *catalog.Category) categoryDetailResponse {
	return categoryDetailResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrCategoryNotFound)
		return
	}

	out := make([]categoryDetailResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessCategoriesFound, out)
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	req, ok := h.decodeCategoryRequest(w, r)
	if !ok {
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), principal, req.Name)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrCategoryNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessCategoryCreated, toCategoryResponse(category))
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	req, ok := h.decodeCategoryRequest(w, r)
	if !ok {
		return
	}

	category, err := h.svc.UpdateCategory(r.Context(), principal, r.PathValue("id"), req.Name)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrCategoryNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessCategoryUpdated, toCategoryResponse(category))
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	if err := h.svc.DeleteCategory(r.Context(), principal, r.PathValue("id")); err != nil {
		writeCatalogError(w, r, err, constants.ErrCategoryNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessCategoryDeleted, map[string]string{"id": r.PathValue("id")})
}

func (h *CategoriesHandler) decodeCategoryRequest(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return categoryRequest{}, false
	}
	if err := appvalidation.Validate(req); err != nil {
		apiErr := constants.ErrValidation
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			apiErr = apiErr.WithMessage("missing or empty required fields: name")
		}
		httputils.WriteAPIError(w, r, apiErr)
		return categoryRequest{}, false
	}
	return req, true
}
