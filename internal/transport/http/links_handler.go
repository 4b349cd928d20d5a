package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/constants"
	"github.com/linkatalog/linkatalog/internal/transport/http/middleware"
	"github.com/linkatalog/linkatalog/pkg/httputils"
)

const maxUploadMemory = 10 << 20 // 10 MiB

type LinksHandler struct {
	svc *catalog.Service
}

func NewLinksHandler(svc *catalog.Service) *LinksHandler {
	return &LinksHandler{svc: svc}
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type linkResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	URL         string            `json:"url"`
	Image       string            `json:"image,omitempty"`
	Category    *categoryResponse `json:"category"`
	Tags        []string          `json:"tags"`
	Clicks      int64             `json:"clicks"`
	IsFeatured  bool              `json:"isFeatured"`
	Order       int               `json:"order"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func toLinkResponse(link *catalog.Link) linkResponse {
	resp := linkResponse{
		ID:          link.ID,
		Title:       link.Title,
		Description: link.Description,
		URL:         link.URL,
		Image:       link.ImageRef,
		Tags:        link.Tags,
		Clicks:      link.Clicks,
		IsFeatured:  link.IsFeatured,
		Order:       link.Order,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if link.Category != nil {
		resp.Category = &categoryResponse{ID: link.Category.ID, Name: link.Category.Name}
	}
	return resp
}

func toLinkResponses(links []catalog.Link) []linkResponse {
	out := make([]linkResponse, 0, len(links))
	for i := range links {
		out = append(out, toLinkResponse(&links[i]))
	}
	return out
}

// --- Public reads ---

func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListLinks(r.Context())
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinksFound, toLinkResponses(links))
}

func (h *LinksHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	links, err := h.svc.ListFeaturedLinks(r.Context(), limit)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinksFound, toLinkResponses(links))
}

func (h *LinksHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListLinksByCategory(r.Context(), r.PathValue("categoryId"))
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinksFound, toLinkResponses(links))
}

// --- Click tracking (public) ---

func (h *LinksHandler) Click(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.RecordClick(r.Context(), r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessClickRecorded, toLinkResponse(link))
}

// --- Admin writes ---

type createLinkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	IsFeatured  bool   `json:"isFeatured"`
	Order       int    `json:"order"`
}

type updateLinkRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Category    *string `json:"category"`
	Tags        *string `json:"tags"`
	IsFeatured  *bool   `json:"isFeatured"`
	Order       *int    `json:"order"`
	Clicks      *int64  `json:"clicks"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	in, ok := h.parseCreateRequest(w, r)
	if !ok {
		return
	}

	link, err := h.svc.CreateLink(r.Context(), principal, in)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, toLinkResponse(link))
}

func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	patch, ok := h.parseUpdateRequest(w, r)
	if !ok {
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), principal, r.PathValue("id"), patch)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkUpdated, toLinkResponse(link))
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	if err := h.svc.DeleteLink(r.Context(), principal, r.PathValue("id")); err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessLinkDeleted, map[string]string{"id": r.PathValue("id")})
}

// parseCreateRequest accepts multipart/form-data (the admin UI contract, with
// an optional "image" file part) or a plain JSON body.
func (h *LinksHandler) parseCreateRequest(w http.ResponseWriter, r *http.Request) (catalog.CreateLinkInput, bool) {
	if !isMultipart(r) {
		var req createLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
			return catalog.CreateLinkInput{}, false
		}
		return catalog.CreateLinkInput{
			Title:       req.Title,
			Description: req.Description,
			URL:         req.URL,
			CategoryID:  req.Category,
			Tags:        req.Tags,
			IsFeatured:  req.IsFeatured,
			Order:       req.Order,
		}, true
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return catalog.CreateLinkInput{}, false
	}

	order, _ := strconv.Atoi(r.FormValue("order"))
	in := catalog.CreateLinkInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		URL:         r.FormValue("url"),
		CategoryID:  r.FormValue("category"),
		Tags:        r.FormValue("tags"),
		IsFeatured:  r.FormValue("isFeatured") == "true",
		Order:       order,
	}

	if file, header, err := r.FormFile("image"); err == nil {
		in.Image = &catalog.ImageUpload{Filename: header.Filename, Content: file}
	}

	return in, true
}

// parseUpdateRequest builds a partial patch: only fields present in the
// request are set, everything else stays untouched.
func (h *LinksHandler) parseUpdateRequest(w http.ResponseWriter, r *http.Request) (catalog.LinkPatch, bool) {
	if !isMultipart(r) {
		var req updateLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
			return catalog.LinkPatch{}, false
		}
		return catalog.LinkPatch{
			Title:       req.Title,
			Description: req.Description,
			URL:         req.URL,
			CategoryID:  req.Category,
			Tags:        req.Tags,
			IsFeatured:  req.IsFeatured,
			Order:       req.Order,
			Clicks:      req.Clicks,
		}, true
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return catalog.LinkPatch{}, false
	}

	var patch catalog.LinkPatch
	if v, ok := formField(r, "title"); ok {
		patch.Title = &v
	}
	if v, ok := formField(r, "description"); ok {
		patch.Description = &v
	}
	if v, ok := formField(r, "url"); ok {
		patch.URL = &v
	}
	if v, ok := formField(r, "category"); ok {
		patch.CategoryID = &v
	}
	if v, ok := formField(r, "tags"); ok {
		patch.Tags = &v
	}
	if v, ok := formField(r, "isFeatured"); ok {
		featured := v == "true"
		patch.IsFeatured = &featured
	}
	if v, ok := formField(r, "order"); ok {
		if order, err := strconv.Atoi(v); err == nil {
			patch.Order = &order
		}
	}
	if v, ok := formField(r, "clicks"); ok {
		if clicks, err := strconv.ParseInt(v, 10, 64); err == nil {
			patch.Clicks = &clicks
		}
	}

	if file, header, err := r.FormFile("image"); err == nil {
		patch.Image = &catalog.ImageUpload{Filename: header.Filename, Content: file}
	}

	return patch, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func formField(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
