package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/constants"
	appvalidation "github.com/linkatalog/linkatalog/internal/infrastructure/validation"
	"github.com/linkatalog/linkatalog/internal/transport/http/middleware"
	"github.com/linkatalog/linkatalog/pkg/httputils"
)

type StatsHandler struct {
	svc *catalog.Service
}

func NewStatsHandler(svc *catalog.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

type summaryResponse struct {
	TotalLinks    int64          `json:"totalLinks"`
	TotalClicks   int64          `json:"totalClicks"`
	FeaturedLinks int64          `json:"featuredLinks"`
	TopLinks      []linkResponse `json:"topLinks"`
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	topN, _ := strconv.Atoi(r.URL.Query().Get("top"))
	summary, err := h.svc.Stats(r.Context(), principal, topN)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessStatsFound, summaryResponse{
		TotalLinks:    summary.TotalLinks,
		TotalClicks:   summary.TotalClicks,
		FeaturedLinks: summary.FeaturedLinks,
		TopLinks:      toLinkResponses(summary.TopLinks),
	})
}

type dailyStatsResponse struct {
	LinkID string               `json:"linkId"`
	From   string               `json:"from"`
	To     string               `json:"to"`
	Daily  []catalog.DailyCount `json:"daily"`
}

type statsQueryParams struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

func (h *StatsHandler) LinkDaily(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	id := r.PathValue("id")

	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if err := appvalidation.Validate(statsQueryParams{From: fromRaw, To: toRaw}); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("from and to are required (YYYY-MM-DD)"))
		return
	}

	from, err := time.Parse(time.DateOnly, fromRaw)
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("invalid from (YYYY-MM-DD)"))
		return
	}
	to, err := time.Parse(time.DateOnly, toRaw)
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("invalid to (YYYY-MM-DD)"))
		return
	}

	daily, err := h.svc.LinkClickStats(r.Context(), principal, id, from, to)
	if err != nil {
		writeCatalogError(w, r, err, constants.ErrLinkNotFound)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessStatsFound, dailyStatsResponse{
		LinkID: id,
		From:   from.Format(time.DateOnly),
		To:     to.Format(time.DateOnly),
		Daily:  daily,
	})
}
