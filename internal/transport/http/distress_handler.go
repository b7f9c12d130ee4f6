package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "distresscli/internal/errors"
	"distresscli/internal/validation"
	api "distresscli/pkg/contracts/api/v1"
	"distresscli/pkg/contracts/domain"
)

// DistressHandler serves the scoring endpoints
type DistressHandler struct {
	scorer       Scorer
	validator    *validation.StatementValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	maxBatch     int
}

// NewDistressHandler creates a new distress handler; maxBatch caps /batch
func NewDistressHandler(scorer Scorer, maxBatch int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DistressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DistressHandler{
		scorer:       scorer,
		validator:    validation.NewStatementValidator(logger),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "distress_handler")),
		maxBatch:     maxBatch,
	}
}

// Routes returns the distress routes
func (h *DistressHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/calendar", h.GetCalendar)
	r.Post("/score", h.Score)
	r.Post("/batch", h.ScoreBatch)

	return r
}

// GetCalendar handles GET /calendar
func (h *DistressHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal := h.scorer.Calendar()
	render.JSON(w, r, map[string]interface{}{
		"assessment_date": cal.AssessmentDate().Format("2006-01-02"),
		"quarters":        cal.Targets(),
	})
}

// Score handles POST /score
func (h *DistressHandler) Score(w http.ResponseWriter, r *http.Request) {
	var set domain.StatementSet
	if err := render.DecodeJSON(r.Body, &set); err != nil {
		h.errorHandler.HandleError(w, r, decodeError(err))
		return
	}

	if err := h.validator.ValidateSet(set); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report := h.scorer.Score(r.Context(), set).Report()

	h.logger.InfoContext(r.Context(), "entity scored",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("ticker", report.Ticker),
		slog.Float64("distress_score", report.DistressScore),
		slog.String("status", string(report.Status)),
	)

	render.JSON(w, r, report)
}

// ScoreBatch handles POST /batch
func (h *DistressHandler) ScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req api.BatchScoreRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, decodeError(err))
		return
	}

	if len(req.Sets) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sets", "at least one statement set is required"))
		return
	}
	if h.maxBatch > 0 && len(req.Sets) > h.maxBatch {
		h.errorHandler.HandleError(w, r, apierrors.BatchTooLarge(len(req.Sets), h.maxBatch))
		return
	}
	if err := h.validator.ValidateSets(req.Sets); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	outcomes, err := h.scorer.ScoreBatch(r.Context(), req.Sets)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := api.BatchScoreResponse{Reports: make([]domain.DistressReport, len(outcomes))}
	for i, o := range outcomes {
		resp.Reports[i] = o.Report()
	}
	resp.Summary = api.Summarize(resp.Reports)

	h.logger.InfoContext(r.Context(), "batch scored",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("total", resp.Summary.Total),
		slog.Int("scored", resp.Summary.Scored),
		slog.Int("insufficient", resp.Summary.Insufficient),
	)

	render.JSON(w, r, resp)
}

// decodeError maps body decoding failures onto API errors
func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierrors.ErrPayloadTooLarge
	}
	return apierrors.InvalidRequestWithError(err)
}
