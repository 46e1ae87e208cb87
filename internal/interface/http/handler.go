package http

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/smart-faq/internal/domain/faq"
	apperrors "github.com/yanqian/smart-faq/pkg/errors"
	"github.com/yanqian/smart-faq/pkg/metrics"
)

// Handler wires the HTTP transport to the FAQ domain.
type Handler struct {
	faqSvc     faq.Service
	usage      *metrics.Counters
	defaultTop int
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, usage *metrics.Counters, faqCfg faq.Config, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:     faqSvc,
		usage:      usage,
		defaultTop: faqCfg.TopQuestions,
		logger:     logger.With("component", "http.handler"),
	}
}

// Ask resolves a free-text question against the FAQ bank.
func (h *Handler) Ask(c *gin.Context) {
	var req faq.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.faqSvc.Match(c.Request.Context(), req)
	if err != nil {
		// a store failure must stay distinguishable from "no FAQ matches"
		abortWithError(c, askError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

type feedbackBody struct {
	Helpful *bool  `json:"helpful" binding:"required"`
	Comment string `json:"comment"`
}

// Feedback records whether a served answer helped.
func (h *Handler) Feedback(c *gin.Context) {
	var body feedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	err := h.faqSvc.RegisterFeedback(c.Request.Context(), faq.FeedbackRequest{
		EntryID: c.Param("id"),
		Helpful: *body.Helpful,
		Comment: body.Comment,
	})
	if err != nil {
		switch {
		case apperrors.IsCode(err, faq.CodeNotFound):
			abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err))
		case apperrors.IsCode(err, faq.CodeStoreUnavailable):
			abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "store_unavailable", errMessage(err), err))
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "feedback_failed", errMessage(err), err))
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// TopQuestions returns the ranked most-asked questions.
func (h *Handler) TopQuestions(c *gin.Context) {
	limit := h.defaultTop
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}

	items, err := h.faqSvc.TopQuestions(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, askError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": items})
}

type upsertEntryBody struct {
	ID       string `json:"id"`
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// UpsertEntry creates or replaces an FAQ entry. Used by seed tooling.
func (h *Handler) UpsertEntry(c *gin.Context) {
	var body upsertEntryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}

	entry, err := h.faqSvc.UpsertEntry(c.Request.Context(), body.ID, body.Question, body.Answer)
	if err != nil {
		switch {
		case apperrors.IsCode(err, faq.CodeInvalidInput):
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		case apperrors.IsCode(err, faq.CodeStoreUnavailable):
			abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "store_unavailable", errMessage(err), err))
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upsert_failed", errMessage(err), err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       entry.ID,
		"question": entry.Question,
		"answer":   entry.Answer,
	})
}

// Stats exposes process-level counters.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.usage.Snapshot())
}

func askError(err error) *HTTPError {
	if apperrors.IsCode(err, faq.CodeStoreUnavailable) {
		return NewHTTPError(http.StatusServiceUnavailable, "store_unavailable", errMessage(err), err)
	}
	return NewHTTPError(http.StatusInternalServerError, "faq_failed", errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
