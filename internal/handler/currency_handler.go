package handler

import (
	"errors"
	"net/http"

	"converter-service/internal/adapter/openexchange"
	"converter-service/internal/entity"
	"converter-service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CurrencyHandler struct {
	usecase usecase.RateUsecase
	logger  *logrus.Logger
}

func NewCurrencyHandler(usecase usecase.RateUsecase, logger *logrus.Logger) *CurrencyHandler {
	return &CurrencyHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Register mounts the currency routes on r.
func (h *CurrencyHandler) Register(r gin.IRouter) {
	group := r.Group("/currency")
	group.GET("/rates", h.GetRates)
	group.GET("/rates/stream", h.StreamRates)
	group.GET("/list", h.GetCurrencyList)
	group.GET("/convert", h.Convert)
	group.POST("/refresh", h.Refresh)
	group.POST("/query", h.Query)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidCode), errors.Is(err, usecase.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, openexchange.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *CurrencyHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func baseOrDefault(base string) string {
	if base == "" {
		return entity.USD
	}
	return base
}

func (h *CurrencyHandler) GetRates(c *gin.Context) {
	var q ratesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.usecase.GetRates(c.Request.Context(), baseOrDefault(q.Base))
	if err != nil {
		h.logger.WithError(err).Errorf("Failed to get rates for base=%s", q.Base)
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// StreamRates sends every state of the rates stream as a server-sent event.
func (h *CurrencyHandler) StreamRates(c *gin.Context) {
	var q ratesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	states := h.usecase.StreamRates(ctx, baseOrDefault(q.Base))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Client left rates stream")
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			c.SSEvent(string(st.Phase), st)
			c.Writer.Flush()
		}
	}
}

func (h *CurrencyHandler) GetCurrencyList(c *gin.Context) {
	options, err := h.usecase.GetCurrencyOptions(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get currency list")
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

func (h *CurrencyHandler) Convert(c *gin.Context) {
	var q convertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": usecase.ErrInvalidAmount.Error()})
		return
	}

	result, err := h.usecase.Convert(c.Request.Context(), baseOrDefault(q.Base), q.Amount)
	if err != nil {
		h.logger.WithError(err).Errorf("Failed to convert base=%s, amount=%.2f", q.Base, q.Amount)
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CurrencyHandler) Refresh(c *gin.Context) {
	if err := h.usecase.RefreshAll(c.Request.Context()); err != nil {
		h.logger.Errorf("Failed to refresh rates: %v", err)
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rates successfully updated"})
}

// Query answers a usecase.Request with its terminal state.
func (h *CurrencyHandler) Query(c *gin.Context) {
	var req usecase.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := usecase.Await(h.usecase.Handle(c.Request.Context(), req))
	if st.Phase == usecase.PhaseError {
		status := statusFor(st.Err)
		if errors.Is(st.Err, usecase.ErrUnknownCategory) {
			status = http.StatusBadRequest
		}
		if status == http.StatusInternalServerError {
			st.Message = "internal error"
		}
		h.logger.WithError(st.Err).Errorf("Failed to answer %s query", req.Category)
		c.JSON(status, st)
		return
	}

	c.JSON(http.StatusOK, st)
}
