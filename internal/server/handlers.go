package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GajendraSingh33/fraud-detection-system/internal/idgen"
	"github.com/GajendraSingh33/fraud-detection-system/internal/logging"
	"github.com/GajendraSingh33/fraud-detection-system/internal/pipeline"
	"github.com/GajendraSingh33/fraud-detection-system/internal/realtime"
	"github.com/GajendraSingh33/fraud-detection-system/internal/transaction"
	"github.com/GajendraSingh33/fraud-detection-system/internal/validation"
)

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "fraud-detection-system",
		"description": "Real-time ensemble fraud scoring for card transactions",
		"version":     "1.0.0",
		"endpoints": gin.H{
			"websocket": "/ws",
			"analyze":   "POST /analyze",
			"stats":     "/stats",
			"model":     "/model",
			"retrain":   "POST /retrain",
			"health":    "/health",
			"metrics":   "/metrics",
		},
	})
}

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, statuses := s.healthReg.CheckAll(ctx)

	checks := make(map[string]string, len(statuses))
	for _, st := range statuses {
		if st.Healthy {
			checks[st.Name] = "healthy"
		} else {
			checks[st.Name] = "unhealthy"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "1.0.0",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// AnalyzeRequest is an on-demand transaction submission.
type AnalyzeRequest struct {
	Amount       float64 `json:"amount"`
	MerchantType string  `json:"merchant_type"`
	Location     string  `json:"location"`
	TimeOfDay    string  `json:"time_of_day"`
	CardType     string  `json:"card_type"`
}

// analyzeHandler scores a submitted transaction synchronously and
// publishes it to subscribers. Invalid submissions touch no counters.
func (s *Server) analyzeHandler(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
		})
		return
	}

	errs := validation.Validate(
		validation.Positive("amount", req.Amount),
		validation.Required("merchant_type", req.MerchantType),
		validation.Required("location", req.Location),
		validation.Required("time_of_day", req.TimeOfDay),
		validation.Required("card_type", req.CardType),
		validation.MaxLength("merchant_type", req.MerchantType, validation.MaxFieldLength),
		validation.MaxLength("location", req.Location, validation.MaxFieldLength),
		validation.OneOf("time_of_day", req.TimeOfDay, transaction.TimePeriods...),
		validation.OneOf("card_type", req.CardType, transaction.CardTypes...),
	)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": errs.Error(),
		})
		return
	}

	tx := transaction.Transaction{
		ID:           idgen.WithPrefix("txn_"),
		Amount:       req.Amount,
		MerchantType: transaction.NormalizeCategory(validation.SanitizeString(req.MerchantType, validation.MaxFieldLength)),
		Location:     validation.SanitizeString(req.Location, validation.MaxFieldLength),
		TimeOfDay:    transaction.NormalizeCategory(req.TimeOfDay),
		CardType:     transaction.NormalizeCategory(req.CardType),
		Timestamp:    time.Now().UTC(),
	}

	st, err := s.pipe.Process(c.Request.Context(), tx, realtime.MessageNewTransaction, pipeline.SourceAnalyze)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Model not ready, try again shortly",
		})
		return
	}

	c.JSON(http.StatusOK, st)
}

func (s *Server) statsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) modelHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.scorer.Metadata())
}

// retrainHandler fits a fresh ensemble on a new generated corpus.
// Scoring keeps serving the previous generation until the swap.
func (s *Server) retrainHandler(c *gin.Context) {
	if err := s.train(c.Request.Context()); err != nil {
		logging.L(c.Request.Context()).Error("retrain failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Retraining failed",
		})
		return
	}

	// Subscribers see the new quality metrics immediately.
	s.hub.Broadcast(realtime.MessageStats, s.stats.Snapshot())

	quality, _ := s.scorer.Quality()
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"quality": quality,
		"model":   s.scorer.Metadata(),
	})
}
