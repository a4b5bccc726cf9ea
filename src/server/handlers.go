package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ScreenerServer) getRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Stock screener backend is running",
	})
}

// -----------------------------------------------------------------------------

func (s *ScreenerServer) getHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Warning("Health check: database unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------

// postScreenerList screens the universe with the posted filter.
func (s *ScreenerServer) postScreenerList(c *gin.Context) {
	var req models.MScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.Logger.Info("Receiving screener request: %+v", req)

	stocks, err := s.Service.FilterStocks(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewScreenResponse(stocks))
}

// -----------------------------------------------------------------------------

func (s *ScreenerServer) getStockChart(c *gin.Context) {
	secCode := c.Param("sec_code")
	periodType := c.DefaultQuery("period_type", models.PeriodSeason)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	data, err := s.Service.ChartData(c.Request.Context(), secCode, periodType, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// -----------------------------------------------------------------------------

// fail maps service errors to the response body {"detail": message}.
func (s *ScreenerServer) fail(c *gin.Context, err error) {
	if helpers.IsValidation(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.Logger.Error("API Error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
