package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
)

type createSeriesRequest struct {
	CustomerID       string         `json:"customer_id"`
	ServiceID        string         `json:"service_id,omitempty"`
	RoutineID        string         `json:"routine_id,omitempty"`
	Pattern          string         `json:"pattern"`
	Interval         int            `json:"interval,omitempty"`
	StartDate        string         `json:"start_date"`
	EndDate          string         `json:"end_date,omitempty"`
	OccurrencesCount *int           `json:"occurrences_count,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

func (s *Server) CreateSeries(c *gin.Context) {
	var req createSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		AbortWithError(c, seriesdomain.ErrInvalidStartDate)
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			AbortWithError(c, seriesdomain.ErrInvalidBounds)
			return
		}
		endDate = &parsed
	}

	resp, err := s.seriesSvc.Create(c.Request.Context(), seriesdomain.CreateSeriesRequest{
		CustomerID:       req.CustomerID,
		ServiceID:        req.ServiceID,
		RoutineID:        req.RoutineID,
		Pattern:          req.Pattern,
		Interval:         req.Interval,
		StartDate:        startDate,
		EndDate:          endDate,
		OccurrencesCount: req.OccurrencesCount,
		Metadata:         req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSeries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := s.seriesSvc.List(c.Request.Context(), seriesdomain.ListSeriesRequest{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSeries(c *gin.Context) {
	resp, err := s.seriesSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PauseSeries(c *gin.Context) {
	resp, err := s.seriesSvc.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResumeSeries(c *gin.Context) {
	resp, err := s.seriesSvc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSeries(c *gin.Context) {
	resp, err := s.seriesSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
