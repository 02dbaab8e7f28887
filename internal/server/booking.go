package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/bookflow/internal/booking/domain"
)

func (s *Server) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := s.bookingSvc.List(c.Request.Context(), bookingdomain.ListBookingRequest{
		SeriesID:   c.Query("series_id"),
		CustomerID: c.Query("customer_id"),
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBooking(c *gin.Context) {
	resp, err := s.bookingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
