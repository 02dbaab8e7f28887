package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/bookflow/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/bookflow/internal/catalog/domain"
	customerdomain "github.com/smallbiznis/bookflow/internal/customer/domain"
	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, payload := classifyError(err)
		c.JSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func classifyError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, seriesdomain.ErrSeriesNotFound),
		errors.Is(err, bookingdomain.ErrBookingNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrOfferingNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}

	case errors.Is(err, seriesdomain.ErrSeriesTerminal),
		errors.Is(err, bookingdomain.ErrSlotConflict):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, seriesdomain.ErrInvalidSeries),
		errors.Is(err, seriesdomain.ErrInvalidCustomer),
		errors.Is(err, seriesdomain.ErrInvalidPattern),
		errors.Is(err, seriesdomain.ErrInvalidInterval),
		errors.Is(err, seriesdomain.ErrInvalidStartDate),
		errors.Is(err, seriesdomain.ErrInvalidBounds),
		errors.Is(err, seriesdomain.ErrInvalidStatus),
		errors.Is(err, bookingdomain.ErrInvalidBooking),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidPhone),
		errors.Is(err, customerdomain.ErrInvalidCustomer),
		errors.Is(err, catalogdomain.ErrInvalidOffering):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: err.Error()}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal error"}
	}
}
