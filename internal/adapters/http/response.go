package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ntask/core/internal/domain/entities"
)

// MessageResponse is a simple message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// httpError maps domain sentinel errors onto HTTP status codes. Unknown
// errors become 500 and are logged by the server's error handler.
func httpError(err error) error {
	switch {
	case errors.Is(err, entities.ErrBoardNotFound),
		errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrRelationNotFound),
		errors.Is(err, entities.ErrRequestNotFound),
		errors.Is(err, entities.ErrDocumentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrRequestProcessed),
		errors.Is(err, entities.ErrMissingApprovalFields),
		errors.Is(err, entities.ErrInvalidAction),
		errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrInvalidRelation),
		errors.Is(err, entities.ErrTaskExists):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrParserUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
