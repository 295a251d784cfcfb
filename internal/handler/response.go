package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"klotto/internal/analysis"
	"klotto/internal/drawstore"
	"klotto/internal/generator"
	"klotto/internal/lotto"
	"klotto/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Accepted(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusAccepted, apiResponse{
		Code:    0,
		Message: "accepted",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// serviceError maps domain errors onto HTTP statuses.
func serviceError(c *gin.Context, err error) {
	var verr *lotto.ValidationError
	var perr *drawstore.PersistenceError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, verr.Error(), map[string]any{"draw_no": verr.DrawNo})
	case errors.As(err, &perr):
		Error(c, http.StatusBadGateway, perr.Error(), nil)
	case errors.Is(err, service.ErrDrawNotFound), errors.Is(err, service.ErrFavoriteNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, generator.ErrInvalidConstraints), errors.Is(err, analysis.ErrInvalidSet):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		Error(c, http.StatusInternalServerError, err.Error(), nil)
	}
}
