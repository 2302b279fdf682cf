package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Araychaudhur/portfolio-2025/internal/ai"
	"github.com/Araychaudhur/portfolio-2025/internal/pkg/errs"
	"github.com/Araychaudhur/portfolio-2025/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, errs.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "missing question")
	case errors.Is(err, errs.ErrUnavailable), errors.Is(err, ai.ErrUnavailable):
		response.Error(c, http.StatusInternalServerError, "ai not configured")
	default:
		// Upstream failures surface their message rather than a generic 500:
		// the caller is the site owner debugging their own deployment.
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
