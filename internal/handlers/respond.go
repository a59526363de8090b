package handlers

import (
	"net/http"

	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/services"
	"github.com/dimitrije/martsy-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindInvalidFormat, services.KindInvalidRepositoryURL:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {success:false, message}. Server-side failures are
// logged with their cause; the client only sees the kind's message.
func respondError(c *drift.Context, log *logger.Logger, err error) {
	kind := services.KindOf(err)
	status := statusForKind(kind)

	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed",
			"kind", kind.String(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}

	_ = c.JSON(status, dto.StatusResponse{
		Success: false,
		Message: services.MessageOf(err),
	})
}

func respondMessage(c *drift.Context, status int, message string) {
	_ = c.JSON(status, dto.StatusResponse{Success: false, Message: message})
}
