package controller

import (
	"github.com/labstack/echo/v4"

	"teleconsult/pkg/apierr"
	"teleconsult/pkg/logger"
)

// errorBody is the uniform failure envelope for every endpoint
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError converts any error into the uniform envelope. The public
// message is what ships; internal detail is logged, and only exposed to the
// client in development mode. This is the single place the
// public-vs-internal split is enforced.
func respondError(ctx echo.Context, log *logger.Logger, development bool, err error) error {
	apiErr := apierr.From(err)

	if apiErr.Internal != nil {
		log.Errorw("Request failed",
			"path", ctx.Request().URL.Path,
			"code", apiErr.Code,
			"error", apiErr.Internal,
		)
	} else {
		log.Infow("Request rejected",
			"path", ctx.Request().URL.Path,
			"code", apiErr.Code,
		)
	}

	message := apiErr.Message
	if development && apiErr.Internal != nil {
		message = apiErr.Internal.Error()
	}

	return ctx.JSON(apiErr.Status, errorBody{
		Success: false,
		Error:   apiErr.Code,
		Message: message,
	})
}
