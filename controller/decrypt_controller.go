package controller

import (
	"net/http"
	"time"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/logger"
	"teleconsult/service"

	"github.com/labstack/echo/v4"
)

// DecryptController handles the single and batch decrypt endpoints. The same
// handlers back both the gated and the legacy ungated routes; the difference
// is middleware, not behavior.
type DecryptController struct {
	decryptService service.DecryptService
	logger         *logger.Logger
	dev            bool
}

// NewDecryptController creates a new decrypt controller instance
func NewDecryptController(decryptService service.DecryptService, cfg *config.Config, log *logger.Logger) *DecryptController {
	return &DecryptController{
		decryptService: decryptService,
		logger:         log,
		dev:            cfg.Application.Environment == "development",
	}
}

// DecryptSingle decrypts one link parameter
// @Summary Decrypt a single link parameter
// @Description Decrypt one encrypted link parameter, masking sensitive sub-fields
// @Tags Decrypt
// @Accept json
// @Produce json
// @Param request body entity.DecryptRequest true "Decrypt Request"
// @Success 200 {object} entity.DecryptResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /decrypt [post]
func (c *DecryptController) DecryptSingle(ctx echo.Context) error {
	var req entity.DecryptRequest

	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.New("invalid_input", http.StatusBadRequest, "Encoded text is required and must be a string").WithInternal(err))
	}

	decrypted, err := c.decryptService.DecryptOne(req.Text)
	if err != nil {
		return respondError(ctx, c.logger, c.dev, err)
	}

	c.logger.Infow("Decrypt endpoint accessed", "client", ctx.RealIP())

	return ctx.JSON(http.StatusOK, entity.DecryptResponse{
		Success:       true,
		DecryptedText: decrypted,
		Timestamp:     time.Now().UTC(),
	})
}

// DecryptBatch decrypts up to 20 link parameters in one request
// @Summary Decrypt link parameters in batch
// @Description Decrypt up to 20 encrypted link parameters with per-item error isolation
// @Tags Decrypt
// @Accept json
// @Produce json
// @Param request body entity.BatchDecryptRequest true "Batch Decrypt Request"
// @Success 200 {object} entity.BatchDecryptResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /decrypt/batch [post]
func (c *DecryptController) DecryptBatch(ctx echo.Context) error {
	var req entity.BatchDecryptRequest

	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, c.logger, c.dev, apierr.New("invalid_input", http.StatusBadRequest, "texts must be an array of encrypted strings").WithInternal(err))
	}

	results, errors, err := c.decryptService.DecryptBatch(req.Texts)
	if err != nil {
		return respondError(ctx, c.logger, c.dev, err)
	}

	c.logger.Infow("Batch decrypt endpoint accessed", "client", ctx.RealIP(), "items", len(req.Texts))

	response := entity.BatchDecryptResponse{
		Success:   true,
		Results:   results,
		Timestamp: time.Now().UTC(),
	}
	if len(errors) > 0 {
		response.Errors = errors
	}

	return ctx.JSON(http.StatusOK, response)
}
