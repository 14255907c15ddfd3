package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/internal/app/service"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/internal/middleware"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

type StickerController struct {
	stickerService service.StickerService
}

func NewStickerController(stickerService service.StickerService) *StickerController {
	return &StickerController{
		stickerService: stickerService,
	}
}

// EnsureStickers creates sticker records for the parent's published variants
// POST /api/v1/products/:id/stickers
func (ctrl *StickerController) EnsureStickers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stickers, err := ctrl.stickerService.EnsureForParent(parentID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to ensure stickers", err, map[string]interface{}{
			"parent_id": parentID,
		})
		apperrors.InternalError(c, "failed to ensure stickers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stickers": stickers,
		"count":    len(stickers),
	})
}

// ExportStickers streams the parent's label sheet as an Excel workbook
// GET /api/v1/products/:id/stickers/export
func (ctrl *StickerController) ExportStickers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, err := ctrl.stickerService.ExportParentSheet(parentID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		log.Error("Failed to export sticker sheet", err, map[string]interface{}{
			"parent_id": parentID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.StickerExportFailed, "failed to export sticker sheet")
		return
	}

	streamStickerSheet(c, file, log, map[string]interface{}{"parent_id": parentID})
}

// ExportBatchStickers re-exports one print batch as an Excel workbook
// GET /api/v1/stickers/batches/:batchId/export
func (ctrl *StickerController) ExportBatchStickers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	batchID := c.Param("batchId")
	file, err := ctrl.stickerService.ExportBatchSheet(batchID)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			apperrors.NotFound(c, apperrors.StickerNotFound, "sticker batch not found")
			return
		}
		log.Error("Failed to export sticker batch", err, map[string]interface{}{
			"batch_id": batchID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.StickerExportFailed, "failed to export sticker batch")
		return
	}

	streamStickerSheet(c, file, log, map[string]interface{}{"batch_id": batchID})
}

func streamStickerSheet(c *gin.Context, file *excelize.File, log *logger.Logger, fields map[string]interface{}) {
	c.Header("Content-Disposition", `attachment; filename="stickers.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		log.Error("Failed to stream sticker sheet", err, fields)
	}
}
