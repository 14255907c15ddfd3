package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/service"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/internal/middleware"
	"github.com/iwapim/catalog-backend/pkg/logger"
)

type VariantController struct {
	variantService service.VariantService
}

func NewVariantController(variantService service.VariantService) *VariantController {
	return &VariantController{
		variantService: variantService,
	}
}

type MatrixRequest struct {
	ColorIDs []uint   `json:"color_ids"`
	Sizes    []string `json:"sizes"`
	Customs  []string `json:"customs"`
}

type ReconcileRequest struct {
	Selections []service.CombinationSelection `json:"selections" binding:"required"`
}

type AxisRemovalRequest struct {
	Axis  service.AxisKind `json:"axis" binding:"required"`
	Value string           `json:"value" binding:"required"`
}

type SizeRowRequest struct {
	Label     string  `json:"label" binding:"required"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	SortOrder int     `json:"sort_order"`
}

type CustomRowRequest struct {
	Label     string `json:"label" binding:"required"`
	Value     string `json:"value"`
	SortOrder int    `json:"sort_order"`
}

// GetAxisOptions returns the parent's available axis option sets
// GET /api/v1/products/:id/axes
func (ctrl *VariantController) GetAxisOptions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sizes, customs, colors, err := ctrl.variantService.AxisOptions(parentID)
	if err != nil {
		ctrl.respondParentError(c, log, parentID, err, "failed to load axis options")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sizes":   sizes,
		"customs": customs,
		"colors":  colors,
	})
}

// AddSizeRow appends a size row to the parent's template
// POST /api/v1/products/:id/axes/sizes
func (ctrl *VariantController) AddSizeRow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SizeRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	row := &model.SizeTemplateRow{
		Label:     req.Label,
		Width:     req.Width,
		Height:    req.Height,
		SortOrder: req.SortOrder,
	}
	if err := ctrl.variantService.AddSizeRow(parentID, row); err != nil {
		if errors.Is(err, service.ErrTemplateLabelEmpty) {
			apperrors.BadRequest(c, apperrors.TemplateLabelRequired, err.Error())
			return
		}
		ctrl.respondParentError(c, log, parentID, err, "failed to add size row")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"size": row})
}

// RemoveSizeRow removes a size row once no variant references it
// DELETE /api/v1/products/:id/axes/sizes/:rowId
func (ctrl *VariantController) RemoveSizeRow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rowID, ok := parseIDParam(c, "rowId")
	if !ok {
		return
	}

	if err := ctrl.variantService.RemoveSizeRow(parentID, rowID); err != nil {
		ctrl.respondTemplateRowError(c, log, parentID, err, "failed to remove size row")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "size row removed"})
}

// AddCustomRow appends a custom option row to the parent's template
// POST /api/v1/products/:id/axes/customs
func (ctrl *VariantController) AddCustomRow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CustomRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	row := &model.CustomTemplateRow{
		Label:     req.Label,
		Value:     req.Value,
		SortOrder: req.SortOrder,
	}
	if err := ctrl.variantService.AddCustomRow(parentID, row); err != nil {
		if errors.Is(err, service.ErrTemplateLabelEmpty) {
			apperrors.BadRequest(c, apperrors.TemplateLabelRequired, err.Error())
			return
		}
		ctrl.respondParentError(c, log, parentID, err, "failed to add custom row")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"custom": row})
}

// RemoveCustomRow removes a custom option row once no variant references it
// DELETE /api/v1/products/:id/axes/customs/:rowId
func (ctrl *VariantController) RemoveCustomRow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rowID, ok := parseIDParam(c, "rowId")
	if !ok {
		return
	}

	if err := ctrl.variantService.RemoveCustomRow(parentID, rowID); err != nil {
		ctrl.respondTemplateRowError(c, log, parentID, err, "failed to remove custom row")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "custom row removed"})
}

func (ctrl *VariantController) respondTemplateRowError(c *gin.Context, log *logger.Logger, parentID uint, err error, genericMessage string) {
	switch {
	case errors.Is(err, service.ErrTemplateRowNotFound):
		apperrors.NotFound(c, apperrors.TemplateRowNotFound, "template row not found")
	case errors.Is(err, service.ErrAxisValueLocked):
		apperrors.Conflict(c, apperrors.VariantAxisLocked, err.Error())
	default:
		ctrl.respondParentError(c, log, parentID, err, genericMessage)
	}
}

// GenerateMatrix expands the chosen axis values into the combination matrix
// POST /api/v1/products/:id/variants/matrix
func (ctrl *VariantController) GenerateMatrix(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MatrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	result, err := ctrl.variantService.GenerateMatrix(parentID, req.ColorIDs, req.Sizes, req.Customs)
	if err != nil {
		ctrl.respondParentError(c, log, parentID, err, "failed to generate variant matrix")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Reconcile applies the selected combinations to the parent's variants
// POST /api/v1/products/:id/variants/reconcile
func (ctrl *VariantController) Reconcile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	report, err := ctrl.variantService.Reconcile(parentID, req.Selections)
	if err != nil {
		ctrl.respondParentError(c, log, parentID, err, "failed to reconcile variants")
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteVariant unpublishes the variant matching the triple
// DELETE /api/v1/products/:id/variants
func (ctrl *VariantController) DeleteVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var sel service.CombinationSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	if err := ctrl.variantService.DeleteVariant(parentID, sel); err != nil {
		switch {
		case errors.Is(err, service.ErrVariantNotFound):
			apperrors.NotFound(c, apperrors.VariantNotFound, "variant not found")
		case errors.Is(err, service.ErrVariantInUse):
			apperrors.Conflict(c, apperrors.VariantInUse, err.Error())
		default:
			ctrl.respondParentError(c, log, parentID, err, "failed to delete variant")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "variant unpublished"})
}

// CheckAxisRemoval verifies that an axis value is free to be removed
// POST /api/v1/products/:id/axes/check-removal
func (ctrl *VariantController) CheckAxisRemoval(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AxisRemovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	if err := ctrl.variantService.CheckAxisRemoval(parentID, req.Axis, req.Value); err != nil {
		if errors.Is(err, service.ErrAxisValueLocked) {
			apperrors.Conflict(c, apperrors.VariantAxisLocked, err.Error())
			return
		}
		ctrl.respondParentError(c, log, parentID, err, "failed to check axis removal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"removable": true})
}

func (ctrl *VariantController) respondParentError(c *gin.Context, log *logger.Logger, parentID uint, err error, genericMessage string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
	case errors.Is(err, service.ErrNotAParent):
		apperrors.BadRequest(c, apperrors.ProductNotParent, err.Error())
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		log.Error("Code space exhausted", err, map[string]interface{}{
			"parent_id": parentID,
		})
		apperrors.InternalError(c, genericMessage)
	default:
		log.Error(genericMessage, err, map[string]interface{}{
			"parent_id": parentID,
		})
		apperrors.InternalError(c, genericMessage)
	}
}
