package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrStickerNotForParent = errors.New("stickers are printed for variants, not parent products")
	ErrBatchNotFound       = errors.New("sticker batch not found")
)

// StickerService keeps one printed-label record per variant and exports label
// sheets for the print shop. Exporting a sheet stamps PrintedAt on every
// sticker it contains.
type StickerService interface {
	EnsureSticker(productID uint) (*model.Sticker, error)
	EnsureForParent(parentID uint) ([]model.Sticker, error)
	ExportParentSheet(parentID uint) (*excelize.File, error)
	ExportBatchSheet(batchID string) (*excelize.File, error)
}

type stickerService struct {
	stickerRepo repository.StickerRepository
	productRepo repository.ProductRepository
}

func NewStickerService(stickerRepo repository.StickerRepository, productRepo repository.ProductRepository) StickerService {
	return &stickerService{
		stickerRepo: stickerRepo,
		productRepo: productRepo,
	}
}

// EnsureSticker returns the variant's sticker record, creating it on first
// use. The IWASKU and code are snapshotted onto the record because labels that
// were already printed must not drift when the product is edited.
func (s *stickerService) EnsureSticker(productID uint) (*model.Sticker, error) {
	existing, err := s.stickerRepo.FindByProduct(productID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsVariant() {
		return nil, ErrStickerNotForParent
	}

	sticker := &model.Sticker{
		ProductID:   product.ID,
		Iwasku:      product.Iwasku,
		ProductCode: product.ProductCode,
		BatchID:     uuid.NewString(),
	}
	if err := s.stickerRepo.Create(sticker); err != nil {
		return nil, err
	}

	logger.Info("Sticker record created", map[string]interface{}{
		"product_id": product.ID,
		"iwasku":     product.Iwasku,
	})
	return sticker, nil
}

// EnsureForParent ensures a sticker record for every published variant of the
// parent.
func (s *stickerService) EnsureForParent(parentID uint) ([]model.Sticker, error) {
	variants, err := s.productRepo.FindVariantsByParent(parentID)
	if err != nil {
		return nil, err
	}

	var stickers []model.Sticker
	for i := range variants {
		if !variants[i].Published {
			continue
		}
		sticker, err := s.EnsureSticker(variants[i].ID)
		if err != nil {
			return nil, err
		}
		stickers = append(stickers, *sticker)
	}
	return stickers, nil
}

var stickerSheetHeader = []string{"IWASKU", "Product Code", "Name", "Color", "Size", "Custom"}

// ExportParentSheet builds an Excel label sheet for every sticker under the
// parent, one row per variant.
func (s *stickerService) ExportParentSheet(parentID uint) (*excelize.File, error) {
	if _, err := s.EnsureForParent(parentID); err != nil {
		return nil, err
	}
	stickers, err := s.stickerRepo.FindByParent(parentID)
	if err != nil {
		return nil, err
	}

	file, err := s.buildSheet(stickers)
	if err != nil {
		return nil, err
	}

	logger.Info("Sticker sheet exported", map[string]interface{}{
		"parent_id": parentID,
		"rows":      len(stickers),
	})
	return file, nil
}

// ExportBatchSheet re-exports one print batch, for reprints at the shop.
func (s *stickerService) ExportBatchSheet(batchID string) (*excelize.File, error) {
	stickers, err := s.stickerRepo.FindByBatch(batchID)
	if err != nil {
		return nil, err
	}
	if len(stickers) == 0 {
		return nil, ErrBatchNotFound
	}

	file, err := s.buildSheet(stickers)
	if err != nil {
		return nil, err
	}

	logger.Info("Sticker batch re-exported", map[string]interface{}{
		"batch_id": batchID,
		"rows":     len(stickers),
	})
	return file, nil
}

func (s *stickerService) buildSheet(stickers []model.Sticker) (*excelize.File, error) {
	file := excelize.NewFile()
	const sheet = "Stickers"
	file.SetSheetName(file.GetSheetName(0), sheet)

	for col, title := range stickerSheetHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, sticker := range stickers {
		colorName := ""
		if sticker.Product.VariationColor != nil {
			colorName = sticker.Product.VariationColor.Name
		}
		values := []interface{}{
			sticker.Iwasku,
			sticker.ProductCode,
			sticker.Product.Name,
			colorName,
			sticker.Product.VariationSize,
			sticker.Product.CustomField,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("writing sticker row %d: %w", i+1, err)
			}
		}
	}

	if err := s.markPrinted(stickers); err != nil {
		return nil, err
	}
	return file, nil
}

// markPrinted stamps the first export time; reprints keep the original stamp.
func (s *stickerService) markPrinted(stickers []model.Sticker) error {
	now := time.Now()
	for i := range stickers {
		if stickers[i].PrintedAt != nil {
			continue
		}
		stickers[i].PrintedAt = &now
		if err := s.stickerRepo.Save(&stickers[i]); err != nil {
			return err
		}
	}
	return nil
}
