package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/pkg/identity"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrNotAParent          = errors.New("product is not a parent product")
	ErrVariantNotFound     = errors.New("variant not found")
	ErrVariantInUse        = errors.New("variant is referenced by a bundle")
	ErrColorNotFound       = errors.New("color not found")
	ErrAxisValueLocked     = errors.New("axis value is still referenced by a variant")
	ErrTemplateRowNotFound = errors.New("template row not found")
	ErrTemplateLabelEmpty  = errors.New("template row label is empty")
)

// createRetryAttempts bounds the regenerate-and-retry loop after a write-time
// uniqueness violation (two requests minting the same code between the
// uniqueness read and the insert).
const createRetryAttempts = 3

// AxisKind names one dimension of variation.
type AxisKind string

const (
	AxisColor  AxisKind = "color"
	AxisSize   AxisKind = "size"
	AxisCustom AxisKind = "custom"
)

// CombinationSelection is one (color, size, custom) triple selected from the
// generated matrix, or targeted by a delete request.
type CombinationSelection struct {
	Color  string `json:"color" binding:"required"`
	Size   string `json:"size" binding:"required"`
	Custom string `json:"custom"`
}

type ReconcileStatus string

const (
	ReconcileCreated     ReconcileStatus = "created"
	ReconcileRepublished ReconcileStatus = "republished"
	ReconcileUnchanged   ReconcileStatus = "unchanged"
	ReconcileFailed      ReconcileStatus = "failed"
)

// MintedVariant identifies a variant created during reconciliation.
type MintedVariant struct {
	VariantID   uint   `json:"variant_id"`
	Iwasku      string `json:"iwasku"`
	ProductCode string `json:"product_code"`
}

// ReconcileOutcome is the per-combination result. Failures abort only their
// own combination; the rest of the batch proceeds.
type ReconcileOutcome struct {
	Color  string          `json:"color"`
	Size   string          `json:"size"`
	Custom string          `json:"custom,omitempty"`
	Status ReconcileStatus `json:"status"`
	Error  string          `json:"error,omitempty"`
	Minted *MintedVariant  `json:"minted,omitempty"`
}

type ReconcileReport struct {
	Outcomes []ReconcileOutcome `json:"outcomes"`
	Minted   []MintedVariant    `json:"minted"`
}

// VariantService generates the variant matrix for a parent product and
// reconciles a selection of combinations against the persisted variants.
type VariantService interface {
	AxisOptions(parentID uint) (sizes []model.AxisOption, customs []model.AxisOption, colors []model.Color, err error)
	AddSizeRow(parentID uint, row *model.SizeTemplateRow) error
	RemoveSizeRow(parentID, rowID uint) error
	AddCustomRow(parentID uint, row *model.CustomTemplateRow) error
	RemoveCustomRow(parentID, rowID uint) error
	GenerateMatrix(parentID uint, colorIDs []uint, sizes []string, customs []string) (MatrixResult, error)
	Reconcile(parentID uint, selections []CombinationSelection) (ReconcileReport, error)
	DeleteVariant(parentID uint, selection CombinationSelection) error
	CheckAxisRemoval(parentID uint, axis AxisKind, value string) error
}

type variantService struct {
	productRepo  repository.ProductRepository
	colorRepo    repository.ColorRepository
	templateRepo repository.TemplateRepository
	codeGen      CodeGenerator
}

func NewVariantService(
	productRepo repository.ProductRepository,
	colorRepo repository.ColorRepository,
	templateRepo repository.TemplateRepository,
	codeGen CodeGenerator,
) VariantService {
	return &variantService{
		productRepo:  productRepo,
		colorRepo:    colorRepo,
		templateRepo: templateRepo,
		codeGen:      codeGen,
	}
}

func (s *variantService) loadParent(parentID uint) (*model.Product, error) {
	parent, err := s.productRepo.FindByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if parent.IsVariant() {
		return nil, ErrNotAParent
	}
	return parent, nil
}

// AxisOptions returns the axis option sets available to the parent: size and
// custom rows from its templates, plus every persisted color.
func (s *variantService) AxisOptions(parentID uint) ([]model.AxisOption, []model.AxisOption, []model.Color, error) {
	if _, err := s.loadParent(parentID); err != nil {
		return nil, nil, nil, err
	}

	sizeRows, err := s.templateRepo.SizeRowsByProduct(parentID)
	if err != nil {
		return nil, nil, nil, err
	}
	customRows, err := s.templateRepo.CustomRowsByProduct(parentID)
	if err != nil {
		return nil, nil, nil, err
	}
	colors, err := s.colorRepo.FindAll()
	if err != nil {
		return nil, nil, nil, err
	}

	sizes := make([]model.AxisOption, 0, len(sizeRows))
	for _, row := range sizeRows {
		sizes = append(sizes, model.SizeAxisOption(row))
	}
	customs := make([]model.AxisOption, 0, len(customRows))
	for _, row := range customRows {
		customs = append(customs, model.CustomAxisOption(row))
	}
	return sizes, customs, colors, nil
}

func (s *variantService) AddSizeRow(parentID uint, row *model.SizeTemplateRow) error {
	if _, err := s.loadParent(parentID); err != nil {
		return err
	}
	row.Label = strings.TrimSpace(row.Label)
	if row.Label == "" {
		return ErrTemplateLabelEmpty
	}
	row.ProductID = parentID
	return s.templateRepo.CreateSizeRow(row)
}

// RemoveSizeRow deletes one size row from the parent's template, refusing when
// the size is still referenced by a variant.
func (s *variantService) RemoveSizeRow(parentID, rowID uint) error {
	if _, err := s.loadParent(parentID); err != nil {
		return err
	}
	row, err := s.templateRepo.FindSizeRow(rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateRowNotFound
		}
		return err
	}
	if row.ProductID != parentID {
		return ErrTemplateRowNotFound
	}
	if err := s.CheckAxisRemoval(parentID, AxisSize, row.Label); err != nil {
		return err
	}
	return s.templateRepo.DeleteSizeRow(rowID)
}

func (s *variantService) AddCustomRow(parentID uint, row *model.CustomTemplateRow) error {
	if _, err := s.loadParent(parentID); err != nil {
		return err
	}
	row.Label = strings.TrimSpace(row.Label)
	if row.Label == "" {
		return ErrTemplateLabelEmpty
	}
	row.ProductID = parentID
	return s.templateRepo.CreateCustomRow(row)
}

func (s *variantService) RemoveCustomRow(parentID, rowID uint) error {
	if _, err := s.loadParent(parentID); err != nil {
		return err
	}
	row, err := s.templateRepo.FindCustomRow(rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateRowNotFound
		}
		return err
	}
	if row.ProductID != parentID {
		return ErrTemplateRowNotFound
	}
	// Variants persist the row's effective value, not its label.
	if err := s.CheckAxisRemoval(parentID, AxisCustom, model.CustomAxisOption(*row).Value); err != nil {
		return err
	}
	return s.templateRepo.DeleteCustomRow(rowID)
}

// GenerateMatrix expands the chosen axis values into the ordered, lock-tagged
// combination matrix for the parent.
func (s *variantService) GenerateMatrix(parentID uint, colorIDs []uint, sizes []string, customs []string) (MatrixResult, error) {
	if _, err := s.loadParent(parentID); err != nil {
		return MatrixResult{}, err
	}

	colors, err := s.colorRepo.FindByIDs(colorIDs)
	if err != nil {
		return MatrixResult{}, err
	}
	colorAxis := make([]model.AxisOption, 0, len(colors))
	for _, c := range colors {
		colorAxis = append(colorAxis, model.ColorAxisOption(c))
	}

	sizeAxis := make([]model.AxisOption, 0, len(sizes))
	for _, size := range sizes {
		if strings.TrimSpace(size) == "" {
			continue
		}
		sizeAxis = append(sizeAxis, model.AxisOption{Label: size, Value: size})
	}
	customAxis := make([]model.AxisOption, 0, len(customs))
	for _, custom := range customs {
		if NormalizeCustom(custom) == "" {
			continue
		}
		customAxis = append(customAxis, model.AxisOption{Label: custom, Value: custom})
	}

	existing, err := s.productRepo.FindVariantsByParent(parentID)
	if err != nil {
		return MatrixResult{}, err
	}

	result := BuildVariantMatrix(sizeAxis, colorAxis, customAxis, existing)
	logger.Debug("Variant matrix generated", map[string]interface{}{
		"parent_id":    parentID,
		"combinations": len(result.Combinations),
	})
	return result, nil
}

// Reconcile brings the parent's variants in line with the selected
// combinations: republishes unpublished matches, leaves published matches
// alone and creates the missing ones with freshly minted identities. Each
// combination succeeds or fails on its own; earlier writes are not rolled
// back when a later one fails.
func (s *variantService) Reconcile(parentID uint, selections []CombinationSelection) (ReconcileReport, error) {
	parent, err := s.loadParent(parentID)
	if err != nil {
		return ReconcileReport{}, err
	}

	existing, err := s.productRepo.FindVariantsByParent(parentID)
	if err != nil {
		return ReconcileReport{}, err
	}
	byTriple := make(map[string]*model.Product, len(existing))
	for i := range existing {
		byTriple[variantTripleKey(&existing[i])] = &existing[i]
	}

	report := ReconcileReport{}
	for _, sel := range selections {
		outcome := s.reconcileOne(parent, byTriple, sel)
		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Minted != nil {
			report.Minted = append(report.Minted, *outcome.Minted)
		}
	}

	logger.Info("Variant reconciliation finished", map[string]interface{}{
		"parent_id": parentID,
		"selected":  len(selections),
		"minted":    len(report.Minted),
	})
	return report, nil
}

func (s *variantService) reconcileOne(parent *model.Product, byTriple map[string]*model.Product, sel CombinationSelection) ReconcileOutcome {
	custom := NormalizeCustom(sel.Custom)
	outcome := ReconcileOutcome{Color: sel.Color, Size: sel.Size, Custom: custom}

	key := combinationKey(sel.Color, sel.Size, custom)
	if match, ok := byTriple[key]; ok {
		if match.Published {
			outcome.Status = ReconcileUnchanged
			return outcome
		}
		// Idempotent re-activation, no new identity is minted.
		match.Published = true
		if err := s.productRepo.Save(match); err != nil {
			outcome.Status = ReconcileFailed
			outcome.Error = err.Error()
			return outcome
		}
		outcome.Status = ReconcileRepublished
		return outcome
	}

	variant, err := s.createVariant(parent, sel.Color, sel.Size, custom)
	if err != nil {
		logger.Error("Failed to create variant", err, map[string]interface{}{
			"parent_id": parent.ID,
			"color":     sel.Color,
			"size":      sel.Size,
		})
		outcome.Status = ReconcileFailed
		outcome.Error = err.Error()
		return outcome
	}

	byTriple[key] = variant
	outcome.Status = ReconcileCreated
	outcome.Minted = &MintedVariant{
		VariantID:   variant.ID,
		Iwasku:      variant.Iwasku,
		ProductCode: variant.ProductCode,
	}
	return outcome
}

func (s *variantService) createVariant(parent *model.Product, colorName, size, custom string) (*model.Product, error) {
	color, err := s.colorRepo.FindByName(colorName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrColorNotFound, colorName)
		}
		return nil, err
	}

	key := identity.BuildVariantKey(parent.Identifier, parent.Name, colorName, size, custom)

	var lastErr error
	for attempt := 1; attempt <= createRetryAttempts; attempt++ {
		code, iwasku, err := s.codeGen.MintIdentity(parent.Identifier)
		if err != nil {
			return nil, err
		}

		variant := &model.Product{
			Identifier:       parent.Identifier,
			Key:              key,
			Name:             key,
			Type:             model.TypeVariant,
			Published:        true,
			ParentID:         &parent.ID,
			VariationColorID: &color.ID,
			VariationSize:    size,
			CustomField:      custom,
			CategoryID:       parent.CategoryID,
			ProductCode:      code,
			Iwasku:           iwasku,
		}

		err = s.productRepo.Create(variant)
		if err == nil {
			return variant, nil
		}
		if !apperrors.IsDuplicateKey(err) {
			return nil, err
		}
		// Lost the check-then-act race for this code; draw again.
		lastErr = err
		logger.Warn("Variant insert lost code uniqueness race, regenerating", map[string]interface{}{
			"parent_id": parent.ID,
			"attempt":   attempt,
		})
	}
	return nil, fmt.Errorf("variant insert kept colliding: %w", lastErr)
}

// DeleteVariant unpublishes the sibling variant matching the triple. The row
// is never removed, so historic IWASKUs stay resolvable. When any bundle still
// references the variant the delete is refused and the holders are named.
func (s *variantService) DeleteVariant(parentID uint, sel CombinationSelection) error {
	if _, err := s.loadParent(parentID); err != nil {
		return err
	}

	existing, err := s.productRepo.FindVariantsByParent(parentID)
	if err != nil {
		return err
	}

	key := combinationKey(sel.Color, sel.Size, NormalizeCustom(sel.Custom))
	var target *model.Product
	for i := range existing {
		if variantTripleKey(&existing[i]) == key {
			target = &existing[i]
			break
		}
	}
	if target == nil {
		return ErrVariantNotFound
	}

	refs, err := s.productRepo.FindSetReferences(target.ID)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		holders := make([]string, 0, len(refs))
		for _, ref := range refs {
			holders = append(holders, ref.Bundle.Name)
		}
		return fmt.Errorf("%w: held by %s", ErrVariantInUse, strings.Join(holders, ", "))
	}

	target.Published = false
	if err := s.productRepo.Save(target); err != nil {
		return err
	}

	logger.Info("Variant unpublished", map[string]interface{}{
		"parent_id":  parentID,
		"variant_id": target.ID,
		"iwasku":     target.Iwasku,
	})
	return nil
}

// CheckAxisRemoval reports whether an axis value can be removed from the
// parent's option set. A value referenced by any existing variant, published
// or not, is locked: the dependent variants must be handled first.
func (s *variantService) CheckAxisRemoval(parentID uint, axis AxisKind, value string) error {
	if _, err := s.loadParent(parentID); err != nil {
		return err
	}

	existing, err := s.productRepo.FindVariantsByParent(parentID)
	if err != nil {
		return err
	}

	var holders int
	for i := range existing {
		v := &existing[i]
		switch axis {
		case AxisColor:
			if v.VariationColor != nil && v.VariationColor.Name == value {
				holders++
			}
		case AxisSize:
			if v.VariationSize == value {
				holders++
			}
		case AxisCustom:
			if v.CustomField == NormalizeCustom(value) {
				holders++
			}
		}
	}
	if holders > 0 {
		return fmt.Errorf("%w: %s %q is used by %d variant(s)", ErrAxisValueLocked, axis, value, holders)
	}
	return nil
}
