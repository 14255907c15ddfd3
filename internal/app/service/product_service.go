package service

import (
	"errors"
	"fmt"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	apperrors "github.com/iwapim/catalog-backend/internal/errors"
	"github.com/iwapim/catalog-backend/pkg/identity"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrIdentifierExists    = errors.New("product identifier already exists")
	ErrVariantDeleteOnly   = errors.New("variants are removed through the variant delete path")
	ErrSetMemberNotVariant = errors.New("only variants can be bundle members")
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortCreatedAt ProductSort = "created_at"
)

type ProductListOptions struct {
	Search          string
	Type            *model.ProductType
	CategoryID      *uint
	Published       *bool
	Sort            ProductSort
	SortAscending   bool
	Limit           int
	Offset          int
	IncludeVariants bool
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductByIwasku(iwasku string) (*model.Product, error)
	GetProductByCode(code string) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	AddToSet(bundleID, memberID uint, quantity int) error
}

type productService struct {
	productRepo repository.ProductRepository
	codeGen     CodeGenerator
}

func NewProductService(productRepo repository.ProductRepository, codeGen CodeGenerator) ProductService {
	return &productService{
		productRepo: productRepo,
		codeGen:     codeGen,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	filter := repository.ProductFilter{
		Search:          opts.Search,
		Type:            opts.Type,
		CategoryID:      opts.CategoryID,
		Published:       opts.Published,
		SortAscending:   opts.SortAscending,
		Limit:           opts.Limit,
		Offset:          opts.Offset,
		IncludeVariants: opts.IncludeVariants,
	}
	switch opts.Sort {
	case ProductSortName:
		filter.SortBy = repository.ProductSortName
	case ProductSortCreatedAt:
		fallthrough
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByIwasku(iwasku string) (*model.Product, error) {
	product, err := s.productRepo.FindByIwasku(iwasku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByCode(code string) (*model.Product, error) {
	product, err := s.productRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// prepareForSave is the pre-save identity pipeline, run in a fixed order:
// product code, IWASKU, identifier format, key. Each step fills the field only
// when it is absent, so re-saving an existing product never remints identity.
func (s *productService) prepareForSave(product *model.Product) error {
	if err := s.ensureProductCode(product); err != nil {
		return err
	}
	if err := s.ensureIwasku(product); err != nil {
		return err
	}
	product.Identifier = identity.NormalizeIdentifier(product.Identifier)
	s.ensureKey(product)
	return nil
}

func (s *productService) ensureProductCode(product *model.Product) error {
	if product.ProductCode != "" {
		if !identity.ValidCode(product.ProductCode) {
			return fmt.Errorf("%w: %q", identity.ErrInvalidProductCode, product.ProductCode)
		}
		return nil
	}
	code, err := s.codeGen.GenerateUniqueCode(identity.CodeLength)
	if err != nil {
		return err
	}
	product.ProductCode = code
	return nil
}

func (s *productService) ensureIwasku(product *model.Product) error {
	if product.Iwasku != "" {
		return nil
	}
	// Derivation uses the normalized identifier so the IWASKU prefix matches
	// what ends up persisted.
	iwasku, err := identity.DeriveIwasku(identity.NormalizeIdentifier(product.Identifier), product.ProductCode)
	if err != nil {
		return err
	}
	product.Iwasku = iwasku
	return nil
}

func (s *productService) ensureKey(product *model.Product) {
	if product.Key != "" {
		return
	}
	product.Key = identity.BuildVariantKey(product.Identifier, product.Name, "", "", "")
}

// CreateProduct creates a parent product, minting its code and IWASKU through
// the pre-save pipeline. A write-time duplicate on the freshly minted code
// triggers a bounded remint instead of surfacing to the caller.
func (s *productService) CreateProduct(product *model.Product) error {
	if product.Type == "" {
		product.Type = model.TypeNormal
	}

	// The uniqueness check runs against the canonical spelling, otherwise
	// AB-1 and AB-001 would slip past each other and persist twice.
	product.Identifier = identity.NormalizeIdentifier(product.Identifier)
	if product.Identifier != "" {
		_, err := s.productRepo.FindByIdentifier(product.Identifier)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %q", ErrIdentifierExists, product.Identifier)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}

	minted := product.ProductCode == ""
	var lastErr error
	for attempt := 1; attempt <= createRetryAttempts; attempt++ {
		if err := s.prepareForSave(product); err != nil {
			return err
		}

		err := s.productRepo.Create(product)
		if err == nil {
			logger.Info("Product created", map[string]interface{}{
				"product_id": product.ID,
				"identifier": product.Identifier,
				"iwasku":     product.Iwasku,
			})
			return nil
		}
		if !minted || !apperrors.IsDuplicateKey(err) {
			return err
		}
		// Minted code lost the uniqueness race; clear and remint.
		product.ProductCode = ""
		product.Iwasku = ""
		lastErr = err
	}
	return fmt.Errorf("product insert kept colliding: %w", lastErr)
}

func (s *productService) UpdateProduct(product *model.Product) error {
	if _, err := s.GetProductByID(product.ID); err != nil {
		return err
	}
	if err := s.prepareForSave(product); err != nil {
		return err
	}
	return s.productRepo.Save(product)
}

// DeleteProduct soft-deletes a parent product. Variants are unpublished via
// the variant service instead, because bundles may still reference them.
func (s *productService) DeleteProduct(id uint) error {
	product, err := s.GetProductByID(id)
	if err != nil {
		return err
	}
	if product.IsVariant() {
		return ErrVariantDeleteOnly
	}
	return s.productRepo.Delete(id)
}

// AddToSet adds a variant to a bundle product's composition list.
func (s *productService) AddToSet(bundleID, memberID uint, quantity int) error {
	if _, err := s.GetProductByID(bundleID); err != nil {
		return err
	}
	member, err := s.GetProductByID(memberID)
	if err != nil {
		return err
	}
	if !member.IsVariant() {
		return ErrSetMemberNotVariant
	}
	if quantity <= 0 {
		quantity = 1
	}
	return s.productRepo.AddSetItem(&model.SetItem{
		BundleID: bundleID,
		MemberID: memberID,
		Quantity: quantity,
	})
}
