package service

import (
	"errors"
	"fmt"

	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/pkg/identity"
	"github.com/iwapim/catalog-backend/pkg/logger"
)

// codeGenerationMaxAttempts caps the draw-and-check loop. Hitting the ceiling
// means the 5-character keyspace is close to exhausted, which is an
// operational emergency rather than a transient condition.
const codeGenerationMaxAttempts = 1000

var (
	// ErrCodeSpaceExhausted signals that no free product code could be found
	// within the retry ceiling.
	ErrCodeSpaceExhausted = errors.New("product code space exhausted")
)

// CodeGenerator mints store-unique product codes and IWASKUs. The uniqueness
// check is a plain read with no reservation, so two concurrent requests can
// race between check and persist; the store's unique indexes are the backstop
// and callers retry generation on a write-time duplicate.
type CodeGenerator interface {
	GenerateUniqueCode(length int) (string, error)
	MintIdentity(identifier string) (productCode string, iwasku string, err error)
}

type codeGenerator struct {
	productRepo repository.ProductRepository
}

func NewCodeGenerator(productRepo repository.ProductRepository) CodeGenerator {
	return &codeGenerator{productRepo: productRepo}
}

// GenerateUniqueCode draws random candidates from the fixed alphabet until the
// store reports one free, or the attempt ceiling is reached. Existence is
// checked against every row, unpublished and soft-deleted included, because
// codes stay unique across the whole product lifecycle.
func (g *codeGenerator) GenerateUniqueCode(length int) (string, error) {
	for attempt := 1; attempt <= codeGenerationMaxAttempts; attempt++ {
		candidate := identity.RandomCode(length)

		exists, err := g.productRepo.CodeExists(candidate)
		if err != nil {
			return "", fmt.Errorf("checking code uniqueness: %w", err)
		}
		if !exists {
			if attempt > 1 {
				logger.Debug("Product code generated after collisions", map[string]interface{}{
					"attempts": attempt,
				})
			}
			return candidate, nil
		}
	}

	logger.Error("Product code generation exhausted retry ceiling", ErrCodeSpaceExhausted, map[string]interface{}{
		"attempts": codeGenerationMaxAttempts,
		"length":   length,
	})
	return "", ErrCodeSpaceExhausted
}

// MintIdentity generates a free product code and derives the matching IWASKU,
// retrying the draw when the derived IWASKU is already taken.
func (g *codeGenerator) MintIdentity(identifier string) (string, string, error) {
	for attempt := 1; attempt <= codeGenerationMaxAttempts; attempt++ {
		code, err := g.GenerateUniqueCode(identity.CodeLength)
		if err != nil {
			return "", "", err
		}

		iwasku, err := identity.DeriveIwasku(identifier, code)
		if err != nil {
			return "", "", err
		}

		taken, err := g.productRepo.IwaskuExists(iwasku)
		if err != nil {
			return "", "", fmt.Errorf("checking iwasku uniqueness: %w", err)
		}
		if !taken {
			return code, iwasku, nil
		}
	}

	logger.Error("IWASKU generation exhausted retry ceiling", ErrCodeSpaceExhausted, map[string]interface{}{
		"identifier": identifier,
	})
	return "", "", ErrCodeSpaceExhausted
}
