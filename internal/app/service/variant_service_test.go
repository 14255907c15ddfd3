package service

import (
	"strings"
	"testing"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/internal/db"
	"github.com/iwapim/catalog-backend/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVariantServiceTest(t *testing.T) (VariantService, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	colorRepo := repository.NewColorRepository(testDB)
	templateRepo := repository.NewTemplateRepository(testDB)
	codeGen := NewCodeGenerator(productRepo)
	variantService := NewVariantService(productRepo, colorRepo, templateRepo, codeGen)

	testDB.Create(&model.Color{Name: "Black"})
	testDB.Create(&model.Color{Name: "White"})

	parent := &model.Product{
		Identifier:  "AB-001",
		Name:        "Test Rug",
		Type:        model.TypeNormal,
		Published:   true,
		ProductCode: "ZZZZ1",
		Iwasku:      "AB00100ZZZZ1",
	}
	testDB.Create(parent)

	return variantService, parent, testDB
}

func TestVariantService_Reconcile_CreatesVariants(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
		{Color: "White", Size: "M"},
	})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)
	require.Len(t, report.Minted, 2)

	for _, outcome := range report.Outcomes {
		assert.Equal(t, ReconcileCreated, outcome.Status)
		require.NotNil(t, outcome.Minted)
		assert.Len(t, outcome.Minted.ProductCode, 5)
		for _, ch := range outcome.Minted.ProductCode {
			assert.Contains(t, identity.CodeAlphabet, string(ch))
		}
		assert.True(t, strings.HasPrefix(outcome.Minted.Iwasku, "AB00100"))
		assert.Len(t, outcome.Minted.Iwasku, 12)
	}

	// Identities must differ between the two variants.
	assert.NotEqual(t, report.Minted[0].ProductCode, report.Minted[1].ProductCode)
	assert.NotEqual(t, report.Minted[0].Iwasku, report.Minted[1].Iwasku)
}

func TestVariantService_Reconcile_CreatedVariantIsPublished(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	require.Len(t, report.Minted, 1)

	var variant model.Product
	require.NoError(t, testDB.First(&variant, report.Minted[0].VariantID).Error)
	assert.True(t, variant.Published)
	assert.Equal(t, model.TypeVariant, variant.Type)
	assert.Equal(t, parent.ID, *variant.ParentID)
	assert.Equal(t, "AB-001", variant.Identifier)
	assert.Equal(t, "S", variant.VariationSize)
	assert.Equal(t, "", variant.CustomField)
}

func TestVariantService_Reconcile_Idempotent(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	selections := []CombinationSelection{
		{Color: "Black", Size: "S"},
		{Color: "Black", Size: "M"},
	}

	first, err := variantService.Reconcile(parent.ID, selections)
	require.NoError(t, err)
	require.Len(t, first.Minted, 2)

	second, err := variantService.Reconcile(parent.ID, selections)
	require.NoError(t, err)
	assert.Empty(t, second.Minted)
	for _, outcome := range second.Outcomes {
		assert.Equal(t, ReconcileUnchanged, outcome.Status)
	}
}

func TestVariantService_Reconcile_RepublishesWithoutMinting(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	originalIwasku := report.Minted[0].Iwasku
	variantID := report.Minted[0].VariantID

	require.NoError(t, variantService.DeleteVariant(parent.ID, CombinationSelection{Color: "Black", Size: "S"}))

	report, err = variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, ReconcileRepublished, report.Outcomes[0].Status)
	assert.Empty(t, report.Minted)

	// The original identity is retained.
	var variant model.Product
	require.NoError(t, testDB.First(&variant, variantID).Error)
	assert.True(t, variant.Published)
	assert.Equal(t, originalIwasku, variant.Iwasku)
}

func TestVariantService_Reconcile_PartialFailure(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Chartreuse", Size: "S"}, // no such color
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)

	assert.Equal(t, ReconcileFailed, report.Outcomes[0].Status)
	assert.NotEmpty(t, report.Outcomes[0].Error)

	// The failure does not abort the rest of the batch.
	assert.Equal(t, ReconcileCreated, report.Outcomes[1].Status)
	require.Len(t, report.Minted, 1)
}

func TestVariantService_Reconcile_CustomFieldDistinguishes(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
		{Color: "Black", Size: "S", Custom: "Embroidered"},
	})
	require.NoError(t, err)
	require.Len(t, report.Minted, 2)

	// Whitespace-only custom collapses to the plain combination.
	report, err = variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S", Custom: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, ReconcileUnchanged, report.Outcomes[0].Status)
}

func TestVariantService_Reconcile_ParentChecks(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	_, err := variantService.Reconcile(9999, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)

	var variant model.Product
	require.NoError(t, testDB.First(&variant, report.Minted[0].VariantID).Error)
	_, err = variantService.Reconcile(variant.ID, nil)
	assert.ErrorIs(t, err, ErrNotAParent)
}

func TestVariantService_DeleteVariant_Unpublishes(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	variantID := report.Minted[0].VariantID

	err = variantService.DeleteVariant(parent.ID, CombinationSelection{Color: "Black", Size: "S"})
	assert.NoError(t, err)

	// The row survives, only publication state changes.
	var variant model.Product
	require.NoError(t, testDB.First(&variant, variantID).Error)
	assert.False(t, variant.Published)
}

func TestVariantService_DeleteVariant_NotFound(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	err := variantService.DeleteVariant(parent.ID, CombinationSelection{Color: "Black", Size: "S"})
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestVariantService_DeleteVariant_HeldBySet(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	variantID := report.Minted[0].VariantID

	bundle := &model.Product{
		Identifier:  "ST-001",
		Name:        "Starter Set",
		Type:        model.TypeNormal,
		Published:   true,
		ProductCode: "YYYY1",
		Iwasku:      "ST00100YYYY1",
	}
	testDB.Create(bundle)
	testDB.Create(&model.SetItem{BundleID: bundle.ID, MemberID: variantID, Quantity: 1})

	err = variantService.DeleteVariant(parent.ID, CombinationSelection{Color: "Black", Size: "S"})
	assert.ErrorIs(t, err, ErrVariantInUse)
	assert.Contains(t, err.Error(), "Starter Set")

	// The refused delete leaves the variant published.
	var variant model.Product
	require.NoError(t, testDB.First(&variant, variantID).Error)
	assert.True(t, variant.Published)
}

func TestVariantService_CheckAxisRemoval(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	report, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	require.Len(t, report.Minted, 1)

	assert.ErrorIs(t, variantService.CheckAxisRemoval(parent.ID, AxisColor, "Black"), ErrAxisValueLocked)
	assert.ErrorIs(t, variantService.CheckAxisRemoval(parent.ID, AxisSize, "S"), ErrAxisValueLocked)
	assert.NoError(t, variantService.CheckAxisRemoval(parent.ID, AxisColor, "White"))
	assert.NoError(t, variantService.CheckAxisRemoval(parent.ID, AxisSize, "M"))
}

func TestVariantService_CheckAxisRemoval_UnpublishedStillLocks(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	_, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)
	require.NoError(t, variantService.DeleteVariant(parent.ID, CombinationSelection{Color: "Black", Size: "S"}))

	// Even unpublished variants pin their axis values.
	assert.ErrorIs(t, variantService.CheckAxisRemoval(parent.ID, AxisSize, "S"), ErrAxisValueLocked)
}

func TestVariantService_GenerateMatrix_LocksExisting(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	_, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)

	var black, white model.Color
	require.NoError(t, testDB.Where("name = ?", "Black").First(&black).Error)
	require.NoError(t, testDB.Where("name = ?", "White").First(&white).Error)

	result, err := variantService.GenerateMatrix(parent.ID, []uint{black.ID, white.ID}, []string{"S", "M"}, nil)
	require.NoError(t, err)
	require.Len(t, result.Combinations, 4)

	lockedCount := 0
	for _, c := range result.Combinations {
		if c.Locked {
			lockedCount++
			assert.Equal(t, "Black", c.Color)
			assert.Equal(t, "S", c.Size)
		}
	}
	assert.Equal(t, 1, lockedCount)
}

func TestVariantService_AxisOptions(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	testDB.Create(&model.SizeTemplateRow{ProductID: parent.ID, Label: "S", Width: 80, Height: 150, SortOrder: 1})
	testDB.Create(&model.SizeTemplateRow{ProductID: parent.ID, Label: "M", Width: 120, Height: 180, SortOrder: 2})
	testDB.Create(&model.CustomTemplateRow{ProductID: parent.ID, Label: "Fringed", SortOrder: 1})

	sizes, customs, colors, err := variantService.AxisOptions(parent.ID)
	require.NoError(t, err)

	require.Len(t, sizes, 2)
	assert.Equal(t, "S", sizes[0].Value)
	assert.Equal(t, "S (80x150)", sizes[0].Label)

	require.Len(t, customs, 1)
	assert.Equal(t, "Fringed", customs[0].Value)

	assert.Len(t, colors, 2)
}

func TestVariantService_AddSizeRow(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	row := &model.SizeTemplateRow{Label: " S ", Width: 80, Height: 150}
	require.NoError(t, variantService.AddSizeRow(parent.ID, row))
	assert.Equal(t, "S", row.Label)
	assert.Equal(t, parent.ID, row.ProductID)

	sizes, _, _, err := variantService.AxisOptions(parent.ID)
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.Equal(t, "S (80x150)", sizes[0].Label)

	err = variantService.AddSizeRow(parent.ID, &model.SizeTemplateRow{Label: "  "})
	assert.ErrorIs(t, err, ErrTemplateLabelEmpty)
}

func TestVariantService_RemoveSizeRow(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	row := &model.SizeTemplateRow{Label: "S"}
	require.NoError(t, variantService.AddSizeRow(parent.ID, row))
	require.NoError(t, variantService.RemoveSizeRow(parent.ID, row.ID))

	sizes, _, _, err := variantService.AxisOptions(parent.ID)
	require.NoError(t, err)
	assert.Empty(t, sizes)

	err = variantService.RemoveSizeRow(parent.ID, row.ID)
	assert.ErrorIs(t, err, ErrTemplateRowNotFound)
}

func TestVariantService_RemoveSizeRow_LockedByVariant(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	row := &model.SizeTemplateRow{Label: "S"}
	require.NoError(t, variantService.AddSizeRow(parent.ID, row))

	_, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S"},
	})
	require.NoError(t, err)

	err = variantService.RemoveSizeRow(parent.ID, row.ID)
	assert.ErrorIs(t, err, ErrAxisValueLocked)

	// The row survives the refused delete.
	sizes, _, _, err := variantService.AxisOptions(parent.ID)
	require.NoError(t, err)
	assert.Len(t, sizes, 1)
}

func TestVariantService_RemoveSizeRow_WrongParent(t *testing.T) {
	variantService, parent, testDB := setupVariantServiceTest(t)

	other := &model.Product{
		Identifier:  "CD-001",
		Name:        "Other Rug",
		Type:        model.TypeNormal,
		ProductCode: "ZZZZ2",
		Iwasku:      "CD00100ZZZZ2",
	}
	testDB.Create(other)

	row := &model.SizeTemplateRow{Label: "S"}
	require.NoError(t, variantService.AddSizeRow(other.ID, row))

	err := variantService.RemoveSizeRow(parent.ID, row.ID)
	assert.ErrorIs(t, err, ErrTemplateRowNotFound)
}

func TestVariantService_CustomRows(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	row := &model.CustomTemplateRow{Label: "Gift Wrap"}
	require.NoError(t, variantService.AddCustomRow(parent.ID, row))

	_, customs, _, err := variantService.AxisOptions(parent.ID)
	require.NoError(t, err)
	require.Len(t, customs, 1)
	assert.Equal(t, "Gift Wrap", customs[0].Value)

	require.NoError(t, variantService.RemoveCustomRow(parent.ID, row.ID))
	_, customs, _, err = variantService.AxisOptions(parent.ID)
	require.NoError(t, err)
	assert.Empty(t, customs)
}

func TestVariantService_RemoveCustomRow_LockedByVariant(t *testing.T) {
	variantService, parent, _ := setupVariantServiceTest(t)

	// The variant persists the row's value, not its display label.
	row := &model.CustomTemplateRow{Label: "Gift Wrap", Value: "wrapped"}
	require.NoError(t, variantService.AddCustomRow(parent.ID, row))

	_, err := variantService.Reconcile(parent.ID, []CombinationSelection{
		{Color: "Black", Size: "S", Custom: "wrapped"},
	})
	require.NoError(t, err)

	err = variantService.RemoveCustomRow(parent.ID, row.ID)
	assert.ErrorIs(t, err, ErrAxisValueLocked)
}
