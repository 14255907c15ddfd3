package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/internal/app/service"
	"github.com/iwapim/catalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVariantControllerTest(t *testing.T) (*gin.Engine, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	colorRepo := repository.NewColorRepository(testDB)
	templateRepo := repository.NewTemplateRepository(testDB)
	codeGen := service.NewCodeGenerator(productRepo)
	variantService := service.NewVariantService(productRepo, colorRepo, templateRepo, codeGen)
	variantController := NewVariantController(variantService)

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

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/products/:id/variants/matrix", variantController.GenerateMatrix)
	router.POST("/products/:id/variants/reconcile", variantController.Reconcile)
	router.DELETE("/products/:id/variants", variantController.DeleteVariant)
	router.POST("/products/:id/axes/check-removal", variantController.CheckAxisRemoval)
	router.POST("/products/:id/axes/sizes", variantController.AddSizeRow)
	router.DELETE("/products/:id/axes/sizes/:rowId", variantController.RemoveSizeRow)
	router.POST("/products/:id/axes/customs", variantController.AddCustomRow)
	router.DELETE("/products/:id/axes/customs/:rowId", variantController.RemoveCustomRow)

	return router, parent, testDB
}

func postJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVariantController_GenerateMatrix(t *testing.T) {
	router, _, testDB := setupVariantControllerTest(t)

	var black model.Color
	require.NoError(t, testDB.Where("name = ?", "Black").First(&black).Error)

	w := postJSON(t, router, http.MethodPost, "/products/1/variants/matrix", MatrixRequest{
		ColorIDs: []uint{black.ID},
		Sizes:    []string{"S", "M"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var result service.MatrixResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Combinations, 2)
	assert.Empty(t, result.ValidationMessage)
}

func TestVariantController_GenerateMatrix_MissingAxis(t *testing.T) {
	router, _, _ := setupVariantControllerTest(t)

	// No colors selected: still a 200, with a validation message instead of rows.
	w := postJSON(t, router, http.MethodPost, "/products/1/variants/matrix", MatrixRequest{
		Sizes: []string{"S"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var result service.MatrixResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Empty(t, result.Combinations)
	assert.NotEmpty(t, result.ValidationMessage)
}

func TestVariantController_GenerateMatrix_ParentNotFound(t *testing.T) {
	router, _, _ := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/9999/variants/matrix", MatrixRequest{
		Sizes: []string{"S"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVariantController_Reconcile(t *testing.T) {
	router, _, _ := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/variants/reconcile", ReconcileRequest{
		Selections: []service.CombinationSelection{
			{Color: "Black", Size: "S"},
			{Color: "White", Size: "S"},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var report service.ReconcileReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Minted, 2)
	for _, minted := range report.Minted {
		assert.Len(t, minted.Iwasku, 12)
	}
}

func TestVariantController_DeleteVariant(t *testing.T) {
	router, _, _ := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/variants/reconcile", ReconcileRequest{
		Selections: []service.CombinationSelection{{Color: "Black", Size: "S"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, http.MethodDelete, "/products/1/variants", service.CombinationSelection{
		Color: "Black", Size: "S",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, http.MethodDelete, "/products/1/variants", service.CombinationSelection{
		Color: "Black", Size: "M",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVariantController_DeleteVariant_HeldBySet(t *testing.T) {
	router, _, testDB := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/variants/reconcile", ReconcileRequest{
		Selections: []service.CombinationSelection{{Color: "Black", Size: "S"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var report service.ReconcileReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	bundle := &model.Product{
		Identifier:  "ST-001",
		Name:        "Starter Set",
		Type:        model.TypeNormal,
		ProductCode: "YYYY1",
		Iwasku:      "ST00100YYYY1",
	}
	testDB.Create(bundle)
	testDB.Create(&model.SetItem{BundleID: bundle.ID, MemberID: report.Minted[0].VariantID})

	w = postJSON(t, router, http.MethodDelete, "/products/1/variants", service.CombinationSelection{
		Color: "Black", Size: "S",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVariantController_CheckAxisRemoval(t *testing.T) {
	router, _, _ := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/variants/reconcile", ReconcileRequest{
		Selections: []service.CombinationSelection{{Color: "Black", Size: "S"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, http.MethodPost, "/products/1/axes/check-removal", AxisRemovalRequest{
		Axis: service.AxisSize, Value: "S",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, router, http.MethodPost, "/products/1/axes/check-removal", AxisRemovalRequest{
		Axis: service.AxisSize, Value: "M",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVariantController_SizeRows(t *testing.T) {
	router, _, testDB := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/axes/sizes", SizeRowRequest{
		Label: "S", Width: 80, Height: 150,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var row model.SizeTemplateRow
	require.NoError(t, testDB.Where("product_id = ?", 1).First(&row).Error)
	assert.Equal(t, "S", row.Label)

	w = postJSON(t, router, http.MethodDelete, "/products/1/axes/sizes/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, router, http.MethodDelete, "/products/1/axes/sizes/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVariantController_RemoveSizeRow_Locked(t *testing.T) {
	router, _, _ := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/axes/sizes", SizeRowRequest{Label: "S"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, http.MethodPost, "/products/1/variants/reconcile", ReconcileRequest{
		Selections: []service.CombinationSelection{{Color: "Black", Size: "S"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, router, http.MethodDelete, "/products/1/axes/sizes/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVariantController_CustomRows(t *testing.T) {
	router, _, testDB := setupVariantControllerTest(t)

	w := postJSON(t, router, http.MethodPost, "/products/1/axes/customs", CustomRowRequest{
		Label: "Gift Wrap", Value: "wrapped",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var row model.CustomTemplateRow
	require.NoError(t, testDB.Where("product_id = ?", 1).First(&row).Error)
	assert.Equal(t, "wrapped", row.Value)

	w = postJSON(t, router, http.MethodDelete, "/products/1/axes/customs/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
