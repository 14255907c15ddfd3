package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/iwapim/catalog-backend/config"
	"github.com/iwapim/catalog-backend/internal/app/model"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/internal/app/service"
	"github.com/iwapim/catalog-backend/internal/db"
	"github.com/iwapim/catalog-backend/pkg/identity"
	"github.com/xuri/excelize/v2"
)

// Imports parent products from an XLSX sheet with the columns
// Identifier, Name, Description, Category, Type.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	codeGen := service.NewCodeGenerator(productRepo)
	productService := service.NewProductService(productRepo, codeGen)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readProductRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	created := 0
	failed := 0
	for _, row := range rows {
		product := &model.Product{
			Identifier:  row.Identifier,
			Name:        row.Name,
			Description: row.Description,
			Type:        row.Type,
			Published:   true,
		}
		if err := productService.CreateProduct(product); err != nil {
			fmt.Printf("  Skipped %s: %v\n", row.Identifier, err)
			failed++
			continue
		}
		created++

		if created%100 == 0 {
			fmt.Printf("Imported %d products...\n", created)
		}
	}

	fmt.Println("Import completed.")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Failed:  %d\n", failed)
}

type productRow struct {
	Identifier  string
	Name        string
	Description string
	Category    string
	Type        model.ProductType
}

func readProductRows(filePath string) ([]productRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []productRow
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 2 {
			skippedCount++
			continue
		}

		p := productRow{
			Identifier: strings.TrimSpace(cell(row, 0)),
			Name:       strings.TrimSpace(cell(row, 1)),
			Type:       model.TypeNormal,
		}
		p.Description = strings.TrimSpace(cell(row, 2))
		p.Category = strings.TrimSpace(cell(row, 3))
		// Variants cannot be bulk imported; they need a parent and axis
		// values, so anything but a parent row is skipped.
		if t := strings.TrimSpace(cell(row, 4)); t != "" && model.ProductType(t) != model.TypeNormal {
			skippedCount++
			continue
		}

		if p.Identifier == "" || p.Name == "" {
			skippedCount++
			continue
		}

		// Canonical form so AB-1 and AB-001 dedup to the same key.
		normalized := identity.NormalizeIdentifier(p.Identifier)
		if seen[normalized] {
			skippedCount++
			continue
		}
		seen[normalized] = true

		products = append(products, p)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return products, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
