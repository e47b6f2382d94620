//go:build ignore

package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// demoRestaurantID matches the restaurant created by seed_demo_restaurant.go.
const demoRestaurantID = "8c7a3a57-2d1e-4f7b-9a61-3f0d5e0c9b11"

// generateSampleDiscounts writes gzipped discount catalogues for local runs.
// discounts.gz holds the base catalogue; overrides.gz is loaded after it and
// replaces SOMMER20 with a higher minimum order value.
func main() {
	dataDir := "data/discounts"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]string{
		"discounts.gz": {
			demoRestaurantID + ",SOMMER20,percentage,20,15.00",
			demoRestaurantID + ",WILLKOMMEN5,fixed,5.00,20.00",
			demoRestaurantID + ",PIZZAFREITAG,percentage,10,0",
			demoRestaurantID + ",OSTERN2026,fixed,3.00,0,2026-04-06",
		},
		"overrides.gz": {
			demoRestaurantID + ",SOMMER20,percentage,20,25.00,2026-12-31",
		},
	}

	for filename, lines := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createDiscountFile(filePath, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(lines))
	}

	fmt.Println("\nSample discount files created successfully!")
	fmt.Println("Load both with DISCOUNT_FILES=data/discounts/discounts.gz,data/discounts/overrides.gz")
	fmt.Println("\nCodes for restaurant", demoRestaurantID+":")
	fmt.Println("  - SOMMER20     20% off from 25.00 (override), until 2026-12-31")
	fmt.Println("  - WILLKOMMEN5  5.00 off from 20.00")
	fmt.Println("  - PIZZAFREITAG 10% off, no minimum")
	fmt.Println("  - OSTERN2026   expired")
}

func createDiscountFile(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	if _, err := fmt.Fprintln(gzipWriter, "# restaurant_id,code,type,value,minimum_order_value[,valid_until]"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(gzipWriter, line); err != nil {
			return fmt.Errorf("failed to write discount: %w", err)
		}
	}

	return nil
}
