package main

import (
	"compress/gzip"
	"log"
	"os"
	"path/filepath"

	"marketplace/internal/feed"

	"gopkg.in/yaml.v3"
)

// generates sample supplier feed files for local import testing: one
// plain YAML and one gzipped, in the shape POST /api/shops/import
// accepts.
func main() {
	dataDir := "data/feeds"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	sample := feed.Feed{
		Shop: "Svyaznoy",
		Categories: []feed.Category{
			{ID: 224, Name: "Smartphones"},
			{ID: 15, Name: "Accessories"},
		},
		Goods: []feed.Good{
			{
				ID:         4216292,
				CategoryID: 224,
				Model:      "apple/iphone/xs-max",
				Name:       "Smartphone Apple iPhone XS Max 512GB (golden)",
				Parameters: map[string]string{
					"Screen diagonal (inches)": "6.5",
					"Colour":                   "golden",
				},
				Price:    110000,
				PriceRRC: 116990,
				Quantity: 14,
			},
			{
				ID:         4672670,
				CategoryID: 15,
				Model:      "tfn/case",
				Name:       "Protective case TFN iPhone XS Max",
				Price:      299.50,
				PriceRRC:   399,
				Quantity:   100,
			},
		},
	}

	plainPath := filepath.Join(dataDir, "shop1.yaml")
	plain, err := os.Create(plainPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", plainPath, err)
	}
	defer plain.Close()

	if err := yaml.NewEncoder(plain).Encode(&sample); err != nil {
		log.Fatalf("Failed to write %s: %v", plainPath, err)
	}
	log.Printf("Wrote %s", plainPath)

	gzPath := filepath.Join(dataDir, "shop1.yaml.gz")
	gzFile, err := os.Create(gzPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", gzPath, err)
	}
	defer gzFile.Close()

	zw := gzip.NewWriter(gzFile)
	if err := yaml.NewEncoder(zw).Encode(&sample); err != nil {
		log.Fatalf("Failed to write %s: %v", gzPath, err)
	}
	if err := zw.Close(); err != nil {
		log.Fatalf("Failed to flush %s: %v", gzPath, err)
	}
	log.Printf("Wrote %s", gzPath)
}
