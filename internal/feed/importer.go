package feed

import (
	"context"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Importer applies a feed document to the catalogue: it gets or
// creates the supplier's shop, upserts categories, and upserts every
// product keyed on its external ID.
type Importer struct {
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewImporter creates a new feed importer.
func NewImporter(
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) *Importer {
	return &Importer{
		shopRepo:    shopRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("component", "feed-importer").Logger(),
	}
}

// Import applies the feed on behalf of the supplier. Goods referencing
// a category missing from both the feed and the store are skipped, not
// fatal. Re-imports overwrite price and stock quantity.
func (i *Importer) Import(ctx context.Context, supplierID uuid.UUID, f *Feed) (*Result, error) {
	shop, err := i.shopRepo.GetOrCreate(ctx, supplierID, f.Shop)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shop %q: %w", f.Shop, err)
	}

	result := &Result{Shop: shop.Name}

	categories := make(map[int]uuid.UUID, len(f.Categories))
	for _, cat := range f.Categories {
		existing, err := i.shopRepo.GetCategoryByExternalID(ctx, cat.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category %d: %w", cat.ID, err)
		}

		stored, err := i.shopRepo.UpsertCategory(ctx, cat.ID, cat.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert category %d: %w", cat.ID, err)
		}

		categories[cat.ID] = stored.ID
		if existing == nil {
			result.CreatedCategories++
		} else {
			result.UpdatedCategories++
		}
	}

	for _, good := range f.Goods {
		categoryID, ok := categories[good.CategoryID]
		if !ok {
			stored, err := i.shopRepo.GetCategoryByExternalID(ctx, good.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve category %d: %w", good.CategoryID, err)
			}
			if stored == nil {
				i.logger.Warn().
					Int("external_id", good.ID).
					Int("category_id", good.CategoryID).
					Msg("skipping good with unknown category")
				result.SkippedProducts++
				continue
			}
			categoryID = stored.ID
			categories[good.CategoryID] = categoryID
		}

		product := &model.Product{
			ID:              uuid.New(),
			ExternalID:      good.ID,
			ShopID:          shop.ID,
			CategoryID:      categoryID,
			Model:           good.Model,
			Name:            good.Name,
			Description:     good.Description,
			Characteristics: good.Parameters,
			Price:           decimal.NewFromFloat(good.Price),
			PriceRRC:        decimal.NewFromFloat(good.PriceRRC),
			Quantity:        good.Quantity,
		}

		created, err := i.productRepo.Upsert(ctx, product)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert product %d: %w", good.ID, err)
		}

		if created {
			result.CreatedProducts++
		} else {
			result.UpdatedProducts++
		}
	}

	i.logger.Info().
		Str("shop", shop.Name).
		Int("created_products", result.CreatedProducts).
		Int("updated_products", result.UpdatedProducts).
		Int("skipped_products", result.SkippedProducts).
		Msg("feed imported")

	return result, nil
}
