package feed

import (
	"context"
	"fmt"
	"io"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Exporter renders a shop's catalogue back to the feed YAML shape, so
// an exported file can be re-imported verbatim.
type Exporter struct {
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewExporter creates a new feed exporter.
func NewExporter(
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) *Exporter {
	return &Exporter{
		shopRepo:    shopRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("component", "feed-exporter").Logger(),
	}
}

// Export builds the feed document for the shop.
func (e *Exporter) Export(ctx context.Context, shop *model.Shop) (*Feed, error) {
	categories, err := e.shopRepo.ListCategories(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	products, err := e.productRepo.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	categoryExternalIDs := make(map[string]int, len(categories))
	f := &Feed{Shop: shop.Name}
	for _, c := range categories {
		f.Categories = append(f.Categories, Category{ID: c.ExternalID, Name: c.Name})
		categoryExternalIDs[c.ID.String()] = c.ExternalID
	}

	for _, p := range products {
		f.Goods = append(f.Goods, Good{
			ID:          p.ExternalID,
			CategoryID:  categoryExternalIDs[p.CategoryID.String()],
			Model:       p.Model,
			Name:        p.Name,
			Description: p.Description,
			Parameters:  p.Characteristics,
			Price:       p.Price.InexactFloat64(),
			PriceRRC:    p.PriceRRC.InexactFloat64(),
			Quantity:    p.Quantity,
		})
	}

	e.logger.Debug().
		Str("shop", shop.Name).
		Int("goods", len(f.Goods)).
		Msg("feed exported")

	return f, nil
}

// Write renders the feed as YAML to w.
func (e *Exporter) Write(f *Feed, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode feed yaml: %w", err)
	}
	return nil
}
