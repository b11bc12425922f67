// Package feed ingests and renders supplier catalogue feeds. A feed is
// a YAML document naming the shop, its categories, and its goods; a
// re-import fully overwrites products keyed on their external IDs.
package feed

// Feed is the YAML document a supplier uploads.
type Feed struct {
	Shop       string     `yaml:"shop"`
	Categories []Category `yaml:"categories"`
	Goods      []Good     `yaml:"goods"`
}

// Category is a feed category entry, keyed on the supplier's ID.
type Category struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Good is a single product entry in the feed.
type Good struct {
	ID          int               `yaml:"id"`
	CategoryID  int               `yaml:"category_id"`
	Model       string            `yaml:"model"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Parameters  map[string]string `yaml:"parameters,omitempty"`
	Price       float64           `yaml:"price"`
	PriceRRC    float64           `yaml:"price_rrc"`
	Quantity    int               `yaml:"quantity"`
}

// Result summarises what an import changed.
type Result struct {
	Shop              string `json:"shop"`
	CreatedCategories int    `json:"createdCategories"`
	UpdatedCategories int    `json:"updatedCategories"`
	CreatedProducts   int    `json:"createdProducts"`
	UpdatedProducts   int    `json:"updatedProducts"`
	SkippedProducts   int    `json:"skippedProducts"`
}
