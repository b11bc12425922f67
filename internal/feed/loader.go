package feed

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Loader reads a feed document from some source: a local path or an
// object key, depending on the implementation.
type Loader interface {
	Load(ctx context.Context, source string) (*Feed, error)
}

// fileLoader implements Loader for local YAML feed files, gzipped or
// plain.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "feed-loader").Logger(),
	}
}

// Load reads and decodes a YAML feed file.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Feed, error) {
	l.logger.Info().Str("file", filePath).Msg("loading feed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open feed file")
		return nil, fmt.Errorf("failed to open feed file %s: %w", filePath, err)
	}
	defer file.Close()

	feed, err := decode(file, strings.HasSuffix(filePath, ".gz"))
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode feed file")
		return nil, fmt.Errorf("failed to decode feed file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Str("shop", feed.Shop).
		Int("categories", len(feed.Categories)).
		Int("goods", len(feed.Goods)).
		Msg("feed file loaded")

	return feed, nil
}

// Parse decodes a YAML feed from r, transparently unwrapping gzip
// when gzipped is true.
func Parse(r io.Reader, gzipped bool) (*Feed, error) {
	return decode(r, gzipped)
}

// decode parses a YAML feed, transparently unwrapping gzip.
func decode(r io.Reader, gzipped bool) (*Feed, error) {
	if gzipped {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var feed Feed
	if err := yaml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed yaml: %w", err)
	}

	if strings.TrimSpace(feed.Shop) == "" {
		return nil, fmt.Errorf("feed does not name a shop")
	}

	return &feed, nil
}
