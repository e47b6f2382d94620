package discount

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped catalogue files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "discount-loader").Logger(),
	}
}

// Load reads a gzipped catalogue file and returns a Catalog.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Catalog, error) {
	l.logger.Info().Str("file", filePath).Msg("loading discount file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open discount file")
		return nil, fmt.Errorf("failed to open discount file %s: %w", filePath, err)
	}
	defer file.Close()

	catalog, err := readCatalog(ctx, file, filePath, l.logger)
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("discounts_loaded", catalog.Size()).
		Msg("discount file loaded successfully")

	return catalog, nil
}

// readCatalog decompresses r and parses one entry per line. Blank lines and
// lines starting with '#' are ignored; malformed lines are logged and skipped.
func readCatalog(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) (*mapCatalog, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Str("source", source).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	catalog := newMapCatalog(1024)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Str("source", source).Msg("discount loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := ParseEntry(line)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("source", source).
				Int("line", lineNo).
				Msg("skipping malformed discount line")
			continue
		}
		catalog.Add(entry)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("source", source).Msg("error reading discount file")
		return nil, fmt.Errorf("error reading discount file %s: %w", source, err)
	}

	return catalog, nil
}
