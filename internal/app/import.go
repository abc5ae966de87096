package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// ImportRecordsFromFile reads a JSON export keyed by collection name, e.g.
// {"accounts": [...], "income": [...]}, and creates every document.
// Returns the number of documents imported per collection.
func ImportRecordsFromFile(ctx context.Context, recordService interfaces.RecordService, logger *common.Logger, filePath string) (map[models.Collection]int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file %s: %w", filePath, err)
	}

	var raw map[string][]models.Document
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse import file %s: %w", filePath, err)
	}

	batch := make(map[models.Collection][]models.Document, len(raw))
	for name, docs := range raw {
		c := models.Collection(name)
		if !models.IsCollection(name) {
			logger.Warn().Str("collection", name).Msg("Skipping unknown collection in import file")
			continue
		}
		batch[c] = docs
	}

	counts, err := recordService.Import(ctx, batch)
	if err != nil {
		return counts, err
	}
	for c, n := range counts {
		logger.Info().Str("collection", string(c)).Int("count", n).Msg("Imported records")
	}
	return counts, nil
}
