package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xhad/progmatch/internal/models"
)

// Load reads every *.json file under dir (recursively, lexical order) and classifies
// it. Only failures to walk the directory are returned as errors; bad files become
// skipped results.
func Load(dir string) ([]models.IngestResult, error) {
	var results []models.IngestResult

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, models.IngestResult{
				Path:   path,
				Skip:   models.SkipMalformed,
				Detail: err.Error(),
			})
			return nil
		}
		results = append(results, Classify(path, data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk programme directory %s: %w", dir, err)
	}

	return results, nil
}

// Classify decodes one programme file. The object check always comes before the
// error-marker check.
func Classify(path string, data []byte) models.IngestResult {
	res := models.IngestResult{Path: path}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		res.Skip = models.SkipNotObject
		return res
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		res.Skip = models.SkipMalformed
		res.Detail = err.Error()
		return res
	}
	if _, ok := probe["error"]; ok {
		res.Skip = models.SkipErrorMarker
		res.Detail = strings.Trim(string(probe["error"]), `"`)
		return res
	}

	var rec models.ProgrammeRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		res.Skip = models.SkipMalformed
		res.Detail = err.Error()
		return res
	}
	res.Record = &rec
	return res
}

// Records returns the usable records of a load, in order.
func Records(results []models.IngestResult) []models.ProgrammeRecord {
	var records []models.ProgrammeRecord
	for _, res := range results {
		if !res.Skipped() {
			records = append(records, *res.Record)
		}
	}
	return records
}
