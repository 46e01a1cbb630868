package processor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/processor"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_good.json", `{
		"url": "https://x/programmes/programmes-in-strategy/bootcamp/",
		"title": "Strategy Bootcamp",
		"key_facts": {"start_date": "12 March", "fee": "€4,500", "format": "3 days"},
		"sections": [{"heading": "Content", "content": "Strategic thinking for senior managers."}]
	}`)
	writeFile(t, dir, "b_array.json", `[{"title": "not a record"}]`)
	writeFile(t, dir, "c_error.json", `{"url": "https://x/broken", "error": "timeout"}`)
	writeFile(t, dir, "d_broken.json", `{"title": `)
	writeFile(t, dir, "e_bad_facts.json", `{"title": "x", "key_facts": {"fee": 4500}}`)
	writeFile(t, dir, "nested/f_good.json", `{"title": "Nested"}`)
	writeFile(t, dir, "notes.txt", `ignored`)

	results, err := processor.Load(dir)
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.False(t, results[0].Skipped())
	rec := results[0].Record
	assert.Equal(t, "Strategy Bootcamp", rec.Title)
	var names []string
	rec.EachFact(func(name, _ string) { names = append(names, name) })
	assert.Equal(t, []string{"start_date", "fee", "format"}, names)
	assert.Equal(t, "€4,500", rec.Fact("fee"))

	assert.Equal(t, models.SkipNotObject, results[1].Skip)
	assert.Equal(t, models.SkipErrorMarker, results[2].Skip)
	assert.Equal(t, "timeout", results[2].Detail)
	assert.Equal(t, models.SkipMalformed, results[3].Skip)
	assert.Equal(t, models.SkipMalformed, results[4].Skip)
	assert.Equal(t, "Nested", results[5].Record.Title)

	records := processor.Records(results)
	require.Len(t, records, 2)
	assert.Equal(t, "Strategy Bootcamp", records[0].Title)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := processor.Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestClassify_ErrorMarkerOnNonObject(t *testing.T) {
	// An array that happens to contain an "error" key is still "not an object".
	res := processor.Classify("x.json", []byte(`[{"error": "boom"}]`))
	assert.Equal(t, models.SkipNotObject, res.Skip)

	res = processor.Classify("y.json", []byte(`"just a string"`))
	assert.Equal(t, models.SkipNotObject, res.Skip)
}
