package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQueryMatchAll(t *testing.T) {
	q := BuildSearchQuery("  ", "")
	assert.Contains(t, q, "match_all")
}

func TestBuildSearchQueryTextAndDate(t *testing.T) {
	q := BuildSearchQuery("pro show", "2026-03-14")

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bool": {
			"must": [
				{"multi_match": {"query": "pro show", "fields": ["title^3", "category^2", "description", "venue"], "fuzziness": "AUTO"}},
				{"term": {"date": "2026-03-14"}}
			]
		}
	}`, string(raw))
}

func TestIndexMappingUsesSlugKeyword(t *testing.T) {
	mapping := indexMapping()
	props := mapping["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Equal(t, "keyword", props["slug"].(map[string]interface{})["type"])
	assert.Equal(t, "date", props["date"].(map[string]interface{})["type"])
}

func TestBuildSearchRequestSortsByStart(t *testing.T) {
	raw, err := json.Marshal(BuildSearchRequest("quiz", ""))
	require.NoError(t, err)

	var req struct {
		Sort []map[string]interface{} `json:"sort"`
		Size int                      `json:"size"`
	}
	require.NoError(t, json.Unmarshal(raw, &req))

	keys := make([]string, 0, len(req.Sort))
	for _, s := range req.Sort {
		for k := range s {
			keys = append(keys, k)
		}
	}
	assert.Equal(t, []string{"date", "time", "title.keyword"}, keys)
	assert.Equal(t, MaxSearchResults, req.Size)
}
