package search

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCluster struct {
	mu          sync.Mutex
	indexExists bool
	created     bool
	bulkLines   int
	lastQuery   map[string]interface{}
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/products":
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/products":
		f.created = true
		f.indexExists = true
		w.Write([]byte(`{"acknowledged":true}`))
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) != "" {
				f.bulkLines++
			}
		}
		w.Write([]byte(`{"errors":false,"items":[]}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		json.NewDecoder(r.Body).Decode(&f.lastQuery)
		w.Write([]byte(`{
			"hits": {
				"total": {"value": 7},
				"hits": [
					{"_source": {"id": 3, "name": "Pâte à tartiner cacao", "nutriscore_grade": "d", "category_names": ["Pâtes à tartiner"]}},
					{"_source": {"id": 2, "name": "Pâte à tartiner noisettes", "nutriscore_grade": "d", "category_names": ["Pâtes à tartiner"]}}
				]
			}
		}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"not_found","reason":"unexpected request"}}`))
	}
}

func newFakeClusterIndex(t *testing.T, cluster *fakeCluster) *ElasticsearchIndex {
	t.Helper()
	server := httptest.NewServer(cluster)
	t.Cleanup(server.Close)

	idx, err := NewElasticsearchIndex(context.Background(), server.URL, "products")
	require.NoError(t, err)
	return idx
}

func TestElasticsearchIndex_CreatesMissingIndex(t *testing.T) {
	cluster := &fakeCluster{}
	newFakeClusterIndex(t, cluster)
	assert.True(t, cluster.created)
}

func TestElasticsearchIndex_KeepsExistingIndex(t *testing.T) {
	cluster := &fakeCluster{indexExists: true}
	newFakeClusterIndex(t, cluster)
	assert.False(t, cluster.created)
}

func TestElasticsearchIndex_Search(t *testing.T) {
	cluster := &fakeCluster{indexExists: true}
	idx := newFakeClusterIndex(t, cluster)

	res, err := idx.Search(context.Background(), "tartiner", 2, 2)
	require.NoError(t, err)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, uint(3), res.Hits[0].ID)
	assert.Equal(t, 7, res.TotalHits)
	assert.Equal(t, 4, res.TotalPages)
	assert.Equal(t, 2, res.Page)

	assert.EqualValues(t, 2, cluster.lastQuery["from"])
	assert.EqualValues(t, 2, cluster.lastQuery["size"])
	sortClause, ok := cluster.lastQuery["sort"].([]interface{})
	require.True(t, ok)
	assert.Len(t, sortClause, 3)
}

func TestElasticsearchIndex_BulkIndex(t *testing.T) {
	cluster := &fakeCluster{indexExists: true}
	idx := newFakeClusterIndex(t, cluster)

	err := idx.BulkIndex(context.Background(), []Document{
		{ID: 1, Name: "Nutella", NutriscoreGrade: "e"},
		{ID: 2, Name: "Compote", NutriscoreGrade: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, cluster.bulkLines)
}

func TestElasticsearchIndex_BulkIndexEmpty(t *testing.T) {
	cluster := &fakeCluster{indexExists: true}
	idx := newFakeClusterIndex(t, cluster)

	require.NoError(t, idx.BulkIndex(context.Background(), nil))
	assert.Equal(t, 0, cluster.bulkLines)
}
