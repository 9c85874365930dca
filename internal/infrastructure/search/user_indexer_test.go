package search_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskflow-auth/internal/domain/event"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/search"
)

type recordedRequest struct {
	method string
	path   string
	body   []byte
}

func fakeES(t *testing.T, status int) (*elasticsearch.Client, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &reqs
}

func Test_IndexUser_PutsDocumentByUserID(t *testing.T) {
	es, reqs := fakeES(t, http.StatusCreated)
	ix := search.NewUserIndexer(es, "users")
	e := event.NewUserRegistered("6f1c", "bob@test.com", "Bob", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	require.NoError(t, ix.IndexUser(context.Background(), e))

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/users/_doc/6f1c", got.path)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(got.body, &doc))
	assert.Equal(t, "bob@test.com", doc["email"])
	assert.Equal(t, "2026-01-02T03:04:05Z", doc["registered_at"])
}

func Test_IndexUser_ErrorStatus(t *testing.T) {
	es, _ := fakeES(t, http.StatusBadRequest)
	ix := search.NewUserIndexer(es, "users")

	err := ix.IndexUser(context.Background(), event.NewUserRegistered("id", "e@x.com", "E", time.Now()))

	assert.ErrorContains(t, err, "400")
}

func Test_EnsureIndex_SkipsExistingIndex(t *testing.T) {
	es, reqs := fakeES(t, http.StatusOK)

	require.NoError(t, search.NewUserIndexer(es, "users").EnsureIndex(context.Background()))

	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodHead, (*reqs)[0].method)
}
