// Package search keeps the users index in Elasticsearch in step with registrations.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/taskflow-auth/internal/domain/event"
)

const usersMapping = `{
  "mappings": {
    "properties": {
      "user_id":       {"type": "keyword"},
      "email":         {"type": "keyword"},
      "display_name":  {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "registered_at": {"type": "date"}
    }
  }
}`

type userDoc struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	RegisteredAt string `json:"registered_at"`
}

type UserIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{es: es, index: index}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (ix *UserIndexer) EnsureIndex(ctx context.Context) error {
	res, err := ix.es.Indices.Exists([]string{ix.index}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", ix.index, err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = ix.es.Indices.Create(ix.index,
		ix.es.Indices.Create.WithBody(strings.NewReader(usersMapping)),
		ix.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", ix.index, err)
	}
	return checkResponse(res, "create index")
}

// IndexUser upserts the document for a registered user, keyed by user id,
// so redelivered events are harmless.
func (ix *UserIndexer) IndexUser(ctx context.Context, e event.UserRegistered) error {
	body, err := json.Marshal(userDoc{
		UserID:       e.UserID,
		Email:        e.Email,
		DisplayName:  e.DisplayName,
		RegisteredAt: e.RegisteredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return err
	}
	res, err := ix.es.Index(ix.index, bytes.NewReader(body),
		ix.es.Index.WithDocumentID(e.UserID),
		ix.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index user %s: %w", e.UserID, err)
	}
	return checkResponse(res, "index user")
}

func checkResponse(res *esapi.Response, op string) error {
	defer func() { _ = res.Body.Close() }()
	if !res.IsError() {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(msg))
}
