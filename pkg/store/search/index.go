package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// ErrRequestFailed wraps non 2xx answers of the cluster.
var ErrRequestFailed = errors.New("search: request failed")

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "api":         {"type": "keyword"},
      "plan":        {"type": "keyword"},
      "application": {"type": "keyword"},
      "status":      {"type": "keyword"},
      "request":     {"type": "text"},
      "reason":      {"type": "text"},
      "metadata":    {"type": "flat_object"},
      "created_at":  {"type": "date"},
      "ending_at":   {"type": "date"}
    }
  }
}`

// Index stores subscription documents.
type Index struct {
	client *opensearch.Client
	name   string
}

// New returns an index named name. Use Ensure to create it.
func New(client *opensearch.Client, name string) *Index {
	if client == nil {
		panic("search: client is required")
	}
	return &Index{client: client, name: name}
}

// Ensure creates the index with its mapping when it does not exist yet.
func (i *Index) Ensure(ctx context.Context) error {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{i.name}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.name, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = opensearchapi.IndicesCreateRequest{Index: i.name, Body: bytes.NewReader([]byte(mapping))}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.name, err)
	}
	return check(res)
}

// Index upserts the document of sub.
func (i *Index) Index(ctx context.Context, sub domain.Subscription) error {
	body, err := json.Marshal(documentOf(sub))
	if err != nil {
		return fmt.Errorf("encode subscription %s: %w", sub.ID, err)
	}
	res, err := opensearchapi.IndexRequest{
		Index:      i.name,
		DocumentID: sub.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index subscription %s: %w", sub.ID, err)
	}
	return check(res)
}

// Remove deletes the document of a subscription. Unknown ids are ignored.
func (i *Index) Remove(ctx context.Context, id string) error {
	res, err := opensearchapi.DeleteRequest{Index: i.name, DocumentID: id}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("remove subscription %s: %w", id, err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return check(res)
}

// Search returns the ids of the best matching subscriptions.
func (i *Index) Search(ctx context.Context, text string, size int) ([]string, error) {
	body, err := json.Marshal(queryOf(text))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req := opensearchapi.SearchRequest{Index: []string{i.name}, Body: bytes.NewReader(body)}
	if size > 0 {
		req.Size = &size
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("search subscriptions: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, res.Status())
	}
	return hitIDs(res.Body)
}

func check(res *opensearchapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrRequestFailed, res.Status())
	}
	return nil
}

type document struct {
	ID          string            `json:"id"`
	API         string            `json:"api"`
	Plan        string            `json:"plan"`
	Application string            `json:"application"`
	Status      string            `json:"status"`
	Request     string            `json:"request,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	EndingAt    *time.Time        `json:"ending_at,omitempty"`
}

func documentOf(sub domain.Subscription) document {
	return document{
		ID:          sub.ID,
		API:         sub.API,
		Plan:        sub.Plan,
		Application: sub.Application,
		Status:      string(sub.Status),
		Request:     sub.Request,
		Reason:      sub.Reason,
		Metadata:    sub.Metadata,
		CreatedAt:   sub.CreatedAt,
		EndingAt:    sub.EndingAt,
	}
}

func queryOf(text string) map[string]any {
	return map[string]any{
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":   text,
				"fields":  []string{"id^3", "api", "plan", "application", "status", "request", "reason", "metadata"},
				"lenient": true,
			},
		},
	}
}

func hitIDs(r io.Reader) ([]string, error) {
	var out struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	ids := make([]string, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
