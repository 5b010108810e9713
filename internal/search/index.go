package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/emoji_shop/internal/models"
)

const (
	maxHits        = 100
	deleteParallel = 4
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text"},
      "category":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "description": {"type": "text"},
      "emoji":       {"type": "keyword"},
      "price":       {"type": "double"},
      "inStock":     {"type": "boolean"},
      "ownerName":   {"type": "text"},
      "ownerEmail":  {"type": "keyword"},
      "createdAt":   {"type": "date"}
    }
  }
}`

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type Index struct {
	es    *elasticsearch.Client
	index string
}

type document struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Emoji       string    `json:"emoji"`
	Price       float64   `json:"price"`
	InStock     bool      `json:"inStock"`
	OwnerName   string    `json:"ownerName,omitempty"`
	OwnerEmail  string    `json:"ownerEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
}

func New(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

func (i *Index) Ping(ctx context.Context) error {
	res, err := i.es.Info(i.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("es info", res.StatusCode, res.Body)
	}
	return nil
}

// EnsureIndex creates the index with its mapping when missing.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("es create index", res.StatusCode, res.Body)
	}
	return nil
}

func (i *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := document{
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Emoji:       p.Emoji,
		Price:       p.Price,
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
	}
	if p.Owner != nil {
		doc.OwnerName = p.Owner.Name
		doc.OwnerEmail = p.Owner.Email
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es encode product: %w", err)
	}

	res, err := i.es.Index(i.index, &buf,
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("es index product", res.StatusCode, res.Body)
	}
	return nil
}

// DeleteProducts removes the documents concurrently; missing documents are
// not an error.
func (i *Index) DeleteProducts(ctx context.Context, ids []uuid.UUID) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteParallel)

	for _, id := range ids {
		g.Go(func() error {
			res, err := i.es.Delete(i.index, id.String(), i.es.Delete.WithContext(ctx))
			if err != nil {
				return fmt.Errorf("es delete %s: %w", id, err)
			}
			defer res.Body.Close()
			if res.IsError() && res.StatusCode != http.StatusNotFound {
				return responseError("es delete "+id.String(), res.StatusCode, res.Body)
			}
			return nil
		})
	}
	return g.Wait()
}

// Search returns matching product ids, best match first.
func (i *Index) Search(ctx context.Context, query string) ([]uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "category", "description", "ownerName"},
				"fuzziness": "AUTO",
			},
		},
		"size":    maxHits,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("es encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("es search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("es decode search: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func responseError(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("%s: status %d: %s", op, status, bytes.TrimSpace(msg))
}
