package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
)

// TransactionIndex mirrors incomes and expenses into one Elasticsearch index
// for per-owner full-text search.
type TransactionIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewTransactionIndex(es *elasticsearch.Client, index string) *TransactionIndex {
	return &TransactionIndex{es: es, index: index}
}

func docID(kind entity.Kind, id string) string {
	return kind.Name + ":" + id
}

func (x *TransactionIndex) Index(ctx context.Context, kind entity.Kind, t *entity.Transaction) error {
	doc := map[string]any{
		"id":           t.ID,
		"ownerId":      t.OwnerID,
		"kind":         kind.Name,
		"amount":       t.Amount,
		"date":         t.Date.Format(time.RFC3339Nano),
		"description":  t.Description,
		"category":     t.Category,
		"counterparty": t.Counterparty,
		"isRecurring":  t.IsRecurring,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: docID(kind, t.ID), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *TransactionIndex) Remove(ctx context.Context, kind entity.Kind, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: docID(kind, id)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search returns the ids of the owner's records of kind matching query.
func (x *TransactionIndex) Search(ctx context.Context, kind entity.Kind, ownerID, query string, size int) ([]string, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"description^2", "counterparty", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"ownerId.keyword": ownerID}},
					map[string]any{"term": map[string]any{"kind.keyword": kind.Name}},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if res.StatusCode == 404 {
			return []string{}, nil
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID string `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}
