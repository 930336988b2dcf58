// Package search keeps catalog cards in an Elasticsearch index and queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
)

type Config struct {
	URL      string
	User     string
	Password string
}

func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

type cardDoc struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Rarity string `json:"rarity"`
	Price  string `json:"price"`
	Image  string `json:"image"`
}

func toDoc(c models.Card) cardDoc {
	return cardDoc{
		ID:     c.ID,
		Name:   c.Name,
		Type:   string(c.Type),
		Rarity: string(c.Rarity),
		Price:  c.Price.StringFixed(2),
		Image:  c.Image,
	}
}

func (d cardDoc) card() models.Card {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		price = decimal.Zero
	}
	return models.Card{
		ID:     d.ID,
		Name:   d.Name,
		Type:   models.CardType(d.Type),
		Rarity: models.Rarity(d.Rarity),
		Price:  price,
		Image:  d.Image,
	}
}

// IndexCards writes every card as a document keyed by its id.
func (ix *Index) IndexCards(ctx context.Context, cards []models.Card) error {
	for _, c := range cards {
		body, err := json.Marshal(toDoc(c))
		if err != nil {
			return err
		}
		res, err := ix.ES.Index(
			ix.Name,
			bytes.NewReader(body),
			ix.ES.Index.WithContext(ctx),
			ix.ES.Index.WithDocumentID(strconv.FormatUint(uint64(c.ID), 10)),
		)
		if err != nil {
			return fmt.Errorf("index card %d: %w", c.ID, err)
		}
		failed := res.IsError()
		status := res.Status()
		res.Body.Close()
		if failed {
			return fmt.Errorf("index card %d: %s", c.ID, status)
		}
	}

	res, err := ix.ES.Indices.Refresh(ix.ES.Indices.Refresh.WithContext(ctx), ix.ES.Indices.Refresh.WithIndex(ix.Name))
	if err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	res.Body.Close()
	return nil
}

func buildQuery(f repo.CardFilter, from, size int) map[string]any {
	var must []any
	if q := strings.TrimSpace(f.Query); q != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "type", "rarity"},
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	var filter []any
	if f.Type != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"type.keyword": string(f.Type)}})
	}
	if f.Rarity != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"rarity.keyword": string(f.Rarity)}})
	}

	boolQ := map[string]any{"must": must}
	if len(filter) > 0 {
		boolQ["filter"] = filter
	}
	return map[string]any{
		"query": map[string]any{"bool": boolQ},
		"from":  from,
		"size":  size,
	}
}

func (ix *Index) SearchCards(ctx context.Context, f repo.CardFilter, offset, limit int) (int64, []models.Card, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(f, offset, limit)); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source cardDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	cards := make([]models.Card, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		cards[i] = hit.Source.card()
	}
	return r.Hits.Total.Value, cards, nil
}
