package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/afterclass/afterclass-backend/internal/domain"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestTimeout = 5 * time.Second

// ElasticIndex implements domain.WorkshopIndex on an Elasticsearch cluster.
type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
	logger zerolog.Logger
}

// NewElasticIndex creates the index adapter. It does not contact the
// cluster; liveness is checked per-operation and via Ping.
func NewElasticIndex(addresses []string, index string, logger zerolog.Logger) (*ElasticIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &ElasticIndex{
		client: client,
		index:  index,
		logger: logger.With().Str("component", "elastic_index").Logger(),
	}, nil
}

// Index upserts the workshop document. Using the document id makes the
// operation idempotent: replaying it converges on the same state.
func (e *ElasticIndex) Index(doc domain.WorkshopDoc) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal workshop document: %w", err)
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithDocumentID(doc.ID.String()),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index workshop %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index workshop %s: %s", doc.ID, res.Status())
	}
	return nil
}

// Delete removes the workshop document. A missing document is success:
// delete is idempotent by contract.
func (e *ElasticIndex) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := e.client.Delete(
		e.index,
		id.String(),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete workshop %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("delete workshop %s: %s", id, res.Status())
	}
	return nil
}

// searchResponse is the slice of the ES response body we care about.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.WorkshopDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs the translated filter query and maps hits back into the
// common result envelope.
func (e *ElasticIndex) Search(filter *domain.WorkshopFilter) (*domain.SearchResult[domain.WorkshopDoc], error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	body, err := json.Marshal(buildSearchBody(filter))
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search workshops: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search workshops: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &domain.SearchResult[domain.WorkshopDoc]{
		TotalAmount: parsed.Hits.Total.Value,
		Entities:    make([]domain.WorkshopDoc, 0, len(parsed.Hits.Hits)),
	}
	for _, hit := range parsed.Hits.Hits {
		result.Entities = append(result.Entities, hit.Source)
	}
	return result, nil
}

// Ping probes cluster liveness. Any transport or HTTP-level failure counts
// as unhealthy.
func (e *ElasticIndex) Ping() bool {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		e.logger.Debug().Err(err).Msg("Elasticsearch ping failed")
		return false
	}
	defer res.Body.Close()

	return !res.IsError()
}

var _ domain.WorkshopIndex = (*ElasticIndex)(nil)
