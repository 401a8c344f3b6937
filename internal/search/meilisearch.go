package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/meilisearch/meilisearch-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned while the breaker is open
var ErrUnavailable = errors.New("search is temporarily unavailable")

// Document is the flattened property stored in the index
type Document struct {
	ID           string   `json:"id"`
	OwnerID      string   `json:"owner_id,omitempty"`
	PropertyName string   `json:"property_name"`
	Description  string   `json:"description,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	ListingType  string   `json:"listing_type,omitempty"`
	Status       string   `json:"status"`
	Address      string   `json:"address"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Pincode      string   `json:"pincode,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	CreatedAt    int64    `json:"created_at"`
}

// NewDocument builds the index document for a property
func NewDocument(p *models.Property) Document {
	doc := Document{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		PropertyName: p.PropertyName,
		Description:  p.Description,
		PropertyType: p.PropertyType,
		ListingType:  p.ListingType,
		Status:       string(p.Status),
		Address:      p.DisplayAddress(),
		City:         p.City,
		State:        p.State,
		Pincode:      p.Pincode,
		Bedrooms:     p.Bedrooms,
		Price:        p.Price,
		Currency:     p.Currency,
		CreatedAt:    p.CreatedAt.Unix(),
	}
	if len(p.ImageURLs) > 0 {
		doc.ImageURL = p.ImageURLs[0]
	}
	return doc
}

type SearchClient struct {
	client  *meilisearch.Client
	index   string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewSearchClient(cfg config.SearchConfig, logger *zap.SugaredLogger) *SearchClient {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:    cfg.Meilisearch.Host,
		APIKey:  cfg.Meilisearch.APIKey,
		Timeout: 10 * time.Second,
	})

	index := cfg.Meilisearch.Index
	if index == "" {
		index = "properties"
	}

	maxFailures := uint32(3)
	if cfg.Breaker.MaxFailures > 0 {
		maxFailures = uint32(cfg.Breaker.MaxFailures)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "meilisearch",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.GetTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infow("[Search] circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &SearchClient{
		client:  client,
		index:   index,
		breaker: breaker,
		logger:  logger,
	}
}

// execute runs fn through the breaker
func (s *SearchClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return res, err
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist; the task fails asynchronously when it does
	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	}); err != nil && !strings.Contains(err.Error(), "index_already_exists") {
		return fmt.Errorf("failed to create index: %w", err)
	}

	index := s.client.Index(s.index)

	if _, err := index.UpdateSearchableAttributes(&[]string{
		"property_name",
		"address",
		"city",
		"property_type",
		"description",
	}); err != nil {
		return fmt.Errorf("failed to update searchable attributes: %w", err)
	}

	if _, err := index.UpdateFilterableAttributes(&[]string{
		"owner_id",
		"status",
		"listing_type",
		"city",
		"price",
		"bedrooms",
	}); err != nil {
		return fmt.Errorf("failed to update filterable attributes: %w", err)
	}

	if _, err := index.UpdateSortableAttributes(&[]string{
		"price",
		"created_at",
	}); err != nil {
		return fmt.Errorf("failed to update sortable attributes: %w", err)
	}

	return nil
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	return s.IndexProperties([]models.Property{*property})
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	docs := make([]Document, 0, len(properties))
	for i := range properties {
		docs = append(docs, NewDocument(&properties[i]))
	}
	_, err := s.execute(func() (interface{}, error) {
		return s.client.Index(s.index).AddDocuments(docs, "id")
	})
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id string) error {
	_, err := s.execute(func() (interface{}, error) {
		return s.client.Index(s.index).DeleteDocument(id)
	})
	return err
}

// FilterParams narrows a dashboard search
type FilterParams struct {
	Query       string
	OwnerID     string
	Status      string
	ListingType string
	City        string
	MinPrice    *float64
	MaxPrice    *float64
	SortBy      string
	Limit       int64
}

// Search searches for properties with basic options
func (s *SearchClient) Search(query string, limit int64) ([]Document, error) {
	return s.FilterSearch(FilterParams{Query: query, Limit: limit})
}

// FilterSearch performs a search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]Document, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filter := buildFilter(params); filter != "" {
		searchReq.Filter = filter
	}
	if params.SortBy != "" {
		searchReq.Sort = []string{params.SortBy}
	}

	res, err := s.execute(func() (interface{}, error) {
		return s.client.Index(s.index).Search(params.Query, searchReq)
	})
	if err != nil {
		return nil, err
	}
	return decodeHits(res.(*meilisearch.SearchResponse).Hits), nil
}

// buildFilter joins the set filter params into a Meilisearch filter expression
func buildFilter(params FilterParams) string {
	var filters []string

	if params.OwnerID != "" {
		filters = append(filters, fmt.Sprintf("owner_id = %s", quote(params.OwnerID)))
	}
	if params.Status != "" {
		filters = append(filters, fmt.Sprintf("status = %s", quote(params.Status)))
	}
	if params.ListingType != "" {
		filters = append(filters, fmt.Sprintf("listing_type = %s", quote(params.ListingType)))
	}
	if params.City != "" {
		filters = append(filters, fmt.Sprintf("city = %s", quote(params.City)))
	}
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %g", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %g", *params.MaxPrice))
	}

	return strings.Join(filters, " AND ")
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// decodeHits converts raw hits to documents, skipping any that don't fit
func decodeHits(hits []interface{}) []Document {
	docs := make([]Document, 0, len(hits))
	for _, hit := range hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc Document
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
