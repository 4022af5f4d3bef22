// Package search keeps a product index in Elasticsearch and answers product searches from it,
// falling back to SQL LIKE when no cluster is configured or the cluster fails.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	productRepo "warehouse.GO/model/repository/product"
)

const reindexBatch = 500

var (
	instance *Service
	once     sync.Once
)

// Document is what gets indexed per product.
type Document struct {
	ID           uint   `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Barcode      string `json:"barcode,omitempty"`
	Unit         string `json:"unit"`
	Status       string `json:"status"`
	CategoryID   *uint  `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
}

func NewDocument(p *entity.Product) Document {
	d := Document{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		Unit:        p.Unit,
		Status:      string(p.Status),
		CategoryID:  p.CategoryID,
	}
	if p.Category != nil {
		d.CategoryName = p.Category.Name
	}
	return d
}

type Service struct {
	db     *gorm.DB
	client *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

// GetService returns the process-wide search service built from config. Without
// ELASTICSEARCH_HOST it only does SQL searches.
func GetService(db *gorm.DB) *Service {
	once.Do(func() {
		cfg := config.GetConfig()
		logger := config.GetLogger()
		var client *elasticsearch.Client
		if cfg.SearchHost != "" {
			c, err := NewClient(cfg.SearchHost)
			if err != nil {
				logger.WithError(err).Warn("search: elasticsearch disabled")
			} else {
				client = c
			}
		}
		instance = NewService(db, client, cfg.SearchIndex, logger)
	})
	return instance
}

func NewClient(host string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{host}})
}

// NewService accepts a nil client.
func NewService(db *gorm.DB, client *elasticsearch.Client, index string, logger *logrus.Logger) *Service {
	return &Service{db: db, client: client, index: index, logger: logger}
}

func (s *Service) Enabled() bool { return s.client != nil }

func (s *Service) products(ctx context.Context) *productRepo.ProductRepository {
	return productRepo.NewProductRepository(s.db.WithContext(ctx))
}

func responseError(op string, status int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("search: %s: status %d: %s", op, status, bytes.TrimSpace(raw))
}

// Index upserts the document of p.
func (s *Service) Index(ctx context.Context, p *entity.Product) error {
	if s.client == nil {
		return nil
	}
	body, err := json.Marshal(NewDocument(p))
	if err != nil {
		return err
	}
	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.StatusCode, res.Body)
	}
	return nil
}

// Remove deletes the document of product id. A missing document is not an error.
func (s *Service) Remove(ctx context.Context, id uint) error {
	if s.client == nil {
		return nil
	}
	res, err := s.client.Delete(s.index, strconv.FormatUint(uint64(id), 10), s.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.StatusCode, res.Body)
	}
	return nil
}

// Sync indexes p and only logs failures. Used after catalog writes.
func (s *Service) Sync(ctx context.Context, p *entity.Product) {
	if err := s.Index(ctx, p); err != nil {
		s.logger.WithError(err).WithField("product_id", p.ID).Warn("search: index failed")
	}
}

// Forget removes product id from the index and only logs failures.
func (s *Service) Forget(ctx context.Context, id uint) {
	if err := s.Remove(ctx, id); err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("search: delete failed")
	}
}

// Search returns one page of products matching term.
func (s *Service) Search(ctx context.Context, term string, p query.Page) ([]entity.Product, int64, error) {
	p.Normalize()
	if s.client != nil && term != "" {
		items, total, err := s.searchIndex(ctx, term, p)
		if err == nil {
			return items, total, nil
		}
		s.logger.WithError(err).Warn("search: elasticsearch query failed, using SQL")
	}
	return s.products(ctx).Search(term, p)
}

func (s *Service) searchIndex(ctx context.Context, term string, p query.Page) ([]entity.Product, int64, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"from":    p.Offset(),
		"size":    p.Limit,
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"multi_match": map[string]interface{}{
						"query":     term,
						"fields":    []string{"sku^3", "name^2", "barcode^2", "description", "categoryName"},
						"fuzziness": "AUTO",
					}},
					{"prefix": map[string]interface{}{"sku": map[string]interface{}{"value": term, "boost": 4}}},
				},
				"minimum_should_match": 1,
			},
		},
	})
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, responseError("search", res.StatusCode, res.Body)
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		if id, err := strconv.ParseUint(h.ID, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	found, err := s.products(ctx).FindByIDs(ids)
	if err != nil {
		return nil, 0, err
	}
	items := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if prod, ok := found[id]; ok {
			items = append(items, prod)
		}
	}
	return items, out.Hits.Total.Value, nil
}

// Reindex pushes every product to the index with bulk requests and returns how many were sent.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.client == nil {
		return 0, fmt.Errorf("search: elasticsearch is not configured")
	}
	total := 0
	err := s.products(ctx).Each(reindexBatch, func(batch []entity.Product) error {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for i := range batch {
			meta := map[string]interface{}{"index": map[string]interface{}{"_id": strconv.FormatUint(uint64(batch[i].ID), 10)}}
			if err := enc.Encode(meta); err != nil {
				return err
			}
			if err := enc.Encode(NewDocument(&batch[i])); err != nil {
				return err
			}
		}
		res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
			s.client.Bulk.WithContext(ctx),
			s.client.Bulk.WithIndex(s.index),
		)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.IsError() {
			return responseError("bulk", res.StatusCode, res.Body)
		}
		var out struct {
			Errors bool `json:"errors"`
		}
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return err
		}
		if out.Errors {
			s.logger.WithField("batch", len(batch)).Warn("search: bulk request had item errors")
		}
		total += len(batch)
		return nil
	})
	if err != nil {
		return total, err
	}
	s.logger.WithField("products", total).Info("search: reindex finished")
	return total, nil
}
