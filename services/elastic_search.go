package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"catalog/dto"
	"catalog/models"
	"catalog/services/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

var productSearchFields = []string{"name^2", "slug", "description", "origin", "categories.category_name", "tags"}

// SearchIndex là bản sao đọc của bảng products trên Elasticsearch; client nil nghĩa là tắt
type SearchIndex struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchIndex(es *elasticsearch.Client, index string, log logger.Logger) *SearchIndex {
	if index == "" {
		index = "products"
	}
	return &SearchIndex{es: es, index: index, logger: log}
}

func (s *SearchIndex) Enabled() bool {
	return s != nil && s.es != nil
}

// productDocument là document được index, thêm vài trường tính sẵn để lọc
type productDocument struct {
	models.Product
	PriceRange string `json:"price_range"`
	TotalStock int    `json:"total_stock"`
}

// IndexProducts ghi đè toàn bộ document bằng Bulk API
func (s *SearchIndex) IndexProducts(ctx context.Context, products []models.Product) error {
	if !s.Enabled() {
		return fmt.Errorf("search index is not configured")
	}
	if len(products) == 0 {
		return nil
	}

	var buf strings.Builder
	for _, p := range products {
		// Ghi metadata Bulk
		meta := fmt.Sprintf(`{ "index" : { "_index" : %q, "_id" : %q } }`, s.index, p.ID)
		buf.WriteString(meta + "\n")

		doc, err := json.Marshal(productDocument{Product: p, PriceRange: p.PriceRange(), TotalStock: p.TotalStock()})
		if err != nil {
			s.logger.Error("encode product %s for indexing: %v", p.ID, err)
			continue
		}
		buf.Write(doc)
		buf.WriteString("\n")
	}
	return s.sendBulkRequest(ctx, buf.String())
}

func (s *SearchIndex) sendBulkRequest(ctx context.Context, data string) error {
	res, err := s.es.Bulk(strings.NewReader(data), s.es.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("bulk request failed: %s", string(body))
	}

	// Log lỗi từng item nếu có
	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string          `json:"_id"`
			Error json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			for _, op := range item {
				if len(op.Error) > 0 {
					s.logger.Error("index document %s: %s", op.ID, string(op.Error))
				}
			}
		}
	}
	s.logger.Info("indexed %d bulk items into %s", len(bulkRes.Items), s.index)
	return nil
}

// DeleteIndex xóa index, dùng trước khi reindex toàn bộ
func (s *SearchIndex) DeleteIndex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	res, err := s.es.Indices.Delete([]string{s.index},
		s.es.Indices.Delete.WithContext(ctx),
		s.es.Indices.Delete.WithIgnoreUnavailable(true))
	if err != nil {
		return fmt.Errorf("delete index %s: %w", s.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("delete index %s: %s", s.index, res.Status())
	}
	return nil
}

// Search tìm theo từ khóa trên các sản phẩm đang bán
func (s *SearchIndex) Search(ctx context.Context, req *dto.SearchRequest) ([]models.Product, int64, error) {
	_, limit, offset := req.Normalize()
	body := BuildESQueryBody(BuildBoolQuery(req.Query, BuildFilters(&dto.FilterRequest{})), offset, limit)
	return s.ExecuteESQuery(ctx, body)
}

// Filter tìm theo từ khóa kèm bộ lọc danh mục, xuất xứ, rating
func (s *SearchIndex) Filter(ctx context.Context, req *dto.FilterRequest) ([]models.Product, int64, error) {
	_, limit, offset := req.Normalize()
	body := BuildESQueryBody(BuildBoolQuery(req.Query, BuildFilters(req)), offset, limit)
	return s.ExecuteESQuery(ctx, body)
}

// BuildFilters luôn lọc is_active, thêm term/range theo request
func BuildFilters(req *dto.FilterRequest) []map[string]interface{} {
	filters := []map[string]interface{}{term("is_active", true)}

	if len(req.Categories) > 0 {
		filters = append(filters, terms("categories.category_id.keyword", req.Categories))
	}
	if len(req.Origins) > 0 {
		filters = append(filters, terms("origin.keyword", req.Origins))
	}
	if req.MinRating != nil {
		filters = append(filters, rangeGTE("rating", *req.MinRating))
	}
	return filters
}

// Build bool query with should + filter
func BuildBoolQuery(search string, filters []map[string]interface{}) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": filters,
	}
	if search = strings.TrimSpace(search); search != "" {
		boolQuery["should"] = []map[string]interface{}{
			{
				"multi_match": map[string]interface{}{
					"query":     search,
					"fields":    productSearchFields,
					"fuzziness": "AUTO",
				},
			},
			{
				"match_phrase_prefix": map[string]interface{}{
					"name": search,
				},
			},
		}
		boolQuery["minimum_should_match"] = 1
	}
	return map[string]interface{}{"bool": boolQuery}
}

// Build full ES query body
func BuildESQueryBody(query map[string]interface{}, offset, limit int) map[string]interface{} {
	return map[string]interface{}{
		"from":  offset,
		"size":  limit,
		"query": query,
		"sort": []map[string]interface{}{
			{"_score": "desc"},
		},
	}
}

// ExecuteESQuery chạy truy vấn và làm phẳng hits thành danh sách sản phẩm
func (s *SearchIndex) ExecuteESQuery(ctx context.Context, query map[string]interface{}) ([]models.Product, int64, error) {
	if !s.Enabled() {
		return nil, 0, fmt.Errorf("search index is not configured")
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(esutil.NewJSONReader(query)),
		s.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		var raw bytes.Buffer
		_, _ = raw.ReadFrom(res.Body)
		return nil, 0, fmt.Errorf("search failed: %s %s", res.Status(), raw.String())
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]models.Product, int64, error) {
	var results struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, 0, err
	}

	products := make([]models.Product, 0, len(results.Hits.Hits))
	for _, hit := range results.Hits.Hits {
		products = append(products, hit.Source)
	}
	return products, results.Hits.Total.Value, nil
}

// Helper: term
func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

func terms(field string, values []string) map[string]interface{} {
	return map[string]interface{}{
		"terms": map[string]interface{}{field: values},
	}
}

// Helper: range gte
func rangeGTE(field string, value float64) map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{
			field: map[string]interface{}{"gte": value},
		},
	}
}
