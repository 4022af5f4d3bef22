package search

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"warehouse.GO/core/query"
	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
)

// fakeES answers the handful of endpoints the service calls.
type fakeES struct {
	mu      sync.Mutex
	indexed map[string]Document
	deleted []string
	bulk    int
	hits    []string
	fail    bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.fail:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		hits := make([]map[string]string, 0, len(f.hits))
		for _, id := range f.hits {
			hits = append(hits, map[string]string{"_id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"total": map[string]int{"value": len(hits)}, "hits": hits},
		})
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			f.bulk++
		}
		f.bulk /= 2
		_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
	case r.Method == http.MethodPut || r.Method == http.MethodPost:
		var d Document
		_ = json.NewDecoder(r.Body).Decode(&d)
		parts := strings.Split(r.URL.Path, "/")
		f.indexed[parts[len(parts)-1]] = d
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.Method == http.MethodDelete:
		parts := strings.Split(r.URL.Path, "/")
		f.deleted = append(f.deleted, parts[len(parts)-1])
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setup(t *testing.T) (*Service, *fakeES, []entity.Product) {
	t.Helper()
	db := testdb.Open(t)
	products := []entity.Product{
		{SKU: "bolt-1", Name: "Steel bolt"},
		{SKU: "nut-1", Name: "Steel nut"},
		{SKU: "gear-1", Name: "Gear"},
	}
	if err := db.Create(&products).Error; err != nil {
		t.Fatal(err)
	}
	fake := &fakeES{indexed: map[string]Document{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(db, client, "products_test", logrus.New()), fake, products
}

func TestSearch_SQLFallbackWithoutClient(t *testing.T) {
	db := testdb.Open(t)
	if err := db.Create(&[]entity.Product{{SKU: "a", Name: "Steel bolt"}, {SKU: "b", Name: "Gear"}}).Error; err != nil {
		t.Fatal(err)
	}
	s := NewService(db, nil, "x", logrus.New())
	items, total, err := s.Search(context.Background(), "steel", query.Page{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].SKU != "A" {
		t.Errorf("items = %+v total = %d", items, total)
	}
}

func TestSearch_UsesIndexOrder(t *testing.T) {
	s, fake, products := setup(t)
	fake.hits = []string{"3", "1"}
	items, total, err := s.Search(context.Background(), "anything", query.Page{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("items = %d total = %d", len(items), total)
	}
	if items[0].ID != products[2].ID || items[1].ID != products[0].ID {
		t.Errorf("order = %d,%d", items[0].ID, items[1].ID)
	}
}

func TestSearch_FallsBackOnClusterError(t *testing.T) {
	s, fake, _ := setup(t)
	fake.fail = true
	items, _, err := s.Search(context.Background(), "steel", query.Page{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2 from SQL", len(items))
	}
}

func TestIndexRemoveReindex(t *testing.T) {
	s, fake, products := setup(t)
	ctx := context.Background()
	if err := s.Index(ctx, &products[0]); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if d, ok := fake.indexed["1"]; !ok || d.SKU != "BOLT-1" {
		t.Errorf("indexed = %+v", fake.indexed)
	}
	if err := s.Remove(ctx, 99); err != nil {
		t.Errorf("Remove missing document: %v", err)
	}
	n, err := s.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 3 || fake.bulk != 3 {
		t.Errorf("reindexed %d, bulk saw %d, want 3", n, fake.bulk)
	}
}
