package migrations

import (
	"io"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm/schema"

	"warehouse.GO/model/entity"
	"warehouse.GO/model/testdb"
)

func read(t *testing.T, up bool) string {
	t.Helper()
	src, err := Source()
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	defer src.Close()
	v, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	var sb strings.Builder
	for {
		read := src.ReadDown
		if up {
			read = src.ReadUp
		}
		r, _, err := read(v)
		if err != nil {
			t.Fatalf("read version %d (up=%v): %v", v, up, err)
		}
		b, _ := io.ReadAll(r)
		r.Close()
		sb.Write(b)
		next, err := src.Next(v)
		if err != nil {
			break
		}
		v = next
	}
	return sb.String()
}

// Every model column must exist in the MySQL schema so migrate:up and AutoMigrate agree.
func TestUpCoversModels(t *testing.T) {
	up := read(t, true)
	down := read(t, false)
	cache := &sync.Map{}
	for _, model := range entity.All() {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		if err != nil {
			t.Fatalf("parse %T: %v", model, err)
		}
		start := strings.Index(up, "CREATE TABLE IF NOT EXISTS "+s.Table+" (")
		if start < 0 {
			t.Errorf("table %s missing from up migration", s.Table)
			continue
		}
		block := up[start:]
		block = block[:strings.Index(block, ") ENGINE")]
		for _, col := range s.DBNames {
			if !strings.Contains(block, "\n  "+col+" ") {
				t.Errorf("%s.%s missing from up migration", s.Table, col)
			}
		}
		if !strings.Contains(down, "DROP TABLE IF EXISTS "+s.Table+";") {
			t.Errorf("table %s missing from down migration", s.Table)
		}
	}
}

func TestAuto(t *testing.T) {
	db := testdb.Open(t)
	if err := Auto(db); err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if !db.Migrator().HasTable(&entity.StockMovement{}) {
		t.Error("stock_movements not created")
	}
}
