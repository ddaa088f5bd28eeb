package vectorstore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/akademix/akademix/internal/vectorstore"
	"github.com/akademix/akademix/pkg/models"
)

func TestEmbeddedStore_UpsertAndSearch(t *testing.T) {
	s := vectorstore.NewEmbeddedStore()
	ctx := context.Background()

	docs := []models.VectorDoc{
		{ID: "m1:0", MateriID: "m1", Content: "grafik dan visualisasi", Vector: []float64{1, 0, 0}},
		{ID: "m1:1", MateriID: "m1", Content: "struktur data pohon", Vector: []float64{0, 1, 0}},
		{ID: "m2:0", MateriID: "m2", Content: "basis data relasional", Vector: []float64{0.9, 0.1, 0}},
	}
	if err := s.Upsert(ctx, docs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := s.Search(ctx, []float64{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Doc.ID != "m1:0" {
		t.Errorf("best match = %s, want m1:0", results[0].Doc.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not ordered by score: %v then %v", results[0].Score, results[1].Score)
	}
}

func TestEmbeddedStore_UpsertReplacesByID(t *testing.T) {
	s := vectorstore.NewEmbeddedStore()
	ctx := context.Background()

	s.Upsert(ctx, []models.VectorDoc{{ID: "m1:0", MateriID: "m1", Vector: []float64{1, 0}}})
	s.Upsert(ctx, []models.VectorDoc{{ID: "m1:0", MateriID: "m1", Vector: []float64{0, 1}}})

	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d after replacing upsert, want 1", count)
	}
}

func TestEmbeddedStore_SearchSkipsDimensionMismatch(t *testing.T) {
	s := vectorstore.NewEmbeddedStore()
	ctx := context.Background()

	s.Upsert(ctx, []models.VectorDoc{
		{ID: "ok", MateriID: "m1", Vector: []float64{1, 0, 0}},
		{ID: "bad", MateriID: "m1", Vector: []float64{1, 0}},
	})

	results, err := s.Search(ctx, []float64{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Doc.ID != "ok" {
		t.Errorf("Search() = %+v, want only the matching-dimension doc", results)
	}
}

func TestEmbeddedStore_DeleteByMateri(t *testing.T) {
	s := vectorstore.NewEmbeddedStore()
	ctx := context.Background()

	s.Upsert(ctx, []models.VectorDoc{
		{ID: "m1:0", MateriID: "m1", Vector: []float64{1, 0}},
		{ID: "m1:1", MateriID: "m1", Vector: []float64{0, 1}},
		{ID: "m2:0", MateriID: "m2", Vector: []float64{1, 1}},
	})

	if err := s.DeleteByMateri(ctx, "m1"); err != nil {
		t.Fatalf("DeleteByMateri() error = %v", err)
	}
	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d after delete, want 1", count)
	}
}

func TestEmbeddedStore_CapacityExceeded(t *testing.T) {
	s := vectorstore.NewEmbeddedStore(vectorstore.WithMaxVectors(2))
	ctx := context.Background()

	err := s.Upsert(ctx, []models.VectorDoc{
		{ID: "a", Vector: []float64{1}},
		{ID: "b", Vector: []float64{1}},
		{ID: "c", Vector: []float64{1}},
	})
	if err == nil {
		t.Fatalf("Upsert() error = nil, want capacity error")
	}
	if !strings.Contains(err.Error(), "pgvector") {
		t.Errorf("error = %q, want the pgvector suggestion", err)
	}
}
