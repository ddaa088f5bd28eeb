// Package ingest keeps the materi vector index in sync with the record
// store: chunk the material text, embed the chunks in batches, upsert
// them into the vector backend.
package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/akademix/akademix/internal/embeddings"
	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/internal/vectorstore"
	"github.com/akademix/akademix/pkg/models"
)

// Indexer embeds teaching material content and answers semantic queries.
// It satisfies the search capability the conversation actions depend on.
type Indexer struct {
	store   store.MateriStore
	driver  embeddings.Driver
	vectors vectorstore.Driver
	chunker ChunkerConfig
}

// New creates a materi indexer.
func New(s store.MateriStore, driver embeddings.Driver, vectors vectorstore.Driver) *Indexer {
	return &Indexer{
		store:   s,
		driver:  driver,
		vectors: vectors,
		chunker: DefaultChunkerConfig(),
	}
}

// IndexMateri (re)indexes one teaching material. Stale chunks from an
// earlier version are removed first. Materials without content are only
// removed from the index.
func (ix *Indexer) IndexMateri(ctx context.Context, m *models.Materi) error {
	if err := ix.vectors.DeleteByMateri(ctx, m.ID); err != nil {
		return fmt.Errorf("remove stale chunks: %w", err)
	}
	if m.Konten == "" {
		return nil
	}

	chunks := ChunkText(m.Konten, ix.chunker)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var docs []models.VectorDoc
	for start := 0; start < len(texts); start += ix.driver.MaxBatchSize() {
		end := start + ix.driver.MaxBatchSize()
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := ix.driver.Embed(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		for i, vec := range vectors {
			idx := start + i
			docs = append(docs, models.VectorDoc{
				ID:       m.ID + ":" + strconv.Itoa(idx),
				MateriID: m.ID,
				Content:  texts[idx],
				Metadata: map[string]string{
					"judul":     m.Judul,
					"matkul_id": m.MatkulID,
				},
				Vector: vec,
			})
		}
	}

	if err := ix.vectors.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	log.Debug().Str("materi", m.ID).Int("chunks", len(docs)).Msg("Materi indexed")
	return nil
}

// RemoveMateri drops a material from the index.
func (ix *Indexer) RemoveMateri(ctx context.Context, materiID string) error {
	return ix.vectors.DeleteByMateri(ctx, materiID)
}

// ReindexAll rebuilds the index for every stored material. Returns the
// number of materials indexed; a failing material is logged and skipped.
func (ix *Indexer) ReindexAll(ctx context.Context) (int, error) {
	list, err := ix.store.ListMateri(ctx, "")
	if err != nil {
		return 0, err
	}
	indexed := 0
	for i := range list {
		if err := ix.IndexMateri(ctx, &list[i]); err != nil {
			log.Warn().Str("materi", list[i].ID).Err(err).Msg("Reindex failed for materi")
			continue
		}
		indexed++
	}
	return indexed, nil
}

// Search embeds the query and returns the topK nearest chunks.
func (ix *Indexer) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	vectors, err := ix.driver.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding driver returned no vector")
	}
	return ix.vectors.Search(ctx, vectors[0], topK)
}
