// Package handlers implements the HTTP handlers for the Akademix console:
// entity CRUD, the conversational assistant endpoint, materi search and
// reindexing, and model provider management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/akademix/akademix/internal/conversation"
	"github.com/akademix/akademix/internal/ingest"
	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store   store.Store
	Chat    *conversation.Service
	Indexer *ingest.Indexer
}

// New creates a Handlers instance.
func New(s store.Store, chat *conversation.Service, indexer *ingest.Indexer) *Handlers {
	return &Handlers{Store: s, Chat: chat, Indexer: indexer}
}

// ── Chat ─────────────────────────────────────────────────────

// HandleChat runs one assistant turn and returns the response envelope.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req conversation.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID, env := h.Chat.HandleTurn(r.Context(), req)
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"envelope":   env,
	})
}

// GetSession returns a session's message history.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.GetSession(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// DeleteSession discards a session and any pending confirmation with it.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteSession(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Jurusan ──────────────────────────────────────────────────

func (h *Handlers) ListJurusan(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListJurusan(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []models.Jurusan{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetJurusan(w http.ResponseWriter, r *http.Request) {
	j, err := h.Store.GetJurusan(r.Context(), chi.URLParam(r, "jurusanId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, j)
}

func (h *Handlers) CreateJurusan(w http.ResponseWriter, r *http.Request) {
	var j models.Jurusan
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if j.Nama == "" {
		respondError(w, http.StatusBadRequest, "nama is required")
		return
	}
	j.ID = uuid.NewString()
	if err := h.Store.CreateJurusan(r.Context(), &j); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, j)
}

func (h *Handlers) UpdateJurusan(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetJurusan(r.Context(), chi.URLParam(r, "jurusanId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var patch models.Jurusan
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Nama != "" {
		existing.Nama = patch.Nama
	}
	if patch.Deskripsi != "" {
		existing.Deskripsi = patch.Deskripsi
	}
	if err := h.Store.UpdateJurusan(r.Context(), existing); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handlers) DeleteJurusan(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteJurusan(r.Context(), chi.URLParam(r, "jurusanId")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Prodi ────────────────────────────────────────────────────

func (h *Handlers) ListProdi(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListProdi(r.Context(), r.URL.Query().Get("jurusan_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []models.Prodi{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetProdi(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProdi(r.Context(), chi.URLParam(r, "prodiId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProdi(w http.ResponseWriter, r *http.Request) {
	var p models.Prodi
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Nama == "" || p.JurusanID == "" {
		respondError(w, http.StatusBadRequest, "nama and jurusan_id are required")
		return
	}
	if !models.ValidJenjang(string(p.Jenjang)) {
		respondError(w, http.StatusBadRequest, "jenjang must be one of D3, S1, S2, S3")
		return
	}
	p.ID = uuid.NewString()
	if err := h.Store.CreateProdi(r.Context(), &p); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProdi(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetProdi(r.Context(), chi.URLParam(r, "prodiId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var patch models.Prodi
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Nama != "" {
		existing.Nama = patch.Nama
	}
	if patch.Jenjang != "" {
		if !models.ValidJenjang(string(patch.Jenjang)) {
			respondError(w, http.StatusBadRequest, "jenjang must be one of D3, S1, S2, S3")
			return
		}
		existing.Jenjang = patch.Jenjang
	}
	if patch.JurusanID != "" {
		existing.JurusanID = patch.JurusanID
	}
	if err := h.Store.UpdateProdi(r.Context(), existing); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handlers) DeleteProdi(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProdi(r.Context(), chi.URLParam(r, "prodiId")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Matkul ───────────────────────────────────────────────────

func (h *Handlers) ListMatkul(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListMatkul(r.Context(), r.URL.Query().Get("prodi_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []models.Matkul{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetMatkul(w http.ResponseWriter, r *http.Request) {
	m, err := h.Store.GetMatkul(r.Context(), chi.URLParam(r, "matkulId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handlers) CreateMatkul(w http.ResponseWriter, r *http.Request) {
	var m models.Matkul
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Kode == "" || m.Nama == "" || m.ProdiID == "" {
		respondError(w, http.StatusBadRequest, "kode, nama and prodi_id are required")
		return
	}
	m.ID = uuid.NewString()
	if err := h.Store.CreateMatkul(r.Context(), &m); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handlers) UpdateMatkul(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetMatkul(r.Context(), chi.URLParam(r, "matkulId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var patch models.Matkul
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Kode != "" {
		existing.Kode = patch.Kode
	}
	if patch.Nama != "" {
		existing.Nama = patch.Nama
	}
	if patch.SKS != 0 {
		existing.SKS = patch.SKS
	}
	if patch.Semester != 0 {
		existing.Semester = patch.Semester
	}
	if patch.ProdiID != "" {
		existing.ProdiID = patch.ProdiID
	}
	if err := h.Store.UpdateMatkul(r.Context(), existing); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handlers) DeleteMatkul(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteMatkul(r.Context(), chi.URLParam(r, "matkulId")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Materi ───────────────────────────────────────────────────

func (h *Handlers) ListMateri(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListMateri(r.Context(), r.URL.Query().Get("matkul_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []models.Materi{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetMateri(w http.ResponseWriter, r *http.Request) {
	m, err := h.Store.GetMateri(r.Context(), chi.URLParam(r, "materiId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handlers) CreateMateri(w http.ResponseWriter, r *http.Request) {
	var m models.Materi
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.Judul == "" || m.MatkulID == "" {
		respondError(w, http.StatusBadRequest, "judul and matkul_id are required")
		return
	}
	m.ID = uuid.NewString()
	if err := h.Store.CreateMateri(r.Context(), &m); err != nil {
		respondStoreError(w, err)
		return
	}
	h.indexMateri(r, &m)
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handlers) UpdateMateri(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetMateri(r.Context(), chi.URLParam(r, "materiId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var patch models.Materi
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Judul != "" {
		existing.Judul = patch.Judul
	}
	if patch.MatkulID != "" {
		existing.MatkulID = patch.MatkulID
	}
	if patch.Pertemuan != 0 {
		existing.Pertemuan = patch.Pertemuan
	}
	if patch.Konten != "" {
		existing.Konten = patch.Konten
	}
	if patch.URL != "" {
		existing.URL = patch.URL
	}
	if patch.Lampiran != nil {
		existing.Lampiran = patch.Lampiran
	}
	if err := h.Store.UpdateMateri(r.Context(), existing); err != nil {
		respondStoreError(w, err)
		return
	}
	h.indexMateri(r, existing)
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handlers) DeleteMateri(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "materiId")
	if err := h.Store.DeleteMateri(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}
	if h.Indexer != nil {
		if err := h.Indexer.RemoveMateri(r.Context(), id); err != nil {
			log.Warn().Str("materi", id).Err(err).Msg("Index cleanup failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReindexMateri rebuilds the whole materi vector index.
func (h *Handlers) ReindexMateri(w http.ResponseWriter, r *http.Request) {
	if h.Indexer == nil {
		respondError(w, http.StatusServiceUnavailable, "semantic search is not configured")
		return
	}
	indexed, err := h.Indexer.ReindexAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"indexed": indexed})
}

// SearchMateri answers a semantic query over indexed materi content.
func (h *Handlers) SearchMateri(w http.ResponseWriter, r *http.Request) {
	if h.Indexer == nil {
		respondError(w, http.StatusServiceUnavailable, "semantic search is not configured")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	topK := 5
	if v := r.URL.Query().Get("top_k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}
	results, err := h.Indexer.Search(r.Context(), query, topK)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

// indexMateri updates the vector index after a materi write. Index
// failures are logged, not surfaced; the record write already succeeded.
func (h *Handlers) indexMateri(r *http.Request, m *models.Materi) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.IndexMateri(r.Context(), m); err != nil {
		log.Warn().Str("materi", m.ID).Err(err).Msg("Materi indexing failed")
	}
}

// ── Users ────────────────────────────────────────────────────

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []models.User{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if u.Nama == "" || u.Email == "" {
		respondError(w, http.StatusBadRequest, "nama and email are required")
		return
	}
	if !models.ValidRole(string(u.Role)) {
		respondError(w, http.StatusBadRequest, "role must be one of admin, dosen, mahasiswa")
		return
	}
	u.ID = uuid.NewString()
	if err := h.Store.CreateUser(r.Context(), &u); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	existing, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	var patch models.User
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Nama != "" {
		existing.Nama = patch.Nama
	}
	if patch.Email != "" {
		existing.Email = patch.Email
	}
	if patch.Role != "" {
		if !models.ValidRole(string(patch.Role)) {
			respondError(w, http.StatusBadRequest, "role must be one of admin, dosen, mahasiswa")
			return
		}
		existing.Role = patch.Role
	}
	if err := h.Store.UpdateUser(r.Context(), existing); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteUser(r.Context(), chi.URLParam(r, "userId")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Model Providers ──────────────────────────────────────────

func (h *Handlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListProviders(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	masked := make([]models.ModelProvider, 0, len(list))
	for i := range list {
		masked = append(masked, *maskProviderKeys(&list[i]))
	}
	respondJSON(w, http.StatusOK, masked)
}

func (h *Handlers) UpsertProvider(w http.ResponseWriter, r *http.Request) {
	var p models.ModelProvider
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p.Kind != models.ProviderGemini && p.Kind != models.ProviderOllama {
		respondError(w, http.StatusBadRequest, "kind must be gemini or ollama")
		return
	}
	if err := h.Store.UpsertProvider(r.Context(), &p); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, maskProviderKeys(&p))
}

func (h *Handlers) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProvider(r.Context(), chi.URLParam(r, "providerName")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondStoreError(w http.ResponseWriter, err error) {
	var nf *store.ErrNotFound
	var conflict *store.ErrConflict
	switch {
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// maskProviderKeys redacts sensitive config fields before returning a
// provider to API consumers.
func maskProviderKeys(p *models.ModelProvider) *models.ModelProvider {
	if p.Config == nil {
		return p
	}
	cp := *p
	cp.Config = make(map[string]any, len(p.Config))
	for k, v := range p.Config {
		if k == "api_key" || k == "api_secret" {
			cp.Config[k] = "********"
			continue
		}
		cp.Config[k] = v
	}
	return &cp
}
