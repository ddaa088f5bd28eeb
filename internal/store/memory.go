// Package store — in-memory Store implementation.
// Entity and provider data is persisted via debounced JSON snapshots so it
// survives restarts. Sessions are deliberately volatile and TTL-evicted.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akademix/akademix/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultSessionTTL is how long an idle conversation session is kept.
const DefaultSessionTTL = 12 * time.Hour

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Jurusan   map[string]*models.Jurusan       `json:"jurusan"`
	Prodi     map[string]*models.Prodi         `json:"prodi"`
	Matkul    map[string]*models.Matkul        `json:"matkul"`
	Materi    map[string]*models.Materi        `json:"materi"`
	Users     map[string]*models.User          `json:"users"`
	Providers map[string]*models.ModelProvider `json:"providers"`
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu        sync.RWMutex
	jurusan   map[string]*models.Jurusan       // key: id
	prodi     map[string]*models.Prodi         // key: id
	matkul    map[string]*models.Matkul        // key: id
	materi    map[string]*models.Materi        // key: id
	users     map[string]*models.User          // key: id
	providers map[string]*models.ModelProvider // key: name
	sessions  map[string]*models.Session       // key: id, never snapshotted

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals background goroutines to stop
	closeOnce    sync.Once

	sessionTTL time.Duration
}

// NewMemoryStore creates a new in-memory store.
// If AKADEMIX_DATA_DIR is set, data is persisted to a JSON file in that
// directory; otherwise it defaults to ~/.akademix/data.json.
func NewMemoryStore() *MemoryStore {
	sessionTTL := DefaultSessionTTL
	if ttlStr := os.Getenv("AKADEMIX_SESSION_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			sessionTTL = parsed
		} else {
			log.Warn().Str("value", ttlStr).Msg("Invalid AKADEMIX_SESSION_TTL, using default 12h")
		}
	}

	m := &MemoryStore{
		jurusan:    make(map[string]*models.Jurusan),
		prodi:      make(map[string]*models.Prodi),
		matkul:     make(map[string]*models.Matkul),
		materi:     make(map[string]*models.Materi),
		users:      make(map[string]*models.User),
		providers:  make(map[string]*models.ModelProvider),
		sessions:   make(map[string]*models.Session),
		saveCh:     make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
		sessionTTL: sessionTTL,
	}

	dataDir := os.Getenv("AKADEMIX_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			dataDir = filepath.Join(home, ".akademix")
		}
	}
	if dataDir != "" {
		m.snapshotPath = filepath.Join(dataDir, "data.json")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
			m.snapshotPath = ""
		}
	}

	if m.snapshotPath != "" {
		m.loadSnapshot()
		go m.saveLoop()
	}

	go m.sessionEvictionLoop()

	log.Info().
		Str("session_ttl", sessionTTL.String()).
		Str("snapshot", m.snapshotPath).
		Msg("Memory store configured")

	return m
}

// requestSave signals the background goroutine to persist data.
// Non-blocking: coalesces multiple rapid writes into one disk flush.
func (m *MemoryStore) requestSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
		// Already pending
	}
}

// saveLoop runs in a goroutine, debouncing save requests.
func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			time.Sleep(500 * time.Millisecond) // debounce
			m.saveSnapshot()
		}
	}
}

// sessionEvictionLoop periodically removes sessions idle longer than the TTL.
func (m *MemoryStore) sessionEvictionLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.doneCh:
			return
		case <-ticker.C:
			m.evictExpiredSessions()
		}
	}
}

func (m *MemoryStore) evictExpiredSessions() {
	cutoff := time.Now().Add(-m.sessionTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		last := s.UpdatedAt
		if last.IsZero() {
			last = s.CreatedAt
		}
		if last.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("Expired sessions removed")
	}
}

func (m *MemoryStore) saveSnapshot() {
	m.mu.RLock()
	snap := snapshot{
		Jurusan:   m.jurusan,
		Prodi:     m.prodi,
		Matkul:    m.matkul,
		Materi:    m.materi,
		Users:     m.users,
		Providers: m.providers,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal snapshot")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Error().Err(err).Msg("Failed to write snapshot")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Error().Err(err).Msg("Failed to replace snapshot")
	}
}

func (m *MemoryStore) loadSnapshot() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Cannot read snapshot")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("Corrupt snapshot, starting empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.Jurusan != nil {
		m.jurusan = snap.Jurusan
	}
	if snap.Prodi != nil {
		m.prodi = snap.Prodi
	}
	if snap.Matkul != nil {
		m.matkul = snap.Matkul
	}
	if snap.Materi != nil {
		m.materi = snap.Materi
	}
	if snap.Users != nil {
		m.users = snap.Users
	}
	if snap.Providers != nil {
		m.providers = snap.Providers
	}
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close flushes a final snapshot and stops background goroutines.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.doneCh)
		if m.snapshotPath != "" {
			m.saveSnapshot()
		}
	})
	return nil
}

// ── Jurusan ─────────────────────────────────────────────────

func (m *MemoryStore) ListJurusan(_ context.Context) ([]models.Jurusan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Jurusan, 0, len(m.jurusan))
	for _, j := range m.jurusan {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Nama < out[k].Nama })
	return out, nil
}

func (m *MemoryStore) GetJurusan(_ context.Context, id string) (*models.Jurusan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jurusan[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "jurusan", Key: id}
	}
	cp := *j
	return &cp, nil
}

func (m *MemoryStore) FindJurusanByNama(_ context.Context, nama string) (*models.Jurusan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, j := range m.jurusan {
		if strings.EqualFold(j.Nama, nama) {
			cp := *j
			return &cp, nil
		}
	}
	return nil, &ErrNotFound{Entity: "jurusan", Key: nama}
}

func (m *MemoryStore) CreateJurusan(_ context.Context, j *models.Jurusan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.jurusan {
		if strings.EqualFold(existing.Nama, j.Nama) {
			return &ErrConflict{Entity: "jurusan", Reason: "nama already exists: " + j.Nama}
		}
	}
	cp := *j
	stampNew(&cp.CreatedAt, &cp.UpdatedAt)
	m.jurusan[j.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateJurusan(_ context.Context, j *models.Jurusan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jurusan[j.ID]; !ok {
		return &ErrNotFound{Entity: "jurusan", Key: j.ID}
	}
	for id, existing := range m.jurusan {
		if id != j.ID && strings.EqualFold(existing.Nama, j.Nama) {
			return &ErrConflict{Entity: "jurusan", Reason: "nama already exists: " + j.Nama}
		}
	}
	cp := *j
	cp.UpdatedAt = time.Now().UTC()
	m.jurusan[j.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteJurusan(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jurusan[id]; !ok {
		return &ErrNotFound{Entity: "jurusan", Key: id}
	}
	for _, p := range m.prodi {
		if p.JurusanID == id {
			return &ErrConflict{Entity: "jurusan", Reason: "still referenced by prodi " + p.Nama}
		}
	}
	delete(m.jurusan, id)
	m.requestSave()
	return nil
}

// ── Prodi ───────────────────────────────────────────────────

func (m *MemoryStore) ListProdi(_ context.Context, jurusanID string) ([]models.Prodi, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Prodi
	for _, p := range m.prodi {
		if jurusanID != "" && p.JurusanID != jurusanID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Nama < out[k].Nama })
	return out, nil
}

func (m *MemoryStore) GetProdi(_ context.Context, id string) (*models.Prodi, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prodi[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "prodi", Key: id}
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) CreateProdi(_ context.Context, p *models.Prodi) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jurusan[p.JurusanID]; !ok {
		return &ErrConflict{Entity: "prodi", Reason: "unknown jurusan_id: " + p.JurusanID}
	}
	for _, existing := range m.prodi {
		if strings.EqualFold(existing.Nama, p.Nama) && existing.JurusanID == p.JurusanID {
			return &ErrConflict{Entity: "prodi", Reason: "nama already exists in jurusan: " + p.Nama}
		}
	}
	cp := *p
	stampNew(&cp.CreatedAt, &cp.UpdatedAt)
	m.prodi[p.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateProdi(_ context.Context, p *models.Prodi) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.prodi[p.ID]; !ok {
		return &ErrNotFound{Entity: "prodi", Key: p.ID}
	}
	if _, ok := m.jurusan[p.JurusanID]; !ok {
		return &ErrConflict{Entity: "prodi", Reason: "unknown jurusan_id: " + p.JurusanID}
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	m.prodi[p.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteProdi(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.prodi[id]; !ok {
		return &ErrNotFound{Entity: "prodi", Key: id}
	}
	for _, mk := range m.matkul {
		if mk.ProdiID == id {
			return &ErrConflict{Entity: "prodi", Reason: "still referenced by matkul " + mk.Nama}
		}
	}
	delete(m.prodi, id)
	m.requestSave()
	return nil
}

// ── Matkul ──────────────────────────────────────────────────

func (m *MemoryStore) ListMatkul(_ context.Context, prodiID string) ([]models.Matkul, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Matkul
	for _, mk := range m.matkul {
		if prodiID != "" && mk.ProdiID != prodiID {
			continue
		}
		out = append(out, *mk)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Kode < out[k].Kode })
	return out, nil
}

func (m *MemoryStore) GetMatkul(_ context.Context, id string) (*models.Matkul, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mk, ok := m.matkul[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "matkul", Key: id}
	}
	cp := *mk
	return &cp, nil
}

func (m *MemoryStore) FindMatkulByKode(_ context.Context, kode string) (*models.Matkul, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mk := range m.matkul {
		if strings.EqualFold(mk.Kode, kode) {
			cp := *mk
			return &cp, nil
		}
	}
	return nil, &ErrNotFound{Entity: "matkul", Key: kode}
}

func (m *MemoryStore) CreateMatkul(_ context.Context, mk *models.Matkul) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.prodi[mk.ProdiID]; !ok {
		return &ErrConflict{Entity: "matkul", Reason: "unknown prodi_id: " + mk.ProdiID}
	}
	for _, existing := range m.matkul {
		if strings.EqualFold(existing.Kode, mk.Kode) {
			return &ErrConflict{Entity: "matkul", Reason: "kode already exists: " + mk.Kode}
		}
	}
	cp := *mk
	stampNew(&cp.CreatedAt, &cp.UpdatedAt)
	m.matkul[mk.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateMatkul(_ context.Context, mk *models.Matkul) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.matkul[mk.ID]; !ok {
		return &ErrNotFound{Entity: "matkul", Key: mk.ID}
	}
	if _, ok := m.prodi[mk.ProdiID]; !ok {
		return &ErrConflict{Entity: "matkul", Reason: "unknown prodi_id: " + mk.ProdiID}
	}
	for id, existing := range m.matkul {
		if id != mk.ID && strings.EqualFold(existing.Kode, mk.Kode) {
			return &ErrConflict{Entity: "matkul", Reason: "kode already exists: " + mk.Kode}
		}
	}
	cp := *mk
	cp.UpdatedAt = time.Now().UTC()
	m.matkul[mk.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteMatkul(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.matkul[id]; !ok {
		return &ErrNotFound{Entity: "matkul", Key: id}
	}
	for _, mt := range m.materi {
		if mt.MatkulID == id {
			return &ErrConflict{Entity: "matkul", Reason: "still referenced by materi " + mt.Judul}
		}
	}
	delete(m.matkul, id)
	m.requestSave()
	return nil
}

// ── Materi ──────────────────────────────────────────────────

func (m *MemoryStore) ListMateri(_ context.Context, matkulID string) ([]models.Materi, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Materi
	for _, mt := range m.materi {
		if matkulID != "" && mt.MatkulID != matkulID {
			continue
		}
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Pertemuan != out[k].Pertemuan {
			return out[i].Pertemuan < out[k].Pertemuan
		}
		return out[i].Judul < out[k].Judul
	})
	return out, nil
}

func (m *MemoryStore) GetMateri(_ context.Context, id string) (*models.Materi, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.materi[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "materi", Key: id}
	}
	cp := *mt
	return &cp, nil
}

func (m *MemoryStore) CreateMateri(_ context.Context, mt *models.Materi) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.matkul[mt.MatkulID]; !ok {
		return &ErrConflict{Entity: "materi", Reason: "unknown matkul_id: " + mt.MatkulID}
	}
	cp := *mt
	stampNew(&cp.CreatedAt, &cp.UpdatedAt)
	m.materi[mt.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateMateri(_ context.Context, mt *models.Materi) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.materi[mt.ID]; !ok {
		return &ErrNotFound{Entity: "materi", Key: mt.ID}
	}
	if _, ok := m.matkul[mt.MatkulID]; !ok {
		return &ErrConflict{Entity: "materi", Reason: "unknown matkul_id: " + mt.MatkulID}
	}
	cp := *mt
	cp.UpdatedAt = time.Now().UTC()
	m.materi[mt.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteMateri(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.materi[id]; !ok {
		return &ErrNotFound{Entity: "materi", Key: id}
	}
	delete(m.materi, id)
	m.requestSave()
	return nil
}

// ── Users ───────────────────────────────────────────────────

func (m *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Email < out[k].Email })
	return out, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "user", Key: id}
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &ErrNotFound{Entity: "user", Key: email}
}

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return &ErrConflict{Entity: "user", Reason: "email already exists: " + u.Email}
		}
	}
	cp := *u
	stampNew(&cp.CreatedAt, &cp.UpdatedAt)
	m.users[u.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return &ErrNotFound{Entity: "user", Key: u.ID}
	}
	for id, existing := range m.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return &ErrConflict{Entity: "user", Reason: "email already exists: " + u.Email}
		}
	}
	cp := *u
	cp.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return &ErrNotFound{Entity: "user", Key: id}
	}
	delete(m.users, id)
	m.requestSave()
	return nil
}

// ── Providers ───────────────────────────────────────────────

func (m *MemoryStore) ListProviders(_ context.Context) ([]models.ModelProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ModelProvider, 0, len(m.providers))
	for _, p := range m.providers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, nil
}

func (m *MemoryStore) GetProvider(_ context.Context, name string) (*models.ModelProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[name]
	if !ok {
		return nil, &ErrNotFound{Entity: "provider", Key: name}
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpsertProvider(_ context.Context, p *models.ModelProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.providers[p.Name] = &cp
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteProvider(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[name]; !ok {
		return &ErrNotFound{Entity: "provider", Key: name}
	}
	delete(m.providers, name)
	m.requestSave()
	return nil
}

// stampNew sets create/update timestamps on a fresh record, keeping a
// caller-provided CreatedAt when present.
func stampNew(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = now
	}
}

// ── Sessions ────────────────────────────────────────────────

func (m *MemoryStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "session", Key: id}
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return &ErrConflict{Entity: "session", Reason: "already exists: " + s.ID}
	}
	cp := *s
	stampNew(&cp.CreatedAt, &cp.UpdatedAt)
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; !exists {
		return &ErrNotFound{Entity: "session", Key: s.ID}
	}
	cp := *s
	cp.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryStore) ClaimPending(_ context.Context, id string) (*models.PendingActionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "session", Key: id}
	}
	if s.Pending == nil || len(s.Pending.Calls) == 0 {
		return nil, &ErrNotFound{Entity: "pending confirmation", Key: id}
	}
	pending := s.Pending
	s.Pending = nil
	s.UpdatedAt = time.Now().UTC()
	return pending, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return &ErrNotFound{Entity: "session", Key: id}
	}
	delete(m.sessions, id)
	return nil
}
