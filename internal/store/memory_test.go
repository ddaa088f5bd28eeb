package store_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/pkg/models"
)

// newTestStore creates a fresh in-memory store for tests with its own
// snapshot directory.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dir := t.TempDir()
	os.Setenv("AKADEMIX_DATA_DIR", dir)
	defer os.Unsetenv("AKADEMIX_DATA_DIR")
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

// ─── Jurusan CRUD ────────────────────────────────────────────

func TestCreateAndGetJurusan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := &models.Jurusan{ID: "j1", Nama: "Informatika", Deskripsi: "Computing"}
	if err := s.CreateJurusan(ctx, j); err != nil {
		t.Fatalf("CreateJurusan() error = %v", err)
	}

	got, err := s.GetJurusan(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJurusan() error = %v", err)
	}
	if got.Nama != "Informatika" {
		t.Errorf("GetJurusan().Nama = %q, want %q", got.Nama, "Informatika")
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("GetJurusan().CreatedAt is zero, want set on create")
	}
}

func TestCreateJurusan_DuplicateNama(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Informatika"}); err != nil {
		t.Fatalf("CreateJurusan() first call error = %v", err)
	}
	err := s.CreateJurusan(ctx, &models.Jurusan{ID: "j2", Nama: "informatika"})
	var conflict *store.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("CreateJurusan() duplicate nama error = %v, want ErrConflict", err)
	}
}

func TestFindJurusanByNama(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Teknik Elektro"})

	got, err := s.FindJurusanByNama(ctx, "teknik elektro")
	if err != nil {
		t.Fatalf("FindJurusanByNama() error = %v", err)
	}
	if got.ID != "j1" {
		t.Errorf("FindJurusanByNama().ID = %q, want %q", got.ID, "j1")
	}

	if _, err := s.FindJurusanByNama(ctx, "nope"); err == nil {
		t.Errorf("FindJurusanByNama() unknown nama error = nil, want ErrNotFound")
	}
}

func TestDeleteJurusan_BlockedByProdi(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Informatika"})
	s.CreateProdi(ctx, &models.Prodi{ID: "p1", Nama: "Teknik Informatika", Jenjang: models.JenjangS1, JurusanID: "j1"})

	err := s.DeleteJurusan(ctx, "j1")
	var conflict *store.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("DeleteJurusan() with prodi error = %v, want ErrConflict", err)
	}

	if err := s.DeleteProdi(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProdi() error = %v", err)
	}
	if err := s.DeleteJurusan(ctx, "j1"); err != nil {
		t.Errorf("DeleteJurusan() after prodi removal error = %v", err)
	}
}

// ─── Prodi ───────────────────────────────────────────────────

func TestCreateProdi_RequiresJurusan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.CreateProdi(ctx, &models.Prodi{ID: "p1", Nama: "Orphan", Jenjang: models.JenjangS1, JurusanID: "missing"})
	if err == nil {
		t.Fatalf("CreateProdi() with missing jurusan error = nil, want error")
	}
}

func TestListProdi_FilterByJurusan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Informatika"})
	s.CreateJurusan(ctx, &models.Jurusan{ID: "j2", Nama: "Elektro"})
	s.CreateProdi(ctx, &models.Prodi{ID: "p1", Nama: "TI", Jenjang: models.JenjangS1, JurusanID: "j1"})
	s.CreateProdi(ctx, &models.Prodi{ID: "p2", Nama: "SI", Jenjang: models.JenjangS1, JurusanID: "j1"})
	s.CreateProdi(ctx, &models.Prodi{ID: "p3", Nama: "TE", Jenjang: models.JenjangS1, JurusanID: "j2"})

	list, err := s.ListProdi(ctx, "j1")
	if err != nil {
		t.Fatalf("ListProdi() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("ListProdi(j1) returned %d, want 2", len(list))
	}

	all, _ := s.ListProdi(ctx, "")
	if len(all) != 3 {
		t.Errorf("ListProdi(\"\") returned %d, want 3", len(all))
	}
}

// ─── Matkul ──────────────────────────────────────────────────

func TestMatkulCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Informatika"})
	s.CreateProdi(ctx, &models.Prodi{ID: "p1", Nama: "TI", Jenjang: models.JenjangS1, JurusanID: "j1"})

	mk := &models.Matkul{ID: "m1", Kode: "IF-2101", Nama: "Algoritma", SKS: 3, Semester: 2, ProdiID: "p1"}
	if err := s.CreateMatkul(ctx, mk); err != nil {
		t.Fatalf("CreateMatkul() error = %v", err)
	}

	// Duplicate kode rejected
	err := s.CreateMatkul(ctx, &models.Matkul{ID: "m2", Kode: "if-2101", Nama: "Dup", SKS: 2, ProdiID: "p1"})
	var conflict *store.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("CreateMatkul() duplicate kode error = %v, want ErrConflict", err)
	}

	got, err := s.FindMatkulByKode(ctx, "IF-2101")
	if err != nil {
		t.Fatalf("FindMatkulByKode() error = %v", err)
	}
	if got.Nama != "Algoritma" {
		t.Errorf("FindMatkulByKode().Nama = %q, want %q", got.Nama, "Algoritma")
	}

	got.SKS = 4
	if err := s.UpdateMatkul(ctx, got); err != nil {
		t.Fatalf("UpdateMatkul() error = %v", err)
	}
	after, _ := s.GetMatkul(ctx, "m1")
	if after.SKS != 4 {
		t.Errorf("After update, SKS = %d, want 4", after.SKS)
	}
}

func TestDeleteMatkul_BlockedByMateri(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Informatika"})
	s.CreateProdi(ctx, &models.Prodi{ID: "p1", Nama: "TI", Jenjang: models.JenjangS1, JurusanID: "j1"})
	s.CreateMatkul(ctx, &models.Matkul{ID: "m1", Kode: "IF-2101", Nama: "Algoritma", SKS: 3, ProdiID: "p1"})
	s.CreateMateri(ctx, &models.Materi{ID: "t1", Judul: "Pertemuan 1", MatkulID: "m1"})

	if err := s.DeleteMatkul(ctx, "m1"); err == nil {
		t.Fatalf("DeleteMatkul() with materi error = nil, want ErrConflict")
	}
}

// ─── Users ───────────────────────────────────────────────────

func TestUserCRUD_UniqueEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{ID: "u1", Nama: "Budi", Email: "budi@kampus.ac.id", Role: models.RoleAdmin}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	err := s.CreateUser(ctx, &models.User{ID: "u2", Nama: "Budi 2", Email: "BUDI@kampus.ac.id", Role: models.RoleDosen})
	var conflict *store.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("CreateUser() duplicate email error = %v, want ErrConflict", err)
	}

	got, err := s.FindUserByEmail(ctx, "budi@kampus.ac.id")
	if err != nil {
		t.Fatalf("FindUserByEmail() error = %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("FindUserByEmail().ID = %q, want %q", got.ID, "u1")
	}
}

// ─── Providers ───────────────────────────────────────────────

func TestProviderCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.ModelProvider{Name: "gemini", Kind: models.ProviderGemini, Model: "gemini-2.0-flash", IsDefault: true}
	if err := s.UpsertProvider(ctx, p); err != nil {
		t.Fatalf("UpsertProvider() error = %v", err)
	}

	got, err := s.GetProvider(ctx, "gemini")
	if err != nil {
		t.Fatalf("GetProvider() error = %v", err)
	}
	if !got.IsDefault {
		t.Errorf("GetProvider().IsDefault = false, want true")
	}

	// Upsert replaces
	p2 := &models.ModelProvider{Name: "gemini", Kind: models.ProviderGemini, Model: "gemini-2.5-pro"}
	s.UpsertProvider(ctx, p2)
	got, _ = s.GetProvider(ctx, "gemini")
	if got.Model != "gemini-2.5-pro" {
		t.Errorf("After upsert, Model = %q, want %q", got.Model, "gemini-2.5-pro")
	}

	if err := s.DeleteProvider(ctx, "gemini"); err != nil {
		t.Fatalf("DeleteProvider() error = %v", err)
	}
	if _, err := s.GetProvider(ctx, "gemini"); err == nil {
		t.Errorf("GetProvider() after delete error = nil, want ErrNotFound")
	}
}

// ─── Sessions ────────────────────────────────────────────────

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.Session{ID: "s1"}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	sess.Messages = append(sess.Messages, models.Message{Role: "user", Content: "halo"})
	if err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if len(got.Messages) != 1 {
		t.Errorf("GetSession() has %d messages, want 1", len(got.Messages))
	}

	if err := s.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := s.GetSession(ctx, "s1"); err == nil {
		t.Errorf("GetSession() after delete error = nil, want ErrNotFound")
	}
}

func TestClaimPending_ClaimsExactlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.Session{
		ID: "s1",
		Pending: &models.PendingActionSet{
			Prompt: "About to delete 1 action.",
			Calls:  []models.ToolCall{{Name: "deleteJurusan", Args: map[string]any{"id": "j1"}}},
		},
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	pending, err := s.ClaimPending(ctx, "s1")
	if err != nil {
		t.Fatalf("ClaimPending() error = %v", err)
	}
	if len(pending.Calls) != 1 || pending.Calls[0].Name != "deleteJurusan" {
		t.Errorf("ClaimPending() = %+v, want the held calls", pending)
	}

	if _, err := s.ClaimPending(ctx, "s1"); err == nil {
		t.Errorf("second ClaimPending() error = nil, want ErrNotFound")
	}
	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Pending != nil {
		t.Errorf("GetSession().Pending = %+v after claim, want nil", got.Pending)
	}
}

// ─── Persistence ─────────────────────────────────────────────

func TestSnapshotSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("AKADEMIX_DATA_DIR", dir)
	defer os.Unsetenv("AKADEMIX_DATA_DIR")
	ctx := context.Background()

	s1 := store.NewMemoryStore()
	s1.CreateJurusan(ctx, &models.Jurusan{ID: "j1", Nama: "Informatika"})
	s1.CreateSession(ctx, &models.Session{ID: "s1"})
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s2 := store.NewMemoryStore()
	t.Cleanup(func() { s2.Close() })

	if _, err := s2.GetJurusan(ctx, "j1"); err != nil {
		t.Errorf("GetJurusan() after restart error = %v, want record restored", err)
	}
	// Sessions are volatile and must not survive a restart.
	if _, err := s2.GetSession(ctx, "s1"); err == nil {
		t.Errorf("GetSession() after restart error = nil, want ErrNotFound")
	}
}
