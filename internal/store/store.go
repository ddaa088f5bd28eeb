// Package store provides the storage interface and implementations for the
// Akademix console. The conversation core treats this as an opaque data
// capability; handlers and the dispatcher both depend on the interface.
package store

import (
	"context"

	"github.com/akademix/akademix/pkg/models"
)

// Store is the primary storage interface for the console.
type Store interface {
	JurusanStore
	ProdiStore
	MatkulStore
	MateriStore
	UserStore
	ProviderStore
	SessionStore

	// Ping checks if the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Jurusan (department) ────────────────────────────────────

type JurusanStore interface {
	ListJurusan(ctx context.Context) ([]models.Jurusan, error)
	GetJurusan(ctx context.Context, id string) (*models.Jurusan, error)
	FindJurusanByNama(ctx context.Context, nama string) (*models.Jurusan, error)
	CreateJurusan(ctx context.Context, j *models.Jurusan) error
	UpdateJurusan(ctx context.Context, j *models.Jurusan) error
	DeleteJurusan(ctx context.Context, id string) error
}

// ── Prodi (study program) ───────────────────────────────────

type ProdiStore interface {
	ListProdi(ctx context.Context, jurusanID string) ([]models.Prodi, error)
	GetProdi(ctx context.Context, id string) (*models.Prodi, error)
	CreateProdi(ctx context.Context, p *models.Prodi) error
	UpdateProdi(ctx context.Context, p *models.Prodi) error
	DeleteProdi(ctx context.Context, id string) error
}

// ── Matkul (course) ─────────────────────────────────────────

type MatkulStore interface {
	ListMatkul(ctx context.Context, prodiID string) ([]models.Matkul, error)
	GetMatkul(ctx context.Context, id string) (*models.Matkul, error)
	FindMatkulByKode(ctx context.Context, kode string) (*models.Matkul, error)
	CreateMatkul(ctx context.Context, m *models.Matkul) error
	UpdateMatkul(ctx context.Context, m *models.Matkul) error
	DeleteMatkul(ctx context.Context, id string) error
}

// ── Materi (teaching material) ──────────────────────────────

type MateriStore interface {
	ListMateri(ctx context.Context, matkulID string) ([]models.Materi, error)
	GetMateri(ctx context.Context, id string) (*models.Materi, error)
	CreateMateri(ctx context.Context, m *models.Materi) error
	UpdateMateri(ctx context.Context, m *models.Materi) error
	DeleteMateri(ctx context.Context, id string) error
}

// ── Users ───────────────────────────────────────────────────

type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ── Model Providers ─────────────────────────────────────────

type ProviderStore interface {
	ListProviders(ctx context.Context) ([]models.ModelProvider, error)
	GetProvider(ctx context.Context, name string) (*models.ModelProvider, error)
	UpsertProvider(ctx context.Context, p *models.ModelProvider) error
	DeleteProvider(ctx context.Context, name string) error
}

// ── Sessions ────────────────────────────────────────────────

// SessionStore manages multi-turn conversation sessions. Sessions are not
// snapshotted to disk — they live only as long as the process (and a TTL).
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	CreateSession(ctx context.Context, s *models.Session) error
	UpdateSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context, id string) error

	// ClaimPending atomically removes and returns the session's pending
	// action set. Exactly one caller wins; everyone else gets ErrNotFound.
	ClaimPending(ctx context.Context, id string) (*models.PendingActionSet, error)
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}

// ErrConflict is returned when a write violates a uniqueness or
// referential constraint.
type ErrConflict struct {
	Entity string
	Reason string
}

func (e *ErrConflict) Error() string {
	return e.Entity + ": " + e.Reason
}
