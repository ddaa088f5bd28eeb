// Package dataops executes validated tool calls against the store. The
// switch over action names is deliberately exhaustive and closed: the
// dispatcher validates against the registry first, so an unknown name
// reaching Perform is a programming error, reported as one.
package dataops

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/akademix/akademix/internal/store"
	"github.com/akademix/akademix/pkg/models"
)

// DataError wraps a storage-layer failure for one action.
type DataError struct {
	Action string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// Searcher answers semantic queries over embedded materi content.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error)
}

// Indexer keeps the materi vector index in sync with materi writes.
type Indexer interface {
	IndexMateri(ctx context.Context, m *models.Materi) error
	RemoveMateri(ctx context.Context, materiID string) error
}

// Result is the outcome of one performed action: a message for writes,
// a table for reads. Never both empty on success.
type Result struct {
	Message string
	Table   *models.Table
}

// Operations performs actions against the store. Searcher and indexer are
// optional; without a searcher, searchMateri reports that search is not
// configured, and without an indexer materi writes skip the vector index.
type Operations struct {
	store    store.Store
	searcher Searcher
	indexer  Indexer
}

// New creates the data operations executor.
func New(s store.Store, searcher Searcher, indexer Indexer) *Operations {
	return &Operations{store: s, searcher: searcher, indexer: indexer}
}

// syncIndex refreshes the vector index after a materi write. Index failures
// are logged, not surfaced: the record write already succeeded.
func (o *Operations) syncIndex(ctx context.Context, m *models.Materi) {
	if o.indexer == nil {
		return
	}
	if err := o.indexer.IndexMateri(ctx, m); err != nil {
		log.Warn().Err(err).Str("materi", m.ID).Msg("Failed to index materi")
	}
}

// Perform executes one validated tool call. Storage failures come back as
// *DataError; they never panic and never halt the process.
func (o *Operations) Perform(ctx context.Context, call models.ToolCall) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch call.Name {
	case "addJurusan":
		res, err = o.addJurusan(ctx, call.Args)
	case "showJurusan":
		res, err = o.showJurusan(ctx, call.Args)
	case "updateJurusan":
		res, err = o.updateJurusan(ctx, call.Args)
	case "deleteJurusan":
		res, err = o.deleteJurusan(ctx, call.Args)

	case "addProdi":
		res, err = o.addProdi(ctx, call.Args)
	case "showProdi":
		res, err = o.showProdi(ctx, call.Args)
	case "updateProdi":
		res, err = o.updateProdi(ctx, call.Args)
	case "deleteProdi":
		res, err = o.deleteProdi(ctx, call.Args)

	case "addMatkul":
		res, err = o.addMatkul(ctx, call.Args)
	case "showMatkul":
		res, err = o.showMatkul(ctx, call.Args)
	case "updateMatkul":
		res, err = o.updateMatkul(ctx, call.Args)
	case "deleteMatkul":
		res, err = o.deleteMatkul(ctx, call.Args)

	case "addMateri":
		res, err = o.addMateri(ctx, call.Args)
	case "showMateri":
		res, err = o.showMateri(ctx, call.Args)
	case "updateMateri":
		res, err = o.updateMateri(ctx, call.Args)
	case "deleteMateri":
		res, err = o.deleteMateri(ctx, call.Args)

	case "addUser":
		res, err = o.addUser(ctx, call.Args)
	case "showUsers":
		res, err = o.showUsers(ctx)
	case "updateUser":
		res, err = o.updateUser(ctx, call.Args)
	case "deleteUser":
		res, err = o.deleteUser(ctx, call.Args)

	case "searchMateri":
		res, err = o.searchMateri(ctx, call.Args)

	default:
		err = errors.New("not in the action catalog")
	}

	if err != nil {
		return nil, &DataError{Action: call.Name, Err: err}
	}
	return res, nil
}

// ── Jurusan ─────────────────────────────────────────────────

func (o *Operations) addJurusan(ctx context.Context, args map[string]any) (*Result, error) {
	j := &models.Jurusan{
		ID:        uuid.NewString(),
		Nama:      argString(args, "nama"),
		Deskripsi: argString(args, "deskripsi"),
	}
	if err := o.store.CreateJurusan(ctx, j); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Created department %q (id %s).", j.Nama, j.ID)}, nil
}

func (o *Operations) showJurusan(ctx context.Context, args map[string]any) (*Result, error) {
	if id := argString(args, "id"); id != "" {
		j, err := o.store.GetJurusan(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Result{Table: jurusanTable([]models.Jurusan{*j})}, nil
	}
	if nama := argString(args, "nama"); nama != "" {
		j, err := o.store.FindJurusanByNama(ctx, nama)
		if err != nil {
			return nil, err
		}
		return &Result{Table: jurusanTable([]models.Jurusan{*j})}, nil
	}
	list, err := o.store.ListJurusan(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Table: jurusanTable(list)}, nil
}

func (o *Operations) updateJurusan(ctx context.Context, args map[string]any) (*Result, error) {
	j, err := o.store.GetJurusan(ctx, argString(args, "id"))
	if err != nil {
		return nil, err
	}
	if v, ok := args["nama"].(string); ok {
		j.Nama = v
	}
	if v, ok := args["deskripsi"].(string); ok {
		j.Deskripsi = v
	}
	if err := o.store.UpdateJurusan(ctx, j); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Updated department %q.", j.Nama)}, nil
}

func (o *Operations) deleteJurusan(ctx context.Context, args map[string]any) (*Result, error) {
	id := argString(args, "id")
	if err := o.store.DeleteJurusan(ctx, id); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Deleted department %s.", id)}, nil
}

func jurusanTable(list []models.Jurusan) *models.Table {
	rows := make([]map[string]any, 0, len(list))
	for _, j := range list {
		rows = append(rows, map[string]any{
			"id":        j.ID,
			"nama":      j.Nama,
			"deskripsi": j.Deskripsi,
		})
	}
	return &models.Table{Title: "Departments", Rows: rows}
}

// ── Prodi ───────────────────────────────────────────────────

func (o *Operations) addProdi(ctx context.Context, args map[string]any) (*Result, error) {
	p := &models.Prodi{
		ID:        uuid.NewString(),
		Nama:      argString(args, "nama"),
		Jenjang:   models.Jenjang(argString(args, "jenjang")),
		JurusanID: argString(args, "jurusan_id"),
	}
	if err := o.store.CreateProdi(ctx, p); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Created study program %q (%s).", p.Nama, p.Jenjang)}, nil
}

func (o *Operations) showProdi(ctx context.Context, args map[string]any) (*Result, error) {
	list, err := o.store.ListProdi(ctx, argString(args, "jurusan_id"))
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(list))
	for _, p := range list {
		rows = append(rows, map[string]any{
			"id":         p.ID,
			"nama":       p.Nama,
			"jenjang":    string(p.Jenjang),
			"jurusan_id": p.JurusanID,
		})
	}
	return &Result{Table: &models.Table{Title: "Study programs", Rows: rows}}, nil
}

func (o *Operations) updateProdi(ctx context.Context, args map[string]any) (*Result, error) {
	p, err := o.store.GetProdi(ctx, argString(args, "id"))
	if err != nil {
		return nil, err
	}
	if v, ok := args["nama"].(string); ok {
		p.Nama = v
	}
	if v, ok := args["jenjang"].(string); ok {
		p.Jenjang = models.Jenjang(v)
	}
	if v, ok := args["jurusan_id"].(string); ok {
		p.JurusanID = v
	}
	if err := o.store.UpdateProdi(ctx, p); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Updated study program %q.", p.Nama)}, nil
}

func (o *Operations) deleteProdi(ctx context.Context, args map[string]any) (*Result, error) {
	id := argString(args, "id")
	if err := o.store.DeleteProdi(ctx, id); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Deleted study program %s.", id)}, nil
}

// ── Matkul ──────────────────────────────────────────────────

func (o *Operations) addMatkul(ctx context.Context, args map[string]any) (*Result, error) {
	m := &models.Matkul{
		ID:       uuid.NewString(),
		Kode:     argString(args, "kode"),
		Nama:     argString(args, "nama"),
		SKS:      argInt(args, "sks"),
		Semester: argInt(args, "semester"),
		ProdiID:  argString(args, "prodi_id"),
	}
	if err := o.store.CreateMatkul(ctx, m); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Created course %s %q (%d SKS).", m.Kode, m.Nama, m.SKS)}, nil
}

func (o *Operations) showMatkul(ctx context.Context, args map[string]any) (*Result, error) {
	if kode := argString(args, "kode"); kode != "" {
		m, err := o.store.FindMatkulByKode(ctx, kode)
		if err != nil {
			return nil, err
		}
		return &Result{Table: matkulTable([]models.Matkul{*m})}, nil
	}
	list, err := o.store.ListMatkul(ctx, argString(args, "prodi_id"))
	if err != nil {
		return nil, err
	}
	return &Result{Table: matkulTable(list)}, nil
}

func (o *Operations) updateMatkul(ctx context.Context, args map[string]any) (*Result, error) {
	m, err := o.store.GetMatkul(ctx, argString(args, "id"))
	if err != nil {
		return nil, err
	}
	if v, ok := args["kode"].(string); ok {
		m.Kode = v
	}
	if v, ok := args["nama"].(string); ok {
		m.Nama = v
	}
	if _, ok := args["sks"]; ok {
		m.SKS = argInt(args, "sks")
	}
	if _, ok := args["semester"]; ok {
		m.Semester = argInt(args, "semester")
	}
	if v, ok := args["prodi_id"].(string); ok {
		m.ProdiID = v
	}
	if err := o.store.UpdateMatkul(ctx, m); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Updated course %s.", m.Kode)}, nil
}

func (o *Operations) deleteMatkul(ctx context.Context, args map[string]any) (*Result, error) {
	id := argString(args, "id")
	if err := o.store.DeleteMatkul(ctx, id); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Deleted course %s.", id)}, nil
}

func matkulTable(list []models.Matkul) *models.Table {
	rows := make([]map[string]any, 0, len(list))
	for _, m := range list {
		rows = append(rows, map[string]any{
			"id":       m.ID,
			"kode":     m.Kode,
			"nama":     m.Nama,
			"sks":      m.SKS,
			"semester": m.Semester,
			"prodi_id": m.ProdiID,
		})
	}
	return &models.Table{Title: "Courses", Rows: rows}
}

// ── Materi ──────────────────────────────────────────────────

func (o *Operations) addMateri(ctx context.Context, args map[string]any) (*Result, error) {
	m := &models.Materi{
		ID:        uuid.NewString(),
		Judul:     argString(args, "judul"),
		MatkulID:  argString(args, "matkul_id"),
		Pertemuan: argInt(args, "pertemuan"),
		Konten:    argString(args, "konten"),
		URL:       argString(args, "url"),
		Lampiran:  argAttachments(args, "lampiran"),
	}
	if err := o.store.CreateMateri(ctx, m); err != nil {
		return nil, err
	}
	o.syncIndex(ctx, m)
	return &Result{Message: fmt.Sprintf("Created teaching material %q.", m.Judul)}, nil
}

func (o *Operations) showMateri(ctx context.Context, args map[string]any) (*Result, error) {
	list, err := o.store.ListMateri(ctx, argString(args, "matkul_id"))
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(list))
	for _, m := range list {
		rows = append(rows, map[string]any{
			"id":        m.ID,
			"judul":     m.Judul,
			"matkul_id": m.MatkulID,
			"pertemuan": m.Pertemuan,
			"url":       m.URL,
		})
	}
	return &Result{Table: &models.Table{Title: "Teaching materials", Rows: rows}}, nil
}

func (o *Operations) updateMateri(ctx context.Context, args map[string]any) (*Result, error) {
	m, err := o.store.GetMateri(ctx, argString(args, "id"))
	if err != nil {
		return nil, err
	}
	if v, ok := args["judul"].(string); ok {
		m.Judul = v
	}
	if v, ok := args["matkul_id"].(string); ok {
		m.MatkulID = v
	}
	if _, ok := args["pertemuan"]; ok {
		m.Pertemuan = argInt(args, "pertemuan")
	}
	if v, ok := args["konten"].(string); ok {
		m.Konten = v
	}
	if v, ok := args["url"].(string); ok {
		m.URL = v
	}
	if err := o.store.UpdateMateri(ctx, m); err != nil {
		return nil, err
	}
	o.syncIndex(ctx, m)
	return &Result{Message: fmt.Sprintf("Updated teaching material %q.", m.Judul)}, nil
}

func (o *Operations) deleteMateri(ctx context.Context, args map[string]any) (*Result, error) {
	id := argString(args, "id")
	if err := o.store.DeleteMateri(ctx, id); err != nil {
		return nil, err
	}
	if o.indexer != nil {
		if err := o.indexer.RemoveMateri(ctx, id); err != nil {
			log.Warn().Err(err).Str("materi", id).Msg("Failed to drop materi from index")
		}
	}
	return &Result{Message: fmt.Sprintf("Deleted teaching material %s.", id)}, nil
}

func (o *Operations) searchMateri(ctx context.Context, args map[string]any) (*Result, error) {
	if o.searcher == nil {
		return nil, errors.New("semantic search is not configured")
	}
	topK := argInt(args, "top_k")
	if topK <= 0 {
		topK = 5
	}
	hits, err := o.searcher.Search(ctx, argString(args, "query"), topK)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, map[string]any{
			"materi_id": h.Doc.MateriID,
			"judul":     h.Doc.Metadata["judul"],
			"snippet":   snippet(h.Doc.Content, 160),
			"score":     h.Score,
		})
	}
	return &Result{Table: &models.Table{Title: "Search results", Rows: rows}}, nil
}

// ── Users ───────────────────────────────────────────────────

func (o *Operations) addUser(ctx context.Context, args map[string]any) (*Result, error) {
	u := &models.User{
		ID:    uuid.NewString(),
		Nama:  argString(args, "nama"),
		Email: argString(args, "email"),
		Role:  models.UserRole(argString(args, "role")),
	}
	if err := o.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Created account %q (%s).", u.Nama, u.Role)}, nil
}

func (o *Operations) showUsers(ctx context.Context) (*Result, error) {
	list, err := o.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(list))
	for _, u := range list {
		rows = append(rows, map[string]any{
			"id":    u.ID,
			"nama":  u.Nama,
			"email": u.Email,
			"role":  string(u.Role),
		})
	}
	return &Result{Table: &models.Table{Title: "Accounts", Rows: rows}}, nil
}

func (o *Operations) updateUser(ctx context.Context, args map[string]any) (*Result, error) {
	u, err := o.store.GetUser(ctx, argString(args, "id"))
	if err != nil {
		return nil, err
	}
	if v, ok := args["nama"].(string); ok {
		u.Nama = v
	}
	if v, ok := args["email"].(string); ok {
		u.Email = v
	}
	if v, ok := args["role"].(string); ok {
		u.Role = models.UserRole(v)
	}
	if err := o.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Updated account %q.", u.Nama)}, nil
}

func (o *Operations) deleteUser(ctx context.Context, args map[string]any) (*Result, error) {
	id := argString(args, "id")
	if err := o.store.DeleteUser(ctx, id); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Deleted account %s.", id)}, nil
}

// ── Argument helpers ────────────────────────────────────────
//
// Arguments arrive registry-validated, so helpers only coerce, never
// re-validate. JSON numbers decode as float64.

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func argAttachments(args map[string]any, key string) []models.Attachment {
	items, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]models.Attachment, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		nama, _ := m["nama"].(string)
		url, _ := m["url"].(string)
		if nama == "" && url == "" {
			continue
		}
		out = append(out, models.Attachment{Nama: nama, URL: url})
	}
	return out
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
