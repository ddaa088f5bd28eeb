package actions_test

import (
	"errors"
	"testing"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/pkg/models"
)

func newRegistry(t *testing.T) *actions.Registry {
	t.Helper()
	reg, err := actions.DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry() error = %v", err)
	}
	return reg
}

func TestDefaultRegistry_CatalogComplete(t *testing.T) {
	reg := newRegistry(t)

	wantActions := []string{
		"addJurusan", "showJurusan", "updateJurusan", "deleteJurusan",
		"addProdi", "showProdi", "updateProdi", "deleteProdi",
		"addMatkul", "showMatkul", "updateMatkul", "deleteMatkul",
		"addMateri", "showMateri", "updateMateri", "deleteMateri",
		"addUser", "showUsers", "updateUser", "deleteUser",
		"searchMateri",
	}
	for _, name := range wantActions {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found, want in catalog", name)
		}
	}
	if got := len(reg.Specs()); got != len(wantActions) {
		t.Errorf("Specs() returned %d actions, want %d", got, len(wantActions))
	}
}

func TestLookup_MutatingFlags(t *testing.T) {
	reg := newRegistry(t)

	cases := map[string]bool{
		"addJurusan":   true,
		"deleteUser":   true,
		"updateMatkul": true,
		"showJurusan":  false,
		"showUsers":    false,
		"searchMateri": false,
	}
	for name, want := range cases {
		spec, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) not found", name)
		}
		if spec.Mutating != want {
			t.Errorf("Lookup(%q).Mutating = %v, want %v", name, spec.Mutating, want)
		}
	}
}

func TestValidate_UnknownAction(t *testing.T) {
	reg := newRegistry(t)

	err := reg.Validate(models.ToolCall{Name: "dropAllTables", Args: map[string]any{}})
	var unknown *actions.UnknownActionError
	if !errors.As(err, &unknown) {
		t.Fatalf("Validate() error = %v, want UnknownActionError", err)
	}
	if unknown.Name != "dropAllTables" {
		t.Errorf("UnknownActionError.Name = %q, want %q", unknown.Name, "dropAllTables")
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	reg := newRegistry(t)

	err := reg.Validate(models.ToolCall{Name: "deleteJurusan", Args: map[string]any{}})
	var invalid *actions.InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() error = %v, want InvalidArgumentError", err)
	}
	if invalid.Param != "id" {
		t.Errorf("InvalidArgumentError.Param = %q, want %q", invalid.Param, "id")
	}
}

func TestValidate_TypeChecks(t *testing.T) {
	reg := newRegistry(t)

	// Number param rejects a string value.
	err := reg.Validate(models.ToolCall{Name: "addMatkul", Args: map[string]any{
		"kode": "IF-2101", "nama": "Algoritma", "sks": "three", "prodi_id": "p1",
	}})
	var invalid *actions.InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() sks=string error = %v, want InvalidArgumentError", err)
	}

	// float64 (the JSON decode shape) is accepted for numbers.
	err = reg.Validate(models.ToolCall{Name: "addMatkul", Args: map[string]any{
		"kode": "IF-2101", "nama": "Algoritma", "sks": float64(3), "prodi_id": "p1",
	}})
	if err != nil {
		t.Errorf("Validate() sks=float64 error = %v, want nil", err)
	}
}

func TestValidate_EnumMembership(t *testing.T) {
	reg := newRegistry(t)

	err := reg.Validate(models.ToolCall{Name: "addProdi", Args: map[string]any{
		"nama": "TI", "jenjang": "S9", "jurusan_id": "j1",
	}})
	var invalid *actions.InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() jenjang=S9 error = %v, want InvalidArgumentError", err)
	}

	if err := reg.Validate(models.ToolCall{Name: "addProdi", Args: map[string]any{
		"nama": "TI", "jenjang": "S1", "jurusan_id": "j1",
	}}); err != nil {
		t.Errorf("Validate() jenjang=S1 error = %v, want nil", err)
	}
}

func TestValidate_ObjectArray(t *testing.T) {
	reg := newRegistry(t)

	base := map[string]any{"judul": "Pertemuan 1", "matkul_id": "m1"}

	args := map[string]any{}
	for k, v := range base {
		args[k] = v
	}
	args["lampiran"] = []any{map[string]any{"nama": "slides", "url": "https://x"}}
	if err := reg.Validate(models.ToolCall{Name: "addMateri", Args: args}); err != nil {
		t.Errorf("Validate() lampiran=objects error = %v, want nil", err)
	}

	bad := map[string]any{}
	for k, v := range base {
		bad[k] = v
	}
	bad["lampiran"] = []any{"not-an-object"}
	var invalid *actions.InvalidArgumentError
	if err := reg.Validate(models.ToolCall{Name: "addMateri", Args: bad}); !errors.As(err, &invalid) {
		t.Errorf("Validate() lampiran=strings error = %v, want InvalidArgumentError", err)
	}
}

func TestValidate_OptionalMayBeAbsent(t *testing.T) {
	reg := newRegistry(t)

	if err := reg.Validate(models.ToolCall{Name: "showJurusan", Args: map[string]any{}}); err != nil {
		t.Errorf("Validate() no optional args error = %v, want nil", err)
	}
	if err := reg.Validate(models.ToolCall{Name: "showJurusan"}); err != nil {
		t.Errorf("Validate() nil args error = %v, want nil", err)
	}
}
