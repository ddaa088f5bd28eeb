package gate_test

import (
	"strings"
	"testing"

	"github.com/akademix/akademix/internal/actions"
	"github.com/akademix/akademix/internal/gate"
	"github.com/akademix/akademix/pkg/models"
)

func newGate(t *testing.T) *gate.Gate {
	t.Helper()
	reg, err := actions.DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry() error = %v", err)
	}
	return gate.New(reg, nil)
}

func TestRecognizer_Decisions(t *testing.T) {
	r := gate.NewRecognizer()

	cases := []struct {
		reply string
		want  gate.Decision
	}{
		{"yes", gate.DecisionApprove},
		{"Yes!", gate.DecisionApprove},
		{"ok, go ahead", gate.DecisionApprove},
		{"ya, lanjutkan", gate.DecisionApprove},
		{"setuju", gate.DecisionApprove},
		{"no", gate.DecisionReject},
		{"jangan", gate.DecisionReject},
		{"batalkan saja", gate.DecisionReject},
		{"yes... actually no", gate.DecisionReject},
		{"", gate.DecisionUnclear},
		{"what does that mean?", gate.DecisionUnclear},
		{"tampilkan dulu datanya", gate.DecisionUnclear},
	}
	for _, tc := range cases {
		if got := r.Interpret(tc.reply); got != tc.want {
			t.Errorf("Interpret(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}

func TestPartition_ReadsBypassMutationsHeld(t *testing.T) {
	g := newGate(t)

	calls := []models.ToolCall{
		{Name: "showJurusan", Args: map[string]any{}},
		{Name: "deleteJurusan", Args: map[string]any{"id": "j1"}},
		{Name: "searchMateri", Args: map[string]any{"query": "grafik"}},
		{Name: "addUser", Args: map[string]any{"nama": "Budi"}},
	}

	reads, mutations := g.Partition(calls)
	if len(reads) != 2 || len(mutations) != 2 {
		t.Fatalf("Partition() = %d reads, %d mutations, want 2 and 2", len(reads), len(mutations))
	}
	if reads[0].Name != "showJurusan" || reads[1].Name != "searchMateri" {
		t.Errorf("reads order = %v, want proposal order preserved", reads)
	}
	if mutations[0].Name != "deleteJurusan" || mutations[1].Name != "addUser" {
		t.Errorf("mutations order = %v, want proposal order preserved", mutations)
	}
}

func TestPartition_UnknownActionGoesToReads(t *testing.T) {
	g := newGate(t)

	reads, mutations := g.Partition([]models.ToolCall{{Name: "formatDisk"}})
	if len(mutations) != 0 {
		t.Errorf("Partition() held unknown action for confirmation, want it dispatched for an error report")
	}
	if len(reads) != 1 {
		t.Errorf("Partition() reads = %d, want 1", len(reads))
	}
}

func TestIntercept_PromptNamesArguments(t *testing.T) {
	g := newGate(t)

	pending := g.Intercept([]models.ToolCall{
		{Name: "deleteJurusan", Args: map[string]any{"id": "Informatics"}},
	})
	if pending == nil {
		t.Fatalf("Intercept() = nil, want pending set")
	}
	if !strings.Contains(pending.Prompt, "Informatics") {
		t.Errorf("Prompt = %q, want it to contain the argument value %q", pending.Prompt, "Informatics")
	}
	if !strings.Contains(pending.Prompt, "delete") || !strings.Contains(pending.Prompt, "jurusan") {
		t.Errorf("Prompt = %q, want entity and operation named", pending.Prompt)
	}
	if len(pending.Calls) != 1 {
		t.Errorf("Calls = %d, want 1", len(pending.Calls))
	}
}

func TestIntercept_Empty(t *testing.T) {
	g := newGate(t)
	if pending := g.Intercept(nil); pending != nil {
		t.Errorf("Intercept(nil) = %+v, want nil", pending)
	}
}

func TestPrompt_MultipleActions(t *testing.T) {
	g := newGate(t)

	prompt := g.Prompt([]models.ToolCall{
		{Name: "addJurusan", Args: map[string]any{"nama": "Informatika"}},
		{Name: "addJurusan", Args: map[string]any{"nama": "Elektro"}},
	})
	if !strings.Contains(prompt, "2 actions") {
		t.Errorf("Prompt = %q, want the action count stated", prompt)
	}
	if !strings.Contains(prompt, "Informatika") || !strings.Contains(prompt, "Elektro") {
		t.Errorf("Prompt = %q, want every pending call summarized", prompt)
	}
}
