package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/carelog/internal/config"
	"github.com/ehr/carelog/internal/match"
)

const patientsJSON = `[
  {"name": "Pedro Alves", "birth_date": "1970-05-05", "mother_name": "Clara", "national_id": "111"},
  {"name": "Maria Silva", "birth_date": "1980-01-01", "mother_name": "Joana", "national_id": "222"}
]`

func writePatients(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patients.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write patients: %v", err)
	}
	return path
}

func runMatch(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := matchCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadPatients(t *testing.T) {
	patients, err := loadPatients(writePatients(t, patientsJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(patients))
	}
	if patients[1].MatchName() != "Maria Silva" {
		t.Errorf("expected Maria Silva, got %q", patients[1].MatchName())
	}
	if patients[1].MatchBirthDate() != "1980-01-01" {
		t.Errorf("expected 1980-01-01, got %q", patients[1].MatchBirthDate())
	}
}

func TestLoadPatients_Missing(t *testing.T) {
	_, err := loadPatients(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadPatients_Invalid(t *testing.T) {
	if _, err := loadPatients(writePatients(t, "{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFilePatient_NonStringFields(t *testing.T) {
	p := filePatient{"name": 42, "mother_name": nil}
	if p.MatchName() != "" || p.MatchMotherName() != "" || p.MatchBirthDate() != "" {
		t.Errorf("expected empty strings for missing or non-string fields")
	}
}

func TestFilePatient_LegacyKeys(t *testing.T) {
	p := filePatient{"nome": "Maria Silva", "data_nascimento": "1980-01-01", "nome_da_mae": "Joana"}
	if p.MatchName() != "Maria Silva" {
		t.Errorf("expected Maria Silva, got %q", p.MatchName())
	}
	if p.MatchBirthDate() != "1980-01-01" {
		t.Errorf("expected 1980-01-01, got %q", p.MatchBirthDate())
	}
	if p.MatchMotherName() != "Joana" {
		t.Errorf("expected Joana, got %q", p.MatchMotherName())
	}

	both := filePatient{"name": "Ana Souza", "nome": "Outra Pessoa"}
	if both.MatchName() != "Ana Souza" {
		t.Errorf("expected the English key to win, got %q", both.MatchName())
	}
}

func TestMatchCmd_LegacyExport(t *testing.T) {
	path := writePatients(t, `[
  {"nome": "Pedro Alves", "data_nascimento": "1970-05-05", "nome_da_mae": "Clara", "cpf": "111"},
  {"nome": "Maria Silva", "data_nascimento": "1980-01-01", "nome_da_mae": "Joana", "cpf": "222"}
]`)
	out, err := runMatch(t, "",
		"--file", path, "--cutoff", "60",
		"--name", "Maria Silva", "--birth-date", "1980-01-01", "--mother-name", "Joana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got matchOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", out, err)
	}
	if got.Patient["cpf"] != "222" {
		t.Errorf("expected cpf 222, got %v", got.Patient["cpf"])
	}
	if got.Scores.Total != "100.0%" {
		t.Errorf("expected total 100.0%%, got %s", got.Scores.Total)
	}
}

func TestMatchCmd_Flags(t *testing.T) {
	path := writePatients(t, patientsJSON)
	out, err := runMatch(t, "",
		"--file", path, "--cutoff", "60",
		"--name", "maria silva", "--birth-date", "1980-01-01", "--mother-name", "Joana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got matchOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", out, err)
	}
	if got.Patient["national_id"] != "222" {
		t.Errorf("expected national_id 222, got %v", got.Patient["national_id"])
	}
	if got.Scores.Total != "100.0%" {
		t.Errorf("expected total 100.0%%, got %s", got.Scores.Total)
	}
}

func TestMatchCmd_NoMatch(t *testing.T) {
	path := writePatients(t, patientsJSON)
	out, err := runMatch(t, "",
		"--file", path, "--cutoff", "60",
		"--name", "Mario Silva", "--birth-date", "1999-09-09", "--mother-name", "Josiane")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "no acceptable match (closest was 48.9%)" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestMatchCmd_Interactive(t *testing.T) {
	path := writePatients(t, patientsJSON)
	out, err := runMatch(t, "Pedro Alves\n1970-05-05\nClara\n", "--file", path, "--cutoff", "60")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Full name: ") || !strings.Contains(out, "Mother's name: ") {
		t.Errorf("expected prompts in output, got %q", out)
	}
	if !strings.Contains(out, `"national_id": "111"`) {
		t.Errorf("expected Pedro's record, got %q", out)
	}
}

func TestPromptQuery_EOF(t *testing.T) {
	var out bytes.Buffer
	q, err := promptQuery(strings.NewReader("Ana"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Name != "Ana" || q.BirthDate != "" || q.MotherName != "" {
		t.Errorf("unexpected query: %+v", q)
	}
}

func TestWriteMatch_EmptyCandidates(t *testing.T) {
	var out bytes.Buffer
	res := match.FindBestMatch(match.Query{Name: "Ana"}, []filePatient{}, match.DefaultCutoff)
	if err := writeMatch(&out, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "no acceptable match (closest was 0.0%)\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestMigrateCmd_Subcommands(t *testing.T) {
	cmd := migrateCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
		if c.Flags().Lookup("schema") == nil {
			t.Errorf("expected --schema flag on %s", c.Name())
		}
	}
	if !names["up"] || !names["status"] {
		t.Errorf("expected up and status subcommands, got %v", names)
	}
}

func TestNewServer_PublicRoutes(t *testing.T) {
	cfg := &config.Config{
		Env:            "production",
		CORSOrigins:    []string{"*"},
		AuthSigningKey: "0123456789abcdef0123456789abcdef",
		AuthTokenTTL:   time.Hour,
		MatchCutoff:    60,
		ReportCommand:  "true",
		ReportTimeout:  time.Second,
	}
	e := newServer(cfg, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/forms/123", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
