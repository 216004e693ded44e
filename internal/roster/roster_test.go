package roster_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"fantamorto/internal/roster"
)

func sample() roster.Roster {
	return roster.Roster{
		"Beta":  {"Carla Fracci": 1936, "Pippo Baudo": 1936},
		"Alpha": {"Pippo Baudo": 1936, "Gianni Morandi": 1944},
		"Gamma": {},
	}
}

func TestNamesDeduplicatesAcrossTeams(t *testing.T) {
	names := sample().Names()
	want := []string{"Gianni Morandi", "Pippo Baudo", "Carla Fracci"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	counts := map[string]int{}
	for _, name := range names {
		counts[name]++
	}
	for name, count := range counts {
		if count != 1 {
			t.Fatalf("expected %q exactly once, got %d", name, count)
		}
	}
}

func TestNamesIsDeterministic(t *testing.T) {
	r := sample()
	first := r.Names()
	for i := 0; i < 20; i++ {
		if got := r.Names(); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: Names() = %v, want %v", i, got, first)
		}
	}
}

func TestOwnersAndBirthYear(t *testing.T) {
	r := sample()
	if owners := r.Owners("Pippo Baudo"); !reflect.DeepEqual(owners, []string{"Alpha", "Beta"}) {
		t.Fatalf("unexpected owners %v", owners)
	}
	if owners := r.Owners("Nobody"); len(owners) != 0 {
		t.Fatalf("expected no owners, got %v", owners)
	}
	if year, ok := r.BirthYear("Gianni Morandi"); !ok || year != 1944 {
		t.Fatalf("unexpected birth year %d %v", year, ok)
	}
	if _, ok := r.BirthYear("Nobody"); ok {
		t.Fatal("expected missing birth year")
	}
	if !r.Contains("Carla Fracci") || r.Contains("Nobody") {
		t.Fatal("unexpected Contains result")
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	data := `{"TeamA": {" X ": 1950}, " ": {"Ignored": 1900}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	r, err := roster.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(r.Names(), []string{"X"}) {
		t.Fatalf("unexpected names %v", r.Names())
	}
	if !reflect.DeepEqual(r.Teams(), []string{"TeamA"}) {
		t.Fatalf("unexpected teams %v", r.Teams())
	}
}

func TestParseRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{`[]`, `{}`, `{"A": {"x": "1950"}}`, `not json`} {
		if _, err := roster.Parse([]byte(input)); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := roster.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
