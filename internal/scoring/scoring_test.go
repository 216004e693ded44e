package scoring_test

import (
	"testing"

	"fantamorto/internal/roster"
	"fantamorto/internal/scoring"
)

func TestBonus(t *testing.T) {
	cases := []struct {
		name      string
		birthYear int
		year      int
		want      int
	}{
		{"born 1950 scored 2026", 1950, 2026, 24},
		{"centenarian", 1920, 2026, 0},
		{"older than max", 1900, 2026, 0},
		{"young", 2000, 2026, 74},
		{"unknown birth year", 0, 2026, 0},
		{"future birth year", 2030, 2026, 0},
		{"same year", 2026, 2026, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoring.Bonus(tc.birthYear, tc.year); got != tc.want {
				t.Fatalf("Bonus(%d, %d) = %d, want %d", tc.birthYear, tc.year, got, tc.want)
			}
		})
	}
}

func TestAge(t *testing.T) {
	if got := scoring.Age(1950, 2026); got != 76 {
		t.Fatalf("Age = %d, want 76", got)
	}
	if got := scoring.Age(0, 2026); got != 0 {
		t.Fatalf("Age with unknown birth year = %d, want 0", got)
	}
}

func TestStandings(t *testing.T) {
	r := roster.Roster{
		"Vultures": {"Old Star": 1930, "Young Star": 1990},
		"Ravens":   {"Old Star": 1930, "Mid Star": 1960},
		"Crows":    {"Nobody": 1950},
	}
	got := scoring.Standings(r, []string{"Old Star", "Mid Star", "Not Drafted"}, nil, 2026)
	if len(got) != 3 {
		t.Fatalf("expected every team, got %+v", got)
	}
	if got[0].Team != "Ravens" || got[0].Points != 4+34 {
		t.Fatalf("unexpected leader %+v", got[0])
	}
	if got[1].Team != "Vultures" || got[1].Points != 4 || len(got[1].Deaths) != 1 {
		t.Fatalf("unexpected second place %+v", got[1])
	}
	if got[2].Team != "Crows" || got[2].Points != 0 || len(got[2].Deaths) != 0 {
		t.Fatalf("unexpected last place %+v", got[2])
	}
}

func TestStandingsUseConfirmationYear(t *testing.T) {
	r := roster.Roster{"A": {"X": 1950}}
	years := map[string]int{"X": 2026}

	for _, year := range []int{2026, 2030} {
		got := scoring.Standings(r, []string{"X"}, years, year)
		if got[0].Points != 24 {
			t.Fatalf("Standings in %d = %d points, want 24", year, got[0].Points)
		}
	}
	if got := scoring.Standings(r, []string{"X"}, nil, 2030); got[0].Points != 20 {
		t.Fatalf("expected unrecorded death scored as of 2030, got %d", got[0].Points)
	}
}
