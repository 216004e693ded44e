package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
)

// Roster maps team name to the players it drafted and their birth years. It is
// read-only after Load.
type Roster map[string]map[string]int

// Load reads a roster JSON file shaped as {team: {player: birthYear}}.
func Load(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

// Parse decodes roster JSON and drops blank team or player names.
func Parse(data []byte) (Roster, error) {
	var raw map[string]map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	out := make(Roster, len(raw))
	for team, players := range raw {
		team = strings.TrimSpace(team)
		if team == "" {
			continue
		}
		cleaned := make(map[string]int, len(players))
		for name, year := range players {
			if name = strings.TrimSpace(name); name != "" {
				cleaned[name] = year
			}
		}
		out[team] = cleaned
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decode roster: no teams")
	}
	return out, nil
}

// Teams returns team names in sorted order.
func (r Roster) Teams() []string {
	teams := make([]string, 0, len(r))
	for team := range r {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// Names flattens the roster into unique player names. Teams are visited in
// sorted order and players sorted within a team; the first occurrence wins.
func (r Roster) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, team := range r.Teams() {
		players := make([]string, 0, len(r[team]))
		for name := range r[team] {
			players = append(players, name)
		}
		sort.Strings(players)
		for _, name := range players {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// Owners returns the sorted teams that drafted name.
func (r Roster) Owners(name string) []string {
	var owners []string
	for _, team := range r.Teams() {
		if _, ok := r[team][name]; ok {
			owners = append(owners, team)
		}
	}
	return owners
}

// BirthYear returns the birth year recorded for name. When teams disagree the
// first team in sorted order wins.
func (r Roster) BirthYear(name string) (int, bool) {
	for _, team := range r.Teams() {
		if year, ok := r[team][name]; ok {
			return year, true
		}
	}
	return 0, false
}

// Contains reports whether any team drafted name.
func (r Roster) Contains(name string) bool {
	return slices.ContainsFunc(r.Teams(), func(team string) bool {
		_, ok := r[team][name]
		return ok
	})
}
