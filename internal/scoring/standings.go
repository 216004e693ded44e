package scoring

import (
	"sort"

	"fantamorto/internal/roster"
)

// Standing is one team's total over its confirmed deaths.
type Standing struct {
	Team   string   `json:"team"`
	Points int      `json:"points"`
	Deaths []string `json:"deaths"`
}

// Standings totals the bonus of every confirmed name per team. Each death is
// scored as of the year recorded for it in years, or as of year when none was
// recorded. Every roster team appears, including teams with no deaths. Teams
// are ordered by points, then name.
func Standings(r roster.Roster, confirmed []string, years map[string]int, year int) []Standing {
	dead := make(map[string]struct{}, len(confirmed))
	for _, name := range confirmed {
		dead[name] = struct{}{}
	}

	teams := r.Teams()
	out := make([]Standing, 0, len(teams))
	for _, team := range teams {
		standing := Standing{Team: team, Deaths: []string{}}
		players := r[team]
		names := make([]string, 0, len(players))
		for name := range players {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := dead[name]; !ok {
				continue
			}
			scoredAt, ok := years[name]
			if !ok {
				scoredAt = year
			}
			standing.Points += Bonus(players[name], scoredAt)
			standing.Deaths = append(standing.Deaths, name)
		}
		out = append(out, standing)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Team < out[j].Team
	})
	return out
}
