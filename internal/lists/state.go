package lists

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"fantamorto/internal/services"
)

// Keys names the documents a check run works with. Years is optional; when
// empty the year each death was confirmed is not recorded.
type Keys struct {
	Confirmed string
	Maybe     string
	Years     string
}

// State is the set of lists as read at the start of a run. Years maps a
// confirmed name to the year its death was confirmed.
type State struct {
	Confirmed []string
	Maybe     []string
	Years     map[string]int
}

// Load reads both lists, confirmed first, then the years ledger when keyed.
func Load(ctx context.Context, store Store, keys Keys) (State, error) {
	confirmed, err := store.ReadList(ctx, keys.Confirmed)
	if err != nil {
		return State{}, err
	}
	maybe, err := store.ReadList(ctx, keys.Maybe)
	if err != nil {
		return State{}, err
	}
	state := State{Confirmed: confirmed, Maybe: maybe, Years: map[string]int{}}
	if keys.Years == "" {
		return state, nil
	}
	entries, err := store.ReadList(ctx, keys.Years)
	if err != nil {
		return State{}, err
	}
	if state.Years, err = DecodeYears(entries); err != nil {
		return State{}, services.Wrap(services.ErrPersistence, "lists", "read", keys.Years, err)
	}
	return state, nil
}

// Save writes the lists of next that differ from prev. The confirmed list is
// written first and the maybe list last, so a crash between writes leaves a
// name at worst in both lists, never in neither. The years ledger sits in
// between, which makes a failed ledger write recoverable the same way.
func Save(ctx context.Context, store Store, keys Keys, prev, next State) (bool, bool, error) {
	confirmedChanged := !slices.Equal(prev.Confirmed, next.Confirmed)
	maybeChanged := !slices.Equal(prev.Maybe, next.Maybe)
	if confirmedChanged {
		if err := store.WriteList(ctx, keys.Confirmed, next.Confirmed); err != nil {
			return false, false, err
		}
	}
	if keys.Years != "" && !maps.Equal(prev.Years, next.Years) {
		if err := store.WriteList(ctx, keys.Years, EncodeYears(next.Years)); err != nil {
			return confirmedChanged, false, err
		}
	}
	if maybeChanged {
		if err := store.WriteList(ctx, keys.Maybe, next.Maybe); err != nil {
			return confirmedChanged, false, err
		}
	}
	return confirmedChanged, maybeChanged, nil
}

// EncodeYears renders the ledger as "YEAR Name" entries sorted by name.
func EncodeYears(years map[string]int) []string {
	names := make([]string, 0, len(years))
	for name := range years {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, strconv.Itoa(years[name])+" "+name)
	}
	return out
}

// DecodeYears parses ledger entries written by EncodeYears. The year is
// everything before the first space.
func DecodeYears(entries []string) (map[string]int, error) {
	years := make(map[string]int, len(entries))
	for _, entry := range entries {
		raw, name, ok := strings.Cut(strings.TrimSpace(entry), " ")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed years entry %q", entry)
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed years entry %q: %w", entry, err)
		}
		years[name] = year
	}
	return years, nil
}
