package wiki

import (
	"regexp"
	"slices"
	"strings"
)

// AnyLanguage keys redirect keywords every edition accepts. MediaWiki always
// honours the English #REDIRECT magic word alongside the localized one.
const AnyLanguage = "*"

// Markers is the vocabulary used to classify page content. Redirect keywords
// are keyed by language code; death fields are infobox parameter names from
// every template dialect that should count as a death signal. Extending
// either table changes classification without touching lookup logic.
type Markers struct {
	Redirects   map[string][]string
	DeathFields []string
}

// DefaultMarkers covers the Italian Bio template, the English person
// infoboxes, and the German Personendaten block.
func DefaultMarkers() Markers {
	return Markers{
		Redirects: map[string][]string{
			AnyLanguage: {"redirect"},
			"it":        {"rinvia"},
			"de":        {"weiterleitung", "umleiten"},
			"fr":        {"redirection"},
			"es":        {"redirección", "redireccion"},
		},
		DeathFields: []string{
			"LuogoMorte", "GiornoMeseMorte", "AnnoMorte",
			"death_place", "death_date",
			"STERBEDATUM", "STERBEORT",
		},
	}
}

// Extend returns a copy of m with the extra death fields and redirect keywords
// appended. Duplicates are ignored.
func (m Markers) Extend(deathFields []string, redirects map[string][]string) Markers {
	out := Markers{
		Redirects:   make(map[string][]string, len(m.Redirects)+len(redirects)),
		DeathFields: slices.Clone(m.DeathFields),
	}
	for lang, words := range m.Redirects {
		out.Redirects[lang] = slices.Clone(words)
	}
	for _, field := range deathFields {
		if field = strings.TrimSpace(field); field != "" && !slices.Contains(out.DeathFields, field) {
			out.DeathFields = append(out.DeathFields, field)
		}
	}
	for lang, words := range redirects {
		lang = strings.ToLower(strings.TrimSpace(lang))
		for _, word := range words {
			word = strings.ToLower(strings.TrimSpace(word))
			if word != "" && !slices.Contains(out.Redirects[lang], word) {
				out.Redirects[lang] = append(out.Redirects[lang], word)
			}
		}
	}
	return out
}

var htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)

// Classifier applies a compiled Markers table to fetched pages.
type Classifier struct {
	redirects map[string][]string
	death     *regexp.Regexp
}

// NewClassifier compiles m. Field names are matched literally as template
// parameters: at line start or after a pipe, then "=", then non-blank text on
// the same line.
func NewClassifier(m Markers) *Classifier {
	fields := make([]string, 0, len(m.DeathFields))
	for _, field := range m.DeathFields {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, regexp.QuoteMeta(field))
		}
	}
	c := &Classifier{redirects: make(map[string][]string, len(m.Redirects))}
	for lang, words := range m.Redirects {
		for _, word := range words {
			c.redirects[lang] = append(c.redirects[lang], strings.ToLower(word))
		}
	}
	if len(fields) > 0 {
		pattern := `(?m)(?:^|\|)[ \t]*(?:` + strings.Join(fields, "|") + `)[ \t]*=[ \t]*[^\n]*\S`
		c.death = regexp.MustCompile(pattern)
	}
	return c
}

// Classify returns the status of a single fetched page in the lang edition.
// Missing, invalid, and redirect pages are never reported dead, whatever the
// rest of their content says.
func (c *Classifier) Classify(page PageResult, lang string) Status {
	if page.Missing || page.Invalid || c.IsRedirect(page.Content, lang) {
		return StatusMissingOrRedirect
	}
	if c.HasDeathSignal(page.Content) {
		return StatusDead
	}
	return StatusAlive
}

// IsRedirect reports whether content starts with a redirect magic word known
// for lang.
func (c *Classifier) IsRedirect(content, lang string) bool {
	trimmed := strings.TrimLeft(content, " \t\r\n\ufeff")
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	rest := strings.ToLower(strings.TrimLeft(trimmed[1:], " \t"))
	for _, key := range []string{strings.ToLower(lang), AnyLanguage} {
		for _, word := range c.redirects[key] {
			if strings.HasPrefix(rest, word) {
				return true
			}
		}
	}
	return false
}

// HasDeathSignal reports whether any death field carries a value. HTML
// comments are stripped first so commented-out template hints do not count.
func (c *Classifier) HasDeathSignal(content string) bool {
	if c.death == nil || content == "" {
		return false
	}
	return c.death.MatchString(htmlComment.ReplaceAllString(content, ""))
}

// Classify is a one-shot helper that compiles markers and classifies page.
// Hot paths should build a Classifier once instead.
func Classify(page PageResult, lang string, markers Markers) Status {
	return NewClassifier(markers).Classify(page, lang)
}
