package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// WikiRequest records one revisions query received by a WikiServer.
type WikiRequest struct {
	Lang   string
	Titles []string
	Query  map[string]string
}

// WikiServer is an in-process MediaWiki stand-in. Pages are registered per
// language; unknown titles are reported missing.
type WikiServer struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]map[string]string
	failures map[string]int
	requests []WikiRequest
}

// NewWikiServer starts a fake MediaWiki API and registers cleanup.
func NewWikiServer(t testing.TB) *WikiServer {
	t.Helper()
	s := &WikiServer{
		pages:    make(map[string]map[string]string),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Template returns an endpoint template pointing at the fake server.
func (s *WikiServer) Template() string {
	return s.URL + "/{lang}/w/api.php"
}

// SetPage registers wikitext content for title in lang.
func (s *WikiServer) SetPage(lang, title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages[lang] == nil {
		s.pages[lang] = make(map[string]string)
	}
	s.pages[lang][title] = content
}

// Fail makes every request to lang answer with status.
func (s *WikiServer) Fail(lang string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[lang] = status
}

// Requests returns a copy of the received queries in arrival order.
func (s *WikiServer) Requests() []WikiRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WikiRequest(nil), s.requests...)
}

// RequestsFor returns the queries received for lang.
func (s *WikiServer) RequestsFor(lang string) []WikiRequest {
	var out []WikiRequest
	for _, req := range s.Requests() {
		if req.Lang == lang {
			out = append(out, req)
		}
	}
	return out
}

func (s *WikiServer) handle(w http.ResponseWriter, r *http.Request) {
	lang := strings.Trim(strings.TrimSuffix(r.URL.Path, "/w/api.php"), "/")
	query := make(map[string]string)
	for key := range r.URL.Query() {
		query[key] = r.URL.Query().Get(key)
	}
	titles := strings.Split(query["titles"], "|")

	s.mu.Lock()
	s.requests = append(s.requests, WikiRequest{Lang: lang, Titles: titles, Query: query})
	status := s.failures[lang]
	pages := s.pages[lang]
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "upstream unavailable", status)
		return
	}

	type slot struct {
		Content string `json:"content"`
	}
	type revision struct {
		Slots map[string]slot `json:"slots"`
	}
	type page struct {
		PageID    int        `json:"pageid,omitempty"`
		NS        int        `json:"ns"`
		Title     string     `json:"title"`
		Missing   bool       `json:"missing,omitempty"`
		Revisions []revision `json:"revisions,omitempty"`
	}
	type mapping struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	var body struct {
		BatchComplete bool `json:"batchcomplete"`
		Query         struct {
			Normalized []mapping `json:"normalized,omitempty"`
			Pages      []page    `json:"pages"`
		} `json:"query"`
	}
	body.BatchComplete = true
	for i, title := range titles {
		normalized := strings.ReplaceAll(title, "_", " ")
		if normalized != title {
			body.Query.Normalized = append(body.Query.Normalized, mapping{From: title, To: normalized})
		}
		content, ok := pages[normalized]
		if !ok {
			body.Query.Pages = append(body.Query.Pages, page{NS: 0, Title: normalized, Missing: true})
			continue
		}
		body.Query.Pages = append(body.Query.Pages, page{
			PageID:    i + 1,
			Title:     normalized,
			Revisions: []revision{{Slots: map[string]slot{"main": {Content: content}}}},
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// Wikitext fixtures for the three editions the default cascade uses.
const (
	ItalianAlive  = "{{Bio\n|Nome = Mario\n|Cognome = Rossi\n|LuogoNascita = Roma\n|AnnoNascita = 1950\n|LuogoMorte = \n|AnnoMorte = \n}}\nMario Rossi è un attore."
	ItalianDead   = "{{Bio\n|Nome = Mario\n|Cognome = Rossi\n|LuogoNascita = Roma\n|AnnoNascita = 1950\n|LuogoMorte = Milano\n|AnnoMorte = 2026\n}}\nMario Rossi è stato un attore."
	EnglishAlive  = "{{Infobox person\n| name = Jane Doe\n| birth_date = {{birth date and age|1950|1|1}}\n| death_date = \n}}"
	EnglishDead   = "{{Infobox person\n| name = Jane Doe\n| birth_date = {{birth date|1950|1|1}}\n| death_date = {{death date and age|2026|3|1|1950|1|1}}\n| death_place = London\n}}"
	GermanDead    = "'''Hans Muster''' war ein Schauspieler.\n{{Personendaten\n|NAME=Muster, Hans\n|GEBURTSDATUM=1. Januar 1950\n|STERBEDATUM=2. März 2026\n|STERBEORT=[[Berlin]]\n}}"
	ItalianRedir  = "#RINVIA [[Mario Rossi (attore)]]"
	EnglishRedir  = "#REDIRECT [[Jane Doe (actress)]]"
	GermanRedirDE = "#WEITERLEITUNG [[Hans Muster (Schauspieler)]]"
)
