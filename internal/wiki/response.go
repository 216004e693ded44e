package wiki

// queryResponse models the formatversion=2 revisions query payload. Requests
// never set redirects=1: a redirect page is classified as missing so the name
// moves on to the next edition.
type queryResponse struct {
	Error *apiError `json:"error"`
	Query struct {
		Normalized []titleMapping `json:"normalized"`
		Pages      []page         `json:"pages"`
	} `json:"query"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type titleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type page struct {
	PageID    int64      `json:"pageid"`
	Title     string     `json:"title"`
	Missing   bool       `json:"missing"`
	Invalid   bool       `json:"invalid"`
	Revisions []revision `json:"revisions"`
}

type revision struct {
	// Content is populated by servers that ignore rvslots.
	Content string `json:"content"`
	Slots   struct {
		Main struct {
			Content string `json:"content"`
		} `json:"main"`
	} `json:"slots"`
}

func (p page) content() string {
	if len(p.Revisions) == 0 {
		return ""
	}
	rev := p.Revisions[0]
	if rev.Slots.Main.Content != "" {
		return rev.Slots.Main.Content
	}
	return rev.Content
}
