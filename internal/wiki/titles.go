package wiki

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// titleKey folds a title the way MediaWiki compares them for our purposes:
// underscores are spaces, whitespace is collapsed, and the text is NFC
// normalized and case folded.
func titleKey(title string) string {
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.Join(strings.Fields(title), " ")
	return folder.String(norm.NFC.String(title))
}

// matchPages maps every requested name onto the page the API returned for it.
// The API reports title rewrites in the normalized list; anything it rewrote
// silently (Unicode normalization, case of the first letter) is matched by
// folded key. Requested names with no matching page are reported missing.
func matchPages(requested []string, resp queryResponse) []PageResult {
	byTitle := make(map[string]page, len(resp.Query.Pages))
	byKey := make(map[string]page, len(resp.Query.Pages))
	for _, p := range resp.Query.Pages {
		byTitle[p.Title] = p
		byKey[titleKey(p.Title)] = p
	}
	renamed := make(map[string]string, len(resp.Query.Normalized))
	for _, m := range resp.Query.Normalized {
		renamed[m.From] = m.To
	}

	results := make([]PageResult, 0, len(requested))
	for _, name := range requested {
		target := name
		if to, ok := renamed[name]; ok {
			target = to
		}
		p, ok := byTitle[target]
		if !ok {
			p, ok = byKey[titleKey(target)]
		}
		if !ok {
			results = append(results, PageResult{Title: name, Missing: true})
			continue
		}
		results = append(results, PageResult{
			Title:   name,
			Missing: p.Missing,
			Invalid: p.Invalid,
			Content: p.content(),
		})
	}
	return results
}
