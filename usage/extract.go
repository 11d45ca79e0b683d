package usage

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// The usage figures are identified by their section labels. The numbers can
// be separated from the label by an arbitrary amount of markup which is why
// the expressions run over the whole document text in (?s) mode.
var (
	includedExp = regexp.MustCompile(`(?s)Included-Request Usage.*?(\d+)\s*/\s*(\d+)`)
	onDemandExp = regexp.MustCompile(`(?s)On-Demand Usage.*?\$(\d+(?:\.\d+)?)\s*/\s*\$(\d+(?:\.\d+)?)`)
	maxBadgeExp = regexp.MustCompile(`(?i)\bmax\b`)
)

// ErrNoContent is returned when the page shell itself is missing, ie there is
// nothing to extract from at all.
var ErrNoContent = errors.New("page contains no content")

// Extract parses the usage data from the given markup. A missing figure is
// not an error, the corresponding snapshot fields simply keep their zero
// values and the remaining fields are still extracted.
func Extract(markup string) (Snapshot, error) {
	var snapshot Snapshot
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return snapshot, err
	}
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		return snapshot, ErrNoContent
	}

	if m := includedExp.FindStringSubmatch(text); m != nil {
		snapshot.IncludedUsed, _ = strconv.Atoi(m[1])
		snapshot.IncludedTotal, _ = strconv.Atoi(m[2])
	}
	if m := onDemandExp.FindStringSubmatch(text); m != nil {
		snapshot.OnDemandUsed, _ = strconv.ParseFloat(m[1], 64)
		snapshot.OnDemandLimit, _ = strconv.ParseFloat(m[2], 64)
	}

	// the first row of the usage table is the most recent request
	row := doc.Find(`div[role="row"].dashboard-table-row`).First()
	if row.Length() == 0 {
		return snapshot, nil
	}

	cells := row.Find(`div[role="cell"]`)
	if cells.Length() >= 4 {
		if ts := cells.Eq(0).Find("span").First(); ts.Length() > 0 {
			snapshot.LastTimestamp = attrOrText(ts, "title")
		}
		if model := cells.Eq(3).Find("span[title]").First(); model.Length() > 0 {
			snapshot.LastModel = attrOrText(model, "title")
			snapshot.ThinkingMode = strings.Contains(strings.ToLower(snapshot.LastModel), "thinking")
		}
	}
	snapshot.MaxMode = anyTextNodeMatches(row, maxBadgeExp)

	return snapshot, nil
}

// attrOrText prefers the machine oriented attribute over the visible text.
func attrOrText(s *goquery.Selection, attr string) string {
	if v := s.AttrOr(attr, ""); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Text())
}

// anyTextNodeMatches reports whether any single text node below the selection
// matches the expression. The expression is applied per text node and not to
// the concatenated text, otherwise word boundaries would match across
// adjacent elements.
func anyTextNodeMatches(s *goquery.Selection, exp *regexp.Regexp) bool {
	for _, n := range s.Nodes {
		if textNodeMatches(n, exp) {
			return true
		}
	}
	return false
}

func textNodeMatches(n *html.Node, exp *regexp.Regexp) bool {
	if n.Type == html.TextNode && exp.MatchString(n.Data) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if textNodeMatches(c, exp) {
			return true
		}
	}
	return false
}
