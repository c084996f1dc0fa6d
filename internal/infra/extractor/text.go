package extractor

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hiddenElements never contribute visible text.
var hiddenElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// visibleText walks the token stream of r and returns every visible text
// run, whitespace-collapsed, one per line in document order.
func visibleText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var (
		lines []string
		skip  int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return strings.Join(lines, "\n"), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if hiddenElements[atom.Lookup(name)] {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if hiddenElements[atom.Lookup(name)] && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if line := collapseSpace(string(z.Text())); line != "" {
				lines = append(lines, line)
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
