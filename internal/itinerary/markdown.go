package itinerary

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	orderedItemPattern = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
	boldPattern        = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

type listKind int

const (
	listNone listKind = iota
	listUnordered
	listOrdered
)

type markupWriter struct {
	b    strings.Builder
	list listKind
}

// RenderMarkdown converts the small Markdown subset the model is asked to use
// into HTML. It works line by line: headings up to level 3, "-"/"*" bullets,
// "N." items, **bold** spans and paragraphs. All text is escaped before it is
// wrapped, and every element it opens is closed.
func RenderMarkdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	w := &markupWriter{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			w.closeList()
		case strings.HasPrefix(line, "### "):
			w.heading(3, line[4:])
		case strings.HasPrefix(line, "## "):
			w.heading(2, line[3:])
		case strings.HasPrefix(line, "# "):
			w.heading(1, line[2:])
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			w.item(listUnordered, 0, line[2:])
		default:
			if m := orderedItemPattern.FindStringSubmatch(line); m != nil {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					n = 0
				}
				w.item(listOrdered, n, m[2])
				continue
			}
			w.closeList()
			w.b.WriteString("<p>")
			w.b.WriteString(renderInline(line))
			w.b.WriteString("</p>")
		}
	}
	w.closeList()
	return w.b.String()
}

func (w *markupWriter) heading(level int, content string) {
	w.closeList()
	tag := "h" + strconv.Itoa(level)
	w.b.WriteString("<" + tag + ">")
	w.b.WriteString(renderInline(strings.TrimSpace(content)))
	w.b.WriteString("</" + tag + ">")
}

func (w *markupWriter) item(kind listKind, number int, content string) {
	if w.list != kind {
		w.closeList()
		switch kind {
		case listOrdered:
			if number > 1 {
				w.b.WriteString(`<ol start="` + strconv.Itoa(number) + `">`)
			} else {
				w.b.WriteString("<ol>")
			}
		default:
			w.b.WriteString("<ul>")
		}
		w.list = kind
	}
	w.b.WriteString("<li>")
	w.b.WriteString(renderInline(strings.TrimSpace(content)))
	w.b.WriteString("</li>")
}

func (w *markupWriter) closeList() {
	switch w.list {
	case listUnordered:
		w.b.WriteString("</ul>")
	case listOrdered:
		w.b.WriteString("</ol>")
	}
	w.list = listNone
}

// renderInline escapes text before turning **span** into <strong>, so the only
// tags in the output are the ones written here.
func renderInline(text string) string {
	return boldPattern.ReplaceAllString(html.EscapeString(text), "<strong>$1</strong>")
}
