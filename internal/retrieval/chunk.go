package retrieval

import (
	"strings"

	"golang.org/x/net/html"
)

// MaxChunkChars is the buffered paragraph length after which a content
// chunk is flushed.
const MaxChunkChars = 1000

// Section is a heading and the content chunks under it.
type Section struct {
	Title  string
	Chunks []string
}

// SplitSections splits markdown or plain text into sections. A line
// starting with '#' opens a new section; blank lines separate paragraphs.
// Text before the first heading belongs to a section titled fallbackTitle.
func SplitSections(text, fallbackTitle string) []Section {
	var (
		sections []Section
		cur      *Section
		buffer   []string
		para     []string
	)

	flushBuffer := func() {
		if len(buffer) > 0 && cur != nil {
			cur.Chunks = append(cur.Chunks, strings.Join(buffer, " "))
		}
		buffer = nil
	}
	endParagraph := func() {
		if len(para) == 0 {
			return
		}
		p := strings.Join(para, " ")
		para = nil
		if cur == nil {
			sections = append(sections, Section{Title: fallbackTitle})
			cur = &sections[len(sections)-1]
		}
		buffer = append(buffer, p)
		if len(strings.Join(buffer, " ")) > MaxChunkChars {
			flushBuffer()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			endParagraph()
			flushBuffer()
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			sections = append(sections, Section{Title: title})
			cur = &sections[len(sections)-1]
		case trimmed == "":
			endParagraph()
		default:
			para = append(para, trimmed)
		}
	}
	endParagraph()
	flushBuffer()

	return sections
}

var blockTags = map[string]bool{
	"p": true, "li": true, "pre": true, "blockquote": true, "div": true,
	"tr": true, "dd": true, "dt": true, "figcaption": true,
}

// HTMLToText renders an HTML fragment as heading-marked plain text that
// SplitSections understands.
func HTMLToText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				skip++
			case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
				b.WriteString("\n\n" + strings.Repeat("#", int(tag[1]-'0')) + " ")
			case blockTags[tag]:
				b.WriteString("\n\n")
			case tag == "br":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if skip > 0 {
					skip--
				}
			case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
				b.WriteString("\n\n")
			case blockTags[tag]:
				b.WriteString("\n\n")
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if text == "" {
				continue
			}
			b.WriteString(text + " ")
		}
	}
}
