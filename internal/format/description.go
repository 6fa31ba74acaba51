// Package format turns free-form product text into headings, lists and paragraphs.
package format

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	List
)

func (k BlockKind) String() string {
	switch k {
	case Heading:
		return "heading"
	case List:
		return "list"
	default:
		return "paragraph"
	}
}

// Block is one structural element of formatted text. Items is only set for lists.
type Block struct {
	Kind  BlockKind
	Text  string
	Items []string
}

type Blocks []Block

// headingPhrases is the closed set of section titles used across product texts.
var headingPhrases = []string{
	"О товаре", "Применение", "Форма поставки", "Срок годности", "Техника безопасности",
	"Подготовка основания", "Способ приготовления", "Способ применения", "Расход",
	"Рекомендации", "ТУ", "Технические характеристики", "Состав", "Внешний вид",

	"About the product", "Application", "Delivery form", "Shelf life", "Safety",
	"Surface preparation", "Preparation method", "Application method", "Consumption",
	"Recommendations", "TU", "Technical characteristics", "Composition", "Appearance",
}

var (
	headingLine  = regexp.MustCompile(`(?i)^(` + alternation(headingPhrases) + `):?$`)
	bulletItem   = regexp.MustCompile(`^[-•][\s\p{Z}\x{FEFF}]`)
	numberedItem = regexp.MustCompile(`^\d+[.)][\s\p{Z}\x{FEFF}]`)
)

func alternation(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(quoted, "|")
}

// Format classifies every non-blank line of text in a single pass. Headings win over
// list items, list items over paragraphs; consecutive list items share one list.
func Format(text string) Blocks {
	var (
		blocks Blocks
		list   *Block
	)
	closeList := func() {
		if list != nil {
			blocks = append(blocks, *list)
			list = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case headingLine.MatchString(line):
			closeList()
			blocks = append(blocks, Block{Kind: Heading, Text: strings.Replace(line, ":", "", 1)})
		case bulletItem.MatchString(line) || numberedItem.MatchString(line):
			if list == nil {
				list = &Block{Kind: List}
			}
			item := bulletItem.ReplaceAllString(line, "")
			item = numberedItem.ReplaceAllString(item, "")
			list.Items = append(list.Items, item)
		default:
			closeList()
			blocks = append(blocks, Block{Kind: Paragraph, Text: line})
		}
	}
	closeList()

	return blocks
}

// PlainText flattens blocks back into lines that Format maps onto the same blocks.
func (b Blocks) PlainText() string {
	var lines []string
	for _, block := range b {
		switch block.Kind {
		case Heading, Paragraph:
			lines = append(lines, block.Text)
		case List:
			for _, item := range block.Items {
				lines = append(lines, "- "+item)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// NewPolicy returns the sanitiser applied to formatted HTML. Catalog texts may carry
// simple inline markup, which is kept; anything scriptable is dropped.
func NewPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "ul", "li", "h3")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// HTML renders blocks as h3, ul/li and p elements. Block text is inserted as markup and
// the result is passed through policy (NewPolicy when nil).
func (b Blocks) HTML(policy *bluemonday.Policy) template.HTML {
	var sb strings.Builder
	for _, block := range b {
		switch block.Kind {
		case Heading:
			sb.WriteString("<h3>" + block.Text + "</h3>")
		case List:
			sb.WriteString("<ul>")
			for _, item := range block.Items {
				sb.WriteString("<li>" + item + "</li>")
			}
			sb.WriteString("</ul>")
		default:
			sb.WriteString("<p>" + block.Text + "</p>")
		}
	}
	if policy == nil {
		policy = NewPolicy()
	}
	return template.HTML(policy.Sanitize(sb.String()))
}
