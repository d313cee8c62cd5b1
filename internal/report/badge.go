package report

import (
	"fmt"
	"io"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
)

// ProjectURL is where every badge links.
const ProjectURL = "https://github.com/syntaxai/cargo-syntax"

const badgeAlt = "Token Efficiency"

// Badge is a shields.io badge for a project's token efficiency.
type Badge struct {
	Ratio float64     `json:"ratio"`
	Grade grade.Grade `json:"grade"`
	URL   string      `json:"url"`
	Link  string      `json:"link"`
}

// NewBadge builds the badge for a tokens-per-line ratio.
func NewBadge(ratio float64) *Badge {
	g := grade.Of(ratio)
	return &Badge{
		Ratio: ratio,
		Grade: g,
		URL: fmt.Sprintf("https://img.shields.io/badge/token_efficiency-%s%%20(%.1f%%20T/L)-%s",
			g.URLLetter, ratio, g.Color),
		Link: ProjectURL,
	}
}

// Markdown is the badge as a Markdown image link.
func (b *Badge) Markdown() string {
	return fmt.Sprintf("[![%s](%s)](%s)", badgeAlt, b.URL, b.Link)
}

// HTML is the badge as an anchored img tag.
func (b *Badge) HTML() string {
	return fmt.Sprintf(`<a href="%s"><img src="%s" alt="%s"></a>`, b.Link, b.URL, badgeAlt)
}

// RST is the badge as a reStructuredText image directive.
func (b *Badge) RST() string {
	return fmt.Sprintf(".. image:: %s\n   :target: %s\n   :alt: %s", b.URL, b.Link, badgeAlt)
}

func (b *Badge) RenderText(w io.Writer, colored bool) error {
	fmt.Fprintln(w, "Markdown:")
	fmt.Fprintln(w, b.Markdown())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "HTML:")
	fmt.Fprintln(w, b.HTML())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "reStructuredText:")
	fmt.Fprintln(w, b.RST())
	return nil
}

func (b *Badge) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, b.Markdown())
	return nil
}

type badgeData struct {
	Ratio    float64 `json:"ratio"`
	Grade    string  `json:"grade"`
	Color    string  `json:"color"`
	URL      string  `json:"url"`
	Link     string  `json:"link"`
	Markdown string  `json:"markdown"`
	HTML     string  `json:"html"`
	RST      string  `json:"rst"`
}

func (b *Badge) RenderData() any {
	return badgeData{
		Ratio:    b.Ratio,
		Grade:    b.Grade.Letter,
		Color:    b.Grade.Color,
		URL:      b.URL,
		Link:     b.Link,
		Markdown: b.Markdown(),
		HTML:     b.HTML(),
		RST:      b.RST(),
	}
}
