// Package marker implements the inline cue marker protocol for the
// narrative document.
//
// The stored document is HTML-like markup in which each cue appears as an
// anchor wrapping an icon image. The icon encodes the cue's visual state:
// the play icon when idle, the stop icon while playing. Persisted markup is
// saved verbatim; playing state is derived and re-applied at render time.
//
// For editing, the markup converts losslessly to a plain-text form in which
// each marker is the token [[cue:ID]].
package marker

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// anchorFormat matches the original cue embedding: an anchor carrying the
// cue: target, wrapping a base64 PNG icon titled with the display name.
const anchorFormat = `<a href="cue:%s" style="text-decoration: none;">` +
	`<img src="data:image/png;base64,%s" width="24" height="24" ` +
	`style="vertical-align: middle; margin: 0 2px;" title="%s" /></a>`

// Ref is one cue marker found in a document.
type Ref struct {
	ID   string
	Name string
}

// TokenPattern matches the editable token form of a marker, capturing the
// cue id.
var TokenPattern = regexp.MustCompile(`\[\[cue:([^\]]+)\]\]`)

var (
	anchorPattern = regexp.MustCompile(
		`(?s)<a href="cue:([^"]*)"[^>]*>\s*<img[^>]*title="([^"]*)"[^>]*/>\s*</a>`)
	paragraphPattern = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
)

// Token returns the editable token form of a marker for id.
func Token(id string) string {
	return "[[cue:" + id + "]]"
}

// Anchor renders the markup for one cue marker in the given state.
func Anchor(id, name string, playing bool) string {
	icon := PlayIcon
	if playing {
		icon = StopIcon
	}
	return fmt.Sprintf(anchorFormat,
		html.EscapeString(id), icon, html.EscapeString(name))
}

// SetPlaying swaps the icon of every marker referencing id to the one for
// the given state, leaving all other markup untouched. Applying the same
// transition twice is a no-op.
func SetPlaying(markup, id string, playing bool) string {
	icon := PlayIcon
	if playing {
		icon = StopIcon
	}
	pattern := regexp.MustCompile(
		`(?s)(<a href="cue:` + regexp.QuoteMeta(html.EscapeString(id)) + `"[^>]*>` +
			`\s*<img[^>]*src="data:image/png;base64,)([^"]*)(".*?</a>)`)
	return pattern.ReplaceAllString(markup, "${1}"+icon+"${3}")
}

// References returns every cue marker in the document, in order.
func References(markup string) []Ref {
	matches := anchorPattern.FindAllStringSubmatch(markup, -1)
	refs := make([]Ref, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Ref{
			ID:   html.UnescapeString(m[1]),
			Name: html.UnescapeString(m[2]),
		})
	}
	return refs
}

// ToDisplay converts stored markup to the editable plain-text form: one
// text line per paragraph, markers as [[cue:ID]] tokens, entities decoded.
func ToDisplay(markup string) string {
	if markup == "" {
		return ""
	}

	s := anchorPattern.ReplaceAllStringFunc(markup, func(a string) string {
		m := anchorPattern.FindStringSubmatch(a)
		return Token(html.UnescapeString(m[1]))
	})

	paragraphs := paragraphPattern.FindAllStringSubmatch(s, -1)
	if paragraphs == nil {
		// Not our paragraph form (e.g. hand-edited file): treat the whole
		// thing as one block, stripping breaks.
		s = strings.ReplaceAll(s, "<br />", "\n")
		return html.UnescapeString(s)
	}

	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		lines = append(lines, html.UnescapeString(p[1]))
	}
	return strings.Join(lines, "\n")
}

// ToMarkup converts editable text back to stored markup. nameFor supplies
// the display label for a cue id; isPlaying selects the icon state so that
// saved markup reflects what is on screen. Unknown ids keep their token
// text verbatim, escaped like any other prose.
func ToMarkup(text string, nameFor func(id string) (string, bool), isPlaying func(id string) bool) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("<p>")
		b.WriteString(lineToMarkup(line, nameFor, isPlaying))
		b.WriteString("</p>")
	}
	return b.String()
}

func lineToMarkup(line string, nameFor func(id string) (string, bool), isPlaying func(id string) bool) string {
	var b strings.Builder
	last := 0
	for _, loc := range TokenPattern.FindAllStringSubmatchIndex(line, -1) {
		b.WriteString(html.EscapeString(line[last:loc[0]]))
		id := line[loc[2]:loc[3]]
		if name, ok := nameFor(id); ok {
			b.WriteString(Anchor(id, name, isPlaying(id)))
		} else {
			b.WriteString(html.EscapeString(line[loc[0]:loc[1]]))
		}
		last = loc[1]
	}
	b.WriteString(html.EscapeString(line[last:]))
	return b.String()
}
