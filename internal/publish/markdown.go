package publish

import (
	"bytes"
	"fmt"
	"strings"

	"replydesk/internal/model"
	"replydesk/internal/mutate"
	"replydesk/internal/resolve"
)

// RenderTemplateMarkdown renders one template page. group is nil for ungrouped templates.
func RenderTemplateMarkdown(t model.Template, group *model.Group) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + t.ID)
	switch {
	case group != nil && strings.TrimSpace(group.Name) != "":
		writeLn("- Group: " + strings.TrimSpace(group.Name) + " (" + group.ID + ")")
	case group != nil:
		writeLn("- Group: " + group.ID)
	default:
		writeLn("- Group: " + string(model.Ungrouped))
	}
	writeLn(fmt.Sprintf("- Position: %d", t.Position))
	if strings.TrimSpace(t.Category) != "" {
		writeLn("- Category: " + strings.TrimSpace(t.Category))
	}
	if strings.TrimSpace(t.Genre) != "" {
		writeLn("- Genre: " + strings.TrimSpace(t.Genre))
	}

	seen := map[string]bool{}
	var tokens []string
	for _, b := range t.Bodies {
		for _, name := range resolve.Extract(b.Body) {
			if !seen[name] {
				seen[name] = true
				tokens = append(tokens, "`"+name+"`")
			}
		}
	}
	if len(tokens) > 0 {
		writeLn("- Tokens: " + strings.Join(tokens, ", "))
	}

	for _, b := range t.Bodies {
		writeLn("")
		writeLn("## Body (" + b.Locale + ")")
		writeLn("")
		writeLn(strings.TrimRight(b.Body, "\n"))
	}
	return buf.String()
}

// RenderBoardIndexMarkdown renders the board order with links to the template pages.
func RenderBoardIndexMarkdown(b *mutate.Board) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn(fmt.Sprintf("# %s templates", b.Domain))
	writeLn("")
	writeLn("Order: " + b.Path)

	lane := func(title string, l mutate.Lane) {
		writeLn("")
		writeLn("## " + title)
		writeLn("")
		if len(l.Templates) == 0 {
			writeLn("_(empty)_")
			return
		}
		for i, t := range l.Templates {
			writeLn(fmt.Sprintf("%d. [%s](templates/%s.md)", i+1, strings.TrimSpace(t.Title), t.ID))
		}
	}
	for _, l := range b.Groups {
		title := string(l.Container)
		if l.Group != nil && strings.TrimSpace(l.Group.Name) != "" {
			title = strings.TrimSpace(l.Group.Name)
		}
		lane(title, l)
	}
	lane("Ungrouped", b.Ungrouped)
	return buf.String()
}
