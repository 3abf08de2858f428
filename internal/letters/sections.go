package letters

import (
	"fmt"
	"slices"
	"strings"

	"github.com/finchlaw/redress/internal/ai"
)

// Flatten renders letter sections as a single markdown document.
// Sections are ordered by their Order field; each becomes a level-two
// heading followed by its content, separated by blank lines.
func Flatten(sections []ai.Section) string {
	ordered := slices.Clone(sections)
	slices.SortStableFunc(ordered, func(a, b ai.Section) int {
		return a.Order - b.Order
	})

	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s", s.Title, strings.TrimSpace(s.Content)))
	}

	return strings.Join(parts, "\n\n")
}

// ParseSections recovers the section structure from flattened markdown.
// Every level-two heading starts a section; its type is derived from the
// slugified title, so sections written by Flatten round-trip. Text
// before the first heading is ignored.
func ParseSections(content string) []ai.Section {
	var sections []ai.Section
	var current *ai.Section

	for line := range strings.Lines(content) {
		if title, ok := strings.CutPrefix(line, "## "); ok {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, *current)
			}
			title = strings.TrimSpace(title)
			current = &ai.Section{
				Type:  slug(title),
				Title: title,
				Order: len(sections) + 1,
			}
			continue
		}

		if current != nil {
			current.Content += line
		}
	}

	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		sections = append(sections, *current)
	}

	return sections
}

func slug(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
