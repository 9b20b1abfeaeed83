package relation

import (
	"fmt"
	"sort"
	"strings"
)

// OtherCategory is the tag the model is told to use when no listed category applies.
const OtherCategory = "other"

const promptTemplate = `Read the title and abstract of the academic paper below and answer the following questions.

- Category: which of these categories does the work mainly belong to? %s
- Explanation: in one sentence, why does it belong there?
- Related: which research subfields is it related to?
- Summary: write a one-sentence summary of the work.

Answer with exactly these four lines and nothing else:
CATEGORY: <category>[, <category>...]
EXPLANATION: <one sentence>
RELATED: <subfield>, <subfield>, ...
SUMMARY: <one sentence>

Title: %s
Abstract: %s`

// BuildPrompt returns the fixed classification prompt for one paper.
func (p *Parser) BuildPrompt(title, abstract string) string {
	var choice string
	if len(p.categories) == 0 {
		choice = "Return a single short lowercase tag."
	} else {
		choice = fmt.Sprintf("Return one or more of: %s. Return %q if none applies.",
			strings.Join(p.categories, ", "), OtherCategory)
	}
	return fmt.Sprintf(promptTemplate, choice, strings.TrimSpace(title), strings.TrimSpace(abstract))
}

func normalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
