package prompt

import (
	"fmt"
	"strings"

	"github.com/forPelevin/podask/internal/types"
)

// NotFound is the exact reply the model is told to give when the excerpts do
// not answer the question.
const NotFound = "I couldn't find that in the available transcripts. Try rephrasing or asking about a different topic."

// Build renders numbered context blocks followed by the answering rules and
// the question.
func Build(question string, excerpts []types.Excerpt) string {
	blocks := make([]string, 0, len(excerpts))
	for i, ex := range excerpts {
		title := ex.EpisodeTitle
		if title == "" {
			title = "Unknown"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "[Context %d]\n", i+1)
		fmt.Fprintf(&b, "Episode  : %s\n", title)
		fmt.Fprintf(&b, "Section  : %s\n", ex.Section)
		fmt.Fprintf(&b, "Timestamp: %s  (second %d)\n", ex.Timestamp, ex.StartSeconds)
		fmt.Fprintf(&b, "Link     : %s\n", ex.DeepLink)
		fmt.Fprintf(&b, "Speakers : %s\n", ex.Speakers)
		fmt.Fprintf(&b, "Content  : %s\n", ex.Text)
		blocks = append(blocks, b.String())
	}

	var b strings.Builder
	b.WriteString(`You are a helpful podcast assistant. You answer questions about podcast episodes
using ONLY the transcript excerpts provided below. You never invent information.

ANSWER FORMAT RULES:
1. Give a concise answer in 2-4 sentences.
2. After each factual claim, cite the source like this:
     [MM:SS] → <YouTube link>
3. If multiple excerpts support the answer, cite all of them.
4. Mention the speaker's name when attributing a statement.
5. If the answer is NOT found in any excerpt below, respond exactly:
   "`)
	b.WriteString(NotFound)
	b.WriteString(`"
6. NEVER make up timestamps, links, or facts.

========================================
TRANSCRIPT EXCERPTS:
`)
	b.WriteString(strings.Join(blocks, "\n---\n"))
	b.WriteString("========================================\n\nQUESTION: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nANSWER:")
	return b.String()
}
