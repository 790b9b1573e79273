package summarizer

import (
	"strings"

	"summarly/internal/domain/entity"
)

// casualReplacer rewrites formal connectives into casual ones.
// This is a fixed literal substitution list, a heuristic restyling rather
// than a rewrite; nothing else about the text changes.
var casualReplacer = strings.NewReplacer(
	"However,", "But",
	"Moreover,", "Also,",
	"Furthermore,", "Also,",
	"Therefore,", "So,",
	"In addition,", "Also,",
	"Nevertheless,", "Still,",
)

// ApplyTone restyles a finished summary without changing its informational
// content. Formal is the identity; unknown tones are treated as formal.
func ApplyTone(summary string, tone entity.Tone) string {
	switch tone {
	case entity.ToneCasual:
		return casualReplacer.Replace(summary)
	case entity.ToneBullet:
		return toBullets(summary)
	default:
		return summary
	}
}

// toBullets renders one bullet line per sentence.
// Fragments are split on period boundaries, trimmed, and emptied fragments
// discarded. A leading bullet marker on a fragment is stripped so the
// transform is stable when applied to already-bulleted text.
func toBullets(summary string) string {
	var lines []string
	for _, fragment := range strings.Split(summary, ".") {
		sentence := strings.TrimSpace(fragment)
		sentence = strings.TrimPrefix(sentence, "• ")
		if sentence == "" {
			continue
		}
		lines = append(lines, "• "+sentence+".")
	}
	if len(lines) == 0 {
		return summary
	}
	return strings.Join(lines, "\n")
}
