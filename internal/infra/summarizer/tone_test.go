package summarizer

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"summarly/internal/domain/entity"
)

func TestApplyTone_FormalIsIdentity(t *testing.T) {
	summary := "However, the results were clear. Moreover, they were reproducible."
	assert.Equal(t, summary, ApplyTone(summary, entity.ToneFormal))
}

func TestApplyTone_CasualSubstitutions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "however becomes but",
			input: "However, the test failed.",
			want:  "But the test failed.",
		},
		{
			name:  "moreover becomes also",
			input: "Moreover, coverage improved.",
			want:  "Also, coverage improved.",
		},
		{
			name:  "multiple substitutions in one summary",
			input: "Therefore, we shipped. However, bugs remained.",
			want:  "So, we shipped. But bugs remained.",
		},
		{
			name:  "no matches leaves text unchanged",
			input: "Plain text with no connectives.",
			want:  "Plain text with no connectives.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyTone(tt.input, entity.ToneCasual))
		})
	}
}

func TestApplyTone_Bullet(t *testing.T) {
	got := ApplyTone("First point. Second point.  Third point.", entity.ToneBullet)

	want := "• First point.\n• Second point.\n• Third point."
	assert.Equal(t, want, got)
}

func TestApplyTone_BulletSkipsEmptyFragments(t *testing.T) {
	got := ApplyTone("One... Two.", entity.ToneBullet)

	for _, line := range strings.Split(got, "\n") {
		assert.True(t, strings.HasPrefix(line, "• "))
		assert.Greater(t, len(strings.TrimPrefix(line, "• ")), 1, "no empty bullets")
	}
}

// Applying the bullet tone twice keeps the same sentence set.
func TestApplyTone_BulletStable(t *testing.T) {
	once := ApplyTone("Alpha comes first. Beta follows. Gamma closes.", entity.ToneBullet)
	twice := ApplyTone(once, entity.ToneBullet)

	assert.ElementsMatch(t, bulletSentences(t, once), bulletSentences(t, twice))
}

// bulletSentences re-splits bullet output by the marker into a sorted
// sentence set.
func bulletSentences(t *testing.T, bulleted string) []string {
	t.Helper()
	var sentences []string
	for _, line := range strings.Split(bulleted, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "• ")
		if line != "" {
			sentences = append(sentences, strings.TrimSuffix(line, "."))
		}
	}
	sort.Strings(sentences)
	return sentences
}
