package summarizer

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"summarly/internal/domain/entity"
)

// Extractive is the statistical summarization engine.
// It ranks sentences with a latent-semantic-analysis-style score built from
// document term frequencies and returns the top-ranked sentences joined with
// spaces. Ranking order is algorithm-defined; the original sentence order is
// not preserved. It needs no external resources and never fails with
// entity.ErrEngineUnavailable.
type Extractive struct {
	metricsRecorder SummaryMetricsRecorder
}

// NewExtractive creates an extractive engine.
// A nil metrics recorder disables instrumentation.
func NewExtractive(metrics SummaryMetricsRecorder) *Extractive {
	if metrics == nil {
		metrics = NoOpSummaryMetrics{}
	}
	return &Extractive{metricsRecorder: metrics}
}

// Strategy implements Engine.
func (e *Extractive) Strategy() entity.Strategy {
	return entity.StrategyExtractive
}

// Summarize returns the params.SentenceCount highest-scoring sentences of the
// input, joined with single spaces. Inputs with fewer sentences than the
// count are returned whole (all sentences, rank order).
func (e *Extractive) Summarize(ctx context.Context, input string, params Params) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", entity.ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params = params.withDefaults()

	sentences := splitSentences(input)
	if len(sentences) == 0 {
		// No terminator in the input; the whole text is one sentence
		sentences = []string{strings.TrimSpace(input)}
	}

	ranked := rankSentences(sentences)
	count := params.SentenceCount
	if count > len(ranked) {
		count = len(ranked)
	}

	summary := strings.Join(ranked[:count], " ")
	e.metricsRecorder.RecordLength(len([]rune(summary)))
	return summary, nil
}

// sentenceEnd matches sentence terminators followed by whitespace or
// end of input.
var sentenceEnd = regexp.MustCompile(`([.!?])(\s+|$)`)

// splitSentences cuts text into trimmed sentences, keeping terminators.
// Empty fragments are dropped.
func splitSentences(input string) []string {
	marked := sentenceEnd.ReplaceAllString(input, "$1\x00")
	var sentences []string
	for _, fragment := range strings.Split(marked, "\x00") {
		if s := strings.TrimSpace(fragment); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// rankSentences orders sentences by descending term-frequency score.
// Each sentence scores the sum of document-wide frequencies of its terms,
// normalized by its term count so long sentences get no free advantage.
// Ties keep input order, which makes ranking deterministic.
func rankSentences(sentences []string) []string {
	freq := make(map[string]int)
	terms := make([][]string, len(sentences))
	for i, sentence := range sentences {
		terms[i] = tokenize(sentence)
		for _, term := range terms[i] {
			freq[term]++
		}
	}

	type scored struct {
		index int
		score float64
	}
	scoredSentences := make([]scored, len(sentences))
	for i := range sentences {
		var sum int
		for _, term := range terms[i] {
			sum += freq[term]
		}
		score := 0.0
		if len(terms[i]) > 0 {
			score = float64(sum) / float64(len(terms[i]))
		}
		scoredSentences[i] = scored{index: i, score: score}
	}

	sort.SliceStable(scoredSentences, func(i, j int) bool {
		return scoredSentences[i].score > scoredSentences[j].score
	})

	ranked := make([]string, len(sentences))
	for i, s := range scoredSentences {
		ranked[i] = sentences[s.index]
	}
	return ranked
}

// tokenize lowercases and splits a sentence into terms, stripping
// surrounding punctuation.
func tokenize(sentence string) []string {
	fields := strings.Fields(strings.ToLower(sentence))
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		term := strings.Trim(field, ".,;:!?()-")
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
