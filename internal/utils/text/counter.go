// Package text holds the pure text transforms shared by the extraction and
// summarization layers: normalization, word capping, and the counters that
// feed usage metering.
package text

import "unicode/utf8"

// CountRunes returns the length of s in Unicode code points. Usage metering
// bills by characters processed, so multi-byte text (Japanese input is
// common) must not count per byte.
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}
