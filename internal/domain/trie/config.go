package trie

// Config controls matching semantics. A Trie copies its Config when it is
// built; it never changes afterwards.
type Config struct {
	// AllowOverlaps keeps overlapping emits. When false, overlaps are resolved
	// longest first, then leftmost.
	AllowOverlaps bool `json:"allow_overlaps"`

	// OnlyWholeWords drops emits touching a letter on either side.
	OnlyWholeWords bool `json:"only_whole_words"`

	// OnlyWholeWordsWhiteSpaceSeparated drops emits not bounded by whitespace
	// or the text edge on both sides.
	OnlyWholeWordsWhiteSpaceSeparated bool `json:"only_whole_words_white_space_separated"`

	// IgnoreCase folds keywords and scanned text to lower case, rune by rune.
	IgnoreCase bool `json:"ignore_case"`

	// StopOnHit ends a scan at the first emit the handler accepts.
	StopOnHit bool `json:"stop_on_hit"`
}

// DefaultConfig allows overlaps and enables nothing else.
func DefaultConfig() Config {
	return Config{AllowOverlaps: true}
}
