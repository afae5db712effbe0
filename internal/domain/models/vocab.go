package models

// VocabEntry is a single vocabulary item. Entries are immutable once loaded;
// Word is the unique key every downstream stage output is attributed to.
type VocabEntry struct {
	Word       string `json:"word"`
	POS        string `json:"pos"`
	Definition string `json:"definition"`
	Class      string `json:"class"`
}

// Vocabulary is the full ordered entry list for one run, loaded once before
// the pipeline starts.
type Vocabulary []VocabEntry

// Words returns the entry keys in vocabulary order.
func (v Vocabulary) Words() []string {
	words := make([]string, len(v))
	for i, e := range v {
		words[i] = e.Word
	}
	return words
}
