// Package vocab loads the vocabulary CSV into domain entries. Pure function:
// file path in, ordered entries out. A malformed row fails the whole load;
// there is no per-row skipping, so a successful load covers every record.
package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/longregen/lexigen/internal/domain/models"
)

var requiredColumns = []string{"word", "pos", "definition", "class"}

// Load reads the vocabulary CSV at path. The file must carry a header row
// naming the word, pos, definition and class columns (any order, extra
// columns ignored). Duplicate words and empty word/definition cells are
// schema errors.
func Load(path string) (models.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer f.Close()

	entries, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return entries, nil
}

func parse(r io.Reader) (models.Vocabulary, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var entries models.Vocabulary
	seen := make(map[string]bool)
	row := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		entry := models.VocabEntry{
			Word:       strings.TrimSpace(record[cols["word"]]),
			POS:        strings.TrimSpace(record[cols["pos"]]),
			Definition: strings.TrimSpace(record[cols["definition"]]),
			Class:      strings.TrimSpace(record[cols["class"]]),
		}

		if entry.Word == "" {
			return nil, fmt.Errorf("row %d: empty word", row)
		}
		if entry.Definition == "" {
			return nil, fmt.Errorf("row %d: empty definition for %q", row, entry.Word)
		}
		if seen[entry.Word] {
			return nil, fmt.Errorf("row %d: duplicate word %q", row, entry.Word)
		}
		seen[entry.Word] = true

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries")
	}
	return entries, nil
}
