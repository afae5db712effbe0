package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/longregen/lexigen/internal/adapters/metrics"
	"github.com/longregen/lexigen/internal/domain/models"
	"github.com/longregen/lexigen/internal/ports"
)

const (
	scoresFile = "scores.msgpack"
	exportFile = "scores.csv"
)

// ScoreStage rates every (prompt, artifact) pair, normalizes the scores
// across the run, and exports the result set. Unlike the earlier stages it
// always recomputes: scores are cheap relative to generation, so they are
// deliberately not cached.
type ScoreStage struct {
	scorer ports.ImageScorer
	dir    string // output directory for the tabular artifacts
	log    *slog.Logger
}

func NewScoreStage(scorer ports.ImageScorer, dir string, log *slog.Logger) *ScoreStage {
	return &ScoreStage{scorer: scorer, dir: dir, log: log}
}

// Run scores each artifact in vocabulary order (artifact index order within
// an entry), derives normalized scores from the run-global min/max, persists
// the full record set as msgpack, and exports the final CSV.
func (s *ScoreStage) Run(ctx context.Context, vocab models.Vocabulary, prompts map[string]string, images map[string][]string) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord

	for _, entry := range vocab {
		prompt, ok := prompts[entry.Word]
		if !ok {
			return nil, fmt.Errorf("no prompt for %q", entry.Word)
		}
		for _, path := range images[entry.Word] {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read artifact for %q: %w", entry.Word, err)
			}
			raw, err := s.scorer.Score(ctx, prompt, data)
			if err != nil {
				return nil, fmt.Errorf("score artifact for %q: %w", entry.Word, err)
			}
			metrics.ScoresComputed.Inc()
			records = append(records, models.ScoreRecord{
				Word:      entry.Word,
				ImagePath: path,
				Raw:       raw,
			})
		}
	}

	if len(records) == 0 {
		return nil, ErrNoScores
	}

	s.normalize(records)

	if err := s.writeTable(records); err != nil {
		return nil, err
	}
	if err := s.writeExport(records); err != nil {
		return nil, err
	}

	s.log.Info("score stage complete", "records", len(records))
	return records, nil
}

// normalize rescales raw scores to [0,100] using the run's observed min and
// max. When every raw score is identical the rescaling is undefined; all
// normalized scores are set to 0 and a warning is logged.
func (s *ScoreStage) normalize(records []models.ScoreRecord) {
	min, max := records[0].Raw, records[0].Raw
	for _, r := range records[1:] {
		if r.Raw < min {
			min = r.Raw
		}
		if r.Raw > max {
			max = r.Raw
		}
	}

	if max == min {
		s.log.Warn("all raw scores identical, normalized scores set to 0", "raw", min)
		for i := range records {
			records[i].Normalized = 0
		}
		return
	}

	span := max - min
	for i := range records {
		records[i].Normalized = (records[i].Raw - min) / span * 100
	}
}

// writeTable persists the full record set, raw scores included, as a msgpack
// array under the output directory.
func (s *ScoreStage) writeTable(records []models.ScoreRecord) error {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal score table: %w", err)
	}
	path := filepath.Join(s.dir, scoresFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write score table: %w", err)
	}
	return nil
}

// writeExport writes the denormalized CSV with the normalized score exported
// under the "clip" column.
func (s *ScoreStage) writeExport(records []models.ScoreRecord) error {
	path := filepath.Join(s.dir, exportFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"word", "image", "clip"}); err != nil {
		f.Close()
		return fmt.Errorf("write export header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Word, r.ImagePath, strconv.FormatFloat(r.Normalized, 'f', -1, 64)}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write export row for %q: %w", r.Word, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush export csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export csv: %w", err)
	}
	return nil
}
