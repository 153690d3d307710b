package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"stockscope/internal/domain"
)

// RankingRecord is the Parquet schema for one exported ranking row.
type RankingRecord struct {
	GeneratedAt      int64    `parquet:"generated_at,timestamp(millisecond)"` // Unix ms
	Rank             int32    `parquet:"rank"`
	Symbol           string   `parquet:"symbol"`
	Score            int32    `parquet:"score"`
	PERatio          *float64 `parquet:"pe_ratio,optional"`
	DividendYield    float64  `parquet:"dividend_yield"`
	ReturnSinceClose float64  `parquet:"return_since_close"`
	Weight           float64  `parquet:"weight"`
	BestPick         bool     `parquet:"best_pick"`
	Justification    string   `parquet:"justification"`
}

// WriteRankingParquet writes one row per ranked entry, in rank order, to
// path. Parent directories are created as needed and an existing file is
// replaced.
func WriteRankingParquet(path string, ranking domain.Ranking, generatedAt time.Time) error {
	if len(ranking.Entries) == 0 {
		return fmt.Errorf("writing %s: empty ranking", path)
	}

	records := make([]RankingRecord, 0, len(ranking.Entries))
	for i, e := range ranking.Entries {
		r := RankingRecord{
			GeneratedAt:      generatedAt.UnixMilli(),
			Rank:             int32(i + 1),
			Symbol:           e.Symbol,
			Score:            int32(e.Score),
			PERatio:          e.PERatio,
			DividendYield:    e.DividendYield,
			ReturnSinceClose: e.ReturnSinceClose,
			Weight:           e.Weight,
		}
		if i == 0 {
			r.BestPick = true
			r.Justification = ranking.Justification
		}
		records = append(records, r)
	}

	if err := writeParquetFile(path, records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadRankingParquet reads a file written by WriteRankingParquet.
func ReadRankingParquet(path string) ([]RankingRecord, error) {
	records, err := readParquetFile[RankingRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

func writeParquetFile[T any](path string, records []T) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
