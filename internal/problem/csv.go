// internal/problem/csv.go
//
// CSV problem source.
//
// Format (one header row, then one problem per row):
//   number,difficulty,luck,code,v1,v2,...
//
// Every field after the code is a validator id. A row that cannot be parsed
// aborts the whole load with the offending line number.
//
// Source selection (CSVRepository.Load):
//   1. Path set   → read that file.
//   2. Path empty → fall back to the embedded assets/known_problems.csv.

package problem

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/robalobadob/turing/assets"
)

// Repository yields raw problem records from some source.
type Repository interface {
	Load(ctx context.Context) ([]Definition, error)
}

var ErrMalformedRow = errors.New("malformed problem row")

// minColumns is number, difficulty, luck, code and at least one validator.
const minColumns = 5

// CSVRepository reads Definitions from a CSV file or the embedded default.
type CSVRepository struct {
	Path string
}

// NewCSVRepository returns a repository for path ("" selects the embedded set).
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{Path: path}
}

// Load reads and parses the configured source.
func (c *CSVRepository) Load(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Path == "" {
		f, err := assets.FS.Open(assets.KnownProblems)
		if err != nil {
			return nil, fmt.Errorf("open embedded problems: %w", err)
		}
		defer f.Close()
		return ParseCSV(f)
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open problems file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV parses the problem CSV format. The first row is a header and is
// skipped.
func ParseCSV(r io.Reader) ([]Definition, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	var out []Definition
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read problems: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}
		d, err := parseRow(rec, line)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseRow(rec []string, line int) (Definition, error) {
	if len(rec) < minColumns {
		return Definition{}, fmt.Errorf("line %d: %w: want at least %d columns, got %d",
			line, ErrMalformedRow, minColumns, len(rec))
	}
	ints := make([]int, 0, len(rec))
	for i, field := range rec {
		if i == 3 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return Definition{}, fmt.Errorf("line %d column %d: %w: %q", line, i+1, ErrMalformedRow, field)
		}
		ints = append(ints, n)
	}
	return Definition{
		Number:       ints[0],
		Line:         line,
		Difficulty:   ints[1],
		Luck:         ints[2],
		Secret:       strings.TrimSpace(rec[3]),
		ValidatorIDs: ints[3:],
	}, nil
}
