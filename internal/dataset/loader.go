package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/revagent/internal/adapter"
)

// ErrMissingFile is wrapped by errors for data files that do not exist.
var ErrMissingFile = errors.New("data file not found")

var utf8BOM = []byte("\xef\xbb\xbf")

// TableStats reports how many rows were loaded into a table.
type TableStats struct {
	Table string
	Rows  int
}

// Stats summarizes a Load.
type Stats struct {
	Tables  []TableStats
	Elapsed time.Duration
}

// Rows returns the row count loaded into table, or -1 if it was not loaded.
func (s *Stats) Rows(table string) int {
	for _, t := range s.Tables {
		if t.Table == table {
			return t.Rows
		}
	}
	return -1
}

// RequiredFiles returns the CSV file names the dataset is built from.
func RequiredFiles() []string {
	files := make([]string, len(Tables))
	for i, t := range Tables {
		files[i] = t.File()
	}
	return files
}

// CheckFiles returns one error per required file missing from dir.
func CheckFiles(dir string) []error {
	var errs []error
	for _, name := range RequiredFiles() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingFile, path))
				continue
			}
			errs = append(errs, fmt.Errorf("checking %s: %w", path, err))
		}
	}
	return errs
}

// Load builds the dataset in a from the CSV files in dir.
//
// The files are parsed concurrently; tables are then created and filled one
// at a time on a single connection, and the current_songs view is created
// last. Existing dataset tables are dropped first.
func Load(ctx context.Context, a adapter.Adapter, dir string, logger *slog.Logger) (*Stats, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	start := time.Now()

	if errs := CheckFiles(dir); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	parsed := make([][][]any, len(Tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range Tables {
		g.Go(func() error {
			rows, err := ReadTable(gctx, filepath.Join(dir, t.File()), t)
			if err != nil {
				return err
			}
			parsed[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dialect := a.DialectName()
	if err := dropExisting(ctx, a); err != nil {
		return nil, err
	}

	stats := &Stats{}
	for i, t := range Tables {
		if err := a.Exec(ctx, t.CreateSQL(dialect)); err != nil {
			return nil, fmt.Errorf("creating %s: %w", t.Name, err)
		}
		insert := t.InsertSQL(a.Placeholder)
		for n, row := range parsed[i] {
			if err := a.Exec(ctx, insert, row...); err != nil {
				return nil, fmt.Errorf("inserting row %d into %s: %w", n+1, t.Name, err)
			}
		}
		logger.Info("loaded table", "table", t.Name, "rows", len(parsed[i]))
		stats.Tables = append(stats.Tables, TableStats{Table: t.Name, Rows: len(parsed[i])})
	}

	if err := a.Exec(ctx, CurrentSongsViewSQL); err != nil {
		return nil, fmt.Errorf("creating %s view: %w", ViewCurrentSongs, err)
	}
	logger.Info("created deduplication view", "view", ViewCurrentSongs)

	stats.Elapsed = time.Since(start)
	return stats, nil
}

func dropExisting(ctx context.Context, a adapter.Adapter) error {
	if err := a.Exec(ctx, "DROP VIEW IF EXISTS "+ViewCurrentSongs); err != nil {
		return fmt.Errorf("dropping %s: %w", ViewCurrentSongs, err)
	}
	for i := len(Tables) - 1; i >= 0; i-- {
		if err := a.Exec(ctx, "DROP TABLE IF EXISTS "+Tables[i].Name); err != nil {
			return fmt.Errorf("dropping %s: %w", Tables[i].Name, err)
		}
	}
	return nil
}

// ReadTable parses the CSV file at path into typed rows for t.
//
// The header must name every column of t, in any order. A UTF-8 byte order
// mark is ignored. Empty fields become NULL.
func ReadTable(ctx context.Context, path string, t Table) ([][]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}

	order, err := columnOrder(header, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows [][]any
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		line, _ := r.FieldPos(0)
		row := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			v, err := convert(record[order[i]], col)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: column %s: %w", path, line, col.Name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnOrder maps each table column to its index in the CSV header.
func columnOrder(header []string, t Table) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	order := make([]int, len(t.Columns))
	var missing []string
	for i, c := range t.Columns {
		idx, ok := index[c.Name]
		if !ok {
			missing = append(missing, c.Name)
			continue
		}
		order[i] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing columns %s for table %s", strings.Join(missing, ", "), t.Name)
	}
	return order, nil
}

func convert(field string, col Column) (any, error) {
	s := strings.TrimSpace(field)
	if s == "" {
		if col.NotNull {
			return nil, errors.New("value is required")
		}
		return nil, nil
	}
	switch col.Type {
	case Integer:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return v, nil
	case Real:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return v, nil
	default:
		return field, nil
	}
}
