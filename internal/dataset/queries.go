package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/revagent/pkg/core"
)

// Runner executes a read query. *adapter.Executor implements it.
type Runner interface {
	Run(ctx context.Context, sql string, timeout time.Duration) (*core.ResultSet, error)
}

// Song is one row of the current_songs view.
type Song struct {
	ID       int64
	Title    string
	WriterID int64
}

const currentSongsQuery = "SELECT song_id, title, writer_id FROM current_songs ORDER BY song_id"

// CurrentSongs returns the deduplicated songs ordered by id.
func CurrentSongs(ctx context.Context, r Runner, timeout time.Duration) ([]Song, error) {
	rs, err := r.Run(ctx, currentSongsQuery, timeout)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", ViewCurrentSongs, err)
	}

	songs := make([]Song, 0, rs.Len())
	for i, row := range rs.Rows {
		id, ok1 := row[0].(int64)
		title, ok2 := row[1].(string)
		writer, ok3 := row[2].(int64)
		if !ok1 || !ok2 || (!ok3 && row[2] != nil) {
			return nil, fmt.Errorf("%s row %d: unexpected types %T, %T, %T", ViewCurrentSongs, i+1, row[0], row[1], row[2])
		}
		songs = append(songs, Song{ID: id, Title: title, WriterID: writer})
	}
	return songs, nil
}
