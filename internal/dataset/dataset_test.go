package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/revagent/internal/adapter"
	"github.com/leapstack-labs/revagent/internal/testutil"
)

const dataDir = "../../data"

func loadInto(t *testing.T, typ string) (adapter.Adapter, *Stats) {
	t.Helper()
	ctx := context.Background()

	a, err := adapter.NewAdapter(adapter.Config{Type: typ}, nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(ctx, adapter.Config{Type: typ, Path: ":memory:"}))
	t.Cleanup(func() { _ = a.Close() })

	stats, err := Load(ctx, a, dataDir, testutil.NewTestLogger(t))
	require.NoError(t, err)
	return a, stats
}

func scalar(t *testing.T, a adapter.Adapter, sql string) any {
	t.Helper()
	rs, err := adapter.NewExecutor(a, nil).Run(context.Background(), sql, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	return rs.Rows[0][0]
}

func TestLoad_SQLite(t *testing.T) {
	a, stats := loadInto(t, "sqlite")

	assert.Equal(t, 5, stats.Rows(TableWriter))
	assert.Equal(t, 22, stats.Rows(TableSong))
	assert.Equal(t, 100, stats.Rows(TableRoyalties))
	assert.Equal(t, -1, stats.Rows("nope"))

	assert.Equal(t, int64(20), scalar(t, a, "SELECT COUNT(*) FROM current_songs"))
}

func TestLoad_ViewAvoidsDoubleCounting(t *testing.T) {
	a, _ := loadInto(t, "sqlite")

	viaView := scalar(t, a, `
		SELECT ROUND(SUM(fr.amount_usd), 2)
		FROM fact_royalties fr
		JOIN current_songs cs ON fr.song_id = cs.song_id
		JOIN dim_writer dw ON cs.writer_id = dw.writer_id
		WHERE dw.writer_name = 'Alex Park'`)
	assert.Equal(t, 4644.75, viaView)

	// Joining the raw dimension counts the historical title rows too.
	naive := scalar(t, a, `
		SELECT ROUND(SUM(fr.amount_usd), 2)
		FROM fact_royalties fr
		JOIN dim_song ds ON fr.song_id = ds.song_id
		JOIN dim_writer dw ON ds.writer_id = dw.writer_id
		WHERE dw.writer_name = 'Alex Park'`)
	assert.Equal(t, 7508.5, naive)
}

func TestLoad_DuckDB(t *testing.T) {
	a, stats := loadInto(t, "duckdb")

	assert.Equal(t, 100, stats.Rows(TableRoyalties))
	assert.Equal(t, int64(20), scalar(t, a, "SELECT COUNT(*) FROM current_songs"))
	assert.Equal(t, 4644.75, scalar(t, a, `
		SELECT ROUND(SUM(fr.amount_usd), 2)
		FROM fact_royalties fr
		JOIN current_songs cs ON fr.song_id = cs.song_id
		WHERE cs.writer_id = 101`))
}

func TestLoad_IsRepeatable(t *testing.T) {
	a, _ := loadInto(t, "sqlite")

	_, err := Load(context.Background(), a, dataDir, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), scalar(t, a, "SELECT COUNT(*) FROM fact_royalties"))
}

func TestCurrentSongs(t *testing.T) {
	a, _ := loadInto(t, "sqlite")

	songs, err := CurrentSongs(context.Background(), adapter.NewExecutor(a, nil), time.Second)
	require.NoError(t, err)
	require.Len(t, songs, 20)

	assert.Equal(t, Song{ID: 1, Title: "Starlight", WriterID: 101}, songs[0])
	for i, s := range songs {
		assert.Equal(t, int64(i+1), s.ID, "songs are ordered by id")
		assert.NotContains(t, s.Title, "(Draft)")
		assert.NotContains(t, s.Title, "(Original)")
	}
}

func TestCheckFiles(t *testing.T) {
	assert.Empty(t, CheckFiles(dataDir))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dim_writer.csv"), []byte("writer_id,writer_name\n"), 0o600))

	errs := CheckFiles(dir)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrMissingFile)
	}
	assert.Contains(t, errs[0].Error(), "dim_song.csv")
	assert.Contains(t, errs[1].Error(), "fact_royalties.csv")
}

func TestLoad_MissingFiles(t *testing.T) {
	a, err := adapter.NewAdapter(adapter.Config{Type: "sqlite"}, nil)
	require.NoError(t, err)
	require.NoError(t, a.Connect(context.Background(), adapter.Config{}))
	defer a.Close()

	_, err = Load(context.Background(), a, t.TempDir(), nil)
	require.ErrorIs(t, err, ErrMissingFile)
}

func TestRequiredFiles(t *testing.T) {
	assert.Equal(t, []string{"dim_writer.csv", "dim_song.csv", "fact_royalties.csv"}, RequiredFiles())
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadTable(t *testing.T) {
	royalties := Tables[2]

	tests := []struct {
		name    string
		content string
		want    [][]any
		errMsg  string
	}{
		{
			name:    "typed values",
			content: "transaction_id,song_id,amount_usd\nTX1,3,12.5\nTX2,,\n",
			want:    [][]any{{"TX1", int64(3), 12.5}, {"TX2", nil, nil}},
		},
		{
			name:    "byte order mark and reordered header",
			content: "\xef\xbb\xbfamount_usd,transaction_id,song_id\n1.25,TX9,4\n",
			want:    [][]any{{"TX9", int64(4), 1.25}},
		},
		{
			name:    "missing column",
			content: "transaction_id,amount_usd\nTX1,1\n",
			errMsg:  "missing columns song_id",
		},
		{
			name:    "bad integer",
			content: "transaction_id,song_id,amount_usd\nTX1,three,1\n",
			errMsg:  `:2: column song_id: invalid integer "three"`,
		},
		{
			name:    "bad number",
			content: "transaction_id,song_id,amount_usd\nTX1,3,lots\n",
			errMsg:  `invalid number "lots"`,
		},
		{
			name:    "required value",
			content: "transaction_id,song_id,amount_usd\n,3,1\n",
			errMsg:  "column transaction_id: value is required",
		},
		{
			name:    "header only",
			content: "transaction_id,song_id,amount_usd\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadTable(context.Background(), writeCSV(t, tt.content), royalties)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestReadTable_Missing(t *testing.T) {
	_, err := ReadTable(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Tables[0])
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestCreateSQL(t *testing.T) {
	writer := Tables[0]

	assert.Equal(t,
		"CREATE TABLE dim_writer (\n    writer_id INTEGER PRIMARY KEY,\n    writer_name TEXT NOT NULL\n)",
		writer.CreateSQL("sqlite"))
	assert.Contains(t, writer.CreateSQL("duckdb"), "writer_name VARCHAR NOT NULL")
	assert.Contains(t, Tables[2].CreateSQL("postgres"), "amount_usd NUMERIC(12,2)")
	assert.Contains(t, Tables[1].CreateSQL("sqlite"), "writer_id INTEGER REFERENCES dim_writer(writer_id)")
}

func TestInsertSQL(t *testing.T) {
	pg := adapter.NewPostgresAdapter(nil)
	assert.Equal(t,
		"INSERT INTO dim_writer (writer_id, writer_name) VALUES ($1, $2)",
		Tables[0].InsertSQL(pg.Placeholder))
	assert.Equal(t,
		"INSERT INTO fact_royalties (transaction_id, song_id, amount_usd) VALUES (?, ?, ?)",
		Tables[2].InsertSQL(func(int) string { return "?" }))
}

func TestSchemaDescription(t *testing.T) {
	for _, name := range []string{TableWriter, TableSong, TableRoyalties, ViewCurrentSongs} {
		assert.Contains(t, SchemaDescription, name)
	}
}
