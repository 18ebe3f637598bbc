// Package dataset defines the royalties schema and loads it from CSV files
// into any registered adapter.
package dataset

import (
	"fmt"
	"strings"
)

// Table and view names.
const (
	TableWriter      = "dim_writer"
	TableSong        = "dim_song"
	TableRoyalties   = "fact_royalties"
	ViewCurrentSongs = "current_songs"
)

// ColumnType is the logical type of a column. Each dialect maps it to a
// concrete SQL type.
type ColumnType int

// Column types.
const (
	Integer ColumnType = iota
	Real
	Text
)

// Column describes one table column.
type Column struct {
	Name    string
	Type    ColumnType
	NotNull bool
	// References is "table(column)" for a foreign key, if any.
	References string
}

// Table describes one table and the CSV file it is loaded from.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey string
}

// File returns the CSV file name for the table.
func (t Table) File() string {
	return t.Name + ".csv"
}

// Tables lists the dataset tables in load order.
var Tables = []Table{
	{
		Name: TableWriter,
		Columns: []Column{
			{Name: "writer_id", Type: Integer, NotNull: true},
			{Name: "writer_name", Type: Text, NotNull: true},
		},
		PrimaryKey: "writer_id",
	},
	{
		// A song_id can appear more than once: every title change is a new
		// row with a later etl_date.
		Name: TableSong,
		Columns: []Column{
			{Name: "song_id", Type: Integer, NotNull: true},
			{Name: "title", Type: Text, NotNull: true},
			{Name: "writer_id", Type: Integer, References: "dim_writer(writer_id)"},
			{Name: "etl_date", Type: Text},
		},
	},
	{
		Name: TableRoyalties,
		Columns: []Column{
			{Name: "transaction_id", Type: Text, NotNull: true},
			{Name: "song_id", Type: Integer},
			{Name: "amount_usd", Type: Real},
		},
		PrimaryKey: "transaction_id",
	},
}

func sqlType(dialect string, ct ColumnType) string {
	switch dialect {
	case "postgres":
		switch ct {
		case Integer:
			return "BIGINT"
		case Real:
			// ROUND(x, 2) is only defined for numeric in Postgres.
			return "NUMERIC(12,2)"
		default:
			return "TEXT"
		}
	case "duckdb":
		switch ct {
		case Integer:
			return "BIGINT"
		case Real:
			return "DOUBLE"
		default:
			return "VARCHAR"
		}
	default:
		switch ct {
		case Integer:
			return "INTEGER"
		case Real:
			return "REAL"
		default:
			return "TEXT"
		}
	}
}

// CreateSQL returns the CREATE TABLE statement for dialect.
func (t Table) CreateSQL(dialect string) string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def := c.Name + " " + sqlType(dialect, c.Type)
		if c.Name == t.PrimaryKey {
			def += " PRIMARY KEY"
		} else if c.NotNull {
			def += " NOT NULL"
		}
		if c.References != "" {
			def += " REFERENCES " + c.References
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n)", t.Name, strings.Join(defs, ",\n    "))
}

// InsertSQL returns a single-row INSERT using placeholder for bind markers.
func (t Table) InsertSQL(placeholder func(int) string) string {
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(names, ", "), strings.Join(marks, ", "))
}

// CurrentSongsViewSQL keeps, per song_id, the row with the latest etl_date.
// It is plain SQL so every dialect can run it.
const CurrentSongsViewSQL = `CREATE VIEW current_songs AS
SELECT d1.song_id, d1.title, d1.writer_id
FROM dim_song d1
WHERE d1.etl_date = (
    SELECT MAX(d2.etl_date) FROM dim_song d2
    WHERE d2.song_id = d1.song_id
)`

// SchemaDescription is sent verbatim to the model with every SQL request.
const SchemaDescription = `
You have access to a music publishing royalties database with these tables:

TABLE: dim_writer
- writer_id (INTEGER, PRIMARY KEY): Unique ID for each songwriter
- writer_name (TEXT): Full name of the songwriter

TABLE: dim_song
- song_id (INTEGER): Unique ID for each song (NOTE: a song_id may appear multiple times due to historical title changes)
- title (TEXT): Song title (may have changed over time)
- writer_id (INTEGER, FOREIGN KEY -> dim_writer.writer_id): The songwriter who wrote this song
- etl_date (TEXT): Date this record was loaded. Use the row with the LATEST etl_date per song_id to get the current title.

TABLE: fact_royalties
- transaction_id (TEXT, PRIMARY KEY): Unique transaction ID
- song_id (INTEGER, FOREIGN KEY -> dim_song.song_id): The song this royalty is for
- amount_usd (REAL): Revenue amount in USD

VIEW: current_songs
- A pre-built view that returns only the LATEST title for each song_id.
- Columns: song_id, title, writer_id
- USE THIS VIEW instead of dim_song when joining to fact_royalties to avoid double-counting.

RELATIONSHIPS:
- dim_writer.writer_id -> dim_song.writer_id (one writer has many songs)
- dim_song.song_id -> fact_royalties.song_id (one song has many royalty transactions)
- Use current_songs instead of dim_song for accurate revenue calculations.
`
