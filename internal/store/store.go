// Package store persists FAQ entries. SQLite is the default backend;
// Postgres and MySQL are available through their database/sql drivers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Entry is one FAQ tag. An entry with a non-empty Link is an alias for the
// entry titled Link on the same server.
type Entry struct {
	ServerID int64
	Title    string
	Contents string
	Image    string
	Link     string
	EditTime time.Time
	Author   string
}

// TitleRef names an entry without loading its body.
type TitleRef struct {
	ServerID int64
	Title    string
}

// Store wraps a database holding the faq table.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures the
// faq table exists. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	return Open(DriverSQLite, dbPath)
}

// Open connects with the named driver and DSN and ensures the faq table
// exists.
func Open(driver, dsn string) (*Store, error) {
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d.driverName == DriverSQLite {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := createTables(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type dialect struct {
	driverName string
	schema     []string
	numbered   bool
	// upsert turns an INSERT of entryColumns into a replace on the
	// (server_id, title) key.
	upsert string
}

const onConflictUpdate = ` ON CONFLICT (server_id, title) DO UPDATE SET
	contents = excluded.contents, image = excluded.image, edit_time = excluded.edit_time,
	author = excluded.author, link = excluded.link`

var dialects = map[string]dialect{
	DriverSQLite: {
		driverName: "sqlite",
		upsert:     onConflictUpdate,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS faq (
				server_id INTEGER NOT NULL,
				title     TEXT NOT NULL,
				contents  TEXT,
				image     TEXT,
				edit_time INTEGER NOT NULL,
				author    TEXT NOT NULL,
				link      TEXT,
				PRIMARY KEY (server_id, title)
			)`,
		},
	},
	DriverPostgres: {
		driverName: "pgx",
		numbered:   true,
		upsert:     onConflictUpdate,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS faq (
				server_id BIGINT NOT NULL,
				title     TEXT NOT NULL,
				contents  TEXT,
				image     TEXT,
				edit_time BIGINT NOT NULL,
				author    TEXT NOT NULL,
				link      TEXT,
				PRIMARY KEY (server_id, title)
			)`,
		},
	},
	DriverMySQL: {
		driverName: "mysql",
		upsert: ` ON DUPLICATE KEY UPDATE
	contents = VALUES(contents), image = VALUES(image), edit_time = VALUES(edit_time),
	author = VALUES(author), link = VALUES(link)`,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS faq (
				server_id BIGINT NOT NULL,
				title     VARCHAR(256) NOT NULL,
				contents  TEXT,
				image     TEXT,
				edit_time BIGINT NOT NULL,
				author    VARCHAR(256) NOT NULL,
				link      VARCHAR(256),
				PRIMARY KEY (server_id, title)
			)`,
		},
	},
}

func createTables(db *sql.DB, d dialect) error {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for drivers that need it.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const entryColumns = `server_id, title, contents, image, edit_time, author, link`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                     Entry
		contents, image, link sql.NullString
		editTime              int64
	)
	err := row.Scan(&e.ServerID, &e.Title, &contents, &image, &editTime, &e.Author, &link)
	if err != nil {
		return Entry{}, err
	}
	e.Contents = contents.String
	e.Image = image.String
	e.Link = link.String
	e.EditTime = time.Unix(editTime, 0).UTC()
	return e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Titles returns the title of every entry on every server.
func (s *Store) Titles(ctx context.Context) ([]TitleRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT server_id, title FROM faq`)
	if err != nil {
		return nil, fmt.Errorf("list faq titles: %w", err)
	}
	defer rows.Close()

	var refs []TitleRef
	for rows.Next() {
		var r TitleRef
		if err := rows.Scan(&r.ServerID, &r.Title); err != nil {
			return nil, fmt.Errorf("scan faq title: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// ServerLinks maps every base entry title on a server to the titles that
// link to it. Base entries without links map to an empty slice; links whose
// target is missing are left out. Link lists are sorted.
func (s *Store) ServerLinks(ctx context.Context, serverID int64) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind(`SELECT title, link FROM faq WHERE server_id = ?`), serverID)
	if err != nil {
		return nil, fmt.Errorf("list server faqs: %w", err)
	}
	defer rows.Close()

	links := make(map[string][]string)
	type alias struct{ title, target string }
	var aliases []alias
	for rows.Next() {
		var (
			title string
			link  sql.NullString
		)
		if err := rows.Scan(&title, &link); err != nil {
			return nil, fmt.Errorf("scan server faq: %w", err)
		}
		if link.Valid && link.String != "" {
			aliases = append(aliases, alias{title, link.String})
			continue
		}
		if _, ok := links[title]; !ok {
			links[title] = []string{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range aliases {
		if l, ok := links[a.target]; ok {
			links[a.target] = append(l, a.title)
		}
	}
	for _, l := range links {
		sort.Strings(l)
	}
	return links, nil
}

// Find retrieves the entry with the exact title on a server.
// Returns nil if the entry is not found.
func (s *Store) Find(ctx context.Context, serverID int64, title string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+entryColumns+` FROM faq WHERE server_id = ? AND title = ?`),
		serverID, title)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find faq entry: %w", err)
	}
	return &e, nil
}

// Add inserts a new entry. A zero EditTime is replaced with the current time.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if err := s.insert(ctx, e, ""); err != nil {
		return fmt.Errorf("add faq entry: %w", err)
	}
	return nil
}

// Upsert inserts e or replaces the entry with the same server and title in
// a single statement.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	if err := s.insert(ctx, e, s.dialect.upsert); err != nil {
		return fmt.Errorf("upsert faq entry: %w", err)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, e Entry, suffix string) error {
	if e.EditTime.IsZero() {
		e.EditTime = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		s.dialect.rebind(`INSERT INTO faq (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`+suffix),
		e.ServerID, e.Title, nullable(e.Contents), nullable(e.Image),
		e.EditTime.Unix(), e.Author, nullable(e.Link),
	)
	return err
}

// Delete removes an entry and reports how many rows were affected.
func (s *Store) Delete(ctx context.Context, serverID int64, title string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.dialect.rebind(`DELETE FROM faq WHERE server_id = ? AND title = ?`),
		serverID, title)
	if err != nil {
		return 0, fmt.Errorf("delete faq entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete faq entry: %w", err)
	}
	return n, nil
}

// Clear removes every entry on a server.
func (s *Store) Clear(ctx context.Context, serverID int64) error {
	_, err := s.db.ExecContext(ctx,
		s.dialect.rebind(`DELETE FROM faq WHERE server_id = ?`), serverID)
	if err != nil {
		return fmt.Errorf("clear server faqs: %w", err)
	}
	return nil
}

// Dump returns every entry on a server, sorted by title.
func (s *Store) Dump(ctx context.Context, serverID int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind(`SELECT `+entryColumns+` FROM faq WHERE server_id = ? ORDER BY title`),
		serverID)
	if err != nil {
		return nil, fmt.Errorf("dump server faqs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan faq entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
