package workspace

import (
	"encoding/json"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// indexRow is the GORM-mapped persisted form of a file's index entries
// (spec §3.6: "Workspace index entries are keyed by (file_path,
// content_mtime)"). Grounded on models.Stage/Apply's checksum-row
// pattern from the teacher repository — one row per indexed file, keyed
// by file path with an indexed mtime column; the file's entries are
// stored together as JSON in a text column; see DESIGN.md.
type indexRow struct {
	File        string `gorm:"primaryKey;type:varchar(1024)"`
	MtimeUnixNs int64  `gorm:"index"`
	EntriesJSON string `gorm:"type:text"`
}

// SQLiteIndex is a GORM/SQLite-backed IndexStore: an injectable
// alternative to the default in-memory map for workspaces large enough
// that rebuilding the index on every process start is wasteful. Uses
// glebarez/sqlite, the teacher's own pure-Go, cgo-free SQLite driver.
type SQLiteIndex struct {
	db *gorm.DB
}

// OpenSQLiteIndex opens (creating if absent) a SQLite-backed index store
// at dsn (a file path, or ":memory:").
func OpenSQLiteIndex(dsn string) (*SQLiteIndex, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&indexRow{}); err != nil {
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func (s *SQLiteIndex) Put(file string, mtime int64, entries []Entry) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	row := indexRow{File: file, MtimeUnixNs: mtime, EntriesJSON: string(data)}
	s.db.Save(&row)
}

func (s *SQLiteIndex) Mtime(file string) (int64, bool) {
	var row indexRow
	if err := s.db.First(&row, "file = ?", file).Error; err != nil {
		return 0, false
	}
	return row.MtimeUnixNs, true
}

func (s *SQLiteIndex) All() []Entry {
	var rows []indexRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil
	}
	var out []Entry
	for _, r := range rows {
		var entries []Entry
		if err := json.Unmarshal([]byte(r.EntriesJSON), &entries); err == nil {
			out = append(out, entries...)
		}
	}
	return out
}

func (s *SQLiteIndex) Remove(file string) {
	s.db.Delete(&indexRow{}, "file = ?", file)
}

var _ IndexStore = (*SQLiteIndex)(nil)
