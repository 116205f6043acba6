package database

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// OpenSQLiteReadOnly opens an existing SQLite file without write access.
func OpenSQLiteReadOnly(path string, log interfaces.Logger) (*gorm.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database %s: %w", path, err)
	}

	db, err := gorm.Open(sqlite.Open(SQLiteFileDSN(path, "ro")), &gorm.Config{
		Logger: NewGormLogger(log, 0, false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	// One connection for the whole run.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// SQLiteFileDSN builds a file: URI for path opened in the given mode
// (ro, rw or rwc). Characters such as '?', '#' and '%' in the path are
// percent-encoded so they stay part of the file name.
func SQLiteFileDSN(path, mode string) string {
	u := url.URL{Scheme: "file", OmitHost: true, Path: path, RawQuery: url.Values{"mode": {mode}}.Encode()}
	return u.String()
}

// OpenSQLiteMemory opens a private in-memory database with foreign keys on.
func OpenSQLiteMemory(log interfaces.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: NewGormLogger(log, time.Second, false),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Every new connection would see a fresh, empty database.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
