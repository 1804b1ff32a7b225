package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/smith3v/family-medicine-manager/pkg/db"
)

var dbCounter atomic.Int64

// SetupTestDB installs a private, migrated in-memory database as db.DB for
// the duration of the test.
func SetupTestDB(t *testing.T) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	gdb, err := db.Open(dsn, "silent")
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
		db.DB = nil
	})
}
