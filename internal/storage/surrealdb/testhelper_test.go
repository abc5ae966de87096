package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/testutil"
	surreal "github.com/surrealdb/surrealdb.go"
)

// testDatabase returns a database name unique to the test.
// SurrealDB rejects "/" in database names, which subtests produce.
func testDatabase(t *testing.T) string {
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
}

// testDB starts the shared SurrealDB container and returns a connected *surreal.DB
// with the records table defined.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	sc := testutil.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	if err := db.Use(ctx, "tally_test", testDatabase(t)); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}
	if _, err := surreal.Query[any](ctx, db, "DEFINE TABLE IF NOT EXISTS records SCHEMALESS", nil); err != nil {
		t.Fatalf("define records table: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
