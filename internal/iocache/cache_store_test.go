package iocache

import (
	"database/sql"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/huangsam/basket/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneBackendCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("master:abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, store.Set("master:abc", []byte("payload"), 1, 123456789))

	_, _, _, err = store.Get("master:abc")
	assert.ErrorIs(t, err, sql.ErrNoRows, "set is a no-op")

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestSQLiteCacheStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(snapshotTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("master:one", []byte("first"), 1, 1000))
	require.NoError(t, store.Set("master:two", []byte("second"), 1, 2000))

	value, version, ts, err := store.Get("master:one")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1000), ts)

	// Upsert replaces the existing entry
	require.NoError(t, store.Set("master:one", []byte("replaced"), 2, 3000))
	value, version, ts, err = store.Get("master:one")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(3000), ts)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(3000, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(2000, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestSQLiteCacheStorePersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(snapshotTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", []byte("v"), 3, 42))
	require.NoError(t, store.Close())

	reopened, err := NewCacheStore(snapshotTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	value, version, _, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
	assert.Equal(t, 3, version)
}

func TestPostgresCacheStoreQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := newCacheStoreFromDB(db, snapshotTable, schema.PostgreSQLBackend, "")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cache_value, cache_version, cache_timestamp FROM "basket_snapshot_cache" WHERE cache_key = $1`)).
		WithArgs("master:abc").
		WillReturnRows(sqlmock.NewRows([]string{"cache_value", "cache_version", "cache_timestamp"}).AddRow([]byte("x"), 1, int64(99)))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (cache_key) DO UPDATE`)).
		WithArgs("master:abc", []byte("y"), 2, int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	value, version, ts, err := store.Get("master:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(99), ts)

	require.NoError(t, store.Set("master:abc", []byte("y"), 2, 100))

	mock.ExpectClose()
	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCacheStoreStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := newCacheStoreFromDB(db, snapshotTable, schema.PostgreSQLBackend, "")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "basket_snapshot_cache"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX(cache_timestamp), MIN(cache_timestamp)`)).
		WillReturnRows(sqlmock.NewRows([]string{"max", "min"}).AddRow(int64(200), int64(100)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT pg_total_relation_size($1)`)).
		WithArgs(snapshotTable).
		WillReturnError(sql.ErrConnDone)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(200, 0), status.LastEntryTime)
	assert.Equal(t, int64(2000), status.TableSizeBytes, "size falls back to a per-row estimate")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "test_table", false},
		{"valid name with numbers", "test_table_123", false},
		{"valid leading underscore", "_cache", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"sql injection", "t; DROP TABLE users", true},
		{"dash", "my-table", true},
		{"quote", `t"x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, []string{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, []string{"?"}, placeholders(schema.SQLiteBackend, 1))
	assert.Empty(t, placeholders(schema.SQLiteBackend, 0))
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key) DO UPDATE"},
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: snapshotTable, backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.contains)
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains []string
	}{
		{schema.MySQLBackend, []string{"`basket_snapshot_cache`", "LONGBLOB", "VARCHAR(255)"}},
		{schema.PostgreSQLBackend, []string{`"basket_snapshot_cache"`, "BYTEA"}},
		{schema.SQLiteBackend, []string{`"basket_snapshot_cache"`, "BLOB", "INTEGER"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			query := getCreateTableQuery(snapshotTable, tt.backend)
			assert.True(t, strings.Contains(query, "CREATE TABLE IF NOT EXISTS"))
			for _, c := range tt.contains {
				assert.Contains(t, query, c)
			}
		})
	}
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, "")
	assert.Error(t, err)

	_, err = NewCacheStore(snapshotTable, "oracle", "")
	assert.Error(t, err)

	_, err = NewCacheStore(snapshotTable, schema.RedisBackend, "not a url")
	assert.Error(t, err)
}

func TestCacheStoreImplNilDB(t *testing.T) {
	store := &CacheStoreImpl{backend: schema.SQLiteBackend}

	_, _, _, err := store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	assert.NoError(t, store.Close())
}

func TestRedisCacheStoreKeys(t *testing.T) {
	store := NewRedisCacheStoreFromClient(nil, snapshotTable)
	assert.Equal(t, "basket_snapshot_cache:master:abc", store.entryKey("master:abc"))
	assert.Equal(t, "basket_snapshot_cache:index", store.indexKey())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "redis", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRedisCacheStoreUnreachable(t *testing.T) {
	_, err := NewRedisCacheStore(snapshotTable, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}
