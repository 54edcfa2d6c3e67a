package data

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lk2023060901/ai-notebook-backend/internal/assistant/types"
	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type memoryKV struct {
	values map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string][]byte{}}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, redis.ErrNil
	}
	return v, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memoryKV) Rename(_ context.Context, key, newKey string) error {
	v, ok := m.values[key]
	if !ok {
		return errors.New("ERR no such key")
	}
	m.values[newKey] = v
	delete(m.values, key)
	return nil
}

func TestRedisPersister(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	p := NewRedisPersister(kv, "notebook:snapshot")

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Sessions)

	snap.Sessions = append(snap.Sessions, &types.Session{ID: "s1", Title: "t"})
	require.NoError(t, p.Save(ctx, snap))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Sessions, 1)
	assert.Equal(t, "s1", loaded.Sessions[0].ID)
}

func TestRedisPersisterCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	kv.values["notebook:snapshot"] = []byte("garbage")

	p := NewRedisPersister(kv, "notebook:snapshot")
	p.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, err := p.Load(ctx)
	require.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Equal(t, []byte("garbage"), kv.values["notebook:snapshot.bak_1700000000"])
	_, exists := kv.values["notebook:snapshot"]
	assert.False(t, exists)
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestPostgresPersisterLoadMissing(t *testing.T) {
	db, mock := newMockGorm(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notebook_snapshots" WHERE name = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "payload", "updated_at"}))

	snap, err := NewPostgresPersister(db, "default").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Documents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPersisterLoad(t *testing.T) {
	db, mock := newMockGorm(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notebook_snapshots" WHERE name = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "payload", "updated_at"}).
			AddRow("default", `{"files":[],"chat_history":[{"id":"s1","title":"t"}],"chat_messages":{}}`, time.Now()))

	snap, err := NewPostgresPersister(db, "default").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, "s1", snap.Sessions[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPersisterSave(t *testing.T) {
	db, mock := newMockGorm(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notebook_snapshots"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPostgresPersister(db, "default").Save(context.Background(), NewSnapshot())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
