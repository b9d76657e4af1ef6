package repository

import (
	"context"
	"os"
	"testing"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresTable opens a table under a fresh sheet name in the database named by
// FLUX_TEST_DATABASE_URL and removes its rows when the test ends.
func newPostgresTable(t *testing.T) Table {
	t.Helper()
	dsn := os.Getenv("FLUX_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FLUX_TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgresConnection(dsn)
	require.NoError(t, err)

	sheet := "test-" + uuid.NewString()[:8]
	table, err := NewGormTable(db, sheet)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Where("sheet = ?", sheet).Delete(&tableRow{})
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return table
}

func TestGormTableAppendAndRead(t *testing.T) {
	table := newPostgresTable(t)
	ctx := context.Background()

	rows, err := table.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, table.AppendRow(ctx, []string{"id", "name"}))
	require.NoError(t, table.AppendRow(ctx, []string{"1", "Login bug"}))

	rows, err = table.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "Login bug"}}, rows)
}

func TestGormTableUpdateCellPadsShortRow(t *testing.T) {
	table := newPostgresTable(t)
	ctx := context.Background()

	require.NoError(t, table.AppendRow(ctx, []string{"a"}))
	require.NoError(t, table.UpdateCell(ctx, 1, 3, "c"))

	rows, err := table.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "", "c"}}, rows)
}

func TestGormTableUpdateCellCreatesMissingRow(t *testing.T) {
	table := newPostgresTable(t)
	ctx := context.Background()

	require.NoError(t, table.AppendRow(ctx, []string{"header"}))
	require.NoError(t, table.UpdateCell(ctx, 4, 2, "x"))

	rows, err := table.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"header"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []string{"", "x"}, rows[3])

	// appends continue after the highest position, not after the gap
	require.NoError(t, table.AppendRow(ctx, []string{"next"}))
	rows, err = table.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"next"}, rows[4])
}

func TestGormTableRejectsInvalidCell(t *testing.T) {
	table := newPostgresTable(t)
	assert.Error(t, table.UpdateCell(context.Background(), 0, 1, "x"))
}

func TestTaskStoreOverPostgres(t *testing.T) {
	table := newPostgresTable(t)
	ctx := context.Background()
	repo := NewTableRepository(table, 0)
	require.NoError(t, repo.Init(ctx))

	id, err := repo.Create(ctx, &domain.NewTask{
		Name:     "Login bug",
		Category: domain.CategoryImage,
		Notes:    "repro on mobile",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	prev, err := repo.UpdateStatus(ctx, id, domain.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInReview, prev)

	tasks, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Login bug", tasks[0].Name)
	assert.Equal(t, domain.StatusDone, tasks[0].Status)
	assert.Equal(t, "repro on mobile", tasks[0].Notes)
}
