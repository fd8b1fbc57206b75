package store

import (
	"context"
	"testing"
	"time"

	"habitboard/domain/filter"
	"habitboard/internal/errors"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	db, err := Open(context.Background(), "sqlite3://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Repository{
		"memory": NewMemory(),
		"sqlite": NewSQLRepository(db),
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			v := &View{
				Name:  "Kobiety z pracą",
				Theme: "Ciemny",
				State: filter.State{
					Genders:    []string{"Female"},
					Jobs:       []string{"Yes"},
					StudyHours: &filter.Range{Min: 1, Max: 4.5},
				},
				CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			}
			require.NoError(t, repo.Save(ctx, v))
			require.NotEqual(t, uuid.Nil, v.ID)

			got, err := repo.Get(ctx, v.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(*v, *got); diff != "" {
				t.Errorf("view mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			for i, n := range []string{"a", "b", "c"} {
				require.NoError(t, repo.Save(ctx, &View{Name: n, Theme: "Jasny", CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
			}

			all, err := repo.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "c", all[0].Name)
			assert.Equal(t, "a", all[2].Name)

			two, err := repo.List(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, two, 2)
		})
	}
}

func TestRepositoryDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			v := &View{Name: "x", Theme: "Jasny"}
			require.NoError(t, repo.Save(ctx, v))
			require.NoError(t, repo.Delete(ctx, v.ID))

			_, err := repo.Get(ctx, v.ID)
			assert.True(t, errors.HasCode(err, errors.CodeNotFound))
			err = repo.Delete(ctx, v.ID)
			assert.True(t, errors.HasCode(err, errors.CodeNotFound))
		})
	}
}

func TestSaveRejectsInvalidViews(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			err := repo.Save(ctx, &View{Theme: "Jasny"})
			assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

			err = repo.Save(ctx, &View{Name: "bad", State: filter.State{StudyHours: &filter.Range{Min: 3, Max: 1}}})
			assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
		})
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url    string
		driver string
		dsn    string
	}{
		{"postgres://u:p@localhost/habits?sslmode=disable", "postgres", "postgres://u:p@localhost/habits?sslmode=disable"},
		{"postgresql://localhost/habits", "postgres", "postgresql://localhost/habits"},
		{"sqlite3://data/habitboard.db", "sqlite3", "data/habitboard.db"},
	}
	for _, tt := range tests {
		driver, dsn, err := ParseURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.driver, driver)
		assert.Equal(t, tt.dsn, dsn)
	}

	_, _, err := ParseURL("mysql://localhost/db")
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
	_, _, err = ParseURL("sqlite3://")
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}
