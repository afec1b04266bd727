package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only pending migrations", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		for _, m := range migrations {
			exists := m.version < len(migrations)
			mock.ExpectQuery("SELECT EXISTS").
				WithArgs(m.version).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
		}
		last := migrations[len(migrations)-1]
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS notifications").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(last.version, last.name).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		applied, err := Migrate(ctx, db)

		assert.NoError(t, err)
		assert.Equal(t, 1, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed migration rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TYPE user_role").
			WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		applied, err := Migrate(ctx, db)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "1_enums")
		assert.Equal(t, 0, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBConfig_DSN(t *testing.T) {
	c := &DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "wallet", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=wallet sslmode=disable", c.DSN())
}
