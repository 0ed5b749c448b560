package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrations(t *testing.T) {
	names, err := ListMigrations(Migrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_messages.sql", "0002_messages_tuple_key.sql"}, names)
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("0002_messages_tuple_key.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = parseVersion("nodash.sql")
	assert.Error(t, err)
}

func TestRunMigrations(t *testing.T) {
	migrations := fstest.MapFS{
		"0001_first.sql":  {Data: []byte("CREATE TABLE a (id INT)")},
		"0002_second.sql": {Data: []byte("CREATE TABLE b (id INT)")},
		"README.md":       {Data: []byte("ignored")},
	}

	t.Run("AppliesPending", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(createMigrationTable)).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))

		mockPool.ExpectQuery(regexp.QuoteMeta(migrationAppliedQuery)).
			WithArgs(1).
			WillReturnRows(mockPool.NewRows([]string{"exists"}).AddRow(true))

		mockPool.ExpectQuery(regexp.QuoteMeta(migrationAppliedQuery)).
			WithArgs(2).
			WillReturnRows(mockPool.NewRows([]string{"exists"}).AddRow(false))
		mockPool.ExpectBegin()
		mockPool.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mockPool.ExpectExec(regexp.QuoteMeta(recordMigration)).
			WithArgs(2, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectCommit()

		require.NoError(t, RunMigrations(context.Background(), mockPool, migrations))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RollsBackFailedMigration", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(createMigrationTable)).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mockPool.ExpectQuery(regexp.QuoteMeta(migrationAppliedQuery)).
			WithArgs(1).
			WillReturnRows(mockPool.NewRows([]string{"exists"}).AddRow(false))
		mockPool.ExpectBegin()
		mockPool.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).
			WillReturnError(errors.New("syntax error"))
		mockPool.ExpectRollback()

		err = RunMigrations(context.Background(), mockPool, migrations)
		assert.ErrorContains(t, err, "0001_first.sql")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
