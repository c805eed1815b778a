package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/folio/internal/db/dbtest"
	"github.com/templui/folio/internal/query"
)

type genre struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func TestInsertSelectRoundTrip(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	client := query.New(database)

	res := client.From("users").
		Insert(query.Row{"id": "u1", "email": "reader@example.com", "password": "hash"}).
		Execute(ctx)
	require.NoError(t, res.Err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "reader@example.com", res.Rows[0]["email"])

	got := client.From("users").Select("id, email").Eq("email", "reader@example.com").Single(ctx)
	require.NoError(t, got.Err)
	require.NotNil(t, got.Row())
	assert.Equal(t, query.Row{"id": "u1", "email": "reader@example.com"}, *got.Row())
}

func TestDuplicateInsertIsConstraintError(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()

	insert := func(id string) error {
		return query.From[query.Row](database, "users").
			Insert(query.Row{"id": id, "email": "dup@example.com", "password": "hash"}).
			Single(ctx).Err
	}

	require.NoError(t, insert("u1"))

	err := insert("u2")
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrConstraint)
	assert.Equal(t, query.KindConstraint, query.KindOf(err))
}

func TestSingleWithoutRows(t *testing.T) {
	database := dbtest.Open(t)

	res := query.From[genre](database, "genres").Select("id, name").Eq("name", "Poetry").Single(context.Background())
	require.NoError(t, res.Err)
	assert.Nil(t, res.Row())
}

func TestStructScanOrderLimitAndCount(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()

	for _, g := range []genre{{"g1", "Fantasy"}, {"g2", "Biography"}, {"g3", "Science"}} {
		res := query.From[genre](database, "genres").
			Select("id, name").
			Insert(query.Row{"id": g.ID, "name": g.Name}).
			Single(ctx)
		require.NoError(t, res.Err)
		require.Equal(t, g, *res.Row())
	}

	list := query.From[genre](database, "genres").Select("id, name").Order("name").Limit(2).Execute(ctx)
	require.NoError(t, list.Err)
	assert.Equal(t, []genre{{"g2", "Biography"}, {"g1", "Fantasy"}}, list.Rows)

	names := query.From[string](database, "genres").Select("name").Order("name", query.Desc()).Execute(ctx)
	require.NoError(t, names.Err)
	assert.Equal(t, []string{"Science", "Fantasy", "Biography"}, names.Rows)

	count := query.From[query.Row](database, "genres").Select("*", query.Count()).Execute(ctx)
	require.NoError(t, count.Err)
	assert.EqualValues(t, 3, count.Count)
	assert.Empty(t, count.Rows)
}

func TestUpdateAndDeleteReturnRows(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	client := query.New(database)

	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, client.From("users").
		Insert(query.Row{"id": "u1", "email": "a@example.com", "password": "hash", "session_id": "tok", "session_expires": expires}).
		Single(ctx).Err)

	upd := client.From("users").Update(query.Row{"session_id": nil, "session_expires": nil}).Eq("session_id", "tok").Execute(ctx)
	require.NoError(t, upd.Err)
	assert.EqualValues(t, 1, upd.Count)
	assert.Nil(t, upd.Rows[0]["session_id"])

	again := client.From("users").Update(query.Row{"session_id": nil}).Eq("session_id", "tok").Execute(ctx)
	require.NoError(t, again.Err)
	assert.EqualValues(t, 0, again.Count)

	del := client.From("users").Delete().Eq("id", "u1").Execute(ctx)
	require.NoError(t, del.Err)
	assert.EqualValues(t, 1, del.Count)
}

func TestConflictingModeNeverReachesDatabase(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	res := query.From[query.Row](sqlx.NewDb(mockDB, "sqlmock"), "users").
		Insert(query.Row{"id": "1"}).
		Delete().
		Eq("id", "1").
		Execute(context.Background())

	require.ErrorIs(t, res.Err, query.ErrConflictingMode)
	assert.Equal(t, query.KindInvalid, query.KindOf(res.Err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSingleCarriesDriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \? LIMIT 1`).
		WithArgs("a@example.com").
		WillReturnError(errors.New("boom"))

	res := query.From[query.Row](sqlx.NewDb(mockDB, "sqlmock"), "users").
		Eq("email", "a@example.com").
		Single(context.Background())

	require.Error(t, res.Err)
	assert.Nil(t, res.Row())
	assert.Equal(t, query.KindUnknown, query.KindOf(res.Err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedPoolIsUnavailable(t *testing.T) {
	database := dbtest.Open(t)
	require.NoError(t, database.Close())

	res := query.From[query.Row](database, "users").Single(context.Background())
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, query.ErrUnavailable)
}

func TestCancelledContextIsUnavailable(t *testing.T) {
	database := dbtest.Open(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := query.From[query.Row](database, "users").Execute(ctx)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, query.ErrUnavailable)
}

func TestMissingHandle(t *testing.T) {
	res := query.From[query.Row](nil, "users").Execute(context.Background())
	assert.ErrorIs(t, res.Err, query.ErrUnavailable)
	assert.ErrorIs(t, res.Err, query.ErrNoConnection)
}
