package documents

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ = `(?s)^INSERT\s+INTO\s+documents\s*\(user_id,\s*name,\s*pdf_url,\s*original_file_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`
	listQ   = `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*pdf_url,\s*original_file_name,\s*created_at,\s*updated_at\s+FROM\s+documents\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`
	getQ    = `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*pdf_url,\s*original_file_name,\s*created_at,\s*updated_at\s+FROM\s+documents\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
)

var docCols = []string{"id", "user_id", "name", "pdf_url", "original_file_name", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "Plan", "users/u-1/plan.pdf", "plan.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("d-1", now, now))

	doc, err := repo.Create(context.Background(), &models.Document{
		UserID: "u-1", Name: "Plan", PDFURL: "users/u-1/plan.pdf", OriginalFileName: "plan.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "d-1", doc.ID)
	assert.True(t, doc.CreatedAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("fk violation"))

	_, err := repo.Create(context.Background(), &models.Document{UserID: "u-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestListByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	t1 := time.Now()
	t0 := t1.Add(-time.Hour)

	mock.ExpectQuery(listQ).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("d-2", "u-1", "B", "b.pdf", "b.pdf", t1, t1).
			AddRow("d-1", "u-1", "A", "a.pdf", "a.pdf", t0, t0))

	docs, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d-2", docs[0].ID)
	assert.Equal(t, "d-1", docs[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WithArgs("u-9").WillReturnRows(sqlmock.NewRows(docCols))

	docs, err := repo.ListByOwner(context.Background(), "u-9")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestListByOwner_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("u-1").WillReturnError(errors.New("boom"))
	_, err := repo.ListByOwner(context.Background(), "u-1")
	require.Error(t, err)

	mock.ExpectQuery(listQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("d-1", "u-1", "A", "a.pdf", "a.pdf", time.Now(), time.Now()).
			RowError(0, errors.New("row broke")))
	_, err = repo.ListByOwner(context.Background(), "u-1")
	require.Error(t, err)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(getQ).WithArgs("d-1", "u-1").
		WillReturnRows(sqlmock.NewRows(docCols).AddRow("d-1", "u-1", "A", "a.pdf", "a.pdf", now, now))
	mock.ExpectQuery(getQ).WithArgs("d-1", "u-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(getQ).WithArgs("d-3", "u-1").WillReturnError(errors.New("boom"))

	doc, err := repo.GetByID(context.Background(), "d-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", doc.PDFURL)

	_, err = repo.GetByID(context.Background(), "d-1", "u-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), "d-3", "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
