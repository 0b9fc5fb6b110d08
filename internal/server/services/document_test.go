package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	putErr error
	getErr error
	gotKey string
}

func (p *fakePresigner) PresignPut(ctx context.Context, userID string) (string, string, error) {
	if p.putErr != nil {
		return "", "", p.putErr
	}
	return "users/" + userID + "/2024/01/01/x.pdf", "http://signed/put", nil
}

func (p *fakePresigner) PresignGet(ctx context.Context, key string) (string, error) {
	if p.getErr != nil {
		return "", p.getErr
	}
	p.gotKey = key
	return "http://signed/get", nil
}

func newDocumentFixture(t *testing.T) (*DocumentService, *fakeRepoManager, *fakePresigner) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	p := &fakePresigner{}
	return NewDocumentService(db, rm, p, logging.Nop{}), rm, p
}

func TestDocumentCreate(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)

	doc, err := svc.Create(context.Background(), "u-1", "Plan", "users/u-1/plan.pdf", "plan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "u-1", doc.UserID)
	assert.NotEmpty(t, doc.ID)

	_, err = svc.Create(context.Background(), "u-1", "Plan", "", "plan.pdf")
	assert.ErrorIs(t, err, common.ErrValidation)
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "PDF URL is required", ve.Message)
}

func TestDocumentCreate_StoreError(t *testing.T) {
	svc, rm, _ := newDocumentFixture(t)
	rm.d.err = errBoom

	_, err := svc.Create(context.Background(), "u-1", "Plan", "x.pdf", "x.pdf")
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = svc.List(context.Background(), "u-1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestDocumentList_ScopedAndOrdered(t *testing.T) {
	svc, _, _ := newDocumentFixture(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "u-1", "A", "a.pdf", "a.pdf")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "u-1", "B", "b.pdf", "b.pdf")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u-2", "C", "c.pdf", "c.pdf")
	require.NoError(t, err)

	docs, err := svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, b.ID, docs[0].ID)
	assert.Equal(t, a.ID, docs[1].ID)

	docs, err = svc.List(ctx, "u-3")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentUploadURL(t *testing.T) {
	svc, _, p := newDocumentFixture(t)

	key, url, err := svc.UploadURL(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "http://signed/put", url)
	assert.Contains(t, key, "users/u-1/")

	p.putErr = errBoom
	_, _, err = svc.UploadURL(context.Background(), "u-1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestDocumentDownloadURL(t *testing.T) {
	svc, _, p := newDocumentFixture(t)
	ctx := context.Background()

	stored, err := svc.Create(ctx, "u-1", "A", "users/u-1/2024/01/01/a.pdf", "a.pdf")
	require.NoError(t, err)
	external, err := svc.Create(ctx, "u-1", "B", "https://cdn.example.com/b.pdf", "b.pdf")
	require.NoError(t, err)

	url, err := svc.DownloadURL(ctx, "u-1", stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://signed/get", url)
	assert.Equal(t, stored.PDFURL, p.gotKey)

	url, err = svc.DownloadURL(ctx, "u-1", external.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.pdf", url)

	_, err = svc.DownloadURL(ctx, "u-2", stored.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = svc.DownloadURL(ctx, "u-1", "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	p.getErr = errBoom
	_, err = svc.DownloadURL(ctx, "u-1", stored.ID)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestDocumentCreate_RejectsForeignKey(t *testing.T) {
	svc, rm, p := newDocumentFixture(t)
	ctx := context.Background()

	victimKey, _, err := p.PresignPut(ctx, "victim")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "attacker", "steal", victimKey, "x.pdf")
	require.ErrorIs(t, err, common.ErrValidation)
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "pdfUrl", ve.Field)
	assert.Empty(t, rm.d.docs)
}

func TestDocumentDownloadURL_ForeignKeyNotPresigned(t *testing.T) {
	svc, rm, p := newDocumentFixture(t)
	ctx := context.Background()

	// a row written before ownership was checked on create
	doc, err := rm.d.Create(ctx, &models.Document{
		UserID: "attacker",
		Name:   "steal",
		PDFURL: "users/victim/2024/01/01/x.pdf",
	})
	require.NoError(t, err)

	_, err = svc.DownloadURL(ctx, "attacker", doc.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, p.gotKey)
}
