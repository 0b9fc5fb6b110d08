package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/otps"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

// --- users ---

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	findErr   error
	createErr error
	updateErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	r.nextID++
	cp := *u
	cp.ID = fmt.Sprintf("u-%d", r.nextID)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id string, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

// --- one-time codes ---

type memCodes struct {
	mu     sync.Mutex
	codes  []*models.OneTimeCode
	nextID int

	createErr error
	findErr   error
	deleteErr error
}

func (r *memCodes) Create(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	otp := &models.OneTimeCode{ID: fmt.Sprintf("c-%d", r.nextID), Email: email, Code: code, CreatedAt: time.Now()}
	r.codes = append(r.codes, otp)
	return otp, nil
}

func (r *memCodes) Find(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for i := len(r.codes) - 1; i >= 0; i-- {
		if c := r.codes[i]; c.Email == email && c.Code == code {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memCodes) Delete(ctx context.Context, otp *models.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.codes[:0]
	for _, c := range r.codes {
		if c.ID != otp.ID {
			kept = append(kept, c)
		}
	}
	r.codes = kept
	return nil
}

func (r *memCodes) DeleteByEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.codes[:0]
	for _, c := range r.codes {
		if c.Email != email {
			kept = append(kept, c)
		}
	}
	r.codes = kept
	return nil
}

func (r *memCodes) latest() *models.OneTimeCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.codes) == 0 {
		return nil
	}
	return r.codes[len(r.codes)-1]
}

func (r *memCodes) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

// --- documents ---

type memDocs struct {
	mu     sync.Mutex
	docs   []*models.Document
	nextID int
	err    error
}

func (r *memDocs) Create(ctx context.Context, d *models.Document) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	cp := *d
	cp.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.nextID)
	cp.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	cp.UpdatedAt = cp.CreatedAt
	r.docs = append(r.docs, &cp)
	return &cp, nil
}

func (r *memDocs) ListByOwner(ctx context.Context, userID string) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Document, 0)
	for _, d := range r.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memDocs) GetByID(ctx context.Context, id, userID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, d := range r.docs {
		if d.ID == id && d.UserID == userID {
			return d, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- manager ---

type fakeRepoManager struct {
	u *memUsers
	c *memCodes
	d *memDocs

	// codes, when set, stands in for an external store outside the SQL
	// transaction.
	codes otps.Repository
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newMemUsers(), c: &memCodes{}, d: &memDocs{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Documents(db dbx.DBTX) documents.Repository  { return m.d }
func (m *fakeRepoManager) OneTimeCodesInTx() bool                      { return m.codes == nil }

func (m *fakeRepoManager) OneTimeCodes(db dbx.DBTX) otps.Repository {
	if m.codes != nil {
		return m.codes
	}
	return m.c
}

// --- collaborators ---

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + userID, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, address, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[address] = code
	return nil
}

func (f *fakeMailer) last(address string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[address]
}
