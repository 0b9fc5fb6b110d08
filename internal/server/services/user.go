// Package services contains server-side business logic. This file implements
// UserService: registration, login, profile lookup and the password reset
// flow built on one-time codes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/mailer"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer mints a session token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  *models.User
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	mailer      mailer.Dispatcher
	logger      logging.Logger

	bcryptCost         int
	otpValidity        time.Duration
	invalidateSiblings bool
	now                func() time.Time

	// dummyHash is compared against on unknown emails so that login takes
	// about as long whether or not the account exists.
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, d mailer.Dispatcher,
	cfg *config.Config, logger logging.Logger) *UserService {

	s := &UserService{
		db:                 db,
		repomanager:        m,
		tokens:             tokens,
		mailer:             d,
		logger:             logger.With("module", "user_service"),
		bcryptCost:         cfg.BcryptCost,
		otpValidity:        cfg.OTPValidityDuration,
		invalidateSiblings: cfg.InvalidateSiblingCodes,
		now:                time.Now,
	}
	s.dummyHash, _ = cryptox.HashPassword("docvault-dummy-password", s.bcryptCost)
	return s
}

// Register creates an account and signs the new user in. The password is
// hashed here; the store only ever sees the hash.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*Session, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "lookup user", "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := s.hashPassword(ctx, "password", password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, Name: name})
	if err != nil {
		// a concurrent registration may have won the unique index
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		s.logger.Error(ctx, "create user", "error", err)
		return nil, common.ErrorInternal
	}

	return s.newSession(ctx, user)
}

// Login returns common.ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.ComparePassword(s.dummyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "lookup user", "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.ComparePassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.newSession(ctx, user)
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "lookup user", "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// RequestReset issues a reset code for a registered email and mails it.
// Earlier codes for the same email stay valid.
func (s *UserService) RequestReset(ctx context.Context, email string) error {
	if _, err := s.repomanager.Users(s.db).FindByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "lookup user", "error", err)
		return common.ErrorInternal
	}

	code, err := cryptox.NumericCode(common.ResetCodeDigits)
	if err != nil {
		s.logger.Error(ctx, "generate code", "error", err)
		return common.ErrorInternal
	}

	if _, err := s.repomanager.OneTimeCodes(s.db).Create(ctx, email, code); err != nil {
		s.logger.Error(ctx, "store code", "error", err)
		return common.ErrorInternal
	}

	if err := s.mailer.Send(ctx, email, code); err != nil {
		s.logger.Error(ctx, "dispatch code", "error", err)
		return fmt.Errorf("%w: %v", common.ErrDispatch, err)
	}

	return nil
}

// ConsumeReset replaces the password of email when code matches an
// outstanding reset code. With the table-backed code store the password
// update and the removal of the code commit together; an external store is
// only cleared after the password update has committed.
func (s *UserService) ConsumeReset(ctx context.Context, email, code, newPassword string) error {
	otp, err := s.repomanager.OneTimeCodes(s.db).Find(ctx, email, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredCode
		}
		s.logger.Error(ctx, "lookup code", "error", err)
		return common.ErrorInternal
	}

	if s.otpValidity > 0 && s.now().Sub(otp.CreatedAt) > s.otpValidity {
		return common.ErrInvalidOrExpiredCode
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "lookup user", "error", err)
		return common.ErrorInternal
	}

	hash, err := s.hashPassword(ctx, "newPassword", newPassword)
	if err != nil {
		return err
	}

	codesInTx := s.repomanager.OneTimeCodesInTx()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, user.ID, hash); err != nil {
			return err
		}
		if !codesInTx {
			return nil
		}
		return s.deleteCodes(ctx, tx, otp)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "reset password", "error", err)
		return common.ErrorInternal
	}

	if !codesInTx {
		// The password is already changed; a leftover code is only logged.
		if err := s.deleteCodes(ctx, s.db, otp); err != nil {
			s.logger.Error(ctx, "remove used code", "error", err, "user_id", user.ID)
		}
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *UserService) deleteCodes(ctx context.Context, db dbx.DBTX, otp *models.OneTimeCode) error {
	codes := s.repomanager.OneTimeCodes(db)
	if s.invalidateSiblings {
		return codes.DeleteByEmail(ctx, otp.Email)
	}
	return codes.Delete(ctx, otp)
}

// hashPassword reports a password bcrypt cannot take as a validation error
// on field.
func (s *UserService) hashPassword(ctx context.Context, field, password string) (string, error) {
	hash, err := cryptox.HashPassword(password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &common.ValidationError{Field: field, Message: field + " must be at most 72 bytes"}
		}
		s.logger.Error(ctx, "hash password", "error", err)
		return "", common.ErrorInternal
	}
	return hash, nil
}

func (s *UserService) newSession(ctx context.Context, user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error(ctx, "issue token", "error", err)
		return nil, common.ErrorInternal
	}
	return &Session{Token: token, User: user}, nil
}
