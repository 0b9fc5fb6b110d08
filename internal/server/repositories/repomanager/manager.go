package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/otps"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OneTimeCodes(db dbx.DBTX) otps.Repository
	// OneTimeCodesInTx reports whether the store returned by OneTimeCodes
	// joins the SQL transaction it is given.
	OneTimeCodesInTx() bool
	Documents(db dbx.DBTX) documents.Repository
}
