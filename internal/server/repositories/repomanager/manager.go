package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/nutritracker/internal/dbx"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/foods"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/trackers"
	"github.com/dmitrijs2005/nutritracker/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// them either directly on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Foods(db dbx.DBTX) foods.Repository
	Trackers(db dbx.DBTX) trackers.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
