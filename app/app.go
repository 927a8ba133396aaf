package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/teamsurvey/config"
	"github.com/mbolis/teamsurvey/database"
	"github.com/mbolis/teamsurvey/ratelimit"
	"github.com/mbolis/teamsurvey/submission"
)

// App bundles the dependencies handed to every route handler.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Store   *database.Store
	Writer  *submission.Writer
	Limiter ratelimit.Limiter
}

// New wires the store and the submission writer over an open database.
func New(db *sql.DB, bearer *oauth.BearerServer, cfg config.Config, limiter ratelimit.Limiter) App {
	store := database.NewStore(db)
	return App{
		DB:           db,
		BearerServer: bearer,
		Config:       cfg,
		Store:        store,
		Writer:       submission.NewWriter(store),
		Limiter:      limiter,
	}
}
