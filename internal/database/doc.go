// Package database opens the SQLite database behind the reference
// authentication server.
//
// The server keeps a single table of accounts (entities.User). Account and
// token logic lives in the auth package, which receives Database.DB:
//
//	db, err := database.NewDatabase("./authclient.db")
//	svc := auth.NewService(db.DB, cfg.Auth)
package database
