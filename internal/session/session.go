// Package session builds the scs session manager that carries flash
// messages between the form views and the list view.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

const (
	flashKey     = "flash"
	flashKindKey = "flash_kind"
)

// NewManager creates an SCS session manager backed by the application DB.
// The driver parameter selects the appropriate store: "mysql", "postgres", or
// "sqlite3" (default). The sessions table comes from the goose migrations.
func NewManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "recipes_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}

// PutFlash stores a one-shot message shown on the next rendered page. kind
// is a presentation hint such as "success" or "error".
func PutFlash(ctx context.Context, sm *scs.SessionManager, kind, msg string) {
	sm.Put(ctx, flashKindKey, kind)
	sm.Put(ctx, flashKey, msg)
}

// PopFlash returns and clears the pending flash message. msg is "" when
// there is none.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (kind, msg string) {
	return sm.PopString(ctx, flashKindKey), sm.PopString(ctx, flashKey)
}
