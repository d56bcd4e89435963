package dbtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Bind returns a gorm session whose statements run on tx. Repositories use it
// in WithTx so that gorm queries join the service's *sql.Tx.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	// Context forces a statement clone so the root handle keeps its pool.
	session := db.Session(&gorm.Session{
		NewDB:                  true,
		SkipDefaultTransaction: true,
		Context:                context.Background(),
	})
	session.Statement.ConnPool = tx
	return session
}
