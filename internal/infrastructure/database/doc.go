// Package database opens the SQLite file that backs the reference host's
// row storage and override flags.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool with WAL journaling, a
// busy timeout, and the host schema applied on every connection. Callers
// Take a connection, run SQL through sqlitex, and Put it back:
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//		return err
//	}
//	defer pool.Put(conn)
package database
