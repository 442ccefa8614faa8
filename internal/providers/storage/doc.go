// Package storage implements host row storage: named datasets holding an
// ordered list of rows that panels display.
//
// Provider persists rows in SQLite; Memory keeps them in process and records
// every operation, which is what most tests use. Both follow the host
// contract: DeleteAll empties a dataset, Save appends.
package storage
