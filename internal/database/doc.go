// Package database keeps the history of extraction runs in SQLite.
//
// Each finished run is stored as a JSON document together with one row per
// contact, so a run can be reloaded exactly and a single address can be
// followed across runs. The database is a single file under the XDG data
// directory and uses the CGO-free modernc.org/sqlite driver.
package database
