// Package pebblestore provides a thin wrapper around Pebble with an fsync
// policy, batches, and iterators. It backs the dead-letter store.
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
package pebblestore
