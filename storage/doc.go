// Package storage provides the key/value backends that hold the encoded
// artifact collection.
//
// Every backend stores opaque string values under string keys. The artifact
// store only ever uses one key, so a Slot binds a Backend to that key and
// satisfies artifact.Port:
//
//	backend, err := storage.Open(ctx, storage.Options{Driver: storage.DriverFile, Path: dir})
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
//
//	store := artifact.NewStore(storage.NewSlot(backend, "ai_organizer_saved_items"), artifact.Config{})
//
// Drivers:
//
//   - memory: process-local map, lost on exit
//   - file: one file per key under a directory, gzip-compressed above a size threshold
//   - sqlite: single table in a SQLite database file (pure Go driver)
//   - postgres: single table in PostgreSQL via pgx
//   - s3: one object per key in an S3-compatible bucket
package storage
