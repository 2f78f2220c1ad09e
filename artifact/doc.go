// Package artifact provides the persisted collection of organized notes.
//
// Core types:
//   - Artifact: one restructured text with its rendered markup, tags and timestamp
//   - Port: the single keyed blob the collection lives in
//   - Codec: JSON encoding of the collection, degrading to empty on corruption
//   - Store: append, list, lookup and delete over a Port
//
// The whole collection is read on every call and rewritten on every mutation,
// newest artifact first. Store holds no lock: two writers sharing one blob can
// lose an update.
//
// Example usage:
//
//	store := artifact.NewStore(port, artifact.Config{})
//	a, err := store.Append(ctx, raw, render.Render(raw), tags.Extract(raw))
//	items, err := store.List(ctx)
//	removed, err := store.Delete(ctx, a.ID)
package artifact
