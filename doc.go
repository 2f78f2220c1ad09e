// Package tidynote turns free-form notes into structured, tagged documents.
//
// An Organizer sends the raw text to a completion service, renders the
// restructured reply to HTML, extracts its #tags and optionally saves the
// result to an ordered note collection.
//
// The work is split into subpackages:
//
//   - render: lightweight markup to HTML
//   - tags: #tag extraction
//   - artifact: the saved-note collection and its JSON codec
//   - storage: memory, file, SQLite, Postgres and S3 backends
//   - completion: chat-completion client
//   - prompt: the embedded system instruction
//   - notify: save/delete/failure notifications
//   - metrics: Prometheus instrumentation
//   - config: layered settings
//   - context: service wiring
//   - server: JSON HTTP API
//
// # Quick Start
//
//	store := artifact.NewStore(storage.NewSlot(storage.NewMemory(), "notes"), artifact.Config{})
//	org := tidynote.New(tidynote.Options{Completer: client, Store: store})
//
//	result, err := org.Organize(ctx, "明天上午开会 下午写周报")
//	if err != nil {
//	    return err
//	}
//	saved, err := org.Save(ctx, result)
package tidynote
