// Package notify tells people when the note collection changes.
//
// Events are artifact_saved, artifact_deleted and organize_failed. New picks
// the notifiers for a configuration:
//
//	n := notify.New(settings.WebhookURL, logger)
//	_ = n.Notify(ctx, notify.Event{
//	    Type:       notify.EventArtifactSaved,
//	    ArtifactID: a.ID,
//	    Message:    "note saved",
//	    Severity:   notify.SeverityInfo,
//	})
//
// Implementations: LogNotifier, WebhookNotifier, SlackNotifier, MultiNotifier
// and NopNotifier.
package notify
