// Package context wires tidynote services together and carries them through
// context.Context.
//
// Core types:
//   - Services: every service built from config.Settings
//   - InputBuilder: joins note text from files and stdin for Organize
//
// Context injection functions:
//   - WithOrganizer/Organizer: the note organizer
//   - WithStore/Store: the artifact store
//   - WithPrompt/Prompt: the prompt loader
//   - WithMetrics/Metrics: the Prometheus registry
//   - WithLogger/Logger: request-scoped logger
//
// Example usage:
//
//	services, err := context.NewServices(ctx, context.Config{Settings: settings})
//	if err != nil {
//	    return err
//	}
//	defer services.Close()
//	ctx = services.InjectAll(ctx)
//
//	org := context.MustOrganizer(ctx)
package context
