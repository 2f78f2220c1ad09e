// Package config resolves tidynote settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. Environment variables (TIDYNOTE_API_KEY sets "api_key")
//  3. A file named with --config
//  4. Local config (.tidynote.yaml in the git root)
//  5. Global config (~/.config/tidynote/config.yaml)
//  6. Built-in defaults
//
// # Basic Usage
//
//	resolver := config.NewResolver(config.DefaultResolverConfig(""))
//	resolved := resolver.ResolveWithFlags(map[string]string{"model": flagModel})
//
//	settings, err := config.FromResolved(resolved)
//	if err != nil {
//	    return err
//	}
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// Each resolved value records its Source, which `tidynote config get` shows
// next to the value. Keys in a config file that are not in Keys are skipped
// with a warning.
//
// # Saving
//
// SaveConfig writes single keys back to the global or local file:
//
//	config.DefaultSaveConfig().SaveGlobal("api_key", key)
package config
