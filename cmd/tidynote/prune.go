package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/tidynote/artifact"
	tnctx "github.com/randalmurphal/tidynote/context"
)

func pruneCommand() *command {
	defaults := artifact.DefaultRetentionConfig()
	return &command{
		name:    "prune",
		summary: "Remove old saved notes",
		usage:   "tidynote prune [flags]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("older-than", formatAge(defaults.MaxAge), "remove notes older than this (e.g. 90d, 36h; 0 disables)")
			fs.Int("max-items", defaults.MaxItems, "keep at most this many notes (0 disables)")
			fs.Int("keep-min", defaults.KeepMin, "never keep fewer than this many notes")
			fs.String("archive", "", "write removed notes to this gzip file first")
			fs.BoolP("dry-run", "n", false, "report what would be removed")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			olderThan, _ := fs.GetString("older-than")
			maxAge, err := parseAge(olderThan)
			if err != nil {
				return err
			}
			maxItems, _ := fs.GetInt("max-items")
			keepMin, _ := fs.GetInt("keep-min")
			archivePath, _ := fs.GetString("archive")
			dryRun, _ := fs.GetBool("dry-run")

			opts := artifact.PruneOptions{
				Retention: artifact.RetentionConfig{MaxAge: maxAge, MaxItems: maxItems, KeepMin: keepMin},
				DryRun:    dryRun,
			}

			return a.withServices(ctx, func(ctx context.Context, _ *tnctx.Services) error {
				if archivePath != "" && !dryRun {
					f, err := os.Create(a.path(archivePath))
					if err != nil {
						return fmt.Errorf("create archive: %w", err)
					}
					defer f.Close()
					opts.Archive = f
				}

				result, err := tnctx.MustOrganizer(ctx).Prune(ctx, opts)
				if err != nil {
					return err
				}

				verb := "Removed"
				if dryRun {
					verb = "Would remove"
				}
				fmt.Fprintf(a.stdout, "%s %d note(s), kept %d\n", verb, len(result.Removed), result.Kept)
				for _, id := range result.Removed {
					fmt.Fprintf(a.stdout, "  %s\n", id)
				}
				return nil
			})
		},
	}
}

func restoreCommand() *command {
	return &command{
		name:    "restore",
		summary: "Merge notes back from a prune archive",
		usage:   "tidynote restore <archive>",
		run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			if err := requireArgs(args, 1, "tidynote restore <archive>"); err != nil {
				return err
			}
			f, err := os.Open(a.path(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			return a.withServices(ctx, func(ctx context.Context, _ *tnctx.Services) error {
				added, err := tnctx.MustOrganizer(ctx).Restore(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Restored %d note(s)\n", added)
				return nil
			})
		},
	}
}

// parseAge accepts a Go duration or a whole number of days ("30d").
func parseAge(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}

func formatAge(d time.Duration) string {
	if d > 0 && d%(24*time.Hour) == 0 {
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	}
	return d.String()
}
