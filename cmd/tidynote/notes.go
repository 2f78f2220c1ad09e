package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/tidynote"
	"github.com/randalmurphal/tidynote/artifact"
	tnctx "github.com/randalmurphal/tidynote/context"
	tidyerrors "github.com/randalmurphal/tidynote/errors"
	"github.com/randalmurphal/tidynote/render"
	"github.com/randalmurphal/tidynote/tags"
)

func organizeCommand() *command {
	return &command{
		name:    "organize",
		summary: "Restructure a note with the model and print the result",
		usage:   "tidynote organize [flags] [text...]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringArrayP("file", "f", nil, "read input from a file or glob (repeatable)")
			fs.Bool("save", false, "save the result")
			fs.Bool("html", false, "print rendered markup instead of text")
			fs.Bool("json", false, "print the result as JSON")
		},
		run: runOrganize,
	}
}

func runOrganize(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	files, _ := fs.GetStringArray("file")
	save, _ := fs.GetBool("save")
	asHTML, _ := fs.GetBool("html")
	asJSON, _ := fs.GetBool("json")

	input, err := a.readInput(files, args)
	if err != nil {
		return err
	}

	return a.withServices(ctx, func(ctx context.Context, s *tnctx.Services) error {
		if err := s.RequireCompleter(); err != nil {
			return err
		}
		org := tnctx.MustOrganizer(ctx)

		result, err := org.Organize(ctx, input)
		if err != nil {
			err = tidyerrors.WrapAuthError(err)
			return tidyerrors.WrapConnectionError(err, s.Settings.APIURL)
		}

		var saved *artifact.Artifact
		if save {
			item, err := org.Save(ctx, result)
			if err != nil {
				return err
			}
			saved = &item
			fmt.Fprintf(a.stderr, "Saved %s\n", item.ID)
		}

		switch {
		case asJSON:
			return writeJSON(a.stdout, struct {
				tidynote.Result
				Artifact *artifact.Artifact `json:"artifact,omitempty"`
			}{result, saved})
		case asHTML:
			fmt.Fprintln(a.stdout, result.HTML)
		default:
			printResult(a.stdout, result.Content, result.Tags)
		}
		return nil
	})
}

func renderCommand() *command {
	return &command{
		name:    "render",
		summary: "Render markup to HTML without calling the model",
		usage:   "tidynote render [flags] [text...]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringArrayP("file", "f", nil, "read input from a file or glob (repeatable)")
		},
		run: func(_ context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			files, _ := fs.GetStringArray("file")
			input, err := a.readInput(files, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, render.New().Render(input))
			return nil
		},
	}
}

func tagsCommand() *command {
	return &command{
		name:    "tags",
		summary: "List the #tags in a note",
		usage:   "tidynote tags [flags] [text...]",
		flags: func(fs *pflag.FlagSet) {
			fs.StringArrayP("file", "f", nil, "read input from a file or glob (repeatable)")
			fs.BoolP("unique", "u", false, "drop repeated tags")
		},
		run: func(_ context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			files, _ := fs.GetStringArray("file")
			unique, _ := fs.GetBool("unique")
			input, err := a.readInput(files, args)
			if err != nil {
				return err
			}
			found := tags.Extract(input)
			if unique {
				found = tags.Unique(found)
			}
			for _, tag := range found {
				fmt.Fprintln(a.stdout, tag)
			}
			return nil
		},
	}
}

func listCommand() *command {
	return &command{
		name:    "list",
		summary: "List saved notes, newest first",
		usage:   "tidynote list [flags]",
		flags: func(fs *pflag.FlagSet) {
			fs.Bool("json", false, "print notes as JSON")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			asJSON, _ := fs.GetBool("json")
			return a.withServices(ctx, func(ctx context.Context, _ *tnctx.Services) error {
				items, err := tnctx.MustOrganizer(ctx).List(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(a.stdout, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(a.stderr, "No saved notes.")
					return nil
				}
				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSAVED\tTAGS\tPREVIEW")
				for _, item := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						item.ID,
						item.Time().Format(time.DateTime),
						strings.Join(tags.Unique(item.Tags), " "),
						preview(item.RawText, 40),
					)
				}
				return tw.Flush()
			})
		},
	}
}

func showCommand() *command {
	return &command{
		name:    "show",
		summary: "Print a saved note",
		usage:   "tidynote show [flags] <id>",
		flags: func(fs *pflag.FlagSet) {
			fs.Bool("html", false, "print rendered markup instead of text")
			fs.Bool("json", false, "print the note as JSON")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			if err := requireArgs(args, 1, "tidynote show [flags] <id>"); err != nil {
				return err
			}
			asHTML, _ := fs.GetBool("html")
			asJSON, _ := fs.GetBool("json")
			return a.withServices(ctx, func(ctx context.Context, _ *tnctx.Services) error {
				item, err := tnctx.MustOrganizer(ctx).Get(ctx, args[0])
				if err != nil {
					return err
				}
				switch {
				case asJSON:
					return writeJSON(a.stdout, item)
				case asHTML:
					fmt.Fprintln(a.stdout, item.RenderedMarkup)
				default:
					printResult(a.stdout, item.RawText, item.Tags)
				}
				return nil
			})
		},
	}
}

func deleteCommand() *command {
	return &command{
		name:    "delete",
		summary: "Delete a saved note",
		usage:   "tidynote delete <id>",
		run: func(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
			if err := requireArgs(args, 1, "tidynote delete <id>"); err != nil {
				return err
			}
			return a.withServices(ctx, func(ctx context.Context, _ *tnctx.Services) error {
				removed, err := tnctx.MustOrganizer(ctx).Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: %s", tidynote.ErrNotFound, args[0])
				}
				fmt.Fprintf(a.stdout, "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func exportCommand() *command {
	return &command{
		name:    "export",
		summary: "Write a saved note's text to a file",
		usage:   "tidynote export [flags] <id>",
		flags: func(fs *pflag.FlagSet) {
			fs.StringP("output", "o", "", "file or directory to write; \"-\" for stdout (default "+artifact.DefaultExportName+")")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
			if err := requireArgs(args, 1, "tidynote export [flags] <id>"); err != nil {
				return err
			}
			output, _ := fs.GetString("output")
			return a.withServices(ctx, func(ctx context.Context, _ *tnctx.Services) error {
				org := tnctx.MustOrganizer(ctx)
				if output == "-" {
					return org.Export(ctx, args[0], a.stdout)
				}
				if output == "" {
					output = a.path(artifact.DefaultExportName)
				} else {
					output = a.path(output)
				}
				path, err := org.ExportFile(ctx, args[0], output)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Exported %s to %s\n", args[0], path)
				return nil
			})
		},
	}
}

func printResult(w io.Writer, content string, found []string) {
	fmt.Fprintln(w, strings.TrimRight(content, "\n"))
	if len(found) > 0 {
		fmt.Fprintf(w, "\nTags: %s\n", strings.Join(tags.Unique(found), " "))
	}
}

// preview returns the first non-blank line of text, cut to limit runes.
func preview(text string, limit int) string {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	runes := []rune(line)
	if len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return line
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
