package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/tidynote/config"
)

func configCommand() *command {
	return &command{
		name:    "config",
		summary: "Show or change settings",
		usage:   "tidynote config <command> [flags]",
		subcommands: []*command{
			{
				name:    "get",
				summary: "Print one setting, or all settings with their sources",
				usage:   "tidynote config get [key]",
				flags: func(fs *pflag.FlagSet) {
					fs.Bool("reveal", false, "print secrets unmasked")
				},
				run: runConfigGet,
			},
			{
				name:    "set",
				summary: "Save a setting to the global or project config file",
				usage:   "tidynote config set [flags] <key> <value>",
				flags: func(fs *pflag.FlagSet) {
					fs.Bool("local", false, "write "+config.LocalConfigName+" in the git root")
				},
				run: runConfigSet,
			},
			{
				name:    "unset",
				summary: "Remove a setting from the global config file",
				usage:   "tidynote config unset <key>",
				run: func(_ context.Context, a *app, _ *pflag.FlagSet, args []string) error {
					if err := requireArgs(args, 1, "tidynote config unset <key>"); err != nil {
						return err
					}
					if err := config.DefaultSaveConfig().DeleteGlobalKey(args[0]); err != nil {
						return err
					}
					fmt.Fprintf(a.stdout, "Removed %s\n", args[0])
					return nil
				},
			},
			{
				name:    "path",
				summary: "Print the config file locations",
				usage:   "tidynote config path",
				run: func(_ context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
					a.resolve()
					fmt.Fprintf(a.stdout, "global: %s\n", a.resolver.GlobalPath())
					if local := a.resolver.LocalPath(); local != "" {
						fmt.Fprintf(a.stdout, "local:  %s\n", local)
					}
					if a.configFile != "" {
						fmt.Fprintf(a.stdout, "file:   %s\n", a.configFile)
					}
					return nil
				},
			},
		},
	}
}

func runConfigGet(_ context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	reveal, _ := fs.GetBool("reveal")
	resolved := a.resolve()

	display := func(key string) string {
		value := resolved.Get(key)
		if config.IsSecret(key) && !reveal {
			return config.Mask(value)
		}
		return value
	}

	switch len(args) {
	case 0:
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
		for _, key := range config.Keys {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", key, display(key), resolved.Source(key))
		}
		return tw.Flush()
	case 1:
		if !slices.Contains(config.Keys, args[0]) {
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		fmt.Fprintln(a.stdout, display(args[0]))
		return nil
	default:
		return requireArgs(args, 1, "tidynote config get [key]")
	}
}

func runConfigSet(_ context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	if err := requireArgs(args, 2, "tidynote config set [flags] <key> <value>"); err != nil {
		return err
	}
	local, _ := fs.GetBool("local")
	key, value := args[0], args[1]
	save := config.DefaultSaveConfig()

	if local {
		a.resolve()
		root := a.resolver.GitRoot()
		if root == "" {
			return errors.New("--local needs a git repository")
		}
		if err := save.SaveLocal(root, key, value); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Set %s in %s\n", key, a.resolver.LocalPath())
		return nil
	}

	if err := save.SaveGlobal(key, value); err != nil {
		return err
	}
	path, _ := save.GlobalPath()
	fmt.Fprintf(a.stdout, "Set %s in %s\n", key, path)
	return nil
}
