package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/tidynote/auth"
	"github.com/randalmurphal/tidynote/config"
)

func tokenCommand() *command {
	return &command{
		name:    "token",
		summary: "Generate a bearer token for the HTTP API",
		usage:   "tidynote token [flags]",
		flags: func(fs *pflag.FlagSet) {
			fs.Bool("local", false, "store the hash in "+config.LocalConfigName+" in the git root")
		},
		run: func(_ context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			local, _ := fs.GetBool("local")

			tok, err := auth.GenerateToken(auth.TokenConfig{})
			if err != nil {
				return err
			}

			save := config.DefaultSaveConfig()
			var path string
			if local {
				a.resolve()
				root := a.resolver.GitRoot()
				if root == "" {
					return errors.New("--local needs a git repository")
				}
				if err := save.SaveLocal(root, config.KeyServerToken, tok.Hash); err != nil {
					return err
				}
				path = a.resolver.LocalPath()
			} else {
				if err := save.SaveGlobal(config.KeyServerToken, tok.Hash); err != nil {
					return err
				}
				path, _ = save.GlobalPath()
			}

			fmt.Fprintln(a.stdout, tok.Secret)
			fmt.Fprintf(a.stderr, "Saved hash of %s to %s. The token is not shown again.\n", tok.Display, path)
			return nil
		},
	}
}
