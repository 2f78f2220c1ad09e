// Command tidynote organizes free-form notes with a chat-completion model,
// renders them, and keeps the results.
//
// Usage:
//
//	tidynote [global flags] <command> [flags] [args]
//
// Run "tidynote --help" for the command list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/tidynote/config"
	tnctx "github.com/randalmurphal/tidynote/context"
	tidyerrors "github.com/randalmurphal/tidynote/errors"
	"github.com/randalmurphal/tidynote/server"
	"github.com/randalmurphal/tidynote/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func commands() []*command {
	return []*command{
		organizeCommand(),
		renderCommand(),
		tagsCommand(),
		listCommand(),
		showCommand(),
		deleteCommand(),
		exportCommand(),
		pruneCommand(),
		restoreCommand(),
		serveCommand(),
		tokenCommand(),
		configCommand(),
	}
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	a := &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		workDir:    workDir,
		flagValues: map[string]string{},
		logger:     newLogger(stderr, "warn", "text"),
	}

	global := pflag.NewFlagSet("tidynote", pflag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	global.StringVarP(&a.configFile, "config", "c", "", "config file layered over the global and project files")
	logLevel := global.String("log-level", "", "debug, info, warn or error")
	logFormat := global.String("log-format", "", "text or json")
	driver := global.String("storage", "", "storage driver: "+driverList())
	storagePath := global.String("storage-path", "", "storage directory or database file")
	global.BoolP("help", "h", false, "show help")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printRootHelp(stderr, global)
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	if help, _ := global.GetBool("help"); help || global.NArg() == 0 {
		printRootHelp(stderr, global)
		if help {
			return 0
		}
		return 2
	}

	a.flagValues[config.KeyLogLevel] = *logLevel
	a.flagValues[config.KeyLogFormat] = *logFormat
	a.flagValues[config.KeyStorageDriver] = *driver
	a.flagValues[config.KeyStoragePath] = *storagePath

	root := &command{name: "tidynote", subcommands: commands()}
	if err := root.execute(ctx, a, global.Args()); err != nil {
		if errors.Is(err, errSubcommandRequired) {
			return 2
		}
		printError(stderr, err)
		return 1
	}
	return 0
}

func serveCommand() *command {
	return &command{
		name:    "serve",
		summary: "Serve the HTTP API until interrupted",
		usage:   "tidynote serve [flags]",
		flags: func(fs *pflag.FlagSet) {
			fs.String("addr", "", "listen address (default from listen_addr)")
		},
		run: func(ctx context.Context, a *app, fs *pflag.FlagSet, _ []string) error {
			addr, _ := fs.GetString("addr")
			return a.withServices(ctx, func(ctx context.Context, s *tnctx.Services) error {
				if addr == "" {
					addr = s.Settings.ListenAddr
				}
				if s.Completer == nil {
					a.logger.Warn("api_key is not set; organize requests will fail")
				}
				return server.New(s, server.Config{Addr: addr, Logger: a.logger}).ListenAndServe(ctx)
			})
		},
	}
}

// printError writes err for a person. CLIErrors carry their own hint.
func printError(w io.Writer, err error) {
	var cliErr *tidyerrors.CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintf(w, "error: %s\n", cliErr.Error())
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
	if tidyerrors.IsPermissionError(err) {
		fmt.Fprintln(w, "hint: check the permissions of storage_path and the config files")
	}
}

func printRootHelp(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprint(w, `tidynote turns rough notes into structured, tagged text.

Usage:
  tidynote [global flags] <command> [flags] [args]

Commands:
`)
	printCommandTable(w, commands())
	fmt.Fprintln(w, "\nGlobal flags:")
	global.SetOutput(w)
	global.PrintDefaults()
	fmt.Fprintf(w, "\nSettings are read from ~/.config/%s/config.yaml, %s in the git root,\n"+
		"--config, then %s* environment variables.\n",
		config.GlobalConfigDir, config.LocalConfigName, config.EnvPrefix)
}

func driverList() string {
	names := make([]string, len(storage.Drivers))
	for i, d := range storage.Drivers {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
