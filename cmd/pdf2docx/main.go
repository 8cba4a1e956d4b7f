// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2docx CLI. It converts one PDF
// file into a DOCX file and reports the outcome on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2docx/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	programName  = "pdf2docx"
	usageMessage = "Usage: " + programName + " input.pdf output.docx"
	successMsg   = "Conversion successful"
)

// errUsage marks a wrong positional argument count. run prints the usage
// string for it instead of an error line.
var errUsage = errors.New("usage")

// app carries the per-invocation state shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	v      *viper.Viper
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   programName + " input.pdf output.docx",
		Short: "Convert a PDF file to a Word document",
		Long: `pdf2docx converts one PDF file into a DOCX file. The default native
backend extracts text with pdfcpu and writes a WordprocessingML package
directly. The libreoffice backend drives a local headless LibreOffice, and the
container backend pipes the PDF through a docker or podman image.

Every page is converted unless --start or --end select a range.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errUsage
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		RunE:          a.runConvert,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().String("config", "", "config file (default: ./pdf2docx.yaml or ~/.config/pdf2docx/pdf2docx.yaml)")
	root.PersistentFlags().String("history-db", "", "SQLite file recording conversion runs (empty disables history)")
	root.PersistentFlags().BoolP("verbose", "v", false, "print diagnostics to stderr")

	root.Flags().String("backend", "", "conversion backend: "+backendList()+" (default native)")
	root.Flags().Int("start", 0, "first page to convert (1-based, default first page)")
	root.Flags().Int("end", 0, "last page to convert (default last page)")

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	// "help" is an ordinary word here; --help still prints the long help.
	root.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errUsage
		},
	})
	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newHistoryCmd(a))
	return root
}

// noArgs rejects positional arguments to a subcommand with the usage line.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	return nil
}

// positionals counts the non-flag words in args, reading flag values with
// the flags of every command. It returns -1 when args do not parse.
func positionals(root *cobra.Command, args []string) int {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsAllowlist.UnknownFlags = true

	var add func(c *cobra.Command)
	add = func(c *cobra.Command) {
		fs.AddFlagSet(c.PersistentFlags())
		fs.AddFlagSet(c.Flags())
		for _, sub := range c.Commands() {
			add(sub)
		}
	}
	add(root)

	if err := fs.Parse(args); err != nil {
		return -1
	}
	return fs.NArg()
}

func backendList() string {
	names := make([]string, len(types.Backends))
	for i, b := range types.Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// initConfig loads the config file and environment into a.v and binds the
// command's flags so that flags override config and config overrides
// defaults.
func (a *app) initConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		// No SetConfigType: viper would then also match the extensionless
		// pdf2docx binary sitting in the working directory.
		a.v.SetConfigName(programName)
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", programName))
		}
	}

	a.v.SetEnvPrefix("PDF2DOCX")
	a.v.AutomaticEnv()
	setDefaults(a.v)

	var notFound viper.ConfigFileNotFoundError
	switch err := a.v.ReadInConfig(); {
	case err == nil:
		fmt.Fprintln(a.stderr, "Using config file:", a.v.ConfigFileUsed())
	case cfgFile == "" && errors.As(err, &notFound):
		// No config file; flags, environment and defaults apply.
	default:
		return fmt.Errorf("reading config file: %w", err)
	}

	return bindFlags(a.v, cmd)
}

// run executes the CLI with args (excluding the program name) and returns
// the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, v: viper.New()}
	root := newRootCmd(a)
	if args == nil {
		// cobra reads os.Args when given nil.
		args = []string{}
	}
	// Two words are always input and output paths, even when one of them
	// names a subcommand.
	if positionals(root, args) == 2 {
		root.RemoveCommand(root.Commands()...)
	}
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stdout, usageMessage)
	default:
		fmt.Fprintf(stdout, "Error: %v\n", err)
	}
	return 1
}

func main() {
	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
