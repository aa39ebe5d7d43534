package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const rootLong = `Convert an HTML page to PDF with a headless Chromium.

<input> is a local file (.html files are opened in place so relative
assets load; other files are injected as HTML), an http(s):// or file://
URL, or an s3://bucket/key object. <output> is a local path or an
s3://bucket/key object.

A shared browser started with 'html2pdf browser start' is reused when it
answers; otherwise a disposable browser is launched for the conversion.

Settings are taken from flags, then HTML2PDF_* and S3_* environment
variables, then the config file, then defaults.`

// run executes the CLI with args and returns the process exit code.
// Errors are printed to stderr as "error: <message>" followed by hints.
func run(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	root := newRootCmd(env)
	root.SetArgs(args)
	root.SetIn(env.Stdin)
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// newRootCmd builds the command tree.
func newRootCmd(env *Environment) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:           "html2pdf <input> <output>",
		Short:         "Convert HTML to PDF with headless Chromium",
		Long:          rootLong,
		Args:          cobra.ExactArgs(2),
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), env, cmd.Flags(), f, args)
		},
	}

	addCommonFlags(cmd.PersistentFlags(), &f.common)
	addConvertFlags(cmd.Flags(), f)
	cmd.Flags().SortFlags = false

	cmd.AddCommand(
		newBrowserCmd(env, &f.common),
		newUpgradeCmd(env, &f.common),
		newDoctorCmd(env, &f.common),
		newVersionCmd(env),
	)
	return cmd
}

// newVersionCmd prints the build version.
func newVersionCmd(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the html2pdf version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(env.Stdout, "html2pdf %s\n", Version)
		},
	}
}
