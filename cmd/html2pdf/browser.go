package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/browsercache"
	"github.com/vermaysha/html2pdf/internal/fileutil"
)

// newBrowserCmd groups the cached-browser and shared-browser commands.
func newBrowserCmd(env *Environment, common *commonFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browser",
		Short: "Manage cached browsers and the shared browser",
	}
	cmd.AddCommand(
		newBrowserListCmd(env),
		newBrowserClearCmd(env, common),
		newBrowserInstallCmd(env, common),
		newBrowserStartCmd(env, common),
		newBrowserStopCmd(env, common),
		newBrowserStatusCmd(env, common),
	)
	return cmd
}

func newBrowserListCmd(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List browsers installed in the html2pdf cache",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			builds, err := browsercache.New(env.CacheDir).List()
			if err != nil {
				return err
			}
			printBuilds(env.Stdout, env.CacheDir, builds)
			return nil
		},
	}
}

// printBuilds writes installed builds as a table.
func printBuilds(w io.Writer, dir string, builds []browsercache.Build) {
	if len(builds) == 0 {
		fmt.Fprintf(w, "No browsers installed in %s\n", dir)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REVISION\tEXECUTABLE")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\n", b.Revision, b.Executable)
	}
	_ = tw.Flush()
}

func newBrowserClearCmd(env *Environment, common *commonFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the html2pdf cache directory",
		Long: `Delete the html2pdf cache directory, including downloaded browsers
and the shared browser endpoint record. Asks for confirmation unless --yes
is given.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			logger := newLogger(env.Stdout, common.quiet, common.verbose)

			if !fileutil.DirExists(env.CacheDir) {
				fmt.Fprintf(env.Stdout, "Nothing to clear: %s does not exist.\n", env.CacheDir)
				return nil
			}

			if !yes {
				fmt.Fprintf(env.Stdout, "This permanently deletes %s\nType \"yes\" to continue: ", env.CacheDir)
				if !confirm(env.Stdin) {
					fmt.Fprintln(env.Stdout, "Operation cancelled.")
					return nil
				}
			}

			if err := browsercache.New(env.CacheDir).Clear(); err != nil {
				return err
			}
			logger.Info().Str("dir", env.CacheDir).Msg("browser cache cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm reads one line from r and reports whether it is "yes".
func confirm(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}

func newBrowserInstallCmd(env *Environment, common *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download the pinned Chromium build into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(env.Stdout, common.quiet, common.verbose)

			cache := browsercache.New(env.CacheDir)
			cache.Logger = logger
			logger.Info().Int("revision", cache.Revision).Msg("installing chromium")

			build, downloaded, err := cache.Install(cmd.Context())
			if err != nil {
				return err
			}
			if !downloaded {
				logger.Info().Str("revision", build.Revision).Msg("chromium is already installed")
			}
			logger.Info().Str("revision", build.Revision).Str("path", build.Executable).Msg("chromium ready")
			return nil
		},
	}
}

func newBrowserStartCmd(env *Environment, common *commonFlags) *cobra.Command {
	var chromePath string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run a shared browser that conversions reuse",
		Long: `Launch a browser and record its endpoint so later conversions reuse it
instead of launching their own. Runs in the foreground until interrupted
or until 'html2pdf browser stop' is run from another terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(env.Stdout, common.quiet, common.verbose)

			cfg, _, err := loadConfig(common.config, loadEnvConfig().ConfigPath)
			if err != nil {
				return err
			}
			path := override(chromePath, cfg.ChromePath)
			if path != "" && !fileutil.FileExists(path) {
				return fmt.Errorf("%w: chrome path %q does not exist", html2pdf.ErrConfig, path)
			}

			srv := env.NewServer(html2pdf.WithLogger(logger), html2pdf.WithCacheDir(env.CacheDir))
			return srv.Start(cmd.Context(), path)
		},
	}
	addChromePathFlag(cmd.Flags(), &chromePath)
	return cmd
}

func newBrowserStopCmd(env *Environment, common *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the shared browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(env.Stdout, common.quiet, common.verbose)
			srv := env.NewServer(html2pdf.WithLogger(logger), html2pdf.WithCacheDir(env.CacheDir))
			return srv.Stop(cmd.Context())
		},
	}
}

func newBrowserStatusCmd(env *Environment, common *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the shared browser is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(env.Stdout, common.quiet, common.verbose)
			srv := env.NewServer(html2pdf.WithLogger(logger), html2pdf.WithCacheDir(env.CacheDir))

			st, err := srv.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(env.Stdout, st, srv.RecordPath())
			return nil
		},
	}
}

// printStatus writes a one-line summary of the shared browser state.
func printStatus(w io.Writer, st html2pdf.ServerStatus, record string) {
	switch st.State {
	case html2pdf.Running:
		fmt.Fprintf(w, "Shared browser: running at %s\n", st.Endpoint)
	case html2pdf.Stale:
		fmt.Fprintf(w, "Shared browser: stale record at %s (%s does not answer)\n", record, st.Endpoint)
	default:
		fmt.Fprintln(w, "Shared browser: stopped")
	}
}
