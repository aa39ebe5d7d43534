package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	html2pdf "github.com/vermaysha/html2pdf"
	"github.com/vermaysha/html2pdf/internal/browserpath"
	"github.com/vermaysha/html2pdf/internal/compress"
)

// errDoctorFailed is returned when at least one check reports an error.
var errDoctorFailed = errors.New("doctor found problems")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string          `json:"status"` // "ready", "warnings", "errors"
	CheckedAt   time.Time       `json:"checked_at"`
	Browser     browserInfo     `json:"browser"`
	Shared      sharedInfo      `json:"shared_browser"`
	Ghostscript ghostscriptInfo `json:"ghostscript"`
	Config      configInfo      `json:"config"`
	Env         envInfo         `json:"environment"`
	System      systemInfo      `json:"system"`
	Warnings    []string        `json:"warnings,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// sharedInfo holds the shared browser state.
type sharedInfo struct {
	State    string `json:"state"`
	Endpoint string `json:"endpoint,omitempty"`
	Record   string `json:"record"`
}

// ghostscriptInfo holds compression tool detection results.
type ghostscriptInfo struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// configInfo holds config file detection results.
type configInfo struct {
	Path string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	CacheDir     string `json:"cache_dir"`
	TempWritable bool   `json:"temp_writable"`
}

func newDoctorCmd(env *Environment, common *commonFlags) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that conversions can run on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := runDoctor(cmd.Context(), env, common.config)

			if jsonOutput {
				enc := json.NewEncoder(env.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(result)
			} else {
				printDoctorResult(env.Stdout, result)
			}

			if result.Status == "errors" {
				return errDoctorFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment, configPath string) *doctorResult {
	result := &doctorResult{
		Status:    "ready",
		CheckedAt: env.Now(),
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		System: systemInfo{CacheDir: env.CacheDir},
	}

	checkBrowser(result, env.CacheDir)
	checkShared(ctx, result, env)
	checkGhostscript(result)
	checkConfig(result, configPath)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkBrowser locates a local browser the same way conversions do.
func checkBrowser(result *doctorResult, cacheDir string) {
	path, ok := browserpath.New(cacheDir, zerolog.Nop()).Locate("")
	if !ok {
		return
	}
	result.Browser.Found = true
	result.Browser.Path = path

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path comes from the locator
	if err == nil {
		result.Browser.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get browser version: %v", err))
	}
}

// checkShared reports the shared browser. A missing local browser is only
// an error when no shared browser answers either.
func checkShared(ctx context.Context, result *doctorResult, env *Environment) {
	srv := env.NewServer(html2pdf.WithCacheDir(env.CacheDir))
	result.Shared.Record = srv.RecordPath()

	st, err := srv.Status(ctx)
	if err != nil {
		result.Shared.State = "unknown"
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not read shared browser record: %v", err))
	} else {
		result.Shared.State = st.State.String()
		result.Shared.Endpoint = st.Endpoint
		if st.State == html2pdf.Stale {
			result.Warnings = append(result.Warnings,
				"Shared browser record is stale. Run 'html2pdf browser stop' to remove it")
		}
	}

	if !result.Browser.Found {
		if result.Shared.State == html2pdf.Running.String() {
			result.Warnings = append(result.Warnings,
				"No local browser found; conversions depend on the shared browser")
			return
		}
		result.Errors = append(result.Errors,
			"Chrome/Chromium not found. Run 'html2pdf browser install' or pass --chrome-path")
	}
}

// checkGhostscript detects the optional compression tool.
func checkGhostscript(result *doctorResult) {
	path, err := compress.New().Path()
	if err != nil {
		result.Warnings = append(result.Warnings,
			"Ghostscript not found; --compress will keep PDFs uncompressed")
		return
	}
	result.Ghostscript.Found = true
	result.Ghostscript.Path = path
}

// checkConfig verifies that the config file, if any, loads.
func checkConfig(result *doctorResult, flagPath string) {
	_, path, err := loadConfig(flagPath, loadEnvConfig().ConfigPath)
	result.Config.Path = path
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("HTML2PDF_CONTAINER") == "1" {
		return true, "HTML2PDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for browser profiles.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "html2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "html2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
	} else {
		fmt.Fprintln(w, "  [--] No local browser")
	}
	fmt.Fprintf(w, "  [OK] Shared browser: %s\n", r.Shared.State)
	if r.Shared.Endpoint != "" {
		fmt.Fprintf(w, "  [OK] Endpoint: %s\n", r.Shared.Endpoint)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Compression")
	if r.Ghostscript.Found {
		fmt.Fprintf(w, "  [OK] Ghostscript at %s\n", r.Ghostscript.Path)
	} else {
		fmt.Fprintln(w, "  [--] Ghostscript not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Path != "" {
		fmt.Fprintf(w, "  [OK] Config file: %s\n", r.Config.Path)
	} else {
		fmt.Fprintln(w, "  [OK] Config file: none (defaults)")
	}
	fmt.Fprintf(w, "  [OK] Cache directory: %s\n", r.System.CacheDir)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
