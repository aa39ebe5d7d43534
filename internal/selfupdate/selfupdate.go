// Package selfupdate replaces the running binary with the latest GitHub
// release build for the current platform.
package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/vermaysha/html2pdf/internal/version"
)

// DefaultRepo is the GitHub repository releases are fetched from.
const DefaultRepo = "vermaysha/html2pdf"

const userAgent = "html2pdf-cli-updater"

// Sentinel errors for self-update.
var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNoAsset             = errors.New("no release asset for this platform")
	ErrUpToDate            = errors.New("already on the latest version")
	ErrFetchRelease        = errors.New("failed to fetch latest release")
	ErrDownload            = errors.New("failed to download release asset")
)

// Release is the part of the GitHub release payload used here.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file of a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Updater checks for and installs new releases. Zero-value fields use
// the real system.
type Updater struct {
	Repo       string
	Current    string
	APIBase    string // default https://api.github.com
	Client     *http.Client
	Executable string // default os.Executable()
	GOOS       string
	GOARCH     string
	Logger     zerolog.Logger
}

// New returns an Updater for the default repository.
func New(current string, logger zerolog.Logger) *Updater {
	return &Updater{
		Repo:    DefaultRepo,
		Current: current,
		APIBase: "https://api.github.com",
		Client:  &http.Client{Timeout: 5 * time.Minute},
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		Logger:  logger,
	}
}

// AssetName returns the release file name for an OS and architecture.
func AssetName(goos, goarch string) (string, error) {
	var osPart, archPart string
	switch goos {
	case "linux", "windows", "darwin":
		osPart = goos
	default:
		return "", fmt.Errorf("%w: operating system %q", ErrUnsupportedPlatform, goos)
	}
	switch goarch {
	case "amd64":
		archPart = "x86"
	case "arm64":
		archPart = "arm64"
	default:
		return "", fmt.Errorf("%w: architecture %q", ErrUnsupportedPlatform, goarch)
	}
	name := "html2pdf-" + osPart + "-" + archPart
	if goos == "windows" {
		name += ".exe"
	}
	return name, nil
}

// Latest fetches the latest release.
func (u *Updater) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", u.APIBase, u.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchRelease, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchRelease, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrFetchRelease, resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrFetchRelease, err)
	}
	return &rel, nil
}

// Update installs the latest release if it is newer than Current and
// returns the installed version. ErrUpToDate means nothing was done.
func (u *Updater) Update(ctx context.Context) (string, error) {
	rel, err := u.Latest(ctx)
	if err != nil {
		return "", err
	}

	latest := version.Trim(rel.TagName)
	if !version.Newer(latest, u.Current) {
		return latest, ErrUpToDate
	}
	u.Logger.Info().Str("current", u.Current).Str("latest", latest).Msg("new version available")

	name, err := AssetName(u.GOOS, u.GOARCH)
	if err != nil {
		return "", err
	}
	var asset *Asset
	for i := range rel.Assets {
		if rel.Assets[i].Name == name {
			asset = &rel.Assets[i]
			break
		}
	}
	if asset == nil {
		return "", fmt.Errorf("%w: %s", ErrNoAsset, name)
	}

	exe, err := u.executable()
	if err != nil {
		return "", err
	}
	u.Logger.Info().Str("asset", name).Msg("downloading")
	if err := u.replace(ctx, asset.BrowserDownloadURL, exe); err != nil {
		return "", err
	}
	return latest, nil
}

// replace downloads url into a temp file next to exe, then renames it over exe.
func (u *Updater) replace(ctx context.Context, url, exe string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrDownload, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(exe), filepath.Base(exe)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o755); err != nil { // #nosec G302 -- executable
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpPath, exe); err != nil {
		return fmt.Errorf("replacing %s: %w", exe, err)
	}
	return nil
}

func (u *Updater) client() *http.Client {
	if u.Client == nil {
		return http.DefaultClient
	}
	return u.Client
}

func (u *Updater) executable() (string, error) {
	if u.Executable != "" {
		return u.Executable, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
