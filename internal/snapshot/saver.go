// Package snapshot stores screenshots handed over by player hosts.
package snapshot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/spf13/afero"
)

const FileName = "screenshot.png"

const DefaultMaxSize = 32 << 20

var (
	ErrUnsupportedLocator = errors.New("unsupported resource locator")
	ErrLocatorNotAllowed  = errors.New("resource host is not allowed")
	ErrTooLarge           = errors.New("screenshot exceeds size limit")
	ErrInvalidIdentity    = errors.New("identity is not usable as a directory name")
)

type Config struct {
	Dir string
	// AllowedHosts lists the hosts http(s) locators may point at. With no
	// hosts only data: locators are accepted.
	AllowedHosts []string
	// MaxSize caps the decoded screenshot size in bytes. Zero means
	// DefaultMaxSize.
	MaxSize int64
}

type Saver struct {
	fs           afero.Fs
	dir          string
	allowedHosts []string
	maxSize      int64
	client       *http.Client
	logger       *slog.Logger
}

func NewSaver(fs afero.Fs, cfg *Config, client *http.Client, logger *slog.Logger) *Saver {
	if client == nil {
		client = http.DefaultClient
	}

	s := &Saver{
		fs:      fs,
		dir:     cfg.Dir,
		maxSize: cfg.MaxSize,
		allowedHosts: lo.Map(cfg.AllowedHosts, func(h string, _ int) string {
			return strings.ToLower(strings.TrimSpace(h))
		}),
		logger: logger,
	}
	if s.maxSize <= 0 {
		s.maxSize = DefaultMaxSize
	}

	// redirects must stay on allowed hosts too
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return s.checkHost(req.URL)
	}
	s.client = &c

	return s
}

// Save writes the resource behind locator to <dir>/<id>/screenshot.png,
// replacing the previous screenshot of that player. Failures are logged
// and otherwise ignored.
func (s *Saver) Save(ctx context.Context, id player.Identity, locator string) {
	path, err := s.Path(id)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to save screenshot", "player_id", id, "error", err)
		return
	}

	data, err := s.fetch(ctx, locator)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch screenshot", "player_id", id, "error", err)
		return
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.WarnContext(ctx, "failed to create screenshot dir", "player_id", id, "error", err)
		return
	}

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		s.logger.WarnContext(ctx, "failed to write screenshot", "player_id", id, "error", err)
		return
	}

	s.logger.InfoContext(ctx, "screenshot saved", "player_id", id, "path", path, "size", len(data))
}

func (s *Saver) Path(id player.Identity) (string, error) {
	name := string(id)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidIdentity
	}

	return filepath.Join(s.dir, name, FileName), nil
}

func (s *Saver) fetch(ctx context.Context, locator string) ([]byte, error) {
	switch {
	case strings.HasPrefix(locator, "data:"):
		return s.decodeDataURL(locator)
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return s.download(ctx, locator)
	default:
		return nil, ErrUnsupportedLocator
	}
}

func (s *Saver) checkHost(u *url.URL) error {
	if !lo.Contains(s.allowedHosts, strings.ToLower(u.Hostname())) {
		return fmt.Errorf("%w: %q", ErrLocatorNotAllowed, u.Host)
	}
	return nil
}

func (s *Saver) download(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locator: %w", err)
	}
	if err := s.checkHost(u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return s.checkSize(data)
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>.
func (s *Saver) decodeDataURL(locator string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(locator, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing data separator", ErrUnsupportedLocator)
	}

	if strings.HasSuffix(header, ";base64") {
		if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxSize+2 {
			return nil, fmt.Errorf("%w: %d encoded bytes", ErrTooLarge, len(payload))
		}

		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
		}
		return s.checkSize(data)
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape payload: %w", err)
	}

	return s.checkSize([]byte(data))
}

func (s *Saver) checkSize(data []byte) ([]byte, error) {
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.maxSize)
	}
	return data, nil
}
