package scraper

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ctleads/harvester/internal/config"
	"github.com/ctleads/harvester/pkg/logger"
)

// Session owns the browser driving the court portal. It is an exclusive
// resource: one primary page navigates the search results, and background
// tabs opened for row inspection are always closed before control returns.
type Session struct {
	cfg        *config.Config
	Browser    *rod.Browser // exported for tests
	page       *rod.Page
	logger     *logger.Logger
	profileDir string
}

// NewSession launches the browser with a scoped profile directory.
func NewSession(cfg *config.Config, log *logger.Logger) (*Session, error) {
	profileDir, err := os.MkdirTemp("", "harvester-profile-")
	if err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	l := launcher.New().
		Headless(cfg.HeadlessMode).
		UserDataDir(profileDir).
		Set("user-agent", cfg.UserAgent).
		Set("disable-blink-features", "AutomationControlled").
		Delete("enable-automation")

	if cfg.BrowserPath != "" {
		l = l.Bin(cfg.BrowserPath)
	}

	browserURL, err := l.Launch()
	if err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to open primary page: %w", err)
	}
	page.MustSetViewport(1366, 768, 1, false)

	return &Session{
		cfg:        cfg,
		Browser:    browser,
		page:       page,
		logger:     log,
		profileDir: profileDir,
	}, nil
}

// Close shuts the browser down and removes the scoped profile directory.
func (s *Session) Close() error {
	err := s.Browser.Close()
	if s.profileDir != "" {
		os.RemoveAll(s.profileDir)
		s.profileDir = ""
	}
	return err
}

// Page returns the primary navigation page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// withTab opens href in a background tab, runs fn against it and closes the
// tab on every exit path, leaving the primary page focused.
func (s *Session) withTab(href string, fn func(*rod.Page) error) error {
	tab, err := s.Browser.Page(proto.TargetCreateTarget{URL: href})
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	defer func() {
		tab.Close()
		s.page.Activate()
	}()

	if err := tab.WaitLoad(); err != nil {
		return fmt.Errorf("tab never loaded: %w", err)
	}
	return fn(tab)
}

// pause sleeps for a jittered interval so portal requests never burst.
func pause(min, max time.Duration) {
	time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
}
