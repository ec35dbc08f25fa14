package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
)

// Scopes are the read-only scopes requested from the user.
var Scopes = []string{
	drivev3.DriveMetadataReadonlyScope,
	drivev3.DriveReadonlyScope,
}

// authTimeout bounds the wait for the browser callback.
const authTimeout = 5 * time.Minute

// LoadConfig reads an OAuth client credentials file.
func LoadConfig(credentialsPath string) (*oauth2.Config, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	data, err := os.ReadFile(filepath.Clean(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}
	return cfg, nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Authorize runs the loopback authorization flow.
// It listens on 127.0.0.1, passes the consent URL to prompt and waits
// for the redirect carrying the authorization code.
func Authorize(ctx context.Context, cfg *oauth2.Config, prompt func(authURL string)) (*oauth2.Token, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}

	local := *cfg
	local.RedirectURL = "http://" + ln.Addr().String() + "/"
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var res result
			switch {
			case q.Get("state") != state:
				res.err = errors.New("state mismatch")
			case q.Get("error") != "":
				res.err = errors.New(q.Get("error"))
			case q.Get("code") == "":
				res.err = errors.New("missing authorization code")
			default:
				res.code = q.Get("code")
			}
			if res.err != nil {
				http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
			} else {
				_, _ = w.Write([]byte("Authorization complete. You can close this window."))
			}
			select {
			case done <- res:
			default:
			}
		}),
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case done <- result{err: err}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	prompt(local.AuthCodeURL(state, oauth2.AccessTypeOffline))

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var res result
	select {
	case res = <-done:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, waitCtx.Err())
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, res.err)
	}

	tok, err := local.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}
	return tok, nil
}

// savingTokenSource persists refreshed tokens.
type savingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	path   string
	last   string
	logger *slog.Logger
}

func newSavingTokenSource(base oauth2.TokenSource, path string, initial *oauth2.Token, logger *slog.Logger) *savingTokenSource {
	s := &savingTokenSource{base: base, path: path, logger: logger}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return s
}

// Token returns the current token, saving it when it changed.
func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.logger.Warn("failed to save refreshed token", "path", s.path, "error", err)
		} else {
			s.logger.Debug("saved refreshed token", "path", s.path)
		}
	}
	return tok, nil
}
