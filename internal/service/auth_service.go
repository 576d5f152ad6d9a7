// Package service holds the application services behind the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/amptron-th/testdoc-api/pkg/config"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// AuthService manages the Google Drive OAuth flow and token persistence. It
// doubles as the token provider for the Drive store backend.
type AuthService struct {
	oauth     *oauth2.Config
	tokenFile string
	logger    *zap.Logger

	mu    sync.RWMutex
	token *oauth2.Token
}

// NewAuthService builds the OAuth config from inline JSON or a credentials
// file and loads any previously persisted token.
func NewAuthService(cfg config.DriveConfig, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw := []byte(cfg.CredentialsJSON)
	if len(raw) == 0 {
		var err error
		raw, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read Google credentials")
		}
	}

	oauthCfg, err := google.ConfigFromJSON(raw, drive.DriveFileScope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "parse Google credentials")
	}
	if cfg.RedirectURL != "" {
		oauthCfg.RedirectURL = cfg.RedirectURL
	}

	s := &AuthService{
		oauth:     oauthCfg,
		tokenFile: cfg.TokenFile,
		logger:    logger,
	}
	if tok, err := loadToken(cfg.TokenFile); err == nil {
		s.token = tok
		logger.Info("drive token restored", zap.String("token_file", cfg.TokenFile))
	}
	return s, nil
}

// Authorized reports whether a usable token is present.
func (s *AuthService) Authorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil && s.token.Valid() || (s.token != nil && s.token.RefreshToken != "")
}

// AuthURL returns the consent URL the user must visit to authorize access.
func (s *AuthService) AuthURL() string {
	return s.oauth.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// HandleCallback exchanges the authorization code and persists the token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) error {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrAuthorizationRequired.Code, appErrors.ErrAuthorizationRequired.Status, "exchange authorization code")
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()

	if err := saveToken(s.tokenFile, tok); err != nil {
		s.logger.Warn("token not persisted, authorization will not survive restart", zap.Error(err))
	}
	s.logger.Info("drive authorization completed")
	return nil
}

// TokenSource satisfies the store's token provider. Refreshed tokens are
// persisted back so refresh survives restarts.
func (s *AuthService) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()

	if tok == nil {
		return nil, appErrors.Clone(appErrors.ErrAuthorizationRequired, "no stored Drive token")
	}
	return oauth2.ReuseTokenSource(tok, &persistingSource{
		inner: s.oauth.TokenSource(ctx, tok),
		auth:  s,
	}), nil
}

type persistingSource struct {
	inner oauth2.TokenSource
	auth  *AuthService
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.inner.Token()
	if err != nil {
		return nil, err
	}
	p.auth.mu.Lock()
	p.auth.token = tok
	p.auth.mu.Unlock()
	if err := saveToken(p.auth.tokenFile, tok); err != nil {
		p.auth.logger.Warn("refreshed token not persisted", zap.Error(err))
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return json.NewEncoder(f).Encode(tok)
}
