package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/board-insights/internal/config"
	"github.com/benvon/board-insights/internal/logger"
	"github.com/benvon/board-insights/internal/metrics"
	"github.com/benvon/board-insights/internal/models"
	"github.com/benvon/board-insights/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnauthorized wraps every session establishment failure
var ErrUnauthorized = errors.New("unauthorized")

// Credentials are the tokens supplied by the caller for one request
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Session is an established, authenticated session
type Session struct {
	User         models.User
	AccessToken  string
	RefreshToken string
	// Refreshed is true when the supplied access token had expired and was exchanged
	Refreshed bool
}

// Identity scopes store calls to the session user
func (s *Session) Identity() models.Identity {
	return models.Identity{UserID: s.User.ID, AccessToken: s.AccessToken}
}

// Establisher turns caller credentials into a session
type Establisher interface {
	Establish(ctx context.Context, creds Credentials) (*Session, error)
}

// TokenVerifier validates an access token locally
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JWTClaims, error)
}

// AuthAPI is the subset of the auth service used to establish sessions
type AuthAPI interface {
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// Service establishes sessions. With a nil verifier the user is resolved by
// the auth service; otherwise the access token is verified locally.
type Service struct {
	auth     AuthAPI
	verifier TokenVerifier
	mode     string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a session service
func NewService(auth AuthAPI, verifier TokenVerifier, mode string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if mode == "" {
		mode = config.SessionVerificationRemote
	}
	return &Service{
		auth:     auth,
		verifier: verifier,
		mode:     mode,
		logger:   log,
		now:      time.Now,
	}
}

// NewFromConfig wires the auth client and the verifier selected by SESSION_VERIFICATION
func NewFromConfig(cfg *config.Config, log *zap.Logger) *Service {
	auth := NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseKey, DefaultAuthTimeout)

	var verifier TokenVerifier
	switch cfg.SessionVerification {
	case config.SessionVerificationHMAC:
		verifier = NewHMACVerifier(cfg.SupabaseJWTSecret, cfg.AuthIssuer())
	case config.SessionVerificationJWKS:
		verifier = NewJWKSVerifier(NewJWKSManager(DefaultJWKSTTL), cfg.JWKSURL(), cfg.AuthIssuer())
	}

	return NewService(auth, verifier, cfg.SessionVerification, log)
}

// Establish validates creds, refreshing an expired access token first, and
// resolves the session user. Every failure wraps ErrUnauthorized.
func (s *Service) Establish(ctx context.Context, creds Credentials) (sess *Session, err error) {
	ctx, span := telemetry.StartSpan(ctx, "session.establish", attribute.String("session.mode", s.mode))
	defer func() {
		metrics.ObserveSession(s.mode, err)
		telemetry.EndSpan(span, err)
	}()

	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing credentials", ErrUnauthorized)
	}

	sess = &Session{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken}

	if exp, ok := peekExpiry(creds.AccessToken); ok && !s.now().Before(time.Unix(exp, 0)) {
		pair, refreshErr := s.auth.Refresh(ctx, creds.RefreshToken)
		if refreshErr != nil {
			return nil, fmt.Errorf("%w: refresh session: %w", ErrUnauthorized, refreshErr)
		}
		sess.AccessToken = pair.AccessToken
		if pair.RefreshToken != "" {
			sess.RefreshToken = pair.RefreshToken
		}
		sess.Refreshed = true
		s.logger.Debug("session_refreshed",
			zap.String("access_token", logger.MaskToken(sess.AccessToken)))
	}

	user, err := s.resolveUser(ctx, sess.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	sess.User = *user

	return sess, nil
}

func (s *Service) resolveUser(ctx context.Context, accessToken string) (*models.User, error) {
	if s.verifier == nil {
		return s.auth.GetUser(ctx, accessToken)
	}

	claims, err := s.verifier.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", claims.Sub, err)
	}
	return &models.User{ID: id, Email: claims.Email, Role: claims.Role}, nil
}

// Health checks the auth service when it supports health probes
func (s *Service) Health(ctx context.Context) error {
	if h, ok := s.auth.(interface{ Health(context.Context) error }); ok {
		return h.Health(ctx)
	}
	return nil
}
