package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/board-insights/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// DefaultJWKSTTL is how long fetched signing keys are reused
const DefaultJWKSTTL = 1 * time.Hour

// jwksEntry caches one key set
type jwksEntry struct {
	keys    jwk.Set
	expires time.Time
}

// JWKSManager fetches and caches public signing key sets by URL
type JWKSManager struct {
	cache      map[string]*jwksEntry
	mu         sync.RWMutex
	ttl        time.Duration
	httpClient *http.Client
}

// NewJWKSManager creates a manager that keeps key sets for ttl
func NewJWKSManager(ttl time.Duration) *JWKSManager {
	if ttl <= 0 {
		ttl = DefaultJWKSTTL
	}
	return &JWKSManager{
		cache:      make(map[string]*jwksEntry),
		ttl:        ttl,
		httpClient: &http.Client{Timeout: DefaultAuthTimeout},
	}
}

// GetJWKS returns the key set at jwksURL, fetching it when absent or stale
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.RLock()
	entry, exists := m.cache[jwksURL]
	m.mu.RUnlock()

	if exists && time.Now().Before(entry.expires) {
		return entry.keys, nil
	}

	keys, err := jwk.Fetch(ctx, jwksURL, jwk.WithHTTPClient(m.httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.cache[jwksURL] = &jwksEntry{
		keys:    keys,
		expires: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	return keys, nil
}

// JWKSVerifier verifies access tokens signed with the project's asymmetric keys
type JWKSVerifier struct {
	manager *JWKSManager
	jwksURL string
	issuer  string
}

// NewJWKSVerifier creates a verifier for tokens issued by issuer and signed by a key at jwksURL
func NewJWKSVerifier(manager *JWKSManager, jwksURL, issuer string) *JWKSVerifier {
	return &JWKSVerifier{manager: manager, jwksURL: jwksURL, issuer: issuer}
}

// Verify validates tokenString against the published key set and returns its claims
func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.manager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}
	if email, ok := token.Get("email"); ok {
		claims.Email, _ = email.(string)
	}
	if role, ok := token.Get("role"); ok {
		claims.Role, _ = role.(string)
	}

	return claims, nil
}
