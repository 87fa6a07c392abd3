package services

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ridemap/admin-server/internal/cache"
	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/store"
)

var (
	// ErrNotAdmin marks an authenticated session whose token lacks the admin
	// claim. Such a session is invalid, not merely unauthorized: callers
	// must discard it without surfacing the reason.
	ErrNotAdmin = errors.New("session is not an admin session")
	// ErrBadToken marks a token that could not be decoded at all.
	ErrBadToken = errors.New("malformed bearer token")
)

// Claims are the fields mirrored out of an identity-provider token. The
// token is decoded WITHOUT signature verification: verification is the
// identity provider's responsibility and this decoding is advisory UI
// gating, never a security boundary.
type Claims struct {
	Admin         bool
	Institute     string
	UID           string
	Name          string
	Email         string
	EmailVerified bool
	PhoneNumber   string
}

// DecodeClaims extracts the custom and standard claims from a raw token.
func DecodeClaims(rawToken string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, ErrBadToken
	}

	decoded := &Claims{}
	decoded.Admin, _ = claims["admin"].(bool)
	decoded.Institute, _ = claims["institute"].(string)
	decoded.UID, _ = claims["sub"].(string)
	decoded.Name, _ = claims["name"].(string)
	decoded.Email, _ = claims["email"].(string)
	decoded.EmailVerified, _ = claims["email_verified"].(bool)
	decoded.PhoneNumber, _ = claims["phone_number"].(string)
	return decoded, nil
}

// SessionService mirrors identity-provider state into session objects and
// keeps the admin profile warm.
type SessionService struct {
	gateway store.Gateway
	cache   *cache.Store
	log     *zap.Logger

	// now is swapped in tests.
	now func() time.Time
}

func NewSessionService(gateway store.Gateway, cacheStore *cache.Store, log *zap.Logger) *SessionService {
	return &SessionService{
		gateway: gateway,
		cache:   cacheStore,
		log:     log,
		now:     time.Now,
	}
}

// Establish turns a raw bearer token into a normalized session. Non-admin
// tokens are rejected silently (ErrNotAdmin carries no user-facing detail).
// On the first establishment for a uid it also updates the admin's
// lastLoginAt in the background and fetches the admin profile; the profile
// may be nil when that fetch fails, which never fails the session itself.
//
// Repeated invocations for the same token (refresh storms) are idempotent:
// every write here is last-write-wins on a single logical value.
func (s *SessionService) Establish(ctx context.Context, rawToken string) (*models.Session, *models.AdminRecord, error) {
	claims, err := DecodeClaims(rawToken)
	if err != nil {
		return nil, nil, err
	}
	if !claims.Admin {
		return nil, nil, ErrNotAdmin
	}

	session := &models.Session{
		DisplayName:   claims.Name,
		UID:           claims.UID,
		Institute:     claims.Institute,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		PhoneNumber:   claims.PhoneNumber,
		AccessToken:   rawToken,
	}

	profileKey := cache.ProfileKey(claims.Institute, claims.UID)
	if profile, ok := cache.Get[*models.AdminRecord](s.cache, profileKey); ok {
		return session, profile, nil
	}

	s.touchLastLogin(claims.Institute, claims.UID)

	profile, err := s.gateway.AdminByID(ctx, claims.Institute, claims.UID)
	if err != nil {
		s.log.Warn("admin profile fetch failed",
			zap.String("institute", claims.Institute),
			zap.String("uid", claims.UID),
			zap.Error(err))
		return session, nil, nil
	}

	cache.Put(s.cache, profileKey, profile)
	return session, profile, nil
}

// touchLastLogin updates the admin's lastLoginAt on its own goroutine and
// its own context, so a slow or failing store write provably cannot delay
// or fail session establishment.
func (s *SessionService) touchLastLogin(institute, uid string) {
	at := s.now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.gateway.TouchAdminLogin(ctx, institute, uid, at); err != nil {
			s.log.Warn("lastLoginAt update failed",
				zap.String("institute", institute),
				zap.String("uid", uid),
				zap.Error(err))
			sentry.CaptureException(err)
		}
	}()
}

// Drop clears the cached profile for a uid, the server-side counterpart of
// the sign-out state reset.
func (s *SessionService) Drop(institute, uid string) {
	s.cache.Invalidate(cache.ProfileKey(institute, uid))
}
