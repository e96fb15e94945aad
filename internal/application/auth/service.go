package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ledfit-api/internal/application/user"
	"github.com/ledfit-api/internal/domain"
	"github.com/ledfit-api/internal/infrastructure/google"
	"golang.org/x/crypto/bcrypt"
)

const providerGoogle = "google"

// DynamoDB attribute names used in partial update maps.
const (
	fieldOAuthProvider = "oauth_provider"
	fieldOAuthID       = "oauth_id"
)

type LoginResult struct {
	Bearer string
	User   *domain.User
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	// SignInWithProvider verifies an external ID token and logs the matching
	// account in, creating it on first use.
	SignInWithProvider(ctx context.Context, req domain.OAuthSignInRequest) (*LoginResult, error)
	// Issue signs a bearer for an account that was just created.
	Issue(u *domain.User) (*LoginResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type jwtSigner interface {
	Sign(userID string) (string, error)
}

type idTokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	users    userStore
	jwt      jwtSigner
	verifier idTokenVerifier
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider jwtSigner
	// GoogleVerifier is nil when GOOGLE_CLIENT_ID is not configured.
	GoogleVerifier idTokenVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.UserRepo, jwt: deps.JWTProvider, verifier: deps.GoogleVerifier}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.Issue(u)
}

func (s *service) SignInWithProvider(ctx context.Context, req domain.OAuthSignInRequest) (*LoginResult, error) {
	if req.Provider != providerGoogle {
		return nil, fmt.Errorf("unsupported provider %q: %w", req.Provider, domain.ErrBadRequest)
	}
	if s.verifier == nil {
		return nil, fmt.Errorf("google sign-in is not configured: %w", domain.ErrBadRequest)
	}
	p, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if p.Email == "" || !p.EmailVerified {
		return nil, fmt.Errorf("google account has no verified email: %w", domain.ErrUnauthorized)
	}

	u, err := s.users.GetByEmail(ctx, p.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.createOAuthUser(ctx, req, p)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case u.OAuthID == "":
		if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
			fieldOAuthProvider: providerGoogle,
			fieldOAuthID:       p.Sub,
		}); err != nil {
			return nil, err
		}
		u.OAuthProvider, u.OAuthID = providerGoogle, p.Sub
	case u.OAuthID != p.Sub:
		return nil, fmt.Errorf("account is linked to another google identity: %w", domain.ErrUnauthorized)
	}
	return s.Issue(u)
}

func (s *service) Issue(u *domain.User) (*LoginResult, error) {
	bearer, err := s.jwt.Sign(u.UserID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Bearer: bearer, User: u}, nil
}

// createOAuthUser registers an account for a first-time provider sign-in. The
// password is random, so the account can only log in through the provider
// until it is changed.
func (s *service) createOAuthUser(ctx context.Context, req domain.OAuthSignInRequest, p *google.Payload) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = p.Name
	}
	if name == "" {
		name, _, _ = strings.Cut(p.Email, "@")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(randomPassword()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := user.NewAccount(name, p.Email, string(hash))
	if err != nil {
		return nil, err
	}
	u.OAuthProvider = providerGoogle
	u.OAuthID = p.Sub
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func randomPassword() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
