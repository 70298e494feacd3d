package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"demo-auth/internal/domain"
	"demo-auth/internal/password"
	"demo-auth/internal/repository"
	"demo-auth/internal/token"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords. The two cases are deliberately indistinguishable so that
	// login responses cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated indicates no credential was presented at all.
	ErrUnauthenticated = errors.New("user is not authenticated")
	// ErrSessionExpired indicates a well-formed token whose expiry passed.
	ErrSessionExpired = errors.New("user session has expired")
	// ErrInvalidToken covers every other way a presented token can fail
	// verification: bad signature, malformed structure, wrong issuer.
	ErrInvalidToken = errors.New("invalid login token")
	// ErrUserNotFound indicates an identity lookup for an id with no record.
	ErrUserNotFound = errors.New("user not found")
)

// AdminUsername is the account created at first boot.
const AdminUsername = "admin"

// Token is the access-token response shape of a successful authentication.
type Token struct {
	AccessToken string
	TokenType   string
}

// Identity is the result of validating a presented token.
type Identity struct {
	UserID uuid.UUID
	Scopes string
}

// UserIdentity extends Identity with the current username from storage.
type UserIdentity struct {
	UserID   uuid.UUID
	Username string
	Scopes   string
}

// CredentialService issues and validates bearer credentials.
type CredentialService interface {
	Authenticate(ctx context.Context, username, pass string) (*Token, error)
	Validate(ctx context.Context, tokenString string) (*Identity, error)
	WhoAmI(ctx context.Context, userID uuid.UUID) (*UserIdentity, error)
	EnsureAdmin(ctx context.Context, adminPassword string) (created bool, err error)
}

type credentialService struct {
	users  repository.UserRepository
	hasher *password.Hasher
	codec  *token.Codec
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewCredentialService(users repository.UserRepository, hasher *password.Hasher, codec *token.Codec, issuer string, ttl time.Duration) CredentialService {
	return &credentialService{
		users:  users,
		hasher: hasher,
		codec:  codec,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Authenticate checks username and password against storage and mints a
// bearer token carrying the user's id and scopes. One read-only storage
// query; no token is ever stored server side.
func (s *credentialService) Authenticate(ctx context.Context, username, pass string) (*Token, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify([]byte(pass), user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	claims := token.NewClaims(s.issuer, user.ID, user.Scopes, s.now(), s.ttl)
	signed, err := s.codec.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Validate verifies a presented token string and returns the identity it
// carries. It performs no storage access: validity is decided from the
// token, the shared secret, and the clock alone.
func (s *credentialService) Validate(ctx context.Context, tokenString string) (*Identity, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: claims.Subject, Scopes: claims.Scopes}, nil
}

// WhoAmI resolves the current username for a previously validated user id.
// The token carries only id and scopes, so a username change never requires
// re-issuing tokens.
func (s *credentialService) WhoAmI(ctx context.Context, userID uuid.UUID) (*UserIdentity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	return &UserIdentity{
		UserID:   user.ID,
		Username: user.Username,
		Scopes:   user.Scopes,
	}, nil
}

// EnsureAdmin creates the admin account at first boot if it does not exist.
// It reports whether a new account was created.
func (s *credentialService) EnsureAdmin(ctx context.Context, adminPassword string) (bool, error) {
	_, err := s.users.GetByUsername(ctx, AdminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("look up admin user: %w", err)
	}

	hash, err := s.hasher.Hash([]byte(adminPassword))
	if err != nil {
		return false, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate admin id: %w", err)
	}

	admin := &domain.User{
		ID:           id,
		Username:     AdminUsername,
		PasswordHash: hash,
		Scopes:       domain.ScopeAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// another instance may have won the race
		if errors.Is(err, repository.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("create admin user: %w", err)
	}
	return true, nil
}
