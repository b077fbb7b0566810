// Package auth implements credential verification and session tokens.
// Passwords are hashed once, at registration, before they reach the
// store; login only ever compares hashes.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harikeshranjan/TodoX/internal/core"
)

// Authenticator verifies credentials and issues session tokens. It
// holds no session state; a token stays valid until it expires or the
// client discards it.
type Authenticator struct {
	users  core.UserStore
	tokens *TokenIssuer
	cost   int
	now    func() time.Time
}

// New creates an authenticator with the default bcrypt cost.
func New(users core.UserStore, tokens *TokenIssuer) *Authenticator {
	return &Authenticator{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// RegisterInput carries the identity fields for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a user record with a one-way hashed password. The
// email and username must be unique across all users.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*core.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, core.ValidationErr("username, email and password are required")
	}

	if _, err := a.users.UserByEmail(ctx, email); err == nil {
		return nil, core.ConflictErr("user already exists")
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, core.InternalErr("failed to look up user", err)
	}
	if _, err := a.users.UserByUsername(ctx, username); err == nil {
		return nil, core.ConflictErr("username already taken")
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, core.InternalErr("failed to look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, core.InternalErr("failed to hash password", err)
	}

	now := a.now()
	u := &core.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.users.InsertUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return nil, core.ConflictErr("user already exists")
		}
		return nil, core.InternalErr("failed to create user", err)
	}
	return u, nil
}

// Login verifies the email/password pair and issues a session token.
// A missing user and a failed hash comparison are indistinguishable to
// the caller.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*core.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", core.ValidationErr("email and password are required")
	}

	u, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, "", core.UnauthorizedErr("invalid credentials")
		}
		return nil, "", core.InternalErr("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", core.UnauthorizedErr("invalid credentials")
	}

	token, err := a.tokens.Issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Validate verifies a session token and produces the authenticated
// identity for downstream operations.
func (a *Authenticator) Validate(token string) (core.Identity, error) {
	if token == "" {
		return core.Identity{}, core.UnauthorizedErr("unauthorized")
	}
	return a.tokens.Validate(token)
}

// Profile loads the full user record behind an identity.
func (a *Authenticator) Profile(ctx context.Context, id core.Identity) (*core.User, error) {
	u, err := a.users.UserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundErr("user not found")
		}
		return nil, core.InternalErr("failed to load user", err)
	}
	return u, nil
}
