// Package identity registers and authenticates users kept in the users document.
package identity

import (
	"context"
	"strings"
	"unicode/utf8"

	"mediabrowser/internal/apperr"
	"mediabrowser/internal/docstore"
)

const (
	// UsersDocument is the document holding every user keyed by username.
	UsersDocument = "users"
	// AdminUsername is the account guaranteed to exist after Bootstrap.
	AdminUsername = "admin"
	// DefaultAdminPassword is used when no admin password is configured.
	DefaultAdminPassword = "admin123"

	minPasswordLen = 6
	maxPasswordLen = 10
)

// Role grants permissions to a user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
)

// User is a stored account.
type User struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Credential string `json:"credentialDigest"`
	Role       Role   `json:"role"`
}

// Principal is the identity attached to a session.
type Principal struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func (u User) Principal() Principal {
	return Principal{Username: u.Username, Name: u.Name, Role: u.Role}
}

// Users maps usernames to accounts.
type Users map[string]User

// Options configures a Service.
type Options struct {
	Scheme        Scheme
	AdminPassword string
}

// Service manages accounts in a document store.
type Service struct {
	store         docstore.Store
	scheme        Scheme
	adminPassword string
}

func NewService(store docstore.Store, opts Options) *Service {
	if opts.Scheme == "" {
		opts.Scheme = SchemeLegacy
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = DefaultAdminPassword
	}
	return &Service{
		store:         store,
		scheme:        opts.Scheme,
		adminPassword: opts.AdminPassword,
	}
}

// Bootstrap makes sure the admin account exists. An existing admin record is
// never touched.
func (s *Service) Bootstrap(ctx context.Context) (bool, error) {
	users, err := docstore.Get[Users](ctx, s.store, UsersDocument)
	if err != nil {
		return false, apperr.Internal("Failed to load users", err)
	}
	if _, ok := users[AdminUsername]; ok {
		return false, nil
	}

	cred, err := s.scheme.encode(AdminUsername, s.adminPassword)
	if err != nil {
		return false, apperr.Internal("Failed to create admin", err)
	}
	if users == nil {
		users = Users{}
	}
	users[AdminUsername] = User{
		Name:       "Administrator",
		Username:   AdminUsername,
		Credential: cred,
		Role:       RoleAdmin,
	}
	if err := s.store.Save(ctx, UsersDocument, users); err != nil {
		return false, apperr.Internal("Failed to save users", err)
	}
	return true, nil
}

// Register creates a contributor account.
func (s *Service) Register(ctx context.Context, name, username, password string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(username) == "" || password == "" {
		return User{}, apperr.Validation("All fields are required")
	}
	if n := utf8.RuneCountInString(password); n < minPasswordLen || n > maxPasswordLen {
		return User{}, apperr.Validation("Password must be between 6 and 10 characters")
	}

	cred, err := s.scheme.encode(username, password)
	if err != nil {
		return User{}, apperr.Internal("Registration failed", err)
	}
	user := User{
		Name:       name,
		Username:   username,
		Credential: cred,
		Role:       RoleContributor,
	}

	err = docstore.Update(ctx, s.store, UsersDocument, func(users Users) (Users, error) {
		if _, ok := users[username]; ok {
			return nil, apperr.Conflict("Username already exists")
		}
		if users == nil {
			users = Users{}
		}
		users[username] = user
		return users, nil
	})
	if apperr.KindOf(err) == apperr.KindConflict {
		return User{}, err
	} else if err != nil {
		return User{}, apperr.Internal("Registration failed", err)
	}
	return user, nil
}

// Login checks the credentials and returns the matching principal.
func (s *Service) Login(ctx context.Context, username, password string) (Principal, error) {
	users, err := docstore.Get[Users](ctx, s.store, UsersDocument)
	if err != nil {
		return Principal{}, apperr.Internal("Login failed", err)
	}

	user, ok := users[username]
	if !ok || !verifyCredential(user.Credential, username, password) {
		return Principal{}, apperr.Unauthorized("Invalid credentials")
	}
	return user.Principal(), nil
}
