package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"bookshelf/backend/app/apperr"
	jwtutil "bookshelf/backend/app/jwt"
	"bookshelf/backend/app/models"
	"bookshelf/backend/app/repo"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	errInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	errEmailTaken         = apperr.Conflict("Email already registered")
	errUsernameTaken      = apperr.Conflict("Username already taken")
	errUserNotFound       = apperr.NotFound("User not found")
)

type UserServiceOptions struct {
	// AllowAdminSignup lets public registration request the admin role.
	AllowAdminSignup bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type UserService struct {
	users  *repo.UserRepository
	signer *jwtutil.Signer
	opts   UserServiceOptions
	log    zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(users *repo.UserRepository, signer *jwtutil.Signer, opts UserServiceOptions, log zerolog.Logger) *UserService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, signer: signer, opts: opts, log: log.With().Str("component", "users").Logger()}
}

// EnsureAdmin bootstraps the first admin. It does nothing once any admin
// exists or when the email or username is already taken.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if n, err := s.users.CountAdmins(ctx); err != nil || n > 0 {
		return false, err
	}
	if n, err := s.users.CountByEmail(ctx, normEmail(email)); err != nil || n > 0 {
		return false, err
	}
	if n, err := s.users.CountByUsername(ctx, username); err != nil || n > 0 {
		return false, err
	}
	if _, err := s.create(ctx, username, email, password, models.RoleAdmin); err != nil {
		return false, err
	}
	s.log.Info().Str("username", username).Msg("seeded admin account")
	return true, nil
}

// Register creates a public account. Duplicate email is reported before
// duplicate username, and both are checked before hashing.
func (s *UserService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin && !s.opts.AllowAdminSignup {
		return nil, apperr.Forbidden("Admin accounts can only be created by an admin")
	}
	return s.CreateUser(ctx, username, email, password, role)
}

// CreateUser creates an account with any valid role.
func (s *UserService) CreateUser(ctx context.Context, username, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation("Invalid role", apperr.FieldError{Field: "role", Message: "role must be one of: user admin"})
	}
	email = normEmail(email)
	if n, err := s.users.CountByEmail(ctx, email); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, errEmailTaken
	}
	if n, err := s.users.CountByUsername(ctx, username); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, errUsernameTaken
	}
	return s.create(ctx, username, email, password, role)
}

func (s *UserService) create(ctx context.Context, username, email, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u := &models.User{Username: username, Email: normEmail(email), PasswordHash: string(hash), Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email or username already registered")
		}
		return nil, err
	}
	return u, nil
}

// Session is a freshly issued token and the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login returns a signed token for the account. Every failure, including an
// unknown email, yields the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, normEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	return s.NewSession(u)
}

// NewSession signs a token for u.
func (s *UserService) NewSession(u *models.User) (*Session, error) {
	token, exp, err := s.signer.Sign(u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		return nil, apperr.Internal("sign token", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// dummy is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bookshelf-dummy-password"), s.opts.BcryptCost)
	})
	return s.dummyHash
}

func (s *UserService) VerifyToken(token string) (*jwtutil.Claims, error) {
	return s.signer.Parse(token)
}

func (s *UserService) Me(ctx context.Context, id int64) (*models.User, error) {
	return s.GetUser(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errUserNotFound
	}
	return u, err
}

// UpdateRole changes the role of target. An admin may not change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID int64, role string) (*models.User, error) {
	if actorID == targetID {
		return nil, apperr.Validation("Cannot change your own role")
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation("Invalid role", apperr.FieldError{Field: "role", Message: "role must be one of: user admin"})
	}
	u, err := s.users.UpdateRole(ctx, targetID, role)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errUserNotFound
	}
	return u, err
}

// DeleteUser removes target. An admin may not delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return apperr.Validation("Cannot delete your own account")
	}
	ok, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return errUserNotFound
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return apperr.Validation("Current password is incorrect",
			apperr.FieldError{Field: "currentPassword", Message: "currentPassword is incorrect"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.opts.BcryptCost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	err = s.users.UpdatePasswordHash(ctx, id, string(hash))
	if errors.Is(err, repo.ErrNotFound) {
		return errUserNotFound
	}
	return err
}

func normEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
