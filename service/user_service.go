package service

import (
	"context"
	"errors"
	"strings"

	"resona/apperr"
	"resona/core/auth"
	"resona/logger"
	"resona/model"
	"resona/repository"
)

// UserService handles signup, credential checks and user lookups.
// Session lifetime itself lives in core/auth; this service only decides
// whether credentials are good.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// SignupInput carries the registration form fields.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup validates and registers a new user.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Username) == "" {
		fields["username"] = "Required field"
	}
	if strings.TrimSpace(in.Email) == "" {
		fields["email"] = "Required field"
	}
	if in.Password == "" {
		fields["password"] = "Required field"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("Missing required fields", fields)
	}

	if existing, err := s.users.GetUserByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("Username already taken", map[string]string{"username": "Already taken"})
	}
	if existing, err := s.users.GetUserByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("Email already registered", map[string]string{"email": "Already registered"})
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		// A concurrent signup can still slip past the lookups; the unique
		// index is the real guard.
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperr.Validation("Username or email already taken", nil)
		}
		return nil, err
	}
	user.ID = id

	logger.Info("User registered",
		logger.Int64("userId", id),
		logger.String("username", user.Username))

	return user, nil
}

// Login checks the credentials and returns the user. The identity may
// be a username or an email; an unknown identity and a bad password
// produce the same error.
func (s *UserService) Login(ctx context.Context, identity, password string) (*model.User, error) {
	if strings.TrimSpace(identity) == "" || password == "" {
		return nil, apperr.Validation("Username and password are required", nil)
	}

	var user *model.User
	var err error
	if strings.Contains(identity, "@") {
		user, err = s.users.GetUserByEmail(ctx, identity)
	} else {
		user, err = s.users.GetUserByUsername(ctx, identity)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Authorization("Invalid username or password")
	}

	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}
