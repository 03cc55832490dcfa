package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/tenantkyc/kycdesk/internal/auth"
	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/repository"
)

const minPasswordLen = 8

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.Tokens
}

func NewAuthService(users repository.UserRepository, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      models.UserResponse `json:"user"`
}

// RegisterInput is the sign-up form. Phone is optional and becomes the
// default SMS recipient for shared reports.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if err := validateCredentials(email, in.Password); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, invalid("phone", "please enter a valid phone number")
	}

	user := &models.User{Email: email, Phone: phone, Name: name, Role: models.RoleUser}
	if err := s.createUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// SeedAdmin creates the admin account unless the email is already taken.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	err = s.createUser(ctx, &models.User{Email: email, Name: "Admin", Role: models.RoleAdmin}, password)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

// Users lists every account. Only admins may call it.
func (s *AuthService) Users(ctx context.Context, actor Actor) ([]models.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

func (s *AuthService) createUser(ctx context.Context, user *models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.CreatedAt = models.Timestamp(time.Now())
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expires, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expires, User: user.ToResponse()}, nil
}

func validateCredentials(email, password string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email", "please enter a valid email")
	}
	if password == "" {
		return invalid("password", "password is required")
	}
	if len(password) < minPasswordLen {
		return invalid("password", "password must be at least %d characters", minPasswordLen)
	}
	return nil
}
