package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/vnkhanh/survey-hub/logger"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/repository"
	"github.com/vnkhanh/survey-hub/utils"
)

const minPasswordLen = 6

// GoogleVerifier validates a Google ID token for the given audience.
type GoogleVerifier func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type AuthService struct {
	users          repository.UserRepository
	tokens         *utils.TokenIssuer
	googleClientID string
	verifyGoogle   GoogleVerifier
}

func NewAuthService(users repository.UserRepository, tokens *utils.TokenIssuer, googleClientID string) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		googleClientID: googleClientID,
		verifyGoogle:   idtoken.Validate,
	}
}

// WithGoogleVerifier replaces the token verifier, used by tests.
func (s *AuthService) WithGoogleVerifier(v GoogleVerifier) *AuthService {
	s.verifyGoogle = v
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, validationf("name and email are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, validationf("password must be at least %d characters", minPasswordLen)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Name: name, Email: email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

// Login checks the password against the stored bcrypt hash. There is no
// other way in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !utils.CheckPassword(u.Password, password) {
		logger.WithFields(map[string]interface{}{"user_id": u.ID}).Debug("login rejected: wrong password")
		return nil, invalid
	}
	return s.issue(u)
}

func (s *AuthService) GoogleEnabled() bool {
	return s.googleClientID != ""
}

// LoginWithGoogle verifies the ID token and signs in the matching account,
// linking by email or creating one on first sign-in.
func (s *AuthService) LoginWithGoogle(ctx context.Context, rawIDToken string) (*AuthResult, error) {
	if !s.GoogleEnabled() {
		return nil, fmt.Errorf("google sign-in %w", ErrNotFound)
	}
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, validationf("id_token is required")
	}

	payload, err := s.verifyGoogle(ctx, rawIDToken, s.googleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid Google token", ErrUnauthorized)
	}
	email, _ := payload.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: Google account has no email", ErrUnauthorized)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); !ok || !verified {
		return nil, fmt.Errorf("%w: Google email is not verified", ErrUnauthorized)
	}

	if u, err := s.users.FindByGoogleSub(ctx, payload.Subject); err == nil {
		return s.issue(u)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkGoogle(ctx, u.ID, payload.Subject); err != nil {
			return nil, err
		}
		return s.issue(u)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	name, _ := payload.Claims["name"].(string)
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	secret, err := utils.GenerateSecret()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(secret)
	if err != nil {
		return nil, err
	}
	sub := payload.Subject
	u = &models.User{Name: name, Email: email, Password: hash, GoogleSub: &sub}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account already exists", ErrConflict)
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        u,
	}, nil
}
