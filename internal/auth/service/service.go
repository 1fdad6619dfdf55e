package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"alerthub_backend/internal/auth/repository"
	"alerthub_backend/internal/email"
	"alerthub_backend/platform/apperr"
	"alerthub_backend/platform/config"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/phone"
)

const (
	bcryptCost = 10

	tokenTypeAccess = "access"
	tokenTypeReset  = "password_reset"

	// RoleCitizen is the role assigned to self-registered accounts.
	RoleCitizen = "citizen"
)

// Config is the slice of application configuration the auth service needs.
type Config interface {
	config.AuthServiceConfig
}

// Repository is the persistence surface the auth flows need.
type Repository interface {
	CreateUser(ctx context.Context, firstName, lastName, email, passwordHash string, phone *string, roleID int64) (repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	GetUserByID(ctx context.Context, userID int64) (repository.User, error)
	GetRoleID(ctx context.Context, name string) (int64, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type Service struct {
	repo Repository
	cfg  Config
	mail email.Sender
	log  *logger.Logger
}

func New(repo Repository, cfg Config, mail email.Sender, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, mail: mail, log: log}
}

// RegisterInput carries the validated registration fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// Register creates an active citizen account. The email is lowercased; the
// phone, when present, is normalized to E.164.
func (s *Service) Register(ctx context.Context, in RegisterInput) (repository.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	var phonePtr *string
	if normalized := phone.NormalizeE164(in.Phone); normalized != "" {
		phonePtr = &normalized
	}

	roleID, err := s.repo.GetRoleID(ctx, RoleCitizen)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "resolve default role", err)
	}

	user, err := s.repo.CreateUser(ctx,
		strings.TrimSpace(in.FirstName),
		strings.TrimSpace(in.LastName),
		strings.ToLower(strings.TrimSpace(in.Email)),
		string(hash),
		phonePtr,
		roleID,
	)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return repository.User{}, apperr.Conflict("email already registered")
		}
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "create user", err)
	}

	if err := s.mail.SendWelcomeEmail(ctx, user.Email, user.FirstName); err != nil {
		// Registration already succeeded; a failed welcome mail is not fatal.
		s.log.UpstreamError("smtp", "welcome", err)
	}

	s.log.AuthEvent("register", user.Email, true, "")
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, repository.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.AuthEvent("login", emailAddr, false, "unknown email")
			return "", repository.User{}, apperr.NotFound("user not found")
		}
		return "", repository.User{}, apperr.Wrap(apperr.KindInternal, "load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.AuthEvent("login", user.Email, false, "wrong password")
		return "", repository.User{}, apperr.Unauthorized("incorrect password")
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return "", repository.User{}, apperr.Wrap(apperr.KindInternal, "sign token", err)
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return token, user, nil
}

// ForgotPassword mails a reset link with a 15 minute single-purpose token.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "load user", err)
	}

	token, err := s.signResetToken(user)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "sign reset token", err)
	}

	resetURL := strings.TrimRight(s.cfg.GetFrontendURL(), "/") + "/reset-password/" + token
	if err := s.mail.SendPasswordResetEmail(ctx, user.Email, resetURL); err != nil {
		s.log.UpstreamError("smtp", "password_reset", err)
		return apperr.Wrap(apperr.KindInternal, "send reset email", err)
	}

	s.log.AuthEvent("forgot_password", user.Email, true, "")
	return nil
}

// ResetPassword validates the reset token and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	userID, err := s.parseResetToken(rawToken)
	if err != nil {
		return apperr.Unauthorized("reset token is invalid or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Wrap(apperr.KindInternal, "update password", err)
	}

	s.log.AuthEvent("reset_password", strconv.FormatInt(userID, 10), true, "")
	return nil
}

func (s *Service) signAccessToken(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"role":  user.RoleName,
		"type":  tokenTypeAccess,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTSecret()))
}

func (s *Service) signResetToken(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"type": tokenTypeReset,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.GetResetTokenTTL()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTSecret()))
}

func (s *Service) parseResetToken(rawToken string) (int64, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.cfg.GetJWTSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeReset {
		return 0, errors.New("wrong token type")
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}
