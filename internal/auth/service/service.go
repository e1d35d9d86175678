// Package service implements the single-operator admin login. There is
// no user table: the operator's email and bcrypt password hash come from
// configuration, and a successful login yields a short-lived JWT access
// token for the admin surface.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/logger"
)

const invalidCredentialsMessage = "invalid email or password"

// Service implements admin authentication.
type Service struct {
	cfg config.AdminAuthConfig
	log *logger.Logger
	now func() time.Time
}

// New creates a new auth service.
func New(cfg config.AdminAuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log, now: time.Now}
}

// LoginResult carries the issued access token.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login verifies the operator credentials and issues an access token.
// Email comparison is case-insensitive; the password is checked against
// the configured bcrypt hash.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if s.cfg.GetAdminEmail() == "" || s.cfg.GetAdminPasswordHash() == "" {
		return LoginResult{}, apperr.Unavailable("admin login is not configured")
	}

	if !strings.EqualFold(strings.TrimSpace(email), s.cfg.GetAdminEmail()) {
		return LoginResult{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.GetAdminPasswordHash()), []byte(password)); err != nil {
		s.log.Warn("admin login rejected", "email", email)
		return LoginResult{}, apperr.Unauthorized(invalidCredentialsMessage)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  s.cfg.GetAdminEmail(),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindInternal, "failed to issue access token", err)
	}

	s.log.Info("admin logged in", "email", s.cfg.GetAdminEmail())
	return LoginResult{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
