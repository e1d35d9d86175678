package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"noticedesk_backend/platform/apperr"
	"noticedesk_backend/platform/logger"
)

type testAuthConfig struct {
	email string
	hash  string
}

func (c testAuthConfig) GetJWTAccessSecret() string        { return "test-secret" }
func (c testAuthConfig) GetAdminEmail() string             { return c.email }
func (c testAuthConfig) GetAdminPasswordHash() string      { return c.hash }
func (c testAuthConfig) GetAccessTokenTTL() time.Duration  { return time.Hour }

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return New(testAuthConfig{email: "admin@noticedesk.in", hash: string(hash)}, logger.New("test"))
}

func TestLoginIssuesAccessToken(t *testing.T) {
	svc := newTestService(t, "correct horse battery")

	result, err := svc.Login(context.Background(), "Admin@NoticeDesk.in", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("empty access token")
	}

	parsed, err := jwt.Parse(result.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not validate: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "admin@noticedesk.in" || claims["type"] != "access" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t, "correct horse battery")

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@noticedesk.in", "wrong"},
		{"wrong email", "intruder@example.com", "correct horse battery"},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); !apperr.Is(err, apperr.KindUnauthorized) {
			t.Errorf("%s: err = %v, want unauthorized", tc.name, err)
		}
	}
}

func TestLoginUnavailableWhenNotConfigured(t *testing.T) {
	svc := New(testAuthConfig{}, logger.New("test"))

	if _, err := svc.Login(context.Background(), "a@b.c", "whatever"); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}
