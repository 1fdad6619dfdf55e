package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"alerthub_backend/internal/auth/repository"
)

type fakeConfig struct {
	secret    string
	accessTTL time.Duration
	resetTTL  time.Duration
}

func (f fakeConfig) GetJWTSecret() string             { return f.secret }
func (f fakeConfig) GetAccessTokenTTL() time.Duration { return f.accessTTL }
func (f fakeConfig) GetResetTokenTTL() time.Duration  { return f.resetTTL }
func (f fakeConfig) GetFrontendURL() string           { return "http://localhost:5173" }

func testService(cfg fakeConfig) *Service {
	return &Service{cfg: cfg}
}

func TestAccessTokenClaims(t *testing.T) {
	svc := testService(fakeConfig{secret: "s3cret", accessTTL: 8 * time.Hour})
	user := repository.User{ID: 42, Email: "ana@example.com", RoleName: "citizen"}

	raw, err := svc.signAccessToken(user)
	if err != nil {
		t.Fatalf("signAccessToken: %v", err)
	}

	parsed, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "42" {
		t.Errorf("sub = %v", claims["sub"])
	}
	if claims["email"] != "ana@example.com" {
		t.Errorf("email = %v", claims["email"])
	}
	if claims["role"] != "citizen" {
		t.Errorf("role = %v", claims["role"])
	}
	if claims["type"] != "access" {
		t.Errorf("type = %v", claims["type"])
	}

	exp, _ := claims.GetExpirationTime()
	iat, _ := claims.GetIssuedAt()
	if ttl := exp.Sub(iat.Time); ttl != 8*time.Hour {
		t.Errorf("token TTL = %v, want 8h", ttl)
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	svc := testService(fakeConfig{secret: "s3cret", resetTTL: 15 * time.Minute})
	user := repository.User{ID: 7, Email: "ana@example.com"}

	raw, err := svc.signResetToken(user)
	if err != nil {
		t.Fatalf("signResetToken: %v", err)
	}

	userID, err := svc.parseResetToken(raw)
	if err != nil {
		t.Fatalf("parseResetToken: %v", err)
	}
	if userID != 7 {
		t.Fatalf("userID = %d, want 7", userID)
	}
}

func TestParseResetTokenRejectsAccessTokens(t *testing.T) {
	svc := testService(fakeConfig{secret: "s3cret", accessTTL: time.Hour, resetTTL: 15 * time.Minute})
	user := repository.User{ID: 7, Email: "ana@example.com", RoleName: "citizen"}

	access, err := svc.signAccessToken(user)
	if err != nil {
		t.Fatalf("signAccessToken: %v", err)
	}

	if _, err := svc.parseResetToken(access); err == nil {
		t.Fatal("an access token must not pass as a reset token")
	}
}

func TestParseResetTokenRejectsExpired(t *testing.T) {
	svc := testService(fakeConfig{secret: "s3cret", resetTTL: -time.Minute})
	user := repository.User{ID: 7}

	raw, err := svc.signResetToken(user)
	if err != nil {
		t.Fatalf("signResetToken: %v", err)
	}

	if _, err := svc.parseResetToken(raw); err == nil {
		t.Fatal("expired reset token accepted")
	}
}

func TestParseResetTokenRejectsWrongSecret(t *testing.T) {
	signer := testService(fakeConfig{secret: "one", resetTTL: 15 * time.Minute})
	verifier := testService(fakeConfig{secret: "two", resetTTL: 15 * time.Minute})

	raw, err := signer.signResetToken(repository.User{ID: 7})
	if err != nil {
		t.Fatalf("signResetToken: %v", err)
	}

	if _, err := verifier.parseResetToken(raw); err == nil {
		t.Fatal("token signed with a different secret accepted")
	}
}
