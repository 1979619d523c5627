package utils

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func initTestSecret(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret() error = %v", err)
	}
}

func TestInitJWTSecretMissing(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	if err := InitJWTSecret(); err == nil {
		t.Error("expected error when JWT_SECRET is unset")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	initTestSecret(t)

	token, err := GenerateToken("64b2f8a7e13b4c0012345678")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "64b2f8a7e13b4c0012345678" {
		t.Errorf("UserID = %q, want the issued id", claims.UserID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	initTestSecret(t)
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	initTestSecret(t)

	claims := &Claims{
		UserID: "abc",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("signing forged token: %v", err)
	}

	if _, err := ValidateToken(forged); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	initTestSecret(t)

	claims := &Claims{
		UserID: "abc",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := ValidateToken(expired); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenRejectsWrongAlgorithm(t *testing.T) {
	initTestSecret(t)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "abc"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none-alg token: %v", err)
	}

	if _, err := ValidateToken(unsigned); err == nil {
		t.Error("expected error for token signed with none algorithm")
	}
}
