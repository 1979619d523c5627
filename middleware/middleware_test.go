package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"taskflow/backend/api-service/models"
	"taskflow/backend/api-service/services"
	"taskflow/backend/api-service/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeResolver struct {
	user *models.User
}

func (f *fakeResolver) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if f.user != nil && f.user.ID.Hex() == userID {
		return f.user, nil
	}
	return nil, services.ErrNotFound
}

func setupAuth(t *testing.T) (*models.User, string) {
	t.Helper()
	os.Setenv("JWT_SECRET", "middleware-test-secret")
	if err := utils.InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret() error = %v", err)
	}

	user := &models.User{ID: primitive.NewObjectID(), Name: "A", Email: "a@example.com"}
	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return user, token
}

func runMiddleware(resolver UserResolver, authHeader string) (*httptest.ResponseRecorder, *models.User) {
	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	JWTAuthMiddleware(resolver)(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	user, token := setupAuth(t)

	rec, seen := runMiddleware(&fakeResolver{user: user}, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != user.ID {
		t.Error("authenticated user not placed in request context")
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	user, token := setupAuth(t)

	tests := []struct {
		name     string
		resolver UserResolver
		header   string
	}{
		{"missing header", &fakeResolver{user: user}, ""},
		{"no bearer prefix", &fakeResolver{user: user}, token},
		{"wrong scheme", &fakeResolver{user: user}, "Basic " + token},
		{"garbage token", &fakeResolver{user: user}, "Bearer nope"},
		{"user no longer exists", &fakeResolver{}, "Bearer " + token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen := runMiddleware(tt.resolver, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if seen != nil {
				t.Error("handler ran despite rejected auth")
			}
			// All failure modes must be indistinguishable to the caller.
			if body := rec.Body.String(); !strings.Contains(body, "Not authorized") {
				t.Errorf("body = %q, want the uniform unauthorized message", body)
			}
		})
	}
}
