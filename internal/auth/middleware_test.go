package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims(userID string) Claims {
	return Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifier_Require(t *testing.T) {
	verifier := NewVerifier(testSecret)

	var seenUserID string
	protected := verifier.Require(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, validClaims("user-1")), http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signToken(t, "other", validClaims("user-1")), http.StatusUnauthorized, ""},
		{"expired token", "Bearer " + signToken(t, testSecret, expired), http.StatusUnauthorized, ""},
		{"missing user id", "Bearer " + signToken(t, testSecret, validClaims("")), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if seenUserID != tt.wantUserID {
				t.Errorf("expected user id %q, got %q", tt.wantUserID, seenUserID)
			}
		})
	}
}

func TestVerifier_RejectsOtherSigningMethods(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("user-1")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := NewVerifier(testSecret).Verify(token); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}
