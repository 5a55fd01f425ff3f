package service

import (
	"errors"
	"testing"
	"time"

	"github.com/plumekit/plume/internal/apperr"
)

const testPassword = "horse-battery-staple-42"

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	return NewAuthService(users, "test-secret", time.Hour, false), users
}

func TestAuthRegister(t *testing.T) {
	svc, users := newAuthFixture(t)

	user, err := svc.Register("  Casey  ", "CASEY@Example.com", testPassword, "Casey", "Lee")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Username != "casey" {
		t.Errorf("Username = %q, want lowercased and trimmed", user.Username)
	}
	if user.Email != "casey@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == testPassword || user.PasswordHash == "" {
		t.Error("password stored unhashed")
	}
	if _, err := users.ByID(user.ID); err != nil {
		t.Errorf("user not persisted: %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "", "a@example.com", testPassword},
		{"bad email", "casey", "not-an-email", testPassword},
		{"short password", "casey", "a@example.com", "short"},
		{"common password", "casey", "a@example.com", "password12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.username, tt.email, tt.password, "", "")
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Register = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAuthRegisterDuplicate(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register("casey", "casey@example.com", testPassword, "", "")
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err = svc.Register("casey", "other@example.com", testPassword, "", "")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username = %v, want ErrUserExists", err)
	}

	_, err = svc.Register("other", "casey@example.com", testPassword, "", "")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate email = %v, want ErrUserExists", err)
	}
}

func TestAuthLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	registered, err := svc.Register("casey", "casey@example.com", testPassword, "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Login("Casey", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Login returned wrong user")
	}

	_, err = svc.Login("casey", "wrong-password-entirely")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}

	_, err = svc.Login("nobody", testPassword)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthJWTRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.Register("casey", "casey@example.com", testPassword, "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, expiry, err := svc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if time.Until(expiry) > time.Hour || time.Until(expiry) < 59*time.Minute {
		t.Errorf("expiry = %v, want ~1h out", expiry)
	}

	claims, err := svc.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims["user_id"] != user.ID {
		t.Errorf("user_id claim = %v, want %s", claims["user_id"], user.ID)
	}
}

func TestAuthJWTRejectsTampered(t *testing.T) {
	svc, _ := newAuthFixture(t)
	other := NewAuthService(newFakeUserRepo(), "different-secret", time.Hour, false)

	user, err := svc.Register("casey", "casey@example.com", testPassword, "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, _, err := other.GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	_, err = svc.VerifyJWT(token)
	if err == nil {
		t.Error("VerifyJWT accepted a token signed with another secret")
	}
}
