package auth

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"warehouse.GO/core/apperror"
	coreAuth "warehouse.GO/core/auth"
	"warehouse.GO/model/entity"
	authRepo "warehouse.GO/model/repository/auth"
	"warehouse.GO/model/testdb"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testdb.Open(t)
	logger := logrus.New()
	tm := coreAuth.NewTokenManager("secret", time.Minute, time.Hour)
	bl := coreAuth.NewBlacklist(authRepo.NewAuthRepository(db), nil, logger)
	return NewService(db, tm, bl, logger)
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	e := apperror.As(err)
	if e == nil || e.Code != code {
		t.Fatalf("err = %v, want code %s", err, code)
	}
}

func register(t *testing.T, s *Service) *Session {
	t.Helper()
	sess, err := s.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "Alice@Example.com", Password: "secret1", FullName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return sess
}

func TestRegister_CreatesStaff(t *testing.T) {
	s := newService(t)
	sess := register(t, s)
	if sess.User.Role != entity.RoleStaff {
		t.Errorf("role = %s, want staff", sess.User.Role)
	}
	if sess.User.Email != "alice@example.com" {
		t.Errorf("email = %s", sess.User.Email)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Error("tokens missing")
	}

	_, err := s.Register(context.Background(), RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
	wantCode(t, err, "DUPLICATE_KEY")
	_, err = s.Register(context.Background(), RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret1"})
	wantCode(t, err, "DUPLICATE_KEY")
}

func TestLogin(t *testing.T) {
	s := newService(t)
	register(t, s)
	ctx := context.Background()

	sess, err := s.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login by email: %v", err)
	}
	if sess.User.LastLogin == nil {
		t.Error("lastLogin not set")
	}
	if _, err := s.Login(ctx, LoginInput{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("Login by username: %v", err)
	}
	_, err = s.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
	wantCode(t, err, "INVALID_CREDENTIALS")
	_, err = s.Login(ctx, LoginInput{Username: "nobody", Password: "secret1"})
	wantCode(t, err, "INVALID_CREDENTIALS")

	if err := s.db.Model(&entity.User{}).Where("username = ?", "alice").Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}
	_, err = s.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	wantCode(t, err, "INVALID_CREDENTIALS")
}

func TestRefresh_RotatesOnce(t *testing.T) {
	s := newService(t)
	sess := register(t, s)
	ctx := context.Background()

	next, err := s.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == sess.RefreshToken {
		t.Error("refresh token not rotated")
	}
	_, err = s.Refresh(ctx, sess.RefreshToken)
	wantCode(t, err, "UNAUTHORIZED")
	_, err = s.Refresh(ctx, next.AccessToken)
	wantCode(t, err, "UNAUTHORIZED")
	if _, err := s.Refresh(ctx, next.RefreshToken); err != nil {
		t.Errorf("latest refresh token rejected: %v", err)
	}
}

func TestLogout_RevokesAccessAndRefresh(t *testing.T) {
	s := newService(t)
	sess := register(t, s)
	ctx := context.Background()
	claims, err := s.tokens.Parse(sess.AccessToken, coreAuth.TypeAccess)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx, sess.User, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.Id)
	if err != nil || !revoked {
		t.Errorf("IsRevoked = %v, %v", revoked, err)
	}
	_, err = s.Refresh(ctx, sess.RefreshToken)
	wantCode(t, err, "UNAUTHORIZED")
}

func TestProfileAndPassword(t *testing.T) {
	s := newService(t)
	sess := register(t, s)
	ctx := context.Background()
	if _, err := s.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	taken := "bob@example.com"
	_, err := s.UpdateProfile(ctx, sess.User, ProfileInput{Email: &taken})
	wantCode(t, err, "DUPLICATE_KEY")

	name := "Alice Liddell"
	u, err := s.UpdateProfile(ctx, sess.User, ProfileInput{FullName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.FullName != name {
		t.Errorf("fullName = %q", u.FullName)
	}

	err = s.ChangePassword(ctx, u, nil, ChangePasswordInput{CurrentPassword: "bad", NewPassword: "secret2"})
	wantCode(t, err, "BAD_REQUEST")
	if err := s.ChangePassword(ctx, u, nil, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "secret2"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Username: "alice", Password: "secret2"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	_, err = s.Refresh(ctx, sess.RefreshToken)
	wantCode(t, err, "UNAUTHORIZED")
}
