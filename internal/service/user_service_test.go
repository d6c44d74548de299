package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"worklog_go/internal/model"
	"worklog_go/pkg/hash"
	applog "worklog_go/pkg/log"
	"worklog_go/pkg/token"

	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	// service 里有 log.Errorf，初始化一下避免 nil panic
	applog.Init("error", "console", "")
	code := m.Run()
	os.Exit(code)
}

func newJWT() *token.JWTManager {
	return token.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func hashedUser(t *testing.T, id uint, username, password string) *model.User {
	t.Helper()
	hashed, err := hash.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &model.User{ID: id, Username: username, Password: hashed, RoleID: model.RoleIDEmployee}
}

func TestUserService_Login_Success(t *testing.T) {
	user := hashedUser(t, 3, "lisi", "123456")
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			if username != "lisi" {
				t.Fatalf("unexpected username %q", username)
			}
			return user, nil
		},
	}
	jwt := newJWT()
	svc := NewUserService(repo, jwt, token.NewMemoryBlacklist())

	res, err := svc.Login(" lisi ", "123456")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.UserID != 3 || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("unexpected login result: %+v", res)
	}
	claims, err := jwt.VerifyToken(res.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.UserID != 3 || claims.TokenType != token.TokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestUserService_Login_UserNotFound(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, newJWT(), nil)

	_, err := svc.Login("nobody", "x")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	user := hashedUser(t, 3, "lisi", "123456")
	repo := &fakeUserRepo{
		findByUsernameFn: func(string) (*model.User, error) { return user, nil },
	}
	svc := NewUserService(repo, newJWT(), nil)

	_, err := svc.Login("lisi", "654321")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Login_MissingFields(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, newJWT(), nil)

	if _, err := svc.Login("  ", "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Login("lisi", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_Login_DBError(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(string) (*model.User, error) { return nil, errors.New("db down") },
	}
	svc := NewUserService(repo, newJWT(), nil)

	if _, err := svc.Login("lisi", "123456"); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestUserService_Login_NilJWTManager(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, nil, nil)
	if _, err := svc.Login("lisi", "123456"); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestUserService_Login_UpgradesLegacyPassword(t *testing.T) {
	user := &model.User{ID: 5, Username: "zhaoliu", Password: "plain-pass"}
	var upgraded string
	repo := &fakeUserRepo{
		findByUsernameFn: func(string) (*model.User, error) { return user, nil },
		updatePasswordFn: func(userID uint, hashed string) error {
			if userID != 5 {
				t.Fatalf("unexpected user id %d", userID)
			}
			upgraded = hashed
			return nil
		},
	}
	svc := NewUserService(repo, newJWT(), nil)

	if _, err := svc.Login("zhaoliu", "plain-pass"); err != nil {
		t.Fatalf("expected legacy login to succeed, got %v", err)
	}
	if !hash.IsHashed(upgraded) || !hash.CheckPasswordHash("plain-pass", upgraded) {
		t.Fatalf("password not upgraded to bcrypt: %q", upgraded)
	}
}

func TestUserService_Login_LegacyMismatch(t *testing.T) {
	user := &model.User{ID: 5, Username: "zhaoliu", Password: "plain-pass"}
	repo := &fakeUserRepo{
		findByUsernameFn: func(string) (*model.User, error) { return user, nil },
		updatePasswordFn: func(uint, string) error {
			t.Fatal("password must not be upgraded on mismatch")
			return nil
		},
	}
	svc := NewUserService(repo, newJWT(), nil)

	if _, err := svc.Login("zhaoliu", "plain"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_RefreshToken(t *testing.T) {
	jwt := newJWT()
	repo := &fakeUserRepo{findByIDFn: usersByID(model.User{ID: 3, Username: "lisi", RoleID: 3})}
	svc := NewUserService(repo, jwt, nil)

	access, refresh, err := jwt.GenerateToken(3, "lisi", 3)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// access token 不能用来续期
	if _, _, err := svc.RefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access token, got %v", err)
	}

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if newAccess == "" || newRefresh == "" {
		t.Fatal("expected new token pair")
	}
}

func TestUserService_RefreshToken_UserGone(t *testing.T) {
	jwt := newJWT()
	svc := NewUserService(&fakeUserRepo{}, jwt, nil)

	_, refresh, _ := jwt.GenerateToken(9, "ghost", 3)
	if _, _, err := svc.RefreshToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, _, err := svc.RefreshToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUserService_Logout(t *testing.T) {
	jwt := newJWT()
	svc := NewUserService(&fakeUserRepo{}, jwt, token.NewMemoryBlacklist())
	ctx := context.Background()

	access, refresh, _ := jwt.GenerateToken(3, "lisi", 3)

	revoked, err := svc.IsRevoked(ctx, access)
	if err != nil || revoked {
		t.Fatalf("fresh token should not be revoked: %v %v", revoked, err)
	}
	if err := svc.Logout(ctx, refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token cannot be logged out, got %v", err)
	}
	if err := svc.Logout(ctx, access); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	revoked, err = svc.IsRevoked(ctx, access)
	if err != nil || !revoked {
		t.Fatalf("token should be revoked after logout: %v %v", revoked, err)
	}
}

func TestUserService_IsRevoked_NoBlacklist(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, newJWT(), nil)
	revoked, err := svc.IsRevoked(context.Background(), "any")
	if err != nil || revoked {
		t.Fatalf("expected not revoked without blacklist, got %v %v", revoked, err)
	}
}

func TestUserService_GetProfile(t *testing.T) {
	repo := &fakeUserRepo{findByIDFn: usersByID(model.User{ID: 3, Username: "lisi"})}
	svc := NewUserService(repo, newJWT(), nil)

	user, err := svc.GetProfile(3)
	if err != nil || user.Username != "lisi" {
		t.Fatalf("unexpected profile %+v err=%v", user, err)
	}
	if _, err := svc.GetProfile(42); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_GetProfile_DBError(t *testing.T) {
	repo := &fakeUserRepo{
		findByIDFn: func(uint) (*model.User, error) { return nil, gorm.ErrInvalidDB },
	}
	svc := NewUserService(repo, newJWT(), nil)
	if _, err := svc.GetProfile(3); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}
