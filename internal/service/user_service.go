package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"worklog_go/internal/model"
	"worklog_go/internal/repository"
	"worklog_go/pkg/hash"
	"worklog_go/pkg/log"
	"worklog_go/pkg/metrics"
	"worklog_go/pkg/token"

	"gorm.io/gorm"
)

// LoginResult 是登录成功后的返回：用户 ID 和一对 token。
type LoginResult struct {
	UserID       uint
	AccessToken  string
	RefreshToken string
}

// UserService 负责登录、token 续期/注销以及当前用户查询。
type UserService interface {
	Login(username, password string) (*LoginResult, error)
	// VerifyCredential 只校验用户名密码，不签发 token
	VerifyCredential(username, password string) (*model.User, error)
	RefreshToken(refreshToken string) (accessToken, newRefreshToken string, err error)
	Logout(ctx context.Context, accessToken string) error
	// IsRevoked 判断 access token 是否已注销
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
	GetProfile(userID uint) (*model.User, error)
}

type userService struct {
	userRepo   repository.UserRepository
	JWTManager *token.JWTManager
	blacklist  token.Blacklist
}

func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager, blacklist token.Blacklist) UserService {
	return &userService{
		userRepo:   userRepo,
		JWTManager: jwtManager,
		blacklist:  blacklist,
	}
}

// VerifyCredential 校验用户名和密码。
// 用户名不存在返回 ErrUserNotFound，密码不对返回 ErrInvalidCredentials。
// 库里存的如果还是明文（旧数据），比对成功后顺手升级为 bcrypt。
func (s *userService) VerifyCredential(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("VerifyCredential: failed to query user %q: %v", username, err)
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if hash.IsHashed(user.Password) {
		if !hash.CheckPasswordHash(password, user.Password) {
			return nil, ErrInvalidCredentials
		}
		return user, nil
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(user.Password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	s.upgradeLegacyPassword(user, password)
	return user, nil
}

// upgradeLegacyPassword 失败只记日志，不影响本次登录。
func (s *userService) upgradeLegacyPassword(user *model.User, password string) {
	hashed, err := hash.HashPassword(password)
	if err != nil {
		log.Warnf("upgrade password of user %d: hash failed: %v", user.ID, err)
		return
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashed); err != nil {
		log.Warnf("upgrade password of user %d: %v", user.ID, err)
		return
	}
	user.Password = hashed
	log.Infow("legacy plaintext password upgraded", "user_id", user.ID)
}

func (s *userService) Login(username, password string) (*LoginResult, error) {
	if s.JWTManager == nil {
		return nil, ErrInternal
	}
	user, err := s.VerifyCredential(username, password)
	if err != nil {
		metrics.RecordLogin(loginStatus(err))
		return nil, err
	}

	// 使用数据库中的 Username，避免大小写/空白不一致
	access, refresh, err := s.JWTManager.GenerateToken(user.ID, user.Username, user.RoleID)
	if err != nil {
		log.Errorf("Login: failed to generate token for user %q: %v", user.Username, err)
		metrics.RecordLogin("error")
		return nil, ErrInternal
	}
	metrics.RecordLogin("success")
	return &LoginResult{UserID: user.ID, AccessToken: access, RefreshToken: refresh}, nil
}

func loginStatus(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "unknown_user"
	case errors.Is(err, ErrInvalidCredentials):
		return "bad_password"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// RefreshToken 用 refresh token 换一对新 token，用户须仍然存在。
func (s *userService) RefreshToken(refreshToken string) (string, string, error) {
	if s.JWTManager == nil {
		return "", "", ErrInternal
	}
	claims, err := s.JWTManager.VerifyToken(refreshToken)
	if err != nil || claims.TokenType != token.TokenTypeRefresh {
		return "", "", ErrInvalidToken
	}

	user, err := s.GetProfile(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", err
	}

	access, refresh, err := s.JWTManager.GenerateToken(user.ID, user.Username, user.RoleID)
	if err != nil {
		log.Errorf("RefreshToken: failed to generate token for user %d: %v", user.ID, err)
		return "", "", ErrInternal
	}
	return access, refresh, nil
}

// Logout 把 access token 加入黑名单，保留到它原本的过期时间。
func (s *userService) Logout(ctx context.Context, accessToken string) error {
	if s.JWTManager == nil || s.blacklist == nil {
		return ErrInternal
	}
	claims, err := s.JWTManager.VerifyToken(accessToken)
	if err != nil || claims.TokenType != token.TokenTypeAccess {
		return ErrInvalidToken
	}
	if err := s.blacklist.Add(ctx, accessToken, token.RemainingTTL(claims)); err != nil {
		log.Errorf("Logout: failed to blacklist token of user %d: %v", claims.UserID, err)
		return ErrInternal
	}
	return nil
}

func (s *userService) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}
	revoked, err := s.blacklist.Contains(ctx, accessToken)
	if err != nil {
		log.Errorf("IsRevoked: blacklist lookup failed: %v", err)
		return false, ErrInternal
	}
	return revoked, nil
}

func (s *userService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("GetProfile: failed to query user %d: %v", userID, err)
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
