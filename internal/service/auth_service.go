package service

import (
	"errors"
	"time"

	"readaloud_backend/internal/model"
	"readaloud_backend/internal/repository"
	"readaloud_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 教师/管理员账号体系：邮箱密码 + JWT。
// 学生不在这里，走 StudentAccessService
type AuthService struct {
	profileRepo *repository.ProfileRepository
	jwtSecret   string
	jwtExpire   time.Duration
}

func NewAuthService(profileRepo *repository.ProfileRepository, jwtSecret string, jwtExpire time.Duration) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		jwtSecret:   jwtSecret,
		jwtExpire:   jwtExpire,
	}
}

func (s *AuthService) Register(email, password, fullName string) (*model.Profile, error) {
	_, err := s.profileRepo.GetByEmail(email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	hash := string(hashed)
	profile := &model.Profile{
		Email:        &email,
		FullName:     fullName,
		Role:         model.Teacher,
		PasswordHash: &hash,
		IsActive:     true,
	}

	if err := s.profileRepo.Create(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AuthService) Login(email, password string) (string, *model.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return "", nil, util.ErrUnauthorized
	}
	if !profile.IsActive || profile.PasswordHash == nil {
		return "", nil, util.ErrUnauthorized
	}
	if profile.Role == model.Student {
		// 学生没有密码登录入口
		return "", nil, util.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*profile.PasswordHash), []byte(password)); err != nil {
		return "", nil, util.ErrUnauthorized
	}

	token, err := util.GenerateJWT(profile, s.jwtSecret, s.jwtExpire)
	if err != nil {
		return "", nil, err
	}

	_ = s.profileRepo.UpdateLastLogin(profile.ID)
	return token, profile, nil
}

// AuthenticateWithUsername 旧版用户名登录，兼容早期建好的
// 用户名+密码档案。找不到或密码不符一律返回 ErrUnauthorized
func (s *AuthService) AuthenticateWithUsername(username, password string) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(username)
	if err != nil {
		return nil, util.ErrUnauthorized
	}
	if !profile.IsActive || profile.PasswordHash == nil {
		return nil, util.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*profile.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrUnauthorized
	}

	_ = s.profileRepo.UpdateLastLogin(profile.ID)
	return profile, nil
}
