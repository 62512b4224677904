package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/kebab-storefront/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingEmail       = errors.New("email is required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAdmin creates an admin account, or promotes and re-keys an existing one.
func (s *UserService) CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid(ErrMissingEmail, "")
	}
	if len(password) < 8 {
		return nil, invalid(ErrWeakPassword, "")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user models.User
	err = s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Email: email, Name: name, Password: string(hashed), Admin: true}
		if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load user: %w", err)
	default:
		user.Password = string(hashed)
		user.Admin = true
		if name != "" {
			user.Name = name
		}
		if err := s.DB.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return &user, nil
}

// Authenticate checks credentials; unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SetAdminClaim sets the admin flag on an existing account.
func (s *UserService) SetAdminClaim(ctx context.Context, email string, admin bool) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid(ErrMissingEmail, "")
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := s.DB.WithContext(ctx).Model(&user).Update("admin", admin).Error; err != nil {
		return nil, fmt.Errorf("update admin claim: %w", err)
	}
	user.Admin = admin
	return &user, nil
}
