package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-platform/models"
	"hotel-platform/utils"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB       *gorm.DB
	Secret   []byte
	TokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{DB: db, Secret: []byte(secret), TokenTTL: ttl, now: time.Now}
}

var validate = validator.New()

// RegisterInput is re-checked here for callers that bypass HTTP binding.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	BranchID *uint
}

func (in *RegisterInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Password = strings.TrimSpace(in.Password)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return invalid("name, email, password and role are required")
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return invalid("invalid email address")
	}
	if !models.IsRole(in.Role) {
		return invalid("role must be one of admin, manager, user")
	}
	if in.Role != models.RoleAdmin && (in.BranchID == nil || *in.BranchID == 0) {
		return invalid("branchId is required for %s accounts", in.Role)
	}
	if len(in.Password) < 6 {
		return invalid("password must be at least 6 characters")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	if in.BranchID != nil {
		var branches int64
		if err := db.Model(&models.Branch{}).Where("id = ?", *in.BranchID).Count(&branches).Error; err != nil {
			return nil, fmt.Errorf("check branch: %w", err)
		}
		if branches == 0 {
			return nil, notFound("branch")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     in.Role,
		BranchID: in.BranchID,
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login returns a signed token for valid credentials. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, invalid("email and password are required")
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(strings.TrimSpace(password))); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.SignToken(s.Secret, user.ID, user.Role, user.BranchID, s.TokenTTL, s.now())
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
