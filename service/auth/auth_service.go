package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	coreAuth "warehouse.GO/core/auth"
	"warehouse.GO/model/entity"
	authRepo "warehouse.GO/model/repository/auth"
	userRepo "warehouse.GO/model/repository/user"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=100"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=128"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Session is the body returned by register, login and refresh.
type Session struct {
	User *entity.User `json:"user"`
	*coreAuth.TokenPair
}

type Service struct {
	db        *gorm.DB
	tokens    *coreAuth.TokenManager
	blacklist *coreAuth.Blacklist
	logger    *logrus.Logger
}

func NewService(db *gorm.DB, tokens *coreAuth.TokenManager, blacklist *coreAuth.Blacklist, logger *logrus.Logger) *Service {
	return &Service{db: db, tokens: tokens, blacklist: blacklist, logger: logger}
}

func (s *Service) users(ctx context.Context) *userRepo.UserRepository {
	return userRepo.NewUserRepository(s.db.WithContext(ctx))
}

func (s *Service) repo(ctx context.Context) *authRepo.AuthRepository {
	return authRepo.NewAuthRepository(s.db.WithContext(ctx))
}

// Register creates a staff account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	u := &entity.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: in.Password,
		FullName: in.FullName,
		Phone:    in.Phone,
		Role:     entity.RoleStaff,
		IsActive: true,
	}
	if err := s.ensureFree(ctx, u.Username, u.Email, 0); err != nil {
		return nil, err
	}
	if err := s.users(ctx).Create(u); err != nil {
		return nil, apperror.FromDB(err, "User")
	}
	return s.startSession(ctx, u)
}

// ensureFree rejects a username or email already used by another user.
func (s *Service) ensureFree(ctx context.Context, username, email string, exceptID uint) error {
	field, err := s.users(ctx).Taken(username, email, exceptID)
	if err != nil {
		return err
	}
	switch field {
	case "username":
		return apperror.Duplicate("Username already exists")
	case "email":
		return apperror.Duplicate("Email already exists")
	}
	return nil
}

// Login checks the credentials of an active user and issues a token pair.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	login := in.Username
	if login == "" {
		login = in.Email
	}
	if strings.TrimSpace(login) == "" {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "username", Message: "username or email is required"})
	}
	u, err := s.users(ctx).FindByLogin(login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.InvalidCredentials()
	}
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(in.Password) || !u.IsActive {
		s.logger.WithField("login", login).Warn("auth: failed login")
		return nil, apperror.InvalidCredentials()
	}
	now := time.Now()
	if err := s.repo(ctx).TouchLastLogin(u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now
	return s.startSession(ctx, u)
}

func (s *Service) startSession(ctx context.Context, u *entity.User) (*Session, error) {
	pair, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.repo(ctx).SetRefreshToken(u.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	u.RefreshToken = pair.RefreshToken
	return &Session{User: u, TokenPair: pair}, nil
}

// Refresh rotates a refresh token. Only the most recently issued refresh token is accepted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "refreshToken", Message: "refreshToken is required"})
	}
	claims, err := s.tokens.Parse(refreshToken, coreAuth.TypeRefresh)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired refresh token")
	}
	u, err := s.users(ctx).FindByID(claims.UserID)
	if err != nil || !u.IsActive {
		return nil, apperror.Unauthorized("Invalid or expired refresh token")
	}
	pair, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo(ctx).RotateRefreshToken(u.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Unauthorized("Refresh token has been revoked")
	}
	u.RefreshToken = pair.RefreshToken
	return &Session{User: u, TokenPair: pair}, nil
}

// Logout revokes the access token and forgets the refresh token.
func (s *Service) Logout(ctx context.Context, u *entity.User, claims *coreAuth.Claims) error {
	if err := s.blacklist.Revoke(ctx, claims, "logout"); err != nil {
		return err
	}
	return s.repo(ctx).SetRefreshToken(u.ID, "")
}

// UpdateProfile changes the caller's own name, email and phone.
func (s *Service) UpdateProfile(ctx context.Context, u *entity.User, in ProfileInput) (*entity.User, error) {
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != u.Email {
			if err := s.ensureFree(ctx, "", email, u.ID); err != nil {
				return nil, err
			}
		}
		u.Email = email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if err := s.users(ctx).Save(u); err != nil {
		return nil, apperror.FromDB(err, "User")
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one and signs other sessions out.
func (s *Service) ChangePassword(ctx context.Context, u *entity.User, claims *coreAuth.Claims, in ChangePasswordInput) error {
	if !u.CheckPassword(in.CurrentPassword) {
		return apperror.BadRequest("Current password is incorrect")
	}
	if in.CurrentPassword == in.NewPassword {
		return apperror.BadRequest("New password must differ from the current one")
	}
	u.Password = in.NewPassword
	u.RefreshToken = ""
	if err := s.users(ctx).Save(u); err != nil {
		return err
	}
	if claims != nil {
		return s.blacklist.Revoke(ctx, claims, "password_change")
	}
	return nil
}
