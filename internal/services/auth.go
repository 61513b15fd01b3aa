package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/apperrors"
	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/repos"
	"github.com/yungbote/calctree-backend/internal/requestdata"
	"github.com/yungbote/calctree-backend/internal/types"
)

const minPasswordLength = 6

type AuthService interface {
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	ParseToken(tokenString string) (*Claims, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

// AuthResult is the wire shape both register and login return. Registration
// issues a token immediately so the client is logged in right away.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey []byte
	tokenTTL     time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, tokenTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     tokenTTL,
	}
}

func (as *authService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty: %w", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters long: %w", minPasswordLength, apperrors.ErrValidation)
	}

	exists, err := as.userRepo.UsernameExists(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("%w: check username: %v", apperrors.ErrPersistence, err)
	}
	if exists {
		return nil, apperrors.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := as.userRepo.Create(ctx, nil, user); err != nil {
		// The unique index on username still fires if two registrations
		// race past the exists check.
		as.log.Warn("User create failed", "username", username, "error", err)
		return nil, apperrors.ErrUsernameTaken
	}
	as.log.Info("User registered", "userID", user.ID, "username", user.Username)

	token, err := as.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)

	user, err := as.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("%w: look up user: %v", apperrors.ErrPersistence, err)
	}
	if user == nil {
		return nil, apperrors.ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrBadCredentials
	}

	token, err := as.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}

func (as *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return as.jwtSecretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := as.ParseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	rd := &requestdata.RequestData{UserID: claims.UserID, Username: claims.Username}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
