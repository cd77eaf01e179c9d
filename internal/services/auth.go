package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/ctxutil"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

// bcrypt only looks at the first 72 bytes of a password.
const maxPasswordBytes = 72

type AuthConfig struct {
	SecretKey  string
	AccessTTL  time.Duration
	BcryptCost int
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Me(ctx context.Context) (*domain.User, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	secretKey []byte
	accessTTL time.Duration
	cost      int
}

func NewAuthService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, cfg AuthConfig) AuthService {
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 120 * time.Minute
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		users:     users,
		secretKey: []byte(cfg.SecretKey),
		accessTTL: ttl,
		cost:      cost,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	const op = "auth.register"
	name, err := requiredText(op, "nome", in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(op, in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, ValidationError(op, "senha is required")
	}
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(in.Password), as.cost)
	if err != nil {
		return nil, OperationalError(op, "failed to hash password", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: string(hash)}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.users.GetByEmail(dbc, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ValidationError(op, "email already registered")
		}
		return as.users.Create(dbc, user)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	as.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.login"
	user, err := as.users.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return "", ClassifyDBError(op, err)
	}
	if user == nil {
		return "", UnauthorizedError(op, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), truncatePassword(password)); err != nil {
		return "", UnauthorizedError(op, "invalid credentials")
	}
	tok, err := as.generateAccessToken(user)
	if err != nil {
		return "", OperationalError(op, "failed to sign token", err)
	}
	return tok, nil
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		ID:    user.ID,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.secretKey)
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "auth.token"
	if tokenString == "" {
		return ctx, UnauthorizedError(op, "missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, UnauthorizedError(op, "token expired")
		}
		return ctx, UnauthorizedError(op, "invalid token")
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid || claims.ID == 0 {
		return ctx, UnauthorizedError(op, "invalid token")
	}
	user, err := as.users.GetByID(dbctx.Context{Ctx: ctx}, claims.ID)
	if err != nil {
		return ctx, ClassifyDBError(op, err)
	}
	if user == nil {
		return ctx, UnauthorizedError(op, "user not found")
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Email:       user.Email,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) Me(ctx context.Context) (*domain.User, error) {
	const op = "auth.me"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == 0 {
		return nil, UnauthorizedError(op, "not authenticated")
	}
	user, err := as.users.GetByID(dbctx.Context{Ctx: ctx}, rd.UserID)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if user == nil {
		return nil, UnauthorizedError(op, "user not found")
	}
	return user, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func truncatePassword(p string) []byte {
	b := []byte(p)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
