// Package auth отвечает за вход, выход и проверку JWT с учётом отозванных токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-enrollment/internal/denylist"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/jwt"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/password"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

var (
	// ErrInvalidCredentials неверный логин или пароль.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", errs.ErrUnauthorized)
	// ErrTokenRevoked токен отозван через logout.
	ErrTokenRevoked = fmt.Errorf("%w: token revoked", errs.ErrUnauthorized)
)

// UserRepository описывает поиск пользователей для входа.
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// LoginResult результат успешного входа.
type LoginResult struct {
	Token   string         `json:"access_token"`
	User    models.Summary `json:"user"`
	Message string         `json:"message"`
}

// AuthService выдаёт, отзывает и проверяет JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	denylist denylist.Store
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
// tokenTTL используется как срок отзыва для токенов без exp.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, store denylist.Store, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		denylist: store,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login ищет пользователя по username, затем по email, и сверяет пароль.
func (s *AuthService) Login(ctx context.Context, loginID, rawPassword string) (*LoginResult, error) {
	const op = "auth.Login"

	user, err := s.findUser(ctx, loginID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginResult{
		Token:   token,
		User:    user.Summarize(),
		Message: "Login successful, welcome " + user.Role,
	}, nil
}

func (s *AuthService) findUser(ctx context.Context, loginID string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, loginID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	return s.users.GetUserByEmail(ctx, loginID)
}

// Logout отзывает токен до истечения его срока действия.
func (s *AuthService) Logout(ctx context.Context, token string, claims *jwt.CustomClaims) (string, error) {
	const op = "auth.Logout"

	expiresAt := s.now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, token, expiresAt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "Logout successful for " + claims.Username, nil
}

// ValidateToken проверяет, что токен не отозван, и разбирает его claims.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "auth.ValidateToken"

	revoked, err := s.denylist.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, errs.ErrUnauthorized, err)
	}
	return claims, nil
}
