package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-enrollment/internal/denylist"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	customjwt "github.com/magabrotheeeer/course-enrollment/internal/lib/jwt"
	"github.com/magabrotheeeer/course-enrollment/internal/lib/password"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
	"github.com/magabrotheeeer/course-enrollment/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role string, userID int64) (string, error) {
	args := m.Called(username, role, userID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		ID:           7,
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        "ann@example.com",
		Username:     "ann",
		PasswordHash: hashedPassword,
		Role:         models.RoleStudent,
	}
	notFound := fmt.Errorf("storage.getUser: %w", errs.ErrNotFound)

	tests := []struct {
		name       string
		loginID    string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantUnauth bool
		wantErrMsg string
	}{
		{
			name:     "successful login by username",
			loginID:  "ann",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "ann").Return(testUser, nil).Once()
				j.On("GenerateToken", "ann", models.RoleStudent, int64(7)).Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "falls back to email",
			loginID:  "ann@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "ann@example.com").Return(nil, notFound).Once()
				r.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(testUser, nil).Once()
				j.On("GenerateToken", "ann", models.RoleStudent, int64(7)).Return("jwt-token-456", nil).Once()
			},
			wantToken: "jwt-token-456",
		},
		{
			name:     "unknown user",
			loginID:  "ghost",
			password: "whatever",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, notFound).Once()
				r.On("GetUserByEmail", mock.Anything, "ghost").Return(nil, notFound).Once()
			},
			wantUnauth: true,
			wantErrMsg: "invalid username or password",
		},
		{
			name:     "wrong password",
			loginID:  "ann",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "ann").Return(testUser, nil).Once()
			},
			wantUnauth: true,
			wantErrMsg: "invalid username or password",
		},
		{
			name:     "repository failure is not masked",
			loginID:  "ann",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "ann").Return(nil, errors.New("db error")).Once()
			},
			wantErrMsg: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := auth.NewAuthService(repo, jwtMock, denylist.NewMemory(nil), time.Hour)
			tt.setupMocks(repo, jwtMock)

			res, err := svc.Login(context.Background(), tt.loginID, tt.password)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Equal(t, tt.wantUnauth, errors.Is(err, errs.ErrUnauthorized))
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, res.Token)
				assert.Equal(t, "Login successful, welcome student", res.Message)
				assert.Equal(t, models.Summary{ID: 7, Name: "Ann Lee", Email: "ann@example.com", Role: "student"}, res.User)
			}
			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	repo := new(UserRepoMock)
	jwtMock := new(JwtMakerMock)
	store := denylist.NewMemory(nil)
	svc := auth.NewAuthService(repo, jwtMock, store, time.Hour)
	ctx := context.Background()

	claims := &customjwt.CustomClaims{
		Username: "ann",
		Role:     models.RoleStudent,
		UserID:   7,
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	jwtMock.On("ParseToken", "tok").Return(claims, nil).Once()

	got, err := svc.ValidateToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)

	msg, err := svc.Logout(ctx, "tok", claims)
	require.NoError(t, err)
	assert.Equal(t, "Logout successful for ann", msg)

	_, err = svc.ValidateToken(ctx, "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	jwtMock.AssertExpectations(t)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	jwtMock := new(JwtMakerMock)
	svc := auth.NewAuthService(new(UserRepoMock), jwtMock, denylist.NewMemory(nil), time.Hour)

	jwtMock.On("ParseToken", "bad").Return(nil, errors.New("signature is invalid")).Once()

	claims, err := svc.ValidateToken(context.Background(), "bad")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}
