package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/models"
	"github.com/noah-isme/mock-interview-api/internal/repository"
)

func newAuthFixture(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()

	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	svc := NewAuthService(users, testValidator(), AuthConfig{
		Secret:     "test-secret",
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, testLogger())

	return svc, users
}

func TestAuthRegisterAndLogin(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", registered.Email)

	stored, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.PasswordHash)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", login.FullName)
	require.True(t, login.ExpiresAt.After(time.Now()))

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(login.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, strconv.FormatUint(uint64(registered.ID), 10), claims.Subject)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	payload := dto.RegisterRequest{FullName: "Grace Hopper", Email: "grace@example.com", Password: "cobol123"}
	_, err := svc.Register(ctx, payload)
	require.NoError(t, err)

	payload.Email = "GRACE@example.com"
	_, err = svc.Register(ctx, payload)
	require.ErrorIs(t, err, ErrEmailTaken)
	require.ErrorIs(t, err, ErrValidation)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, &models.User{FullName: "Alan", Email: "alan@example.com", PasswordHash: string(hash)}))

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "alan@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, err, ErrUnauthorized)
}

// staleLookupUsers misses every email lookup, as a concurrent registration would see before the insert commits.
type staleLookupUsers struct {
	repository.UserRepository
}

func (staleLookupUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return models.User{}, gorm.ErrRecordNotFound
}

func TestAuthRegisterMapsUniqueViolationToEmailTaken(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()
	payload := dto.RegisterRequest{FullName: "Grace Hopper", Email: "grace@example.com", Password: "secret123"}

	_, err := svc.Register(ctx, payload)
	require.NoError(t, err)

	racing := NewAuthService(staleLookupUsers{UserRepository: users}, testValidator(), AuthConfig{
		Secret:     "test-secret",
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, testLogger())

	_, err = racing.Register(ctx, payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}
