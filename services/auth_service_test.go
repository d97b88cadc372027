package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cmticaret/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(users ...*models.User) (*AuthService, *fakeUserRepo, *countingNotifier) {
	repo := newFakeUserRepo(users...)
	notifier := &countingNotifier{}
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(repo, tokens, notifier, zap.NewNop()), repo, notifier
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	svc, repo, _ := newAuthFixture()

	result, aerr := svc.Register(context.Background(), "Ayşe", "Ayse@Example.com", "parola123", "")
	require.Nil(t, aerr)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ayse@example.com", result.User.Email, "email is normalized to lower case")
	assert.False(t, result.User.IsAdmin, "registration can never grant admin")

	stored, err := repo.FindByEmail(context.Background(), "ayse@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("parola123")))
	assert.NotEqual(t, "parola123", stored.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newAuthFixture(&models.User{ID: "u1", Email: "ayse@example.com"})

	_, aerr := svc.Register(context.Background(), "Ayşe", "ayse@example.com", "parola123", "")
	require.NotNil(t, aerr)
	assert.Equal(t, http.StatusConflict, aerr.Code)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _, _ := newAuthFixture(&models.User{
		ID:           "u1",
		Email:        "ayse@example.com",
		PasswordHash: hashOf(t, "parola123"),
	})
	ctx := context.Background()

	_, wrongPass := svc.Login(ctx, "ayse@example.com", "yanlış")
	_, unknown := svc.Login(ctx, "yok@example.com", "parola123")

	require.NotNil(t, wrongPass)
	require.NotNil(t, unknown)
	assert.Equal(t, wrongPass.Code, unknown.Code)
	assert.Equal(t, wrongPass.Message, unknown.Message)
}

func TestLoginSucceedsAndTokenCarriesAdminClaim(t *testing.T) {
	svc, _, _ := newAuthFixture(&models.User{
		ID:           "u1",
		Email:        "admin@example.com",
		PasswordHash: hashOf(t, "parola123"),
		IsAdmin:      true,
	})

	result, aerr := svc.Login(context.Background(), "admin@example.com", "parola123")
	require.Nil(t, aerr)

	claims, err := NewTokenService("test-secret", time.Hour).Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, true, claims["is_admin"])
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Generate(&models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	svc, repo, _ := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "parola123"))
	first, err := repo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "başka-parola"))
	second, err := repo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "an existing account is never overwritten")
}
