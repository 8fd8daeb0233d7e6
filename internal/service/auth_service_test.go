package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/identity"
	"github.com/jortiz/teammatch/internal/repository/postgres"
	"github.com/jortiz/teammatch/internal/service"
	"github.com/jortiz/teammatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.AuthService, *identity.JWTVerifier, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	verifier := identity.NewJWTVerifier(testutil.TestConfig().JWTSecret, time.Hour)
	svc := service.NewAuthService(repos.User, verifier)
	return svc, verifier, testDB
}

func TestAuthService_Register(t *testing.T) {
	svc, verifier, _ := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, service.RegisterInput{
		DisplayName: "newcomer",
		Password:    "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultReputation, result.User.ReputationScore)
	assert.Equal(t, 0, result.User.ActiveProjectCount)
	assert.True(t, result.User.IsAvailable)

	// The returned token verifies back to the new user.
	userID, err := verifier.VerifyIdentity(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

func TestAuthService_Register_DuplicateDisplayName(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{DisplayName: "taken", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, service.RegisterInput{DisplayName: "taken", Password: "other456"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{DisplayName: "loginuser", Password: "secret123"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, service.LoginInput{DisplayName: "loginuser", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	_, err = svc.Login(ctx, service.LoginInput{DisplayName: "loginuser", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrAuth)

	_, err = svc.Login(ctx, service.LoginInput{DisplayName: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestJWTVerifier_RejectsForgedToken(t *testing.T) {
	good := identity.NewJWTVerifier("secret-a", time.Hour)
	evil := identity.NewJWTVerifier("secret-b", time.Hour)

	user, err := good.Mint(uuid.New(), "someone")
	require.NoError(t, err)

	_, err = evil.VerifyIdentity(user)
	assert.ErrorIs(t, err, domain.ErrAuth)

	_, err = good.VerifyIdentity("garbage")
	assert.ErrorIs(t, err, domain.ErrAuth)
}
