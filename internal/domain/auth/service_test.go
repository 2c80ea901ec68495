package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/config"
	"gatepass-server-go/internal/platform/logging"
	"gatepass-server-go/internal/platform/storage"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := storage.OpenMemory()
	require.NoError(t, err)

	logger, err := logging.New(logging.Config{
		Level:    "error",
		Dir:      t.TempDir(),
		Filename: "test.log",
	})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	svc, err := NewService(storage.NewAccountRepository(db), logger, config.AuthConfig{
		JWTSecret:         "test_secret",
		TokenTTL:          config.Duration(time.Hour),
		SeedAdminUser:     "admin",
		SeedAdminPassword: "admin123",
	})
	require.NoError(t, err)
	return svc
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "alice", "alice@example.com", "pw1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.NotEqual(t, "pw1", account.PasswordHash)

	token, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
}

func TestService_RegisterConflicts(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw1", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "alice", "other@example.com"},
		{"same username different case", "ALICE", "other@example.com"},
		{"same email different case", "bob", "Alice@Example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, "pw", "")
			require.Error(t, err)
			assert.True(t, IsConflict(err))
		})
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "", "pw", "")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "x", "", "", "")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "x", "", "pw", "superuser")
	assert.Error(t, err)
}

func TestService_RegisterDefaultsToOperator(t *testing.T) {
	svc := setupService(t)

	account, err := svc.Register(context.Background(), "bob", "", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOperator, account.Role)
}

func TestService_LoginFailuresIndistinguishable(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "pw1", "")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody", "pw1")
	_, errWrongPw := svc.Login(ctx, "alice", "wrong")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	// identical failure shape: nothing leaks whether the identifier exists
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestService_VerifyRejectsTamperedToken(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "pw1", models.RoleOperator)
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	// flip a character inside the payload segment
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	_, err = svc.Verify(string(tampered))
	assert.Error(t, err)
}

func TestService_VerifyRejectsEmptyAndGarbage(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Verify("")
	assert.Error(t, err)

	_, err = svc.Verify("not.a.token")
	assert.Error(t, err)
}

func TestService_UpdateAccount(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "carol", "", "old", models.RoleOperator)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, account.ID, UpdateRequest{
		Name:     "caroline",
		Role:     models.RoleAdmin,
		Password: "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "caroline", updated.Username)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = svc.Login(ctx, "caroline", "new")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "caroline", "old")
	assert.Error(t, err)
}

func TestService_UpdateMissingAccount(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Update(context.Background(), 9999, UpdateRequest{Name: "ghost"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestService_EnsureAdminAccount(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdminAccount(ctx))

	token, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	// second call is a no-op
	require.NoError(t, svc.EnsureAdminAccount(ctx))
	accounts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
