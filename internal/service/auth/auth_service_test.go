package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/repository/memory"
	"github.com/RandySimanca/avicola/internal/service/auth"
)

func newService() *auth.Service {
	return auth.NewService(memory.NewStore(), "test-secret", nil)
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	svc := newService()

	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Name:     "Carmen",
		Email:    "  Carmen@Granja.co ",
		Password: "secreto",
	})
	require.NoError(t, err)

	assert.Equal(t, models.UserPending, user.Status)
	assert.Equal(t, models.RoleGalponero, user.Role)
	assert.Equal(t, "carmen@granja.co", user.Email)
	assert.NotEqual(t, "secreto", user.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newService()

	_, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Carmen", Email: "carmen@granja.co", Password: "secreto",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), auth.RegisterInput{
		Name: "Otra", Email: "CARMEN@granja.co", Password: "secreto2",
	})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestLoginLifecycle(t *testing.T) {
	svc := newService()

	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Carmen", Email: "carmen@granja.co", Password: "secreto", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	// Pending accounts cannot log in even with the right password.
	_, err = svc.Login(context.Background(), "carmen@granja.co", "secreto")
	assert.ErrorIs(t, err, auth.ErrUserNotApproved)

	_, err = svc.ApproveUser(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "carmen@granja.co", "equivocada")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	result, err := svc.Login(context.Background(), "carmen@granja.co", "secreto")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	session, err := svc.SessionFromToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "Carmen", session.Name)
	assert.Equal(t, models.RoleAdmin, session.Role)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newService()

	_, err := svc.Login(context.Background(), "nadie@granja.co", "secreto")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSessionFromTokenRejectsTampering(t *testing.T) {
	svc := newService()
	other := auth.NewService(memory.NewStore(), "another-secret", nil)

	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Carmen", Email: "carmen@granja.co", Password: "secreto",
	})
	require.NoError(t, err)
	_, err = svc.ApproveUser(context.Background(), user.ID)
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "carmen@granja.co", "secreto")
	require.NoError(t, err)

	_, err = other.SessionFromToken(result.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.SessionFromToken("garbage.token.value")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestToggleUserStatus(t *testing.T) {
	svc := newService()

	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Carmen", Email: "carmen@granja.co", Password: "secreto",
	})
	require.NoError(t, err)
	_, err = svc.ApproveUser(context.Background(), user.ID)
	require.NoError(t, err)

	toggled, err := svc.ToggleUserStatus(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserInactive, toggled.Status)

	_, err = svc.Login(context.Background(), "carmen@granja.co", "secreto")
	assert.ErrorIs(t, err, auth.ErrUserNotApproved)

	toggled, err = svc.ToggleUserStatus(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, toggled.Status)
}

func TestRejectUser(t *testing.T) {
	svc := newService()

	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Carmen", Email: "carmen@granja.co", Password: "secreto",
	})
	require.NoError(t, err)

	rejected, err := svc.RejectUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserRejected, rejected.Status)
}

func TestUserAdminUnknownID(t *testing.T) {
	svc := newService()

	_, err := svc.ApproveUser(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = svc.UpdateUserRole(context.Background(), "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
