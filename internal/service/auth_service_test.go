package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/pkg/config"
	appErrors "github.com/titans-club/portal-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *storeStub, *memberRepoStub) {
	t.Helper()
	store := newStoreStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	store.seed(models.CollectionCredentials, "pres@titans.club", map[string]interface{}{
		"email": "pres@titans.club", "passwordHash": string(hash),
	})
	members := newMemberRepoStub(models.Member{
		ID: "pres@titans.club", Email: "pres@titans.club", Name: "Pres",
		Position: models.PositionPresident, Role: models.RoleAdmin,
		HierarchyLevel: 1, Status: models.MemberStatusActive,
	})
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "titans-portal"}
	return NewAuthService(store, members, cfg, nil, nil), store, members
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "Pres@Titans.Club", Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, "pres@titans.club", result.Member.Email)

	claims, err := svc.ParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "pres@titans.club", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "pres@titans.club", Password: "wrong",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ghost@titans.club", Password: "s3cret",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginBlockedMember(t *testing.T) {
	svc, _, members := newAuthFixture(t)
	blocked := members.members["pres@titans.club"]
	blocked.Status = models.MemberStatusBlocked
	members.members["pres@titans.club"] = blocked

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "pres@titans.club", Password: "s3cret",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.ParseToken("not.a.token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestCredentialProvisionerRejectsDuplicate(t *testing.T) {
	store := newStoreStub()
	provisioner := NewCredentialProvisioner(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, provisioner.CreateCredential(ctx, "new@titans.club", "pw"))

	err := provisioner.CreateCredential(ctx, "New@Titans.Club", "pw")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrIdentityConflict.Code, appErr.Code)
}

func TestCredentialProvisionerValidatesEmailGrammar(t *testing.T) {
	provisioner := NewCredentialProvisioner(newStoreStub(), nil, nil)

	err := provisioner.CreateCredential(context.Background(), "not-an-email", "pw")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
