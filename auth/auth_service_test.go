package auth_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/recordings-gateway/auth"
	"github.com/voxgate/recordings-gateway/tenants"
	"github.com/voxgate/recordings-gateway/tenants/repofakes"
	"github.com/voxgate/recordings-gateway/token"
)

const (
	testTenantID = "clientA"
	testPrefix   = "clientA/"
	testSecret   = "correct horse battery staple"
)

type testFixture struct {
	tenantRepo  *repofakes.FakeTenantRepo
	revocations *token.InMemoryRevokedTokenCache
	service     *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	signer := token.NewHMACSigner("auth-test-signing-secret")
	revocations := token.NewInMemoryRevokedTokenCache()
	issuer := token.NewIssuer(signer, "test-issuer")
	inspector := token.NewInspector(signer, revocations)

	tenantRepo := repofakes.NewFakeTenantRepo()
	hash, err := tenants.HashSecret(testSecret)
	require.NoError(t, err)
	tenantRepo.Upsert(&tenants.Tenant{ID: testTenantID, SecretHash: hash, Prefix: testPrefix})

	service, err := auth.NewService(tenantRepo, issuer, inspector, revocations, zerolog.Nop())
	require.NoError(t, err)

	return &testFixture{
		tenantRepo:  tenantRepo,
		revocations: revocations,
		service:     service,
	}
}

func TestAuthenticate(t *testing.T) {
	f := setupTestFixture(t)

	credential, err := f.service.Authenticate(testTenantID, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, credential.Token)
	require.Greater(t, credential.ExpiresAt, time.Now().Unix())
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	f := setupTestFixture(t)

	_, unknownUserErr := f.service.Authenticate("no-such-tenant", testSecret)
	_, wrongSecretErr := f.service.Authenticate(testTenantID, "wrong secret")

	require.ErrorIs(t, unknownUserErr, auth.ErrAuthentication)
	require.ErrorIs(t, wrongSecretErr, auth.ErrAuthentication)
	require.Equal(t, unknownUserErr.Error(), wrongSecretErr.Error())
}

func TestResolve(t *testing.T) {
	f := setupTestFixture(t)

	credential, err := f.service.Authenticate(testTenantID, testSecret)
	require.NoError(t, err)

	tenant, err := f.service.Resolve(credential.Token)
	require.NoError(t, err)
	require.Equal(t, testTenantID, tenant.ID)
	require.Equal(t, testPrefix, tenant.Prefix)
}

func TestResolveRejectsInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name     string
		rawToken string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"structurally valid garbage", "aaaa.bbbb.cccc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Resolve(tc.rawToken)
			require.ErrorIs(t, err, auth.ErrInvalidCredential)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := setupTestFixture(t)

	credential, err := f.service.Authenticate(testTenantID, testSecret)
	require.NoError(t, err)

	_, err = f.service.Resolve(credential.Token)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(credential.Token))

	_, err = f.service.Resolve(credential.Token)
	require.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestLogoutWithInvalidToken(t *testing.T) {
	f := setupTestFixture(t)

	require.ErrorIs(t, f.service.Logout("garbage"), auth.ErrInvalidCredential)
}
