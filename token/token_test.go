package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voxgate/recordings-gateway/token"
)

const testSecret = "test-signing-secret"

func frozenClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return at }
	t.Cleanup(func() { token.NowTimeFunc = prev })
}

func TestIssueAndIntrospect(t *testing.T) {
	signer := token.NewHMACSigner(testSecret)
	issuer := token.NewIssuer(signer, "test-issuer")
	inspector := token.NewInspector(signer, nil)

	rawToken, expiresAt, err := issuer.Issue("clientA")
	require.NoError(t, err)
	require.NotEmpty(t, rawToken)
	require.WithinDuration(t, time.Now().Add(token.DefaultTTL), expiresAt, time.Minute)

	introspection, err := inspector.Introspect(rawToken)
	require.NoError(t, err)
	require.True(t, introspection.Active)
	require.Equal(t, "clientA", introspection.TenantID)
	require.Equal(t, "test-issuer", introspection.Iss)
	require.NotEmpty(t, introspection.JTI)
}

func TestCredentialLifecycle(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ttl := 8 * time.Hour

	signer := token.NewHMACSigner(testSecret)
	issuer := token.NewIssuer(signer, "test-issuer", token.WithTTL(ttl))
	inspector := token.NewInspector(signer, nil)

	frozenClock(t, t0)
	rawToken, expiresAt, err := issuer.Issue("clientA")
	require.NoError(t, err)
	require.Equal(t, t0.Add(ttl), expiresAt)

	tests := []struct {
		name   string
		at     time.Time
		active bool
	}{
		{"immediately after issue", t0.Add(time.Second), true},
		{"just before expiry", t0.Add(ttl - time.Second), true},
		{"at expiry", t0.Add(ttl), false},
		{"after expiry", t0.Add(ttl + time.Hour), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frozenClock(t, tc.at)
			introspection, _ := inspector.Introspect(rawToken)
			require.Equal(t, tc.active, introspection.Active)
		})
	}
}

func TestIntrospectRejectsBadTokens(t *testing.T) {
	signer := token.NewHMACSigner(testSecret)
	issuer := token.NewIssuer(signer, "test-issuer")
	inspector := token.NewInspector(signer, nil)

	rawToken, _, err := issuer.Issue("clientA")
	require.NoError(t, err)

	otherSigner := token.NewHMACSigner("a-different-secret")
	otherIssuer := token.NewIssuer(otherSigner, "test-issuer")
	foreignToken, _, err := otherIssuer.Issue("clientA")
	require.NoError(t, err)

	tests := []struct {
		name     string
		rawToken string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"garbage", "not.a.token"},
		{"tampered payload", rawToken[:len(rawToken)-4] + "AAAA"},
		{"wrong signing key", foreignToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			introspection, _ := inspector.Introspect(tc.rawToken)
			require.False(t, introspection.Active)
		})
	}
}

func TestRevocation(t *testing.T) {
	signer := token.NewHMACSigner(testSecret)
	issuer := token.NewIssuer(signer, "test-issuer")
	revocations := token.NewInMemoryRevokedTokenCache()
	inspector := token.NewInspector(signer, revocations)

	rawToken, expiresAt, err := issuer.Issue("clientA")
	require.NoError(t, err)

	introspection, err := inspector.Introspect(rawToken)
	require.NoError(t, err)
	require.True(t, introspection.Active)

	require.NoError(t, revocations.Add(introspection.JTI, expiresAt))

	introspection, err = inspector.Introspect(rawToken)
	require.NoError(t, err)
	require.False(t, introspection.Active)
}

func TestAddSweepsExpiredEntries(t *testing.T) {
	revocations := token.NewInMemoryRevokedTokenCache()
	now := time.Now()

	require.NoError(t, revocations.Add("old-jti", now.Add(-24*time.Hour)))
	require.NoError(t, revocations.Add("live-jti", now.Add(time.Hour)))

	// The entry that expired a day ago was dropped by the later Add.
	require.False(t, revocations.IsRevoked("old-jti"))
	require.True(t, revocations.IsRevoked("live-jti"))
}

func TestRevocationCleanup(t *testing.T) {
	revocations := token.NewInMemoryRevokedTokenCache()
	now := time.Now()

	require.NoError(t, revocations.Add("expired-jti", now.Add(-time.Hour)))
	require.NoError(t, revocations.Add("live-jti", now.Add(time.Hour)))

	revocations.Cleanup()

	require.False(t, revocations.IsRevoked("expired-jti"))
	require.True(t, revocations.IsRevoked("live-jti"))
}
