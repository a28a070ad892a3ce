package otp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernwerk/resilient-cache/internal/testutil"
	"github.com/lernwerk/resilient-cache/pkg/cache"
	"github.com/lernwerk/resilient-cache/pkg/localstore"
	"github.com/lernwerk/resilient-cache/pkg/otp"
)

func newService(t *testing.T, cfg otp.Config) *otp.Service {
	t.Helper()

	local := localstore.New()
	t.Cleanup(local.Close)

	facade := cache.NewFacade(
		testutil.NewFakeRemote(),
		local,
		cache.ReadyFunc(func() bool { return true }),
	)
	return otp.NewService(facade, cfg)
}

func TestService_IssueAndVerify(t *testing.T) {
	s := newService(t, otp.DefaultConfig())
	ctx := context.Background()

	code, err := s.Issue(ctx, "user@test.com")
	require.NoError(t, err)
	require.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	require.NoError(t, s.Verify(ctx, "user@test.com", code))
}

func TestService_Verify_ReplayRejected(t *testing.T) {
	s := newService(t, otp.DefaultConfig())
	ctx := context.Background()

	code, err := s.Issue(ctx, "user@test.com")
	require.NoError(t, err)

	require.NoError(t, s.Verify(ctx, "user@test.com", code))

	// The code was consumed; presenting it again must fail.
	err = s.Verify(ctx, "user@test.com", code)
	assert.ErrorIs(t, err, otp.ErrCodeExpired)
}

func TestService_Verify_Mismatch(t *testing.T) {
	s := newService(t, otp.DefaultConfig())
	ctx := context.Background()

	code, err := s.Issue(ctx, "user@test.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, s.Verify(ctx, "user@test.com", wrong), otp.ErrCodeMismatch)

	// A mismatch does not consume the stored code.
	require.NoError(t, s.Verify(ctx, "user@test.com", code))
}

func TestService_Verify_NeverIssued(t *testing.T) {
	s := newService(t, otp.DefaultConfig())

	err := s.Verify(context.Background(), "nobody@test.com", "123456")
	assert.ErrorIs(t, err, otp.ErrCodeExpired)
}

func TestService_Verify_Expired(t *testing.T) {
	cfg := otp.DefaultConfig()
	cfg.TTL = 50 * time.Millisecond
	s := newService(t, cfg)
	ctx := context.Background()

	code, err := s.Issue(ctx, "user@test.com")
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)

	assert.ErrorIs(t, s.Verify(ctx, "user@test.com", code), otp.ErrCodeExpired)
}

func TestService_Reissue_Overwrites(t *testing.T) {
	s := newService(t, otp.DefaultConfig())
	ctx := context.Background()

	first, err := s.Issue(ctx, "user@test.com")
	require.NoError(t, err)
	second, err := s.Issue(ctx, "user@test.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, s.Verify(ctx, "user@test.com", first), otp.ErrCodeMismatch)
	}
	require.NoError(t, s.Verify(ctx, "user@test.com", second))
}

func TestService_CodeWidth(t *testing.T) {
	cfg := otp.DefaultConfig()
	cfg.CodeLength = 8
	s := newService(t, cfg)

	for i := 0; i < 20; i++ {
		code, err := s.Issue(context.Background(), "user@test.com")
		require.NoError(t, err)
		assert.Regexp(t, `^\d{8}$`, code)
	}
}
