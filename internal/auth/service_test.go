package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsc-scorecard/scorecard/internal/shared"
)

func TestAuthenticate(t *testing.T) {
	repo, err := NewStaticRepository(Credentials{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", repo.user.PasswordHash)
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = svc.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "Admin", "s3cret")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestStaticRepositoryRequiresCredentials(t *testing.T) {
	_, err := NewStaticRepository(Credentials{Username: "admin"})
	assert.Error(t, err)
}
