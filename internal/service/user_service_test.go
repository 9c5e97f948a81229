package service

import (
	"context"
	"strings"
	"testing"

	"feather-finance/internal/dto"
	"feather-finance/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserHashesPassword(t *testing.T) {
	r := newRepos(t)
	svc := newTestUserService(r)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: " alice ", Email: "Alice@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	stored, err := r.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	_, err = svc.GetUser(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	r := newRepos(t)
	svc := newTestUserService(r)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, dto.CreateUserRequest{Username: "bob", Email: "bob@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "bob", Email: "other@example.com", Password: "password1"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "bobby", Email: "bob@example.com", Password: "password1"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCreateUserValidation(t *testing.T) {
	r := newRepos(t)
	svc := newTestUserService(r)

	tests := []struct {
		name string
		req  dto.CreateUserRequest
	}{
		{name: "missing username", req: dto.CreateUserRequest{Email: "a@example.com", Password: "password1"}},
		{name: "long username", req: dto.CreateUserRequest{Username: strings.Repeat("u", 51), Email: "a@example.com", Password: "password1"}},
		{name: "long multi-byte username", req: dto.CreateUserRequest{Username: strings.Repeat("ü", 51), Email: "a@example.com", Password: "password1"}},
		{name: "bad email", req: dto.CreateUserRequest{Username: "a", Email: "not-an-email", Password: "password1"}},
		{name: "display name email", req: dto.CreateUserRequest{Username: "a", Email: "A <a@example.com>", Password: "password1"}},
		{name: "short password", req: dto.CreateUserRequest{Username: "a", Email: "a@example.com", Password: "short"}},
		{name: "long password", req: dto.CreateUserRequest{Username: "a", Email: "a@example.com", Password: strings.Repeat("p", 73)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateUserCountsCharactersNotBytes(t *testing.T) {
	r := newRepos(t)
	svc := newTestUserService(r)

	username := strings.Repeat("ü", 50)
	user, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{Username: username, Email: "umlaut@example.com", Password: "pässwört"})
	require.NoError(t, err)
	assert.Equal(t, username, user.Username)
}
