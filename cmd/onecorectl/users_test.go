package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"onecore/internal/domain"
	"onecore/internal/service"
	"onecore/mocks"
)

func byUsername(name string) interface{} {
	return mock.MatchedBy(func(in service.CreateUserInput) bool { return in.Username == name })
}

func TestSeedUsers_CreatesEveryRole(t *testing.T) {
	svc := new(mocks.MockAuthService)
	for _, u := range sampleUsers {
		u := u
		svc.On("CreateUser", mock.Anything, mock.MatchedBy(func(in service.CreateUserInput) bool {
			return in.Username == u.username && in.Role == u.role && in.Email != nil && *in.Email == u.email
		})).Return(&domain.User{ID: uuid.New(), Username: u.username, Role: u.role}, nil).Once()
	}

	var out bytes.Buffer
	created, err := seedUsers(context.Background(), svc, &out)

	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Contains(t, out.String(), "created admin / admin123 (role: admin)")
	assert.Contains(t, out.String(), "3 user(s) created")
	svc.AssertExpectations(t)
}

func TestSeedUsers_SkipsExisting(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("CreateUser", mock.Anything, byUsername("admin")).Return(nil, domain.ErrDuplicateUsername)
	svc.On("CreateUser", mock.Anything, byUsername("uploader")).Return(nil, domain.ErrDuplicateEmail)
	svc.On("CreateUser", mock.Anything, byUsername("user")).
		Return(&domain.User{ID: uuid.New(), Username: "user", Role: domain.RoleUser}, nil)

	var out bytes.Buffer
	created, err := seedUsers(context.Background(), svc, &out)

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Contains(t, out.String(), "skipped admin: already exists")
	assert.Contains(t, out.String(), "skipped uploader: already exists")
}

func TestSeedUsers_StopsOnFailure(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("CreateUser", mock.Anything, byUsername("admin")).Return(nil, errors.New("connection refused"))

	created, err := seedUsers(context.Background(), svc, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating admin")
	assert.Equal(t, 0, created)
	svc.AssertNumberOfCalls(t, "CreateUser", 1)
}

func TestCreateUser(t *testing.T) {
	svc := new(mocks.MockAuthService)
	id := uuid.New()
	svc.On("CreateUser", mock.Anything, service.CreateUserInput{
		Username: "carla",
		Password: "secreto123",
		Role:     domain.RoleUploader,
	}).Return(&domain.User{ID: id, Username: "carla", Role: domain.RoleUploader}, nil)

	var out bytes.Buffer
	err := createUser(context.Background(), svc, &out, "carla", "secreto123", "", "uploader")

	require.NoError(t, err)
	assert.Equal(t, "created carla ("+id.String()+") with role uploader\n", out.String())
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("CreateUser", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidRole)

	err := createUser(context.Background(), svc, &bytes.Buffer{}, "carla", "secreto123", "carla@example.com", "owner")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
