package usecase

import (
	"context"
	"testing"

	"content-catalog/internal/data/entity"
	"content-catalog/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateAndListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.User.CreateUser(ctx, &request.CreateUserRequest{
		Username: "morpheus",
		Email:    "morpheus@example.com",
		Bio:      "<b>captain</b>",
		Role:     "moderator",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleModerator, created.Role)
	assert.Equal(t, "captain", created.Bio)

	_, err = f.svc.User.CreateUser(ctx, &request.CreateUserRequest{Username: "tank", Email: "tank@example.com"})
	require.NoError(t, err)

	list, err := f.svc.User.GetAllUsers(ctx, "", &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, 1, list.Pagination.Page)
	assert.Equal(t, 10, list.Pagination.PerPage)

	list, err = f.svc.User.GetAllUsers(ctx, "MORPH", &request.PaginatedRequest{Page: 1, PerPage: 5})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "morpheus", list.Data[0].Username)
}

func TestCreateUserConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "neo", entity.RoleUser)

	var verr *ValidationError
	_, err := f.svc.User.CreateUser(ctx, &request.CreateUserRequest{Username: "neo", Email: "new@example.com"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")

	_, err = f.svc.User.CreateUser(ctx, &request.CreateUserRequest{Username: "other", Email: "neo@example.com"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	_, err = f.svc.User.CreateUser(ctx, &request.CreateUserRequest{Username: "x", Email: "x@example.com", Role: "root"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUserByAdminChangesRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "neo", entity.RoleUser)

	resp, err := f.svc.User.UpdateUser(ctx, "neo", &request.UpdateUserRequest{Role: strPtr("admin"), FirstName: strPtr("Thomas")})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.Role)
	assert.Equal(t, "Thomas", resp.FirstName)

	_, err = f.svc.User.UpdateUser(ctx, "ghost", &request.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMeIgnoresRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.addUser(t, "neo", entity.RoleUser)

	resp, err := f.svc.User.UpdateMe(ctx, actor.ID, &request.UpdateUserRequest{Role: strPtr("admin"), Bio: strPtr("the one")})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, resp.Role)
	assert.Equal(t, "the one", resp.Bio)

	me, err := f.svc.User.GetMe(ctx, actor.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, me.Role)
}

func TestUpdateMeRejectsTakenUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.addUser(t, "neo", entity.RoleUser)
	f.addUser(t, "trinity", entity.RoleUser)

	_, err := f.svc.User.UpdateMe(ctx, actor.ID, &request.UpdateUserRequest{Username: strPtr("trinity")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.User.UpdateMe(ctx, actor.ID, &request.UpdateUserRequest{Username: strPtr("me")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "neo", entity.RoleUser)

	require.NoError(t, f.svc.User.DeleteUser(ctx, "neo"))
	assert.ErrorIs(t, f.svc.User.DeleteUser(ctx, "neo"), ErrNotFound)

	_, err := f.svc.User.GetUser(ctx, "neo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.User.CreateSuperuser(ctx, "root", "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.Role)

	user, err := f.store.Repository().User.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsAdmin())

	_, err = f.svc.User.CreateSuperuser(ctx, "root", "root2@example.com")
	assert.ErrorIs(t, err, ErrValidation)
}
