package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/event-booking-go/config"
	models "github.com/phillip/event-booking-go/models"
	repository "github.com/phillip/event-booking-go/repository"
	utils "github.com/phillip/event-booking-go/utils"
)

type accountFixture struct {
	users   *MockUserStore
	access  *utils.TokenManager
	refresh *utils.TokenManager
	mgr     *AccountManager
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		users:   new(MockUserStore),
		access:  utils.NewTokenManager("access-secret", time.Minute, "test"),
		refresh: utils.NewTokenManager("refresh-secret", time.Hour, "test"),
	}
	f.mgr = NewAccountManager(f.users, f.access, f.refresh, zerolog.Nop())
	return f
}

func storedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: hash,
		Role:     models.RoleUser,
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "ada@example.com").Return(&models.User{Email: "ada@example.com"}, nil)

	_, err := f.mgr.Register(ctx, RegisterInput{Email: "Ada@Example.com", Password: "pw", Phone: "555", Name: "Ada"})
	assert.Equal(t, http.StatusConflict, utils.StatusOf(err))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateKeyRace(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound)
	f.users.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

	_, err := f.mgr.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "pw", Phone: "555", Name: "Ada"})
	assert.Equal(t, http.StatusConflict, utils.StatusOf(err))
}

func TestRegisterMissingFields(t *testing.T) {
	f := newAccountFixture()

	_, err := f.mgr.Register(context.Background(), RegisterInput{Email: "ada@example.com", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, utils.StatusOf(err))
}

func TestRegisterHashesAndSanitizes(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	var stored *models.User
	f.users.On("FindByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound)
	f.users.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.User)
			stored.ID = primitive.NewObjectID()
		}).
		Return(nil)

	user, err := f.mgr.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "pw", Phone: "555", Name: "Ada"})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.NotEqual(t, "pw", stored.Password)
	assert.True(t, utils.CheckPassword(stored.Password, "pw"))
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.Empty(t, user.Password)
	assert.Empty(t, user.RefreshToken)
	assert.Equal(t, stored.ID, user.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := storedUser(t, "right")

	f.users.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)

	res, err := f.mgr.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.Nil(t, res)
	assert.Equal(t, http.StatusUnauthorized, utils.StatusOf(err))
	f.users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound)

	_, err := f.mgr.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "pw"})
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
}

func TestLoginIssuesAndPersistsTokens(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := storedUser(t, "right")

	f.users.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	f.users.On("SetRefreshToken", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)

	res, err := f.mgr.Login(ctx, LoginInput{Email: "ada@example.com", Password: "right"})
	require.NoError(t, err)

	assert.Empty(t, res.User.Password)
	claims, err := f.access.Validate(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)

	f.users.AssertCalled(t, "SetRefreshToken", ctx, user.ID, res.RefreshToken)
}

func TestRefreshMissingToken(t *testing.T) {
	f := newAccountFixture()

	_, err := f.mgr.Refresh(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, utils.StatusOf(err))
}

func TestRefreshRejectsForeignSignature(t *testing.T) {
	f := newAccountFixture()
	token, err := f.access.Generate(primitive.NewObjectID().Hex(), utils.Claims{})
	require.NoError(t, err)

	_, err = f.mgr.Refresh(context.Background(), token)
	assert.Equal(t, http.StatusUnauthorized, utils.StatusOf(err))
}

func TestRefreshRejectsRotatedToken(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := storedUser(t, "pw")

	old, err := f.refresh.Generate(user.ID.Hex(), utils.Claims{})
	require.NoError(t, err)
	current, err := f.refresh.Generate(user.ID.Hex(), utils.Claims{})
	require.NoError(t, err)
	user.RefreshToken = current

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)

	_, err = f.mgr.Refresh(ctx, old)
	assert.Equal(t, http.StatusUnauthorized, utils.StatusOf(err))
	f.users.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshUnknownSubject(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	id := primitive.NewObjectID()

	token, err := f.refresh.Generate(id.Hex(), utils.Claims{})
	require.NoError(t, err)
	f.users.On("FindByID", ctx, id).Return(nil, repository.ErrNotFound)

	_, err = f.mgr.Refresh(ctx, token)
	assert.Equal(t, http.StatusUnauthorized, utils.StatusOf(err))
}

func TestRefreshRotates(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := storedUser(t, "pw")

	current, err := f.refresh.Generate(user.ID.Hex(), utils.Claims{})
	require.NoError(t, err)
	user.RefreshToken = current

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("RotateRefreshToken", ctx, user.ID, current, mock.AnythingOfType("string")).Return(nil)

	pair, err := f.mgr.Refresh(ctx, current)
	require.NoError(t, err)
	assert.NotEqual(t, current, pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessToken)
	f.users.AssertCalled(t, "RotateRefreshToken", ctx, user.ID, current, pair.RefreshToken)
	f.users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshLosesRotationRace(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := storedUser(t, "pw")

	current, err := f.refresh.Generate(user.ID.Hex(), utils.Claims{})
	require.NoError(t, err)
	user.RefreshToken = current

	// the stored token still matched when read, but another refresh rotated it first
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("RotateRefreshToken", ctx, user.ID, current, mock.AnythingOfType("string")).Return(repository.ErrNotFound)

	pair, err := f.mgr.Refresh(ctx, current)
	assert.Nil(t, pair)
	assert.Equal(t, http.StatusUnauthorized, utils.StatusOf(err))
}

func TestLogoutClearsToken(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	id := primitive.NewObjectID()

	f.users.On("SetRefreshToken", ctx, id, "").Return(nil)

	require.NoError(t, f.mgr.Logout(ctx, id.Hex()))
	f.users.AssertExpectations(t)
}

func TestUpdateUserPartial(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	id := primitive.NewObjectID()

	f.users.On("FindByID", ctx, id).Return(&models.User{ID: id, Name: "Ada"}, nil)
	f.users.On("Update", ctx, id, bson.M{"name": "Grace"}).Return(&models.User{ID: id, Name: "Grace"}, nil)

	user, err := f.mgr.UpdateUser(ctx, UpdateUserInput{UserID: id.Hex(), Name: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.Name)
}

func TestUpdateUserNotFound(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	id := primitive.NewObjectID()

	f.users.On("FindByID", ctx, id).Return(nil, repository.ErrNotFound)

	_, err := f.mgr.UpdateUser(ctx, UpdateUserInput{UserID: id.Hex(), Name: "Grace"})
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
}

func TestListUsersEmpty(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	f.users.On("List", ctx).Return([]models.User{}, nil)

	_, err := f.mgr.ListUsers(ctx)
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
}

func TestDeleteUser(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	id := primitive.NewObjectID()
	missing := primitive.NewObjectID()

	f.users.On("Delete", ctx, id).Return(nil)
	f.users.On("Delete", ctx, missing).Return(repository.ErrNotFound)

	require.NoError(t, f.mgr.DeleteUser(ctx, id.Hex()))
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(f.mgr.DeleteUser(ctx, missing.Hex())))
}

func TestMe(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	user := storedUser(t, "pw")
	user.RefreshToken = "rt"
	missing := primitive.NewObjectID()

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.users.On("FindByID", ctx, missing).Return(nil, repository.ErrNotFound)

	me, err := f.mgr.Me(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
	assert.Empty(t, me.Password)
	assert.Empty(t, me.RefreshToken)

	_, err = f.mgr.Me(ctx, missing.Hex())
	assert.Equal(t, http.StatusNotFound, utils.StatusOf(err))
}

func TestBootstrapAdmin(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	cfg := config.AdminBootstrapConfig{Name: "Root", Email: "root@example.com", Password: "pw", Phone: "0"}

	f.users.On("FindByEmail", ctx, "root@example.com").Return(nil, repository.ErrNotFound)
	f.users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin && u.Email == "root@example.com"
	})).Return(nil)

	require.NoError(t, f.mgr.BootstrapAdmin(ctx, cfg))
	f.users.AssertExpectations(t)
}

func TestBootstrapAdminSkipsWithoutCredentials(t *testing.T) {
	f := newAccountFixture()

	require.NoError(t, f.mgr.BootstrapAdmin(context.Background(), config.AdminBootstrapConfig{}))
	f.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
