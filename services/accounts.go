package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/event-booking-go/config"
	metrics "github.com/phillip/event-booking-go/metrics"
	models "github.com/phillip/event-booking-go/models"
	utils "github.com/phillip/event-booking-go/utils"
)

// AccountManager covers registration, sessions and admin user edits.
type AccountManager struct {
	users   UserStore
	access  *utils.TokenManager
	refresh *utils.TokenManager
	logger  zerolog.Logger
}

func NewAccountManager(users UserStore, access, refresh *utils.TokenManager, logger zerolog.Logger) *AccountManager {
	return &AccountManager{users: users, access: access, refresh: refresh, logger: logger}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address"`
	Name     string `json:"name" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User models.User `json:"user"`
	TokenPair
}

func (m *AccountManager) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := m.users.FindByEmail(ctx, input.Email)
	if err != nil && !isNotFound(err) {
		return nil, utils.Internal("could not check email", err)
	}
	if existing != nil {
		return nil, utils.Conflict("Username or Email already exist")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, utils.Internal("could not hash password", err)
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Phone:    input.Phone,
		Address:  input.Address,
		Role:     models.RoleUser,
	}
	if err := m.users.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, utils.Conflict("Username or Email already exist")
		}
		return nil, utils.Internal("could not create user", err)
	}

	created := user.Sanitized()
	return &created, nil
}

func (m *AccountManager) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" {
		return nil, utils.BadRequest("email required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := m.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if isNotFound(err) {
			metrics.Logins.WithLabelValues("unknown_user").Inc()
			return nil, utils.NotFound("user does not exist")
		}
		return nil, utils.Internal("could not load user", err)
	}

	if !utils.CheckPassword(user.Password, input.Password) {
		metrics.Logins.WithLabelValues("bad_password").Inc()
		return nil, utils.Unauthorized("Password invalid")
	}

	pair, err := m.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.Logins.WithLabelValues("success").Inc()
	return &LoginResult{User: user.Sanitized(), TokenPair: *pair}, nil
}

// Logout forgets the user's refresh token so it can no longer be redeemed.
func (m *AccountManager) Logout(ctx context.Context, rawUserID string) error {
	userID, err := parseID(rawUserID, "User ID")
	if err != nil {
		return err
	}
	if err := m.users.SetRefreshToken(ctx, userID, ""); err != nil {
		if isNotFound(err) {
			return utils.NotFound("user does not exist")
		}
		return utils.Internal("could not log out", err)
	}
	return nil
}

// Refresh redeems a refresh token for a new pair. A token that no longer
// matches the stored one has been rotated out or reused and is rejected.
func (m *AccountManager) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	if strings.TrimSpace(token) == "" {
		return nil, utils.Unauthorized("Unauthorized request")
	}

	claims, err := m.refresh.Validate(token)
	if err != nil {
		return nil, utils.Unauthorized("invalid refresh token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, utils.Unauthorized("Invalid refresh token")
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.Unauthorized("Invalid refresh token")
		}
		return nil, utils.Internal("could not load user", err)
	}

	if user.RefreshToken == "" || token != user.RefreshToken {
		m.logger.Warn().Str("user_id", userID.Hex()).Msg("stale refresh token presented")
		return nil, utils.Unauthorized("refresh token is expired or used")
	}

	pair, err := m.mintTokens(user)
	if err != nil {
		return nil, err
	}
	// a concurrent refresh with the same token may have won the rotation
	if err := m.users.RotateRefreshToken(ctx, user.ID, token, pair.RefreshToken); err != nil {
		if isNotFound(err) {
			m.logger.Warn().Str("user_id", userID.Hex()).Msg("refresh token reused during rotation")
			return nil, utils.Unauthorized("refresh token is expired or used")
		}
		return nil, utils.Internal("something went wrong in generating access and refresh token", err)
	}
	return pair, nil
}

// Me confirms the authenticated user still exists.
func (m *AccountManager) Me(ctx context.Context, rawUserID string) (*models.User, error) {
	userID, err := parseID(rawUserID, "User ID")
	if err != nil {
		return nil, err
	}
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("user does not exist")
		}
		return nil, utils.Internal("could not load user", err)
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

type UpdateUserInput struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone"`
}

func (m *AccountManager) UpdateUser(ctx context.Context, input UpdateUserInput) (*models.User, error) {
	userID, err := parseID(input.UserID, "User ID")
	if err != nil {
		return nil, err
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("User not found")
		}
		return nil, utils.Internal("could not load user", err)
	}

	set := bson.M{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Email != "" {
		set["email"] = input.Email
	}
	if input.Phone != "" {
		set["phone"] = input.Phone
	}
	if len(set) == 0 {
		sanitized := user.Sanitized()
		return &sanitized, nil
	}

	updated, err := m.users.Update(ctx, userID, set)
	if err != nil {
		switch {
		case isDuplicate(err):
			return nil, utils.Conflict("Email already in use")
		case isNotFound(err):
			return nil, utils.NotFound("User not found")
		}
		return nil, utils.Internal("could not update user", err)
	}
	sanitized := updated.Sanitized()
	return &sanitized, nil
}

func (m *AccountManager) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := m.users.List(ctx)
	if err != nil {
		return nil, utils.Internal("could not fetch users", err)
	}
	if len(users) == 0 {
		return nil, utils.NotFound("No users found")
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (m *AccountManager) DeleteUser(ctx context.Context, rawUserID string) error {
	userID, err := parseID(rawUserID, "User ID")
	if err != nil {
		return err
	}
	if err := m.users.Delete(ctx, userID); err != nil {
		if isNotFound(err) {
			return utils.NotFound("User not found")
		}
		return utils.Internal("could not delete user", err)
	}
	return nil
}

// BootstrapAdmin creates the configured admin account once. It is a no-op
// when the credentials are unset or the email is already registered.
func (m *AccountManager) BootstrapAdmin(ctx context.Context, cfg config.AdminBootstrapConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Password == "" {
		m.logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	existing, err := m.users.FindByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return utils.Internal("could not check admin user", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return utils.Internal("could not hash admin password", err)
	}
	admin := &models.User{
		Name:     cfg.Name,
		Email:    email,
		Password: hash,
		Phone:    cfg.Phone,
		Role:     models.RoleAdmin,
	}
	if err := m.users.Create(ctx, admin); err != nil {
		if isDuplicate(err) {
			return nil
		}
		return utils.Internal("could not create admin user", err)
	}

	m.logger.Info().Str("email", email).Msg("bootstrapped admin user")
	return nil
}

func (m *AccountManager) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, err := m.mintTokens(user)
	if err != nil {
		return nil, err
	}
	if err := m.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, utils.Internal("something went wrong in generating access and refresh token", err)
	}
	return pair, nil
}

func (m *AccountManager) mintTokens(user *models.User) (*TokenPair, error) {
	subject := user.ID.Hex()
	accessToken, err := m.access.Generate(subject, utils.Claims{Email: user.Email, Name: user.Name, Role: user.Role})
	if err != nil {
		return nil, utils.Internal("something went wrong in generating access and refresh token", err)
	}
	refreshToken, err := m.refresh.Generate(subject, utils.Claims{})
	if err != nil {
		return nil, utils.Internal("something went wrong in generating access and refresh token", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
