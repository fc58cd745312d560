package service

import (
	"context"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/cache"
	"gamestore/backend/internal/models"
	"gamestore/backend/internal/validation"
	"gamestore/backend/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgUsernameTaken   = "Username already exists"
	msgBadCredentials  = "username and password didn't match"
	msgUserForbidden   = "user cannot access this resource"
	msgUserNotFound    = "UserId is invalid"
	msgWrongOldPasswd  = "OldPassword is wrong"
	msgListUsersDenied = "User cannot access this resource"
)

// region --- DTOs ---

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=4,max=20,username" example:"player_one"`
	Email    string `json:"email" validate:"required,email" example:"player@example.com"`
	FullName string `json:"fullName" validate:"required,min=3,max=50,fullname" example:"Player One"`
	Password string `json:"password" validate:"required,min=8,max=72,strongpassword" example:"Secret@123"`
}

// LoginInput is the payload for opening a session.
type LoginInput struct {
	Username string `json:"username" validate:"required,min=4,max=20,username" example:"player_one"`
	Password string `json:"password" validate:"required,min=8" example:"Secret@123"`
}

// UpdateUserInput is a partial profile update. Omitted fields are left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,min=4,max=20,username" example:"player_two"`
	Email    *string `json:"email" validate:"omitempty,email" example:"player2@example.com"`
	FullName *string `json:"fullName" validate:"omitempty,min=3,max=50,fullname" example:"Player Two"`
}

// ChangePasswordInput is the payload for replacing a password.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8,max=72,strongpassword" example:"Secret@123"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,strongpassword" example:"N3w_Secret"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID       uuid.UUID `json:"id" example:"3f0c1f7e-3b7a-4a53-9d43-2f8f1d0f9f10"`
	Username string    `json:"username" example:"player_one"`
	FullName string    `json:"fullName" example:"Player One"`
	Email    string    `json:"email" example:"player@example.com"`
}

// LoginResponse is the account projection plus the new session token.
type LoginResponse struct {
	UserResponse
	Token string `json:"token"`
}

func newUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, FullName: u.FullName, Email: u.Email}
}

// endregion

// UserService manages accounts and their sessions.
type UserService struct {
	db       *gorm.DB
	validate *validation.Validator
	hasher   auth.PasswordHasher
	tokens   *jwt.Codec
	cache    cache.TokenCache
	log      *zap.SugaredLogger
}

func NewUserService(db *gorm.DB, v *validation.Validator, hasher auth.PasswordHasher, tokens *jwt.Codec, tc cache.TokenCache, log *zap.SugaredLogger) *UserService {
	if tc == nil {
		tc = cache.NopTokenCache{}
	}
	return &UserService{db: db, validate: v, hasher: hasher, tokens: tokens, cache: tc, log: log}
}

// Register creates a USER account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserResponse, error) {
	return s.create(ctx, in, models.RoleUser)
}

// CreateAdmin creates an ADMIN account. Only the command line exposes it.
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*UserResponse, error) {
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role models.Role) (*UserResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, storeError("user", "count usernames", err)
	}
	if count > 0 {
		return nil, apperror.NewConflict(msgUsernameTaken)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, hashError(err)
	}

	user := models.User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration of the same name.
		return nil, conflictOr("user", "create user", msgUsernameTaken, err)
	}

	resp := newUserResponse(user)
	return &resp, nil
}

// Login checks the credentials and issues a token that replaces any previous session.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", in.Username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NewAuthentication(msgBadCredentials)
		}
		return nil, storeError("user", "find user by username", err)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, apperror.NewAuthentication(msgBadCredentials)
	}

	token, err := s.tokens.Issue(jwt.Subject{ID: user.ID, Role: string(user.Role), Username: user.Username})
	if err != nil {
		return nil, storeError("user", "issue token", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("current_token", token).Error; err != nil {
		return nil, storeError("user", "store current token", err)
	}
	s.remember(ctx, user.ID, token)

	return &LoginResponse{UserResponse: newUserResponse(user), Token: token}, nil
}

// Logout ends the caller's session.
func (s *UserService) Logout(ctx context.Context, id auth.Identity) error {
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id.ID).Update("current_token", nil).Error; err != nil {
		return storeError("user", "clear current token", err)
	}
	s.revoke(ctx, id.ID)
	return nil
}

// CurrentToken returns the token the user's session accepts, or "" when the user is
// logged out or gone. It implements auth.SessionStore.
func (s *UserService) CurrentToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, found, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warnw("session cache lookup failed", "user_id", userID, "error", err)
	} else if found {
		return token, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "current_token").First(&user, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", storeError("user", "load current token", err)
	}
	token = cache.Revoked
	if user.CurrentToken != nil {
		token = *user.CurrentToken
	}

	// The row may already be stale; a login or logout since then has written the
	// cache, and Fill leaves that entry alone.
	if _, err := s.cache.Fill(ctx, userID, token, cache.MaxTTL); err != nil {
		s.log.Warnw("session cache fill failed", "user_id", userID, "error", err)
	}
	return token, nil
}

// List returns a page of accounts. ADMIN only.
func (s *UserService) List(ctx context.Context, id auth.Identity, page Page) (PageResult[UserResponse], error) {
	if !id.IsAdmin() {
		return PageResult[UserResponse]{}, apperror.NewAuthorization(msgListUsersDenied)
	}

	users, err := paginate[models.User](ctx, s.db, page, "created_at, id")
	if err != nil {
		return PageResult[UserResponse]{}, storeError("user", "list users", err)
	}
	return PageResult[UserResponse]{
		Items:      mapItems(users.Items, newUserResponse),
		TotalItems: users.TotalItems,
		Page:       users.Page,
	}, nil
}

// Get returns one account. Callers may read themselves; ADMIN may read anyone.
func (s *UserService) Get(ctx context.Context, id auth.Identity, rawUserID string) (*UserResponse, error) {
	userID, _ := parseID(rawUserID)
	if !id.Is(userID) && !id.IsAdmin() {
		return nil, apperror.NewAuthorization(msgUserForbidden)
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := newUserResponse(*user)
	return &resp, nil
}

// Update changes the given profile fields. Callers may edit themselves; ADMIN may edit anyone.
func (s *UserService) Update(ctx context.Context, id auth.Identity, rawUserID string, in UpdateUserInput) (*UserResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	userID, _ := parseID(rawUserID)
	if !id.Is(userID) && !id.IsAdmin() {
		return nil, apperror.NewAuthorization(msgUserForbidden)
	}

	if in.Username != nil {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", *in.Username, userID).
			Count(&count).Error
		if err != nil {
			return nil, storeError("user", "count usernames", err)
		}
		if count > 0 {
			return nil, apperror.NewConflict(msgUsernameTaken)
		}
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if in.Username != nil {
		user.Username = *in.Username
		columns = append(columns, "username")
	}
	if in.Email != nil {
		user.Email = *in.Email
		columns = append(columns, "email")
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
		columns = append(columns, "full_name")
	}

	if len(columns) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error; err != nil {
			return nil, conflictOr("user", "update user", msgUsernameTaken, err)
		}
	}

	resp := newUserResponse(*user)
	return &resp, nil
}

// ChangePassword replaces the caller's own password. Nobody may change another
// account's password, ADMIN included.
func (s *UserService) ChangePassword(ctx context.Context, id auth.Identity, rawUserID string, in ChangePasswordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}

	userID, _ := parseID(rawUserID)
	if !id.Is(userID) {
		return apperror.NewAuthorization(msgListUsersDenied)
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(in.OldPassword, user.PasswordHash) {
		return apperror.NewAuthentication(msgWrongOldPasswd)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return hashError(err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return storeError("user", "update password", err)
	}
	return nil
}

// Delete removes the target account along with its library and reviews.
// Callers may delete themselves; ADMIN may delete anyone.
func (s *UserService) Delete(ctx context.Context, id auth.Identity, rawUserID string) error {
	userID, _ := parseID(rawUserID)
	if !id.Is(userID) && !id.IsAdmin() {
		return apperror.NewAuthorization(msgUserForbidden)
	}

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return storeError("user", "delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound(msgUserNotFound)
	}

	s.revoke(ctx, userID)
	return nil
}

func (s *UserService) find(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NewNotFound(msgUserNotFound)
		}
		return nil, storeError("user", "find user", err)
	}
	return &user, nil
}

// hashError passes classified hasher failures through unchanged.
func hashError(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return storeError("user", "hash password", err)
}

// remember caches token. If the cache cannot be updated, the stale entry is dropped so
// the database stays authoritative.
func (s *UserService) remember(ctx context.Context, userID uuid.UUID, token string) {
	if err := s.cache.Set(ctx, userID, token, cache.MaxTTL); err != nil {
		s.log.Warnw("session cache update failed", "user_id", userID, "error", err)
		s.forget(ctx, userID)
	}
}

// revoke marks the user as signed out in the cache. When that fails the entry is
// dropped instead.
func (s *UserService) revoke(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Set(ctx, userID, cache.Revoked, cache.MaxTTL); err != nil {
		s.log.Warnw("session cache revoke failed", "user_id", userID, "error", err)
		s.forget(ctx, userID)
	}
}

func (s *UserService) forget(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warnw("session cache invalidation failed", "user_id", userID, "error", err)
	}
}
