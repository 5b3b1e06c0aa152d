package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/raushankrgupta/fragrance-collection/metrics"
	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgBadCredentials  = "Incorrect username or password"
	msgDeactivated     = "Your account has been deactivated. Please contact support."
	msgInvalidToken    = "Invalid token. Please log in again!"
	msgUserGone        = "The user belonging to this token does no longer exist."
	msgUserNotFound    = "User not found"
	msgUsernameTaken   = "Username already exists"
	welcomeMailSubject = "Welcome to Fragrance Collection"
)

// Mailer sends transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, textContent, htmlContent string) error
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AuthResult is a signed-in session.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService manages accounts and bearer tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *utils.TokenManager
	mailer Mailer
	logger zerolog.Logger
	now    func() time.Time
	cost   int

	// compare checks a password against a stored hash.
	compare   func(hash, password []byte) error
	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService builds the service. mailer may be nil.
func NewAuthService(users repository.UserRepository, tokens *utils.TokenManager, mailer Mailer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		logger:  logger,
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
		compare: bcrypt.CompareHashAndPassword,
	}
}

// unknownUserHash is compared against when a username does not exist, so
// unknown and known usernames take the same bcrypt time.
func (s *AuthService) unknownUserHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-user-password"), s.cost)
	})
	return s.dummyHash
}

// Register creates a user account and signs it in.
func (s *AuthService) Register(ctx context.Context, in Credentials) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if msg := utils.ValidateStruct(in); msg != "" {
		return nil, validationError("%s", msg)
	}

	u, err := s.createUser(ctx, in.Username, in.Password, models.RoleUser)
	metrics.RecordAuth("register", err)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(u.ID.Hex(), string(u.Role))
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "failed to issue token", Err: err}
	}
	s.sendWelcome(ctx, u.Username)
	return &AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "failed to hash password", Err: err}
	}
	now := s.now()
	u := &models.User{
		Username:  username,
		Password:  string(hash),
		Role:      role,
		Status:    models.AccountActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fromRepo("create user", err, "", msgUsernameTaken)
	}
	u.Sync()
	return u, nil
}

// sendWelcome mails usernames that are email addresses. Failures are only logged.
func (s *AuthService) sendWelcome(ctx context.Context, username string) {
	if s.mailer == nil || utils.GetValidator().Var(username, "email") != nil {
		return
	}
	text := "Thanks for signing up. Start building your fragrance collection today."
	html := "<p>Thanks for signing up.</p><p>Start building your fragrance collection today.</p>"
	if err := s.mailer.SendEmail(ctx, username, username, welcomeMailSubject, text, html); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("welcome email failed")
	}
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in Credentials) (*AuthResult, error) {
	res, err := s.login(ctx, in)
	metrics.RecordAuth("login", err)
	return res, err
}

func (s *AuthService) login(ctx context.Context, in Credentials) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, validationError("Please provide username and password")
	}

	u, err := s.users.FindByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrNotFound) {
		_ = s.compare(s.unknownUserHash(), []byte(in.Password))
		return nil, authError(msgBadCredentials)
	}
	if err != nil {
		return nil, storageError("find user", err)
	}
	if s.compare([]byte(u.Password), []byte(in.Password)) != nil {
		return nil, authError(msgBadCredentials)
	}
	if !u.Active() {
		return nil, authError(msgDeactivated)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, storageError("record login", err)
	}
	u.LastLogin = &now

	token, err := s.tokens.GenerateToken(u.ID.Hex(), string(u.Role))
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "failed to issue token", Err: err}
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, authError(msgInvalidToken)
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, authError(msgInvalidToken)
	}

	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, authError(msgUserGone)
	}
	if err != nil {
		return nil, storageError("find user", err)
	}
	if !u.Active() {
		return nil, authError(msgDeactivated)
	}
	return u, nil
}

// EnsureAdmin creates an admin account unless username already exists. It
// reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, in Credentials) (*models.User, bool, error) {
	in.Username = strings.TrimSpace(in.Username)
	if msg := utils.ValidateStruct(in); msg != "" {
		return nil, false, validationError("%s", msg)
	}
	existing, err := s.users.FindByUsername(ctx, in.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, storageError("find user", err)
	}
	u, err := s.createUser(ctx, in.Username, in.Password, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// ListUsers returns a page of accounts. status may be "", "active" or
// "deactivated".
func (s *AuthService) ListUsers(ctx context.Context, status models.AccountStatus, page, limit int) (*Page[models.User], error) {
	if status != "" && status != models.AccountActive && status != models.AccountDeactivated {
		return nil, validationError("status must be one of: active deactivated")
	}
	page, limit = normalizePage(page, limit)
	users, total, err := s.users.List(ctx, status, page, limit)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return &Page[models.User]{Items: users, Total: total, Page: page, Limit: limit}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo("find user", err, msgUserNotFound, "")
	}
	return u, nil
}

// SetUserStatus activates or deactivates an account.
func (s *AuthService) SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error) {
	status := models.AccountDeactivated
	if active {
		status = models.AccountActive
	}
	u, err := s.users.SetStatus(ctx, id, status)
	if err != nil {
		return nil, fromRepo("update user status", err, msgUserNotFound, "")
	}
	return u, nil
}

func (s *AuthService) SetUserRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, validationError(`Role must be either "user" or "admin"`)
	}
	u, err := s.users.SetRole(ctx, id, role)
	if err != nil {
		return nil, fromRepo("update user role", err, msgUserNotFound, "")
	}
	return u, nil
}
