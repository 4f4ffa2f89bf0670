package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/cache"
	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/realtime"
	"github.com/ViBaTo/panel-control-tm/repositories"
	"github.com/ViBaTo/panel-control-tm/utils"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("Credenciales de inicio de sesión no válidas")
	ErrEmailTaken         = errors.New("El correo electrónico ya está registrado")
	ErrProfileCreation    = errors.New("Usuario creado pero error al crear perfil. Contacta al administrador.")
	ErrOAuthDisabled      = errors.New("El inicio de sesión con Google no está configurado")
	ErrInvalidOAuthState  = errors.New("La sesión de Google ha caducado. Inténtalo de nuevo.")
	ErrSessionNotFound    = errors.New("session not found")
	ErrLockBusy           = errors.New("failed to acquire lock")
)

const (
	oauthStateExpiry = 10 * time.Minute
	lockTTL          = time.Minute
)

// Session is the server-side record behind a pair of tokens.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`

	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

// Principal is the caller-facing view of a session.
func (s *Session) Principal() *models.Principal {
	return &models.Principal{UserID: s.UserID, Email: s.Email, SessionID: s.ID}
}

type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
}

type Locker interface {
	Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, value string) error
}

type SessionPublisher interface {
	PublishSession(ctx context.Context, ev realtime.SessionEvent) error
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	ExchangeEmail(ctx context.Context, code string) (string, error)
}

// AuthDeps groups what UserService needs. OAuth may be nil when Google
// sign-in is not configured.
type AuthDeps struct {
	Users    repositories.UserRepository
	Profiles ProfileStore
	Cache    *cache.Cache
	Locker   Locker
	Tokens   *utils.TokenMaker
	Codes    *utils.ResetCodes
	Mailer   utils.Mailer
	OAuth    OAuthProvider
	Events   SessionPublisher
	Log      *logger.Logger
}

type UserService struct {
	AuthDeps
}

func NewUserService(deps AuthDeps) *UserService {
	deps.Log = deps.Log.Component("auth")
	return &UserService{AuthDeps: deps}
}

// Sessions are keyed by user so every session of an account can be dropped at once.
func sessionKey(userID, id string) string { return "session:" + userID + ":" + id }

func userSessionsPattern(userID string) string { return "session:" + userID + ":*" }

func oauthStateKey(state string) string { return "oauth_state:" + state }

// SignUp validates the form, creates the account and its profile row, and
// opens a session.
func (s *UserService) SignUp(ctx context.Context, form utils.SignUpForm) (*Session, error) {
	if err := utils.ValidateSignUp(form); err != nil {
		return nil, err
	}
	email := normalizeEmail(form.Email)

	roleName := form.Rol
	if roleName == "" {
		roleName = models.RoleRecepcionista
	}

	var user *models.User
	err := s.withLock(ctx, "user_lock:"+email, func() error {
		exists, err := s.Users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}

		role, err := s.Users.GetRoleByName(ctx, roleName)
		if err != nil {
			return err
		}

		hashed, err := utils.HashPassword(form.Password)
		if err != nil {
			return err
		}

		user = &models.User{
			ID:       uuid.New().String(),
			Email:    email,
			Password: hashed,
			Provider: "email",
			RoleID:   role.ID,
		}
		return s.Users.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:        user.ID,
		Nombre:    strings.TrimSpace(form.Nombre),
		Apellidos: strings.TrimSpace(form.Apellidos),
		Email:     email,
		Telefono:  form.Telefono,
		Rol:       roleName,
		Activo:    true,
	}
	if err := s.Profiles.Create(ctx, profile); err != nil {
		s.Log.WithError(err).Error("Error creating profile")
		return nil, ErrProfileCreation
	}

	return s.openSession(ctx, user)
}

// SignIn checks the password and opens a session.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.Users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// SignOut ends the session. Ending an unknown session is not an error.
func (s *UserService) SignOut(ctx context.Context, principal *models.Principal) error {
	if principal == nil {
		return nil
	}
	if err := s.Cache.Delete(ctx, sessionKey(principal.UserID, principal.SessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.publish(ctx, realtime.SignedOut, principal.SessionID, principal.UserID)
	return nil
}

// Resolve maps an access token to the principal of a live session.
func (s *UserService) Resolve(ctx context.Context, accessToken string) (*models.Principal, error) {
	claims, err := s.Tokens.ValidateToken(accessToken, utils.AccessToken)
	if err != nil {
		return nil, err
	}
	session, err := s.loadSession(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	return session.Principal(), nil
}

// GetUser is Resolve for callers that only care about presence.
func (s *UserService) GetUser(ctx context.Context, accessToken string) *models.Principal {
	if accessToken == "" {
		return nil
	}
	principal, err := s.Resolve(ctx, accessToken)
	if err != nil {
		return nil
	}
	return principal
}

// Refresh issues a new access token for a live session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Tokens.ValidateToken(refreshToken, utils.RefreshToken)
	if err != nil {
		return "", err
	}
	session, err := s.loadSession(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return "", err
	}
	access, err := s.Tokens.GenerateAccessToken(session.ID, session.UserID)
	if err != nil {
		return "", err
	}
	s.publish(ctx, realtime.TokenRefreshed, session.ID, session.UserID)
	return access, nil
}

// OAuthURL remembers a fresh state value and returns the provider consent URL.
func (s *UserService) OAuthURL(ctx context.Context) (string, error) {
	if s.OAuth == nil {
		return "", ErrOAuthDisabled
	}
	state := uuid.New().String()
	if err := s.Cache.Set(ctx, oauthStateKey(state), "1", oauthStateExpiry); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return s.OAuth.AuthCodeURL(state), nil
}

// OAuthCallback finishes the provider flow, creating the account on first use.
func (s *UserService) OAuthCallback(ctx context.Context, state, code string) (*Session, error) {
	if s.OAuth == nil {
		return nil, ErrOAuthDisabled
	}
	stored, err := s.Cache.Take(ctx, oauthStateKey(state))
	if err != nil {
		return nil, err
	}
	if state == "" || stored == "" {
		return nil, ErrInvalidOAuthState
	}

	email, err := s.OAuth.ExchangeEmail(ctx, code)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		role, err := s.Users.GetRoleByName(ctx, models.RoleRecepcionista)
		if err != nil {
			return nil, err
		}
		user = &models.User{ID: uuid.New().String(), Email: email, Provider: "google", RoleID: role.ID}
		if err := s.Users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.openSession(ctx, user)
}

// SendResetCode mails a 6-digit code. Unknown addresses get no mail and no
// error so the endpoint does not reveal which accounts exist.
func (s *UserService) SendResetCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.Log.Debug("reset requested for unknown email")
		return nil
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return err
	}
	if err := s.Codes.Set(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	return s.Mailer.SendResetCodeEmail(email, code)
}

// ResetPassword replaces the password when code matches the pending one and
// signs the account out everywhere.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := utils.ValidatePasswordReset(code, newPassword); err != nil {
		return err
	}
	email = normalizeEmail(email)

	stored, err := s.Codes.Get(ctx, email)
	if err != nil {
		return err
	}
	if stored == nil || *stored != code {
		return utils.ErrInvalidResetCode
	}

	user, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.ErrInvalidResetCode
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdateUserPassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	if err := s.Codes.Delete(ctx, email); err != nil {
		return err
	}

	// A new password ends every open session of the account.
	if err := s.Cache.DeleteAll(ctx, userSessionsPattern(user.ID)); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	s.publish(ctx, realtime.SignedOut, "", user.ID)
	return nil
}

func (s *UserService) openSession(ctx context.Context, user *models.User) (*Session, error) {
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now().UTC(),
	}
	access, refresh, err := s.Tokens.GenerateTokens(session.ID, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, sessionKey(session.UserID, session.ID), session, utils.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	session.AccessToken = access
	session.RefreshToken = refresh

	s.publish(ctx, realtime.SignedIn, session.ID, session.UserID)
	return session, nil
}

func (s *UserService) loadSession(ctx context.Context, userID, id string) (*Session, error) {
	var session Session
	found, err := s.Cache.GetJSON(ctx, sessionKey(userID, id), &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *UserService) publish(ctx context.Context, typ realtime.SessionEventType, sessionID, userID string) {
	if s.Events == nil {
		return
	}
	ev := realtime.SessionEvent{Type: typ, SessionID: sessionID, UserID: userID}
	if err := s.Events.PublishSession(ctx, ev); err != nil {
		s.Log.WithError(err).Warnf("failed to publish %s", typ)
	}
}

func (s *UserService) withLock(ctx context.Context, key string, fn func() error) error {
	value := uuid.New().String()
	locked, err := s.Locker.Acquire(ctx, key, value, lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrLockBusy
	}
	defer func() {
		if err := s.Locker.Release(ctx, key, value); err != nil {
			s.Log.WithError(err).Warn("Failed to release lock")
		}
	}()
	return fn()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
