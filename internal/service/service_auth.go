package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiptrack-io/shiptrack/internal/config"
	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/store"
	"github.com/shiptrack-io/shiptrack/internal/utils"
	"github.com/shiptrack-io/shiptrack/models"
)

// authService is the concrete implementation of AuthService.
// It handles user registration, credential verification, and the JWT token
// lifecycle using a UserRepository for persistence and bcrypt for password
// hashing.
type authService struct {
	// users is the data-access layer used to create and look up accounts.
	users store.UserRepository

	// bcryptCost is the work factor applied when hashing new passwords.
	// Zero falls back to the bcrypt default cost.
	bcryptCost int

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given UserRepository
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(users store.UserRepository, cfg config.Auth, logger *logger.Logger) AuthService {
	return &authService{
		users:         users,
		bcryptCost:    cfg.BcryptCost,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// Register creates a new user account.
//
// It validates that both username and password are non-empty, hashes the
// password with bcrypt, and delegates persistence to the UserRepository.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrValidation if username or password is empty.
//   - store.ErrUsernameTaken (wrapped) if the username is already registered.
func (a *authService) Register(ctx context.Context, username, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" {
		log.Error().Str("username", username).Msg("invalid registration data provided")
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		log.Err(err).Str("username", username).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	registered, err := a.users.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Err(err).Str("username", username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registered, nil
}

// Login authenticates an existing user and issues a signed token.
//
// Unknown usernames and password mismatches both yield ErrInvalidCredentials,
// so a caller probing the login endpoint cannot tell which accounts exist.
//
// Returns the issued token or:
//   - ErrValidation if username or password is empty.
//   - ErrInvalidCredentials if the account is unknown or the password is wrong.
func (a *authService) Login(ctx context.Context, username, password string) (models.Token, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" {
		log.Error().Str("username", username).Msg("invalid login data provided")
		return models.Token{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	found, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn().Str("username", username).Msg("login attempt for unknown username")
			return models.Token{}, ErrInvalidCredentials
		}

		log.Err(err).Str("username", username).Msg("user search by username failed")
		return models.Token{}, fmt.Errorf("user search by username failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		log.Warn().
			Int64("id", found.UserID).
			Str("username", found.Username).
			Msg("wrong password")
		return models.Token{}, ErrInvalidCredentials
	}

	return a.CreateToken(ctx, found)
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim, and expires after tokenDuration.
//
// Returns the token model on success or a wrapped error if JWT generation fails.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
