package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/saju-admin-api/internal/models"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

var (
	errBadCredentials = appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	errInactive       = appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
)

// unknownUserHash is compared against when the email does not exist so both
// failure paths spend the same bcrypt time.
var unknownUserHash, _ = bcrypt.GenerateFromPassword([]byte("unknown-user"), bcrypt.DefaultCost)

// AuthService logs managers in and verifies their bearer tokens.
type AuthService struct {
	repo     authUserRepository
	audit    auditRecorder
	validate *validator.Validate
	logger   *zap.Logger
	tokens   tokenSigner
	now      func() time.Time
}

// NewAuthService builds the service. audit may be nil; a zero expiry
// defaults to fifteen minutes.
func NewAuthService(repo authUserRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, cfg AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccessTokenExpiry <= 0 {
		cfg.AccessTokenExpiry = 15 * time.Minute
	}
	s := &AuthService{
		repo:     repo,
		audit:    audit,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.tokens = tokenSigner{
		secret: []byte(cfg.AccessTokenSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenExpiry,
		now:    func() time.Time { return s.now() },
	}
	return s
}

// Login checks the password and issues an access token. Every attempt with a
// well-formed payload is audited.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "invalid login payload")
	}

	user, err := s.authenticate(ctx, req)
	if err != nil {
		var userID *string
		if user != nil {
			userID = &user.ID
		}
		s.recordLogin(ctx, models.AuditActionLoginFailed, userID, req.Email, appErrors.FromError(err).Code)
		return nil, err
	}

	issuedAt := s.now()
	token, err := s.tokens.sign(user, issuedAt)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to create access token")
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	s.recordLogin(ctx, models.AuditActionLogin, &user.ID, user.Email, "")

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.ttl / time.Second),
		IssuedAt:    issuedAt,
		User:        user.Info(),
	}, nil
}

// authenticate returns the user alongside any error once the account is known.
func (s *AuthService) authenticate(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_ = bcrypt.CompareHashAndPassword(unknownUserHash, []byte(req.Password))
		return nil, errBadCredentials
	case err != nil:
		return nil, appErrors.ErrInternal.Wrap(err, "failed to fetch user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return user, errBadCredentials
	}
	if !user.Active {
		return user, errInactive
	}
	return user, nil
}

func (s *AuthService) recordLogin(ctx context.Context, action string, userID *string, email, reason string) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"email": email, "reason": reason})
	origin := models.OriginFromContext(ctx)
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   models.AuditResourceAuth,
		ResourceID: userID,
		NewValues:  payload,
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
	})
}

// Me resolves claims back to a live, active account.
func (s *AuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
	case err != nil:
		return nil, appErrors.ErrInternal.Wrap(err, "failed to load user")
	case !user.Active:
		return nil, errInactive
	}
	info := user.Info()
	return &info, nil
}

// ValidateToken verifies signature, issuer and lifetime of an access token.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims, err := s.tokens.parse(raw)
	if err != nil {
		return nil, appErrors.ErrUnauthorized.Wrap(err, "invalid token")
	}
	return claims, nil
}

// tokenSigner issues and checks HS256 access tokens.
type tokenSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func (t tokenSigner) sign(user *models.User, issuedAt time.Time) (string, error) {
	claims := models.JWTClaims{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t tokenSigner) parse(raw string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token rejected")
	}
	return claims, nil
}
