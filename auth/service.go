package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/tasklist-go/apperror"
	"github.com/user/tasklist-go/config"
)

// invalidCredentials is the single message used for every login failure.
// Unknown email and wrong password are deliberately indistinguishable so the
// endpoint cannot be used to enumerate accounts.
const invalidCredentials = "invalid credentials"

// AuthService issues and verifies bearer tokens and manages registration and
// login against the credential store.
type AuthService struct {
	repo       UserRepository
	authConfig config.AuthConfig
}

// NewAuthService constructs an AuthService bound to the given credential
// store and auth configuration.
func NewAuthService(repo UserRepository, authConfig config.AuthConfig) *AuthService {
	return &AuthService{
		repo:       repo,
		authConfig: authConfig,
	}
}

// Claims is the JWT payload: the owning user's id plus the standard
// registered claims (exp, iat, nbf, sub).
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Register creates a new user identity and logs it in.
//
// All three fields are required. The password is hashed with bcrypt at its
// default cost (currently 10), a work factor chosen to make offline
// brute-forcing of a leaked hash expensive. A duplicate email surfaces as a
// ConflictError from the repository without mutating the store.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, apperror.NewValidationError("email, password, and name are required", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hashedPassword),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user.View()}, nil
}

// Login authenticates an existing user and issues a fresh token. It has no
// side effect on the store.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperror.NewValidationError("email and password are required", nil)
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError(invalidCredentials, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError(invalidCredentials, nil)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user.View()}, nil
}

// VerifyToken validates a bearer token and returns the owner id it is bound
// to. Verification is purely cryptographic (signature, expiry, claim shape)
// and never consults the credential store: identities are not deletable in
// this system, so a verified token always refers to a live user.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.JWTSecret), nil
	})
	if err != nil {
		return "", apperror.NewAuthError("invalid token", err)
	}
	if !token.Valid {
		return "", apperror.NewAuthError("invalid token", errors.New("token is invalid"))
	}
	if claims.UserID == "" {
		return "", apperror.NewAuthError("invalid token", errors.New("user_id claim is missing"))
	}
	return claims.UserID, nil
}

// issueToken signs a new HS256 JWT bound to the given user id.
func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.authConfig.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "tasklist",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", apperror.NewInternalError("failed to sign token", err)
	}
	return tokenString, nil
}
