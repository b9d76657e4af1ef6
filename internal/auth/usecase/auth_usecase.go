package usecase

import (
	"fmt"
	"time"

	authdomain "flux-backend/internal/auth/domain"
	authdto "flux-backend/internal/auth/dto"
	"flux-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	passwordHash string
	secret       []byte
	accessExpiry time.Duration
	now          func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(cfg *config.Config) AuthUsecase {
	return &authUsecase{
		passwordHash: cfg.PasswordHash,
		secret:       []byte(cfg.JWTSecret),
		accessExpiry: cfg.JWTAccessExpiry,
		now:          time.Now,
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	if u.passwordHash == "" {
		return nil, authdomain.ErrAuthNotConfigured
	}
	if !CheckPasswordHash(req.Password, u.passwordHash) {
		log.Warn("[Auth] Failed login attempt")
		return nil, authdomain.ErrInvalidPassword
	}

	now := u.now()
	expiresAt := now.Add(u.accessExpiry)
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   "flux",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(u.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	log.WithField("session_id", claims.ID).Info("[Auth] Login successful")
	return &authdto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return u.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil || !token.Valid {
		return nil, authdomain.ErrInvalidToken
	}

	session := &authdomain.Session{ID: claims.ID}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
