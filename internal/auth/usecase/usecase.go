package usecase

import (
	authdomain "flux-backend/internal/auth/domain"
	authdto "flux-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for auth business logic
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	ValidateToken(tokenString string) (*authdomain.Session, error)
}
