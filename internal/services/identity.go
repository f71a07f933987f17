package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parceldesk/shiptrack-backend/internal/platform/apierr"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/types"
)

// IdentityService verifies a bearer credential issued by the external token
// authority and resolves it to the owner key used for data scoping. It is
// stateless; the signing secret is the only shared trust material.
type IdentityService interface {
	Resolve(ctx context.Context, tokenString string) (*types.Identity, error)
}

type identityClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type identityService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewIdentityService(log *logger.Logger, jwtSecretKey string) IdentityService {
	return &identityService{
		log:          log.With("service", "IdentityService"),
		jwtSecretKey: jwtSecretKey,
	}
}

func (is *identityService) Resolve(ctx context.Context, tokenString string) (*types.Identity, error) {
	if tokenString == "" {
		return nil, apierr.AuthMissing(errors.New("missing credential"))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(is.jwtSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierr.AuthExpired(errors.New("token expired"))
		}
		return nil, apierr.AuthInvalid(errors.New("invalid token"))
	}
	claims, ok := parsedToken.Claims.(*identityClaims)
	if !ok || !parsedToken.Valid {
		return nil, apierr.AuthInvalid(errors.New("invalid token"))
	}
	if claims.Email == "" {
		return nil, apierr.AuthInvalid(errors.New("token carries no email claim"))
	}
	return &types.Identity{Email: claims.Email, Role: claims.Role}, nil
}
