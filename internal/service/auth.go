package service

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("auth")

// AuthService validates bearer tokens issued for console operators.
// Tokens are HMAC-signed; the subject carries the operator id and an
// optional "role" claim distinguishes admins from gate stewards.
type AuthService struct {
	secret []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

type AuthResult struct {
	OperatorID string
	Role       string
}

type operatorClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	claims := operatorClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}
	if !parsed.Valid {
		err := fmt.Errorf("invalid token")
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject == "" {
		err := fmt.Errorf("token missing subject")
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{
		OperatorID: claims.Subject,
		Role:       claims.Role,
	}, nil
}
