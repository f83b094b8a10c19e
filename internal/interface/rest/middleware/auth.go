package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/service"
	"github.com/gatepass/gatepass/policy"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth        *service.AuthService
	permissions policy.Policy
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth:        auth,
		permissions: policy.ConsoleDefault(),
	}
}

// IdentifyIdentity resolves the bearer token, if any, into the request
// context. It never rejects; RequireOperator does that.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			{
				authType, token := split[0], split[1]
				if authType != "Bearer" {
					span.RecordError(fmt.Errorf("only Bearer is acceptable"))
					goto skipCheckAuthorization
				}

				result, err := s.auth.AuthJwt(ctx, token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthJwt failed"))
					goto skipCheckAuthorization
				}

				ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.OperatorID)
				ctx = context.WithValue(ctx, domain.RequesterRoleCtxKey, result.Role)
				span.SetAttributes(attribute.String("RequesterId", result.OperatorID))
			}
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireOperator rejects requests that did not authenticate.
func (s *AuthMiddleware) RequireOperator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, ok := ctx.Value(domain.RequesterIdCtxKey).(string); !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		return next(c)
	}
}

// RequirePermission gates a route on the permission policy for one
// console action. Implies RequireOperator.
func (s *AuthMiddleware) RequirePermission(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			operator, ok := ctx.Value(domain.RequesterIdCtxKey).(string)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			role, _ := ctx.Value(domain.RequesterRoleCtxKey).(string)

			allowed := policy.Evaluate(s.permissions, policy.RequestContext{
				Operator: operator,
				Role:     role,
			}, action, false)
			if !allowed {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "operation not permitted"})
			}
			return next(c)
		}
	}
}

// RequesterID extracts the operator id set by IdentifyIdentity.
func RequesterID(ctx context.Context) string {
	if id, ok := ctx.Value(domain.RequesterIdCtxKey).(string); ok {
		return id
	}
	return ""
}
