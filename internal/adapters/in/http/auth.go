package http

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"fulfillment/internal/core/domain/model/kernel"
)

const actorContextKey = "actor"

// ActorClaims is the verified token payload. The subject carries the
// principal's id; vendorId is present only on vendor tokens.
type ActorClaims struct {
	Role     string  `json:"role"`
	VendorID *string `json:"vendorId,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and puts the resulting actor on
// the request context. Tokens are only verified here, never issued.
//
// Websocket clients cannot set headers, so a token query parameter is
// accepted as a fallback.
func AuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := bearerToken(c)
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			claims := &ActorClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}

func actorFromClaims(claims *ActorClaims) (kernel.Actor, error) {
	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, err
	}

	role, err := kernel.ParseRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, err
	}

	if role == kernel.RoleVendor {
		if claims.VendorID == nil {
			return kernel.Actor{}, jwt.ErrTokenInvalidClaims
		}
		vendorID, vErr := kernel.UUIDFromString(*claims.VendorID)
		if vErr != nil {
			return kernel.Actor{}, vErr
		}
		return kernel.NewVendorActor(id, vendorID)
	}

	return kernel.NewActor(id, role)
}

func requestActor(c echo.Context) (kernel.Actor, error) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	if !ok {
		return kernel.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}
	return actor, nil
}
