package http

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	principalKey     = "principal"
	HeaderWebhookKey = "X-Webhook-Token"
	bearerPrefix     = "Bearer "
)

var jwtSigningMethod = jwt.SigningMethodHS256

// AccessTokenClaims is the bearer token issued to back-office users. The
// subject is the user id.
type AccessTokenClaims struct {
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID       kernel.UUID
	Role         order.Role
	Capabilities []string
}

func (p Principal) Can(capability string) bool {
	return slices.Contains(p.Capabilities, capability)
}

type TokenConfig struct {
	Secret string
	Issuer string
}

// ParseAccessToken validates the signature, issuer and expiry of raw.
func ParseAccessToken(cfg TokenConfig, raw string) (Principal, error) {
	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(token *jwt.Token) (any, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, err
	}

	userID, err := kernel.ParseUUID(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("subject: %w", err)
	}
	role, err := order.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, err
	}
	if role == order.RoleSystem {
		return Principal{}, errors.New("system role cannot be granted to a user token")
	}

	return Principal{UserID: userID, Role: role, Capabilities: claims.Capabilities}, nil
}

// MintAccessToken signs a token for p. It is used by tests and local tooling;
// production tokens come from the identity service.
func MintAccessToken(cfg TokenConfig, p Principal, expiresAt time.Time) (string, error) {
	claims := AccessTokenClaims{
		Role:         p.Role.String(),
		Capabilities: p.Capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
}

// BearerAuth authenticates the caller and stores the Principal in the context.
func BearerAuth(cfg TokenConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return fmt.Errorf("%w: missing bearer token", errs.ErrUnauthorized)
			}

			principal, err := ParseAccessToken(cfg, strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				return fmt.Errorf("%w: invalid bearer token", errs.ErrUnauthorized)
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// RequireCapability rejects callers whose token lacks capability.
func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := principalFrom(c)
			if err != nil {
				return err
			}
			if !p.Can(capability) {
				return fmt.Errorf("%w: missing capability %s", errs.ErrForbidden, capability)
			}
			return next(c)
		}
	}
}

// RequireRole rejects callers with any other role.
func RequireRole(role order.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := principalFrom(c)
			if err != nil {
				return err
			}
			if p.Role != role {
				return fmt.Errorf("%w: requires role %s", errs.ErrForbidden, role)
			}
			return next(c)
		}
	}
}

// WebhookToken checks the shared secret of the delivery provider.
func WebhookToken(token string) echo.MiddlewareFunc {
	expected := []byte(token)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := []byte(c.Request().Header.Get(HeaderWebhookKey))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				return fmt.Errorf("%w: invalid webhook token", errs.ErrUnauthorized)
			}
			return next(c)
		}
	}
}

func principalFrom(c echo.Context) (Principal, error) {
	p, ok := c.Get(principalKey).(Principal)
	if !ok {
		return Principal{}, fmt.Errorf("%w: no authenticated principal", errs.ErrUnauthorized)
	}
	return p, nil
}
