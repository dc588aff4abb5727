package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/mock-interview-api/internal/utils"
)

const (
	// TokenCookieName is the cookie carrying the session token for browser clients.
	TokenCookieName = "token"
	// UserIDLocal is the fiber local holding the authenticated user id as uint.
	UserIDLocal = "user_id"
)

var errInvalidSubject = errors.New("invalid subject")

// Authenticate validates the HS256 token from the Authorization header, falling back to the token cookie.
func Authenticate(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		userID, err := ParseToken(tokenString, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDLocal, userID)
		return c.Next()
	}
}

// TokenFromRequest returns the bearer token or the cookie value, whichever is present first.
func TokenFromRequest(c *fiber.Ctx) string {
	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	const bearer = "bearer "
	if len(authorization) > len(bearer) && strings.EqualFold(authorization[:len(bearer)], bearer) {
		if token := strings.TrimSpace(authorization[len(bearer):]); token != "" {
			return token
		}
	}

	return strings.TrimSpace(c.Cookies(TokenCookieName))
}

// ParseToken verifies the signature and expiry and returns the user id held in the subject claim.
func ParseToken(tokenString, secret string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}

	parsed, err := strconv.ParseUint(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errInvalidSubject
	}

	return uint(parsed), nil
}
