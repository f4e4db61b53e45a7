package middleware

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

const clockSkew = 30 * time.Second

// userIDClaims lists the claim names checked for the account id, in order.
var userIDClaims = []string{"user_id", "sub", "id"}

var errNoBearer = errors.New("invalid authorization header")

// JWTProtected authenticates HS256 bearer tokens and stores the caller's id
// and canonical role in c.Locals("user_id") and c.Locals("user_role").
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
	)
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, ok := userIDFromClaims(claims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "token is missing user id")
		}

		c.Locals("user_id", userID)
		if role := roleFromClaims(claims); role != "" {
			c.Locals("user_role", string(role))
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", errNoBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errNoBearer
	}
	return token, nil
}

func userIDFromClaims(claims jwt.MapClaims) (uint, bool) {
	for _, name := range userIDClaims {
		value, present := claims[name]
		if !present {
			continue
		}
		if id, err := claimToUint(value); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

func claimToUint(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxUint32 {
			return 0, fmt.Errorf("user id %v is not a positive integer", v)
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported user id type %T", value)
	}
}

// roleFromClaims reads "role", falling back to the first entry of "roles".
func roleFromClaims(claims jwt.MapClaims) models.Role {
	if role, ok := claims["role"].(string); ok && strings.TrimSpace(role) != "" {
		return models.ParseRole(role)
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, item := range roles {
			if role, ok := item.(string); ok && strings.TrimSpace(role) != "" {
				return models.ParseRole(role)
			}
		}
	}
	return ""
}
