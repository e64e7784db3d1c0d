package auth

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// OptionalAuthJWT: token valid → locals terisi; tanpa/invalid token → lanjut sebagai anonymous.
func OptionalAuthJWT(opts AuthJWTOpts) fiber.Handler {
	if opts.ExpirySkew <= 0 {
		opts.ExpirySkew = 30 * time.Second
	}
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c, opts.AllowCookieFallback)
		if err != nil {
			return c.Next()
		}
		secretKey := strings.TrimSpace(opts.Secret)
		if secretKey == "" {
			return c.Next()
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{"HS256", "HS384", "HS512"}}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}); err != nil {
			log.Println("[WARNING] Token tidak valid, lanjut sebagai anonymous")
			return c.Next()
		}
		if err := validateTokenExpiry(claims, opts.ExpirySkew); err != nil {
			return c.Next()
		}
		if userID, err := extractUserID(claims); err == nil {
			c.Locals("user_id", userID.String())
			storeBasicClaimsToLocals(c, claims)
		}
		return c.Next()
	}
}
