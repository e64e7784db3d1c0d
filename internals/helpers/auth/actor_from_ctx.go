package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"absensi_backend/internals/features/attendance/model"
)

// Locals yang di-set AuthMiddleware
const (
	LocUserID   = "user_id"
	LocUserName = "user_name"
	LocUserRole = "userRole"
)

// ActorFromCtx: identitas pemanggil dari locals JWT. Tidak memvalidasi ulang.
func ActorFromCtx(c *fiber.Ctx) model.Actor {
	get := func(key string) string {
		if v, ok := c.Locals(key).(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	return model.Actor{
		UserID:   get(LocUserID),
		Username: get(LocUserName),
		Role:     strings.ToLower(get(LocUserRole)),
	}
}
