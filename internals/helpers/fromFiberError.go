package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError: dipakai sebagai ErrorHandler Fiber. *fiber.Error → status aslinya,
// selain itu 500 dengan shape ErrorResponse yang sama.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}
