package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/pkg/authorize"
)

// RequirePermission checks that the resolved caller holds the given
// permission in the branch domain.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		account, ok := CallerFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		subject := authorize.GroupSubject(account.ID)
		if err := auth.MustEnforce(c.Context(), subject, authorize.DomainBranch, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
