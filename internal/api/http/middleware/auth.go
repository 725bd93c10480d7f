package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/identity"
	"github.com/bajehapp/bajeh_backend/pkg/authorize"
	"github.com/bajehapp/bajeh_backend/pkg/reqctx"
)

const (
	// HeaderCallerRef carries the caller reference asserted by the
	// authenticating gateway in front of this service.
	HeaderCallerRef = "X-Caller-Ref"

	LocalCaller = "caller"
)

// CallerRequired resolves the caller reference into an account via the
// identity directory and attaches it to fiber locals and the request
// context. Requests without a resolvable caller are rejected.
func CallerRequired(dir identity.Directory, auth authorize.IAuthorization) fiber.Handler {
	return func(c fiber.Ctx) error {
		ref := c.Get(HeaderCallerRef)
		if ref == "" {
			// fall back to a bearer token carrying the reference
			h := c.Get("Authorization")
			if h != "" {
				parts := strings.SplitN(h, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					ref = strings.TrimSpace(parts[1])
				}
			}
		}
		if ref == "" {
			return fiber.ErrUnauthorized
		}

		account, err := dir.ResolveCaller(c.Context(), ref)
		if err != nil {
			if errors.Is(err, identity.ErrUnknownCaller) {
				return fiber.ErrUnauthorized
			}
			return fiber.NewError(fiber.StatusBadGateway, "identity directory unavailable")
		}

		// keep the grouping policy current for enforcement below
		if auth != nil {
			if err := authorize.EnsureAccountRole(c.Context(), auth, account); err != nil {
				return fiber.ErrInternalServerError
			}
		}

		c.Locals(LocalCaller, account)
		c.SetContext(reqctx.WithCaller(c.Context(), account))

		return c.Next()
	}
}

// CallerFromFiber retrieves the resolved account from fiber locals.
func CallerFromFiber(c fiber.Ctx) (identity.Account, bool) {
	account, ok := c.Locals(LocalCaller).(identity.Account)
	return account, ok && account.ID != ""
}
