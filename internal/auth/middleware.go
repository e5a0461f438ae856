package auth

import (
	"errors"
	"fmt"
	"strings"

	"franchise-backend/internal/config"
	"franchise-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const ctxPrincipalKey = "principal"

// Principal is the resolved acting identity. At most one tenant-scope id is
// set: OwnerID for owners, ManagerID for managers.
type Principal struct {
	UserID    uint
	Name      string
	Email     string
	Role      models.Role
	OwnerID   *uint
	ManagerID *uint
}

// FromCtx returns the principal resolved by JWTMiddleware.
func FromCtx(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(ctxPrincipalKey).(*Principal)
	return p
}

// JWTMiddleware verifies the bearer token, loads the User row and resolves
// the tenant scope for the role. A missing user row rejects the request.
func JWTMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header is missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "User not found")
			}
			return err
		}

		p := &Principal{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
		}

		switch user.Role {
		case models.RoleOwner:
			var owner models.Owner
			if err := db.First(&owner, "user_id = ?", user.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusUnauthorized, "Owner profile not found")
				}
				return err
			}
			p.OwnerID = &owner.ID
		case models.RoleManager:
			var manager models.Manager
			if err := db.First(&manager, "user_id = ?", user.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusUnauthorized, "Manager profile not found")
				}
				return err
			}
			p.ManagerID = &manager.ID
		}

		c.Locals(ctxPrincipalKey, p)
		return c.Next()
	}
}

// RequireRole gates a route group by role. Failing the gate answers 403
// before any constraint check runs.
func RequireRole(allowedRoles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := FromCtx(c)
		if p == nil {
			return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
		}
		for _, r := range allowedRoles {
			if r == p.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}
