package auth

import (
	"errors"
	"strings"

	"franchise-backend/internal/api"
	"franchise-backend/internal/check"
	"franchise-backend/internal/config"
	"franchise-backend/internal/models"
	"franchise-backend/internal/store"
	"franchise-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var registerOwnerSchema = validate.New(
	validate.Rule{Field: "name", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "email", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "password", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 72},
	validate.Rule{Field: "brNo", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 50},
	validate.Rule{Field: "companyName", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 100},
	validate.Rule{Field: "address", Kind: validate.String, MaxLen: 255},
	validate.Rule{Field: "contactNo", Kind: validate.String, Required: true, NotBlank: true, MaxLen: 20},
)

var loginSchema = validate.New(
	validate.Rule{Field: "email", Kind: validate.String, Required: true, NotBlank: true},
	validate.Rule{Field: "password", Kind: validate.String, Required: true, NotBlank: true},
)

// RegisterOwnerHandler creates the tenant root: a User with the OWNER role
// plus its Owner record, in one transaction.
func RegisterOwnerHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, registerOwnerSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		email := strings.TrimSpace(strings.ToLower(body.Str("email")))

		checks := check.New()
		emailTaken, err := store.ExistsWhere[models.User](db, "email = ?", email)
		checks.Check(!emailTaken, err, "Email already exists")
		brTaken, err := store.ExistsWhere[models.Owner](db, "br_no = ?", strings.TrimSpace(body.Str("brNo")))
		checks.Check(!brTaken, err, "BR number already exists")
		contactTaken, err := store.ExistsWhere[models.Owner](db, "contact_no = ?", strings.TrimSpace(body.Str("contactNo")))
		checks.Check(!contactTaken, err, "Contact number already exists")
		if err := checks.Err(); err != nil {
			return api.Internal(c, "register owner", err)
		}
		if checks.Failed() {
			return api.Fail(c, checks.Messages()...)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Str("password")), bcrypt.DefaultCost)
		if err != nil {
			return api.Internal(c, "hash password", err)
		}

		user := models.User{
			Name:         strings.TrimSpace(body.Str("name")),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleOwner,
		}
		owner := models.Owner{
			BrNo:        strings.TrimSpace(body.Str("brNo")),
			CompanyName: strings.TrimSpace(body.Str("companyName")),
			Address:     strings.TrimSpace(body.Str("address")),
			ContactNo:   strings.TrimSpace(body.Str("contactNo")),
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			owner.UserID = user.ID
			return tx.Create(&owner).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return api.Fail(c, "Email already exists")
			}
			return api.Internal(c, "register owner", err)
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return api.Internal(c, "generate token", err)
		}

		return api.Created(c, fiber.Map{
			"user":  user,
			"owner": owner,
			"token": token,
		})
	}
}

func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, errs := validate.Body(c, loginSchema)
		if errs != nil {
			return api.Fail(c, errs...)
		}

		email := strings.TrimSpace(strings.ToLower(body.Str("email")))

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Str("password"))); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return api.Internal(c, "generate token", err)
		}

		return api.OK(c, fiber.Map{
			"token": token,
			"user":  user,
		})
	}
}

func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := FromCtx(c)

		var user models.User
		if err := db.First(&user, "id = ?", p.UserID).Error; err != nil {
			return api.NotFound(c, "User not found")
		}

		res := fiber.Map{"user": user}
		if p.OwnerID != nil {
			res["ownerId"] = *p.OwnerID
		}
		if p.ManagerID != nil {
			res["managerId"] = *p.ManagerID
		}
		return api.OK(c, res)
	}
}
