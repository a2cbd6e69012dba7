// Package user provides the REST endpoints of the users collection and two-factor enrolment.
package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/sitesettings"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/user"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
)

// Path is the base path of the users collection.
const Path = handler.APIPath + "/users"

// ErrRegistrationDisabled is answered when self registration is switched off in the site settings.
var ErrRegistrationDisabled = fiber.NewError(fiber.StatusForbidden, "user registration is disabled")

// Service provides CRUD operations for users.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	local *auth.LocalProvider
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)

	app.Route(Path, func(router fiber.Router) {
		router.Post(handler.RouterRootPath, s.Create)
		router.Get(handler.RouterRootPath, auth.RequirePermission(auth.PermUsersManage), s.List)

		router.Get("/me", auth.RequireAuthenticated(), s.Me)
		router.Post("/me/totp", auth.RequireAuthenticated(), s.EnrollTOTP)
		router.Post("/me/totp/verify", auth.RequireAuthenticated(), s.VerifyTOTP)
		router.Delete("/me/totp", auth.RequireAuthenticated(), s.DisableTOTP)

		router.Get("/:id<int>", auth.RequireAuthenticated(), s.Get)
		router.Patch("/:id<int>", auth.RequireAuthenticated(), s.Update)
		router.Delete("/:id<int>", auth.RequirePermission(auth.PermUsersManage), s.Delete)
	})
}

type createRequest struct {
	models.User

	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Create registers a user. Anonymous registration needs features.userRegistration and always
// creates an active user with role user, admins may choose role and active flag.
func (s *Service) Create(c *fiber.Ctx) error {
	actor := auth.CurrentUser(c)
	isAdmin := actor != nil && auth.RoleHasPermission(actor.Role, auth.PermUsersManage)

	if !isAdmin {
		var site sitesettings.Settings
		if err := site.Load(s.db); err != nil {
			return err
		}

		if !site.Features.UserRegistration {
			return ErrRegistrationDisabled
		}
	}

	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	u := &req.User
	if !isAdmin {
		u.Role = models.RoleUser
		u.IsActive = nil
	}

	if err := user.Create(s.db, u, req.Password); err != nil {
		return handler.Translate(err)
	}

	log.Info().Uint64("user_id", u.ID).Str("role", string(u.Role)).Msg("user created")

	return handler.Reply(c, fiber.StatusCreated, fiber.Map{"doc": u, "message": "user created"})
}

// List returns one page of users, optionally of one role.
func (s *Service) List(c *fiber.Ctx) error {
	page, err := user.List(s.db, handler.Paging(c), c.Query("role"))
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Me returns the current user.
func (s *Service) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": auth.CurrentUser(c)})
}

// Get returns a user. Users may read themselves, admins anyone.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if !auth.CanAccessUser(auth.CurrentUser(c), id) {
		return auth.ErrForbidden
	}

	u, err := user.Get(s.db, id)
	if err != nil {
		return handler.Translate(err)
	}

	return c.JSON(u)
}

type updateRequest struct {
	models.User

	Password    string `json:"password"    validate:"omitempty,min=8,max=128"`
	OldPassword string `json:"oldPassword"`
}

// Update applies the fields present in the body to a user. Role and active flag are only
// changed by admins. A new password needs the old one unless an admin resets it.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	actor := auth.CurrentUser(c)
	if !auth.CanAccessUser(actor, id) {
		return auth.ErrForbidden
	}

	isAdmin := auth.RoleHasPermission(actor.Role, auth.PermUsersManage)

	existing, err := user.Get(s.db, id)
	if err != nil {
		return handler.Translate(err)
	}

	req := &updateRequest{User: *existing}
	if err = handler.ParseBody(c, req); err != nil {
		return err
	}

	u := &req.User
	u.ID = id

	if !isAdmin {
		u.Role = existing.Role
		u.IsActive = existing.IsActive
	}

	// password and profile are saved together or not at all
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Password != "" {
			local := auth.NewLocalProvider(tx)

			var perr error
			if isAdmin && actor.ID != id {
				perr = local.ResetPassword(id, req.Password)
			} else {
				perr = local.ChangePassword(id, req.OldPassword, req.Password)
			}

			if perr != nil {
				return perr
			}
		}

		return user.Update(tx, u)
	})
	if err != nil {
		return handler.Translate(err)
	}

	if u, err = user.Get(s.db, id); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"doc": u, "message": "user updated"})
}

// Delete removes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = user.Delete(s.db, id); err != nil {
		return handler.Translate(err)
	}

	log.Info().Uint64("user_id", id).Msg("user deleted")

	return handler.OK(c, fiber.Map{"id": id, "message": "user deleted"})
}

// EnrollTOTP creates a new two-factor secret for the current user.
func (s *Service) EnrollTOTP(c *fiber.Ctx) error {
	enr, err := s.local.EnrollTOTP(auth.CurrentUser(c).ID, s.cfg.TOTP.Issuer)
	if err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"secret": enr.Secret, "url": enr.URL})
}

type codeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyTOTP enables two-factor authentication with a code of the enrolled secret.
func (s *Service) VerifyTOTP(c *fiber.Ctx) error {
	req := new(codeRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	if err := s.local.EnableTOTP(auth.CurrentUser(c).ID, req.Code); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"message": "two-factor authentication enabled"})
}

// DisableTOTP turns two-factor authentication off for the current user with a current code.
func (s *Service) DisableTOTP(c *fiber.Ctx) error {
	req := new(codeRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	if err := s.local.DisableTOTP(auth.CurrentUser(c).ID, req.Code); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"message": "two-factor authentication disabled"})
}
