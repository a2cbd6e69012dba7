// Package tool provides the REST endpoints of the tools collection.
package tool

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/tool"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
)

// Path is the base path of the tools collection.
const Path = handler.APIPath + "/tools"

// Service provides CRUD operations for tools.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes. Reading is public, writing needs an editor or admin.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/:idOrSlug", s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(auth.PermToolsWrite), s.Create)
		router.Patch("/:id", auth.RequirePermission(auth.PermToolsWrite), s.Update)
		router.Delete("/:id", auth.RequirePermission(auth.PermToolsDelete), s.Delete)
	})
}

// List returns one page of tools.
func (s *Service) List(c *fiber.Ctx) error {
	featured, err := handler.QueryBool(c, "featured")
	if err != nil {
		return err
	}

	page, err := tool.List(s.db, tool.Filter{
		Params:   handler.Paging(c),
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Featured: featured,
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Get returns a tool by numeric id or by slug. A numeric key without a matching id is
// looked up as slug, names like "2048" produce all-digit slugs.
func (s *Service) Get(c *fiber.Ctx) error {
	key := c.Params("idOrSlug")

	var (
		t   *models.Tool
		err error
	)

	if id, perr := strconv.ParseUint(key, 10, 64); perr == nil {
		t, err = tool.Get(s.db, id)
		if errors.Is(err, tool.ErrToolNotFound) {
			t, err = tool.GetBySlug(s.db, key)
		}
	} else {
		t, err = tool.GetBySlug(s.db, key)
	}

	if err != nil {
		return handler.Translate(err)
	}

	return c.JSON(t)
}

// Create stores a new tool.
func (s *Service) Create(c *fiber.Ctx) error {
	t := new(models.Tool)
	if err := handler.ParseBody(c, t); err != nil {
		return err
	}

	if err := tool.Create(s.db, t); err != nil {
		return handler.Translate(err)
	}

	log.Info().Uint64("tool_id", t.ID).Str("slug", t.Slug).Msg("tool created")

	return handler.Reply(c, fiber.StatusCreated, fiber.Map{"doc": t, "message": "tool created"})
}

// Update applies the fields present in the body to an existing tool.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	t, err := tool.Get(s.db, id)
	if err != nil {
		return handler.Translate(err)
	}

	if err = handler.ParseBody(c, t); err != nil {
		return err
	}

	t.ID = id

	if err = tool.Update(s.db, t); err != nil {
		return handler.Translate(err)
	}

	if t, err = tool.Get(s.db, id); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"doc": t, "message": "tool updated"})
}

// Delete removes a tool.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = tool.Delete(s.db, id); err != nil {
		return handler.Translate(err)
	}

	log.Info().Uint64("tool_id", id).Msg("tool deleted")

	return handler.OK(c, fiber.Map{"id": id, "message": "tool deleted"})
}
