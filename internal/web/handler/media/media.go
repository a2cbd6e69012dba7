// Package media provides the REST endpoints of the media collection. Only metadata is handled,
// the files themselves are served from outside the API.
package media

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/db/controller/media"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
)

// Path is the base path of the media collection.
const Path = handler.APIPath + "/media"

// Service provides CRUD operations for media.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
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

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/:id", s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(auth.PermMediaWrite), s.Create)
		router.Patch("/:id", auth.RequirePermission(auth.PermMediaWrite), s.Update)
		router.Delete("/:id", auth.RequirePermission(auth.PermMediaDelete), s.Delete)
	})
}

// List returns one page of media. Anonymous clients only see public media.
func (s *Service) List(c *fiber.Ctx) error {
	uploadedBy, err := handler.QueryID(c, "uploadedBy")
	if err != nil {
		return err
	}

	page, err := media.List(s.db, media.Filter{
		Params:     handler.Paging(c),
		Category:   c.Query("category"),
		MimePrefix: c.Query("mimeType"),
		PublicOnly: auth.CurrentUser(c) == nil,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Get returns one media document. With ?download=true the download counter is incremented.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	m, err := media.Get(s.db, id)
	if err != nil {
		return handler.Translate(err)
	}

	if m.IsPublic != nil && !*m.IsPublic && auth.CurrentUser(c) == nil {
		return handler.Translate(media.ErrMediaNotFound)
	}

	if c.QueryBool("download") {
		if err = media.IncrementDownloads(s.db, id); err != nil {
			return handler.Translate(err)
		}

		m.DownloadCount++
	}

	return c.JSON(m)
}

// Create stores the metadata of an uploaded file, owned by the current user.
func (s *Service) Create(c *fiber.Ctx) error {
	m := new(models.Media)
	if err := handler.ParseBody(c, m); err != nil {
		return err
	}

	uid := auth.CurrentUser(c).ID
	m.UploadedByID = &uid

	if err := media.Create(s.db, m); err != nil {
		return handler.Translate(err)
	}

	return handler.Reply(c, fiber.StatusCreated, fiber.Map{"doc": m, "message": "media created"})
}

// Update applies the fields present in the body to existing media.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	m, err := media.Get(s.db, id)
	if err != nil {
		return handler.Translate(err)
	}

	if err = handler.ParseBody(c, m); err != nil {
		return err
	}

	m.ID = id

	if err = media.Update(s.db, m); err != nil {
		return handler.Translate(err)
	}

	if m, err = media.Get(s.db, id); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"doc": m, "message": "media updated"})
}

// Delete removes a media document.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = media.Delete(s.db, id); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"id": id, "message": "media deleted"})
}
