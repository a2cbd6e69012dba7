// Package analytics provides the event tracking and aggregation endpoints and the admin listing
// of stored events.
package analytics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/headless-tools/headless-tools-cms/internal/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/auth"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	eventstore "github.com/headless-tools/headless-tools-cms/internal/db/controller/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/db/models"
	"github.com/headless-tools/headless-tools-cms/internal/fields"
	"github.com/headless-tools/headless-tools-cms/internal/web/handler"
)

const (
	// Path is the root of the tracking and aggregation endpoints.
	Path = handler.RootPath + "analytics"

	// DocumentsPath is the root of the stored events collection.
	DocumentsPath = handler.APIPath + "/analytics"
)

// Service is the analytics handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	analytics *analytics.Service
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the routes. Nothing is registered while analytics is disabled.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.analytics = analytics.NewService(db, cfg)

	if !cfg.Analytics.Enabled {
		log.Info().Msg("analytics is disabled, tracking endpoints are not registered")
		return
	}

	app.Route(Path, func(router fiber.Router) {
		router.Post("/track", s.Track)
		router.Post("/track/batch", s.TrackBatch)
		router.Get("/stats", s.Stats)
		router.Get("/realtime", s.Realtime)
		router.Get("/user-behavior/:userId", auth.RequireAuthenticated(), s.UserBehavior)
		router.Get("/tools/usage", s.ToolUsage)
	})

	app.Get(DocumentsPath, auth.RequirePermission(auth.PermAnalyticsRead), s.List)
	app.Get(DocumentsPath+"/:id", auth.RequirePermission(auth.PermAnalyticsRead), s.Get)
	app.Delete(DocumentsPath+"/:id", auth.RequirePermission(auth.PermAnalyticsDelete), s.Delete)
}

func clientRequest(c *fiber.Ctx) analytics.Request {
	return analytics.Request{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

// Track stores one event.
func (s *Service) Track(c *fiber.Ctx) error {
	p := new(analytics.Payload)
	if err := handler.ParseBody(c, p); err != nil {
		return err
	}

	e, err := s.analytics.Track(c.UserContext(), p, clientRequest(c))
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.Map{
		"message":   "event tracked",
		"eventId":   e.ID,
		"timestamp": e.CreatedAt,
	})
}

type batchRequest struct {
	Events []analytics.Payload `json:"events"`
}

// TrackBatch stores a batch of events.
func (s *Service) TrackBatch(c *fiber.Ctx) error {
	body := new(batchRequest)
	if err := c.BodyParser(body); err != nil {
		return handler.ErrInvalidBody
	}

	if len(body.Events) == 0 {
		return handler.Translate(analytics.ErrEmptyBatch)
	}

	for i := range body.Events {
		if errs := fields.Validate(&body.Events[i]); errs != nil {
			return &handler.ValidationError{Fields: errs}
		}
	}

	events, err := s.analytics.TrackBatch(c.UserContext(), body.Events, clientRequest(c))
	if err != nil {
		return handler.Translate(err)
	}

	ids := make([]uint64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	return handler.OK(c, fiber.Map{
		"message":  fmt.Sprintf("tracked %d events", len(ids)),
		"eventIds": ids,
	})
}

func eventQuery(c *fiber.Ctx) (eventstore.Query, error) {
	var (
		q   eventstore.Query
		err error
	)

	if q.From, err = handler.QueryTime(c, "startDate"); err != nil {
		return q, err
	}

	if q.To, err = handler.QueryTime(c, "endDate"); err != nil {
		return q, err
	}

	if q.UserID, err = handler.QueryID(c, "userId"); err != nil {
		return q, err
	}

	if q.ToolID, err = handler.QueryID(c, "toolId"); err != nil {
		return q, err
	}

	q.EventType = models.EventType(c.Query("eventType"))
	q.SessionID = c.Query("sessionId")

	return q, nil
}

// Stats aggregates the matching events.
func (s *Service) Stats(c *fiber.Ctx) error {
	q, err := eventQuery(c)
	if err != nil {
		return err
	}

	sq := &analytics.StatsQuery{
		Query:   q,
		GroupBy: c.Query("groupBy", "day"),
		Metrics: c.Query("metrics", "all"),
	}

	res, err := s.analytics.Stats(c.UserContext(), sq)
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.Map{
		"data":   res.Data,
		"total":  res.Total,
		"query":  sq,
		"period": fiber.Map{"startDate": c.Query("startDate"), "endDate": c.Query("endDate")},
	})
}

// Realtime summarises the last minutes. A disabled real-time mode is answered with success false.
func (s *Service) Realtime(c *fiber.Ctx) error {
	res, err := s.analytics.Realtime(c.UserContext(), c.QueryInt("minutes", analytics.DefaultRealtimeMinutes))
	if errors.Is(err, analytics.ErrRealtimeDisabled) {
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	if err != nil {
		return err
	}

	return handler.OK(c, fiber.Map{
		"data":        res.Data,
		"activeUsers": res.ActiveUsers,
		"currentTime": res.CurrentTime,
		"timeRange":   strconv.Itoa(res.Minutes) + " minutes",
		"total":       res.Total,
	})
}

// UserBehavior analyses one user. Users may read their own analysis, analytics readers any.
func (s *Service) UserBehavior(c *fiber.Ctx) error {
	userID, err := handler.ParamID(c, "userId")
	if err != nil {
		return err
	}

	actor := auth.CurrentUser(c)
	if actor.ID != userID && !auth.RoleHasPermission(actor.Role, auth.PermAnalyticsRead) {
		return auth.ErrForbidden
	}

	res, err := s.analytics.UserBehavior(c.UserContext(), userID, c.QueryInt("days", analytics.DefaultBehaviorDays))
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.Map{
		"userId":      userID,
		"period":      strconv.Itoa(res.Days) + " days",
		"data":        res.Data,
		"totalEvents": res.TotalEvents,
	})
}

// ToolUsage counts tool usage over a period.
func (s *Service) ToolUsage(c *fiber.Ctx) error {
	res, err := s.analytics.ToolUsage(c.UserContext(), c.Query("period", analytics.DefaultUsagePeriod))
	if err != nil {
		return err
	}

	return handler.OK(c, fiber.Map{
		"period":     strconv.Itoa(res.Days) + " days",
		"data":       res.Data,
		"totalUsage": res.TotalUsage,
	})
}

// List pages through the stored events, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	q, err := eventQuery(c)
	if err != nil {
		return err
	}

	page, err := eventstore.List(c.UserContext(), s.db, q, handler.Paging(c))
	if err != nil {
		return err
	}

	return c.JSON(page)
}

// Get returns one stored event.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	e, err := eventstore.Get(c.UserContext(), s.db, id)
	if err != nil {
		return handler.Translate(err)
	}

	return c.JSON(e)
}

// Delete removes one stored event.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = eventstore.Delete(c.UserContext(), s.db, id); err != nil {
		return handler.Translate(err)
	}

	return handler.OK(c, fiber.Map{"message": "event deleted", "id": id})
}
