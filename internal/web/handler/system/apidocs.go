package system

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	"github.com/headless-tools/headless-tools-cms/internal/config"
)

// route is one documented operation.
type route struct {
	method, path, tag, summary string
	access                     string
	query                      []string
	body                       bool
	status                     int
}

const (
	accessPublic = "public"
	accessUser   = "authenticated user"
	accessEditor = "admin or editor"
	accessAdmin  = "admin"
	accessSelf   = "admin or the user itself"

	defaultHealthPath = "/health"
)

// routes lists the documented operations. Paths use the OpenAPI {param} notation. OpenAPI
// rejects paths that only differ in parameter names, so the tool lookup by slug is documented as {id}.
var routes = []route{ //nolint:gochecknoglobals
	{http.MethodGet, "/", "system", "API index", accessPublic, nil, false, http.StatusOK},
	{http.MethodGet, defaultHealthPath, "system", "Health check", accessPublic, nil, false, http.StatusOK},
	{http.MethodGet, "/api/system/info", "system", "System information", accessPublic, nil, false, http.StatusOK},
	{http.MethodGet, "/api/system/stats", "system", "Document count per collection", accessPublic, nil, false, http.StatusOK},

	{http.MethodPost, "/analytics/track", "analytics", "Track one event", accessPublic, nil, true, http.StatusOK},
	{http.MethodPost, "/analytics/track/batch", "analytics", "Track a batch of events", accessPublic, nil, true, http.StatusOK},
	{
		http.MethodGet, "/analytics/stats", "analytics", "Aggregated statistics", accessPublic,
		[]string{"startDate", "endDate", "eventType", "userId", "toolId", "groupBy", "metrics"}, false, http.StatusOK,
	},
	{http.MethodGet, "/analytics/realtime", "analytics", "Events of the last minutes", accessPublic, []string{"minutes"}, false, http.StatusOK},
	{http.MethodGet, "/analytics/user-behavior/{userId}", "analytics", "Behavior of one user", accessSelf, []string{"days"}, false, http.StatusOK},
	{http.MethodGet, "/analytics/tools/usage", "analytics", "Tool usage per period", accessPublic, []string{"period"}, false, http.StatusOK},
	{
		http.MethodGet, "/api/analytics", "analytics", "List stored events", accessEditor,
		[]string{"page", "limit", "startDate", "endDate", "eventType", "userId", "toolId", "sessionId"}, false, http.StatusOK,
	},
	{http.MethodGet, "/api/analytics/{id}", "analytics", "Get a stored event", accessEditor, nil, false, http.StatusOK},
	{http.MethodDelete, "/api/analytics/{id}", "analytics", "Delete a stored event", accessAdmin, nil, false, http.StatusOK},

	{
		http.MethodGet, "/api/tools", "tools", "List tools", accessPublic,
		[]string{"page", "limit", "search", "category", "status", "featured", "sort"}, false, http.StatusOK,
	},
	{http.MethodGet, "/api/tools/{id}", "tools", "Get a tool by numeric id or by slug", accessPublic, nil, false, http.StatusOK},
	{http.MethodPost, "/api/tools", "tools", "Create a tool", accessEditor, nil, true, http.StatusCreated},
	{http.MethodPatch, "/api/tools/{id}", "tools", "Update a tool", accessEditor, nil, true, http.StatusOK},
	{http.MethodDelete, "/api/tools/{id}", "tools", "Delete a tool", accessAdmin, nil, false, http.StatusOK},

	{http.MethodGet, "/api/media", "media", "List media", accessPublic, []string{"page", "limit", "category", "mimeType", "uploadedBy"}, false, http.StatusOK},
	{http.MethodGet, "/api/media/{id}", "media", "Get media", accessPublic, []string{"download"}, false, http.StatusOK},
	{http.MethodPost, "/api/media", "media", "Create media metadata", accessUser, nil, true, http.StatusCreated},
	{http.MethodPatch, "/api/media/{id}", "media", "Update media metadata", accessUser, nil, true, http.StatusOK},
	{http.MethodDelete, "/api/media/{id}", "media", "Delete media", accessAdmin, nil, false, http.StatusOK},

	{http.MethodPost, "/api/users", "users", "Register a user", accessPublic, nil, true, http.StatusCreated},
	{http.MethodGet, "/api/users", "users", "List users", accessAdmin, []string{"page", "limit", "role"}, false, http.StatusOK},
	{http.MethodGet, "/api/users/me", "users", "Current user", accessUser, nil, false, http.StatusOK},
	{http.MethodGet, "/api/users/{id}", "users", "Get a user", accessSelf, nil, false, http.StatusOK},
	{http.MethodPatch, "/api/users/{id}", "users", "Update a user", accessSelf, nil, true, http.StatusOK},
	{http.MethodDelete, "/api/users/{id}", "users", "Delete a user", accessAdmin, nil, false, http.StatusOK},
	{http.MethodPost, "/api/users/login", "users", "Log in", accessPublic, nil, true, http.StatusOK},
	{http.MethodPost, "/api/users/logout", "users", "Log out", accessPublic, nil, false, http.StatusOK},
	{http.MethodPost, "/api/users/me/totp", "users", "Start two-factor enrolment", accessUser, nil, false, http.StatusOK},
	{http.MethodPost, "/api/users/me/totp/verify", "users", "Enable two-factor authentication", accessUser, nil, true, http.StatusOK},
	{http.MethodDelete, "/api/users/me/totp", "users", "Disable two-factor authentication", accessUser, nil, true, http.StatusOK},

	{http.MethodGet, "/api/globals/settings", "settings", "Read the site settings", accessPublic, nil, false, http.StatusOK},
	{http.MethodPost, "/api/globals/settings", "settings", "Save the site settings", accessAdmin, nil, true, http.StatusOK},
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("timestamp", openapi3.NewDateTimeSchema())
}

func operationID(r route) string {
	var b strings.Builder

	b.WriteString(strings.ToLower(r.method))

	for _, part := range strings.FieldsFunc(r.path, func(c rune) bool { return c == '/' || c == '-' || c == '{' || c == '}' }) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}

	return b.String()
}

// pathParams returns the {param} names of an OpenAPI path.
func pathParams(path string) []string {
	var out []string

	for _, part := range strings.Split(path, "/") {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			out = append(out, part[1:len(part)-1])
		}
	}

	return out
}

// NewDocument builds the OpenAPI 3 document of the API.
func NewDocument(cfg *config.Config) *openapi3.T {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       cfg.Title + " API",
			Version:     version,
			Description: "Headless CMS API. Authenticate with POST /api/users/login, then send the session cookie or the returned token as bearer token.",
		},
		Paths: openapi3.NewPaths(),
	}

	if cfg.Webserver.URL != "" {
		doc.Servers = openapi3.Servers{{URL: cfg.Webserver.URL}}
	}

	for _, r := range routes {
		if r.tag == "analytics" && !cfg.Analytics.Enabled {
			continue
		}

		path := r.path
		if path == defaultHealthPath && cfg.Webserver.HealthURI != "" {
			path = cfg.Webserver.HealthURI
		}

		op := openapi3.NewOperation()
		op.OperationID = operationID(r)
		op.Summary = r.summary
		op.Description = "Access: " + r.access + "."
		op.Tags = []string{r.tag}

		for _, name := range pathParams(r.path) {
			op.AddParameter(openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()))
		}

		for _, name := range r.query {
			op.AddParameter(openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema()))
		}

		if r.body {
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(openapi3.NewObjectSchema()),
			}
		}

		op.AddResponse(r.status, openapi3.NewResponse().
			WithDescription(http.StatusText(r.status)).
			WithJSONSchema(openapi3.NewObjectSchema()))
		op.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
			WithDescription("Error").
			WithJSONSchema(errorSchema()))

		doc.AddOperation(path, r.method, op)
	}

	return doc
}

// Docs answers the OpenAPI document.
func (s *Service) Docs(c *fiber.Ctx) error {
	return c.JSON(NewDocument(s.cfg))
}
