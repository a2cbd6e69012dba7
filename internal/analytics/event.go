package analytics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// Payload is one event as posted by a client.
type Payload struct {
	EventName string         `json:"eventName" validate:"required,max=255"`
	EventData models.JSONMap `json:"eventData"`

	// UserAgent and IP override the values of the request.
	UserAgent string `json:"userAgent"`
	IP        string `json:"ip"`

	UserID    *uint64 `json:"userId"`
	ToolID    *uint64 `json:"toolId"`
	SessionID string  `json:"sessionId" validate:"max=64"`

	URL      string   `json:"url"      validate:"max=2048"`
	Title    string   `json:"title"    validate:"max=512"`
	Referrer string   `json:"referrer" validate:"max=2048"`
	LoadTime *float64 `json:"loadTime"`

	ResponseTime   *float64 `json:"responseTime"`
	ProcessingTime *float64 `json:"processingTime"`
	MemoryUsage    *float64 `json:"memoryUsage"`
	CPUUsage       *float64 `json:"cpuUsage"`

	ScreenResolution string `json:"screenResolution" validate:"max=20"`
	Language         string `json:"language"         validate:"max=20"`
	Timezone         string `json:"timezone"         validate:"max=64"`

	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	StackTrace   string `json:"stackTrace"`
	Severity     string `json:"severity" validate:"omitempty,oneof=low medium high critical"`

	Source string `json:"source" validate:"omitempty,oneof=web mobile api server webhook"`
}

// Request carries what the http request knows about the client.
type Request struct {
	UserAgent string
	IP        string
}

// Meta is stamped on every event.
type Meta struct {
	Version     string
	Environment string
}

// BuildEvent turns a payload into an event ready to be stored.
func BuildEvent(p *Payload, req Request, meta Meta, now time.Time) *models.AnalyticsEvent {
	ua := p.UserAgent
	if ua == "" {
		ua = req.UserAgent
	}

	ip := p.IP
	if ip == "" {
		ip = req.IP
	}

	sessionID := p.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	source := p.Source
	if source == "" {
		source = "web"
	}

	e := &models.AnalyticsEvent{
		EventName: p.EventName,
		EventType: DetermineEventType(p.EventName),
		UserID:    nonZero(p.UserID),
		ToolID:    nonZero(p.ToolID),
		SessionID: sessionID,
		EventData: p.EventData,
		PageInfo: models.PageInfo{
			URL:      p.URL,
			Title:    p.Title,
			Referrer: p.Referrer,
			LoadTime: p.LoadTime,
		},
		UserAgent: ParseUserAgent(ua),
		Location: models.Location{
			IP:      MaskIP(ip),
			Country: Unknown,
			Region:  Unknown,
			City:    Unknown,
		},
		Performance: models.Performance{
			ResponseTime:   p.ResponseTime,
			ProcessingTime: p.ProcessingTime,
			MemoryUsage:    p.MemoryUsage,
			CPUUsage:       p.CPUUsage,
		},
		Metadata: models.EventMetadata{
			Source:      source,
			Version:     meta.Version,
			Environment: meta.Environment,
		},
		CreatedAt: now.UTC(),
	}

	e.UserAgent.ScreenResolution = p.ScreenResolution
	e.UserAgent.Language = p.Language
	e.UserAgent.Timezone = p.Timezone

	if e.EventType == models.EventError || p.ErrorMessage != "" {
		e.ErrorInfo = models.ErrorInfo{
			ErrorType:    p.ErrorType,
			ErrorMessage: p.ErrorMessage,
			StackTrace:   p.StackTrace,
			Severity:     models.Severity(strings.ToLower(p.Severity)),
		}

		if e.ErrorInfo.Severity == "" {
			e.ErrorInfo.Severity = models.SeverityMedium
		}
	}

	return e
}

func nonZero(id *uint64) *uint64 {
	if id == nil || *id == 0 {
		return nil
	}

	return id
}
