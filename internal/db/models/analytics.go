package models

import "time"

// EventType classifies an analytics event.
type EventType string

// Event types.
const (
	EventPageView     EventType = "page_view"
	EventToolUsage    EventType = "tool_usage"
	EventUserRegister EventType = "user_register"
	EventUserLogin    EventType = "user_login"
	EventFileUpload   EventType = "file_upload"
	EventFileDownload EventType = "file_download"
	EventSearchQuery  EventType = "search_query"
	EventButtonClick  EventType = "button_click"
	EventFormSubmit   EventType = "form_submit"
	EventError        EventType = "error_occurred"
	EventCustom       EventType = "custom_event"
)

// Device family derived from the user agent.
type Device string

// Devices.
const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DeviceUnknown Device = "unknown"
)

// Severity of a tracked error.
type Severity string

// Severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// PageInfo describes the page an event happened on.
type PageInfo struct {
	URL      string   `gorm:"size:2048"  json:"url,omitempty"`
	Title    string   `gorm:"size:512"   json:"title,omitempty"`
	Referrer string   `gorm:"size:2048"  json:"referrer,omitempty"`
	LoadTime *float64 `json:"loadTime,omitempty"`
}

// UserAgentInfo is the classified user agent.
type UserAgentInfo struct {
	Browser          string `gorm:"size:50"   json:"browser,omitempty"`
	BrowserVersion   string `gorm:"size:50"   json:"browserVersion,omitempty"`
	OS               string `gorm:"size:50"   json:"os,omitempty"`
	OSVersion        string `gorm:"size:50"   json:"osVersion,omitempty"`
	Device           Device `gorm:"type:varchar(10);index" json:"device,omitempty"`
	ScreenResolution string `gorm:"size:20"   json:"screenResolution,omitempty"`
	Language         string `gorm:"size:20"   json:"language,omitempty"`
	Timezone         string `gorm:"size:64"   json:"timezone,omitempty"`
	Raw              string `gorm:"size:1024" json:"raw,omitempty"`
}

// Location of the client. The ip is always stored masked.
type Location struct {
	IP        string   `gorm:"size:64"  json:"ip,omitempty"`
	Country   string   `gorm:"size:100" json:"country,omitempty"`
	Region    string   `gorm:"size:100" json:"region,omitempty"`
	City      string   `gorm:"size:100" json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Performance metrics reported with an event.
type Performance struct {
	ResponseTime   *float64 `json:"responseTime,omitempty"`
	ProcessingTime *float64 `json:"processingTime,omitempty"`
	MemoryUsage    *float64 `json:"memoryUsage,omitempty"`
	CPUUsage       *float64 `json:"cpuUsage,omitempty"`
}

// ErrorInfo is set on error_occurred events.
type ErrorInfo struct {
	ErrorType    string   `gorm:"size:255"  json:"errorType,omitempty"`
	ErrorMessage string   `gorm:"type:text" json:"errorMessage,omitempty"`
	StackTrace   string   `gorm:"type:text" json:"stackTrace,omitempty"`
	Severity     Severity `gorm:"type:varchar(10);default:'medium'" json:"severity,omitempty"`
}

// EventMetadata describes where an event came from.
type EventMetadata struct {
	Source      string `gorm:"size:20;default:'web'" json:"source"`
	Version     string `gorm:"size:50"               json:"version,omitempty"`
	Environment string `gorm:"size:20"               json:"environment,omitempty"`
	Processed   bool   `gorm:"not null;default:false" json:"processed"`
}

// AnalyticsEvent is one tracked event.
type AnalyticsEvent struct {
	ID        uint64    `gorm:"primaryKey"                   json:"id"`
	EventName string    `gorm:"size:255;not null;index"      json:"eventName"`
	EventType EventType `gorm:"type:varchar(32);not null;index:idx_event_type_created,priority:1" json:"eventType"`
	UserID    *uint64   `gorm:"index"                        json:"user,omitempty"`
	ToolID    *uint64   `gorm:"index"                        json:"tool,omitempty"`
	SessionID string    `gorm:"size:64;index"                json:"sessionId"`
	EventData JSONMap   `gorm:"serializer:json"              json:"eventData,omitempty"`

	PageInfo    PageInfo      `gorm:"embedded;embeddedPrefix:page_"  json:"pageInfo"`
	UserAgent   UserAgentInfo `gorm:"embedded;embeddedPrefix:ua_"    json:"userAgent"`
	Location    Location      `gorm:"embedded;embeddedPrefix:loc_"   json:"location"`
	Performance Performance   `gorm:"embedded;embeddedPrefix:perf_"  json:"performance"`
	ErrorInfo   ErrorInfo     `gorm:"embedded;embeddedPrefix:error_" json:"errorInfo"`
	Metadata    EventMetadata `gorm:"embedded;embeddedPrefix:meta_"  json:"metadata"`

	CreatedAt time.Time `gorm:"not null;index;index:idx_event_type_created,priority:2" json:"createdAt"`
}

// TableName of the analytics events.
func (AnalyticsEvent) TableName() string {
	return "analytics"
}

// JSONMap is free form event data.
type JSONMap map[string]any
