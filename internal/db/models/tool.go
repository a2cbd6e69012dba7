package models

import "time"

// ToolCategory is the main category of a tool.
type ToolCategory string

// Tool categories.
const (
	CategoryImage       ToolCategory = "image"
	CategoryDocument    ToolCategory = "document"
	CategoryAnalytics   ToolCategory = "analytics"
	CategoryDevelopment ToolCategory = "development"
	CategorySystem      ToolCategory = "system"
	CategoryAI          ToolCategory = "ai"
	CategoryNetwork     ToolCategory = "network"
	CategorySecurity    ToolCategory = "security"
	CategoryDesign      ToolCategory = "design"
	CategoryMobile      ToolCategory = "mobile"
	CategoryBusiness    ToolCategory = "business"
	CategoryOther       ToolCategory = "other"
)

// PricingType of a tool.
type PricingType string

// Pricing types.
const (
	PricingFree         PricingType = "free"
	PricingFreemium     PricingType = "freemium"
	PricingPayPerUse    PricingType = "pay-per-use"
	PricingSubscription PricingType = "subscription"
	PricingOneTime      PricingType = "one-time"
)

// ToolStatus is the availability of a tool.
type ToolStatus string

// Tool states.
const (
	ToolActive      ToolStatus = "active"
	ToolMaintenance ToolStatus = "maintenance"
	ToolBeta        ToolStatus = "beta"
	ToolInactive    ToolStatus = "inactive"
)

// Screenshot references a media document shown on the tool page.
type Screenshot struct {
	MediaID uint64 `json:"image"             validate:"required"`
	Caption string `json:"caption,omitempty" validate:"max=100"`
	Order   int    `json:"order"`
}

// FreeQuota limits the free usage of a tool.
type FreeQuota struct {
	DailyLimit   *int `json:"dailyLimit,omitempty"   validate:"omitempty,min=0"`
	MonthlyLimit *int `json:"monthlyLimit,omitempty" validate:"omitempty,min=0"`
}

// Pricing of a tool.
type Pricing struct {
	Type      PricingType `gorm:"type:varchar(20);not null;default:'free'" json:"type" validate:"omitempty,oneof=free freemium pay-per-use subscription one-time"`
	Price     *float64    `json:"price,omitempty" validate:"omitempty,min=0"`
	FreeQuota FreeQuota   `gorm:"embedded;embeddedPrefix:free_" json:"freeQuota"`
}

// PortMapping exposes a container port.
type PortMapping struct {
	ContainerPort int `json:"containerPort"      validate:"required,min=1,max=65535"`
	HostPort      int `json:"hostPort,omitempty" validate:"omitempty,min=1,max=65535"`
}

// EnvVar is a container environment variable.
type EnvVar struct {
	Key   string `json:"key"   validate:"required"`
	Value string `json:"value" validate:"required"`
}

// DockerConfig is the runtime configuration of the tool container.
type DockerConfig struct {
	Ports       []PortMapping `gorm:"serializer:json" json:"ports,omitempty"       validate:"max=5,dive"`
	Environment []EnvVar      `gorm:"serializer:json" json:"environment,omitempty" validate:"max=10,dive"`
	Command     string        `gorm:"size:1024"       json:"command,omitempty"`
	HealthCheck string        `gorm:"size:1024"       json:"healthCheck,omitempty"`
}

// Tool is a containerised tool offered on the site.
type Tool struct {
	ID              uint64       `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"uniqueIndex;size:100;not null" json:"name"        validate:"required,max=100"`
	Slug            string       `gorm:"uniqueIndex;size:120;not null" json:"slug"        validate:"omitempty,slug"`
	Description     string       `gorm:"size:200;not null"             json:"description" validate:"required,max=200"`
	LongDescription string       `gorm:"type:text"                     json:"longDescription,omitempty"`
	Category        ToolCategory `gorm:"type:varchar(20);not null;index" json:"category" validate:"required,oneof=image document analytics development system ai network security design mobile business other"` //nolint:lll
	Subcategory     string       `gorm:"size:100" json:"subcategory,omitempty"`
	Tags            []string     `gorm:"serializer:json" json:"tags,omitempty" validate:"max=15,dive,max=30"`

	IconID *uint64 `json:"icon,omitempty"`
	Icon   *Media  `gorm:"foreignKey:IconID;constraint:OnDelete:SET NULL" json:"-"`

	Screenshots []Screenshot `gorm:"serializer:json" json:"screenshots,omitempty" validate:"max=8,dive"`

	Pricing      Pricing      `gorm:"embedded;embeddedPrefix:pricing_" json:"pricing"`
	DockerImage  string       `gorm:"size:512;not null"                json:"dockerImage" validate:"required,dockerimage"`
	DockerConfig DockerConfig `gorm:"embedded;embeddedPrefix:docker_"  json:"dockerConfig"`

	Status     ToolStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status" validate:"omitempty,oneof=active maintenance beta inactive"`
	UsageCount int64      `gorm:"not null;default:0" json:"usageCount"`
	Rating     float64    `gorm:"not null;default:0" json:"rating"`
	Featured   bool       `gorm:"not null;default:false;index" json:"featured"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
