package analytics

import (
	"net"
	"regexp"
	"strings"

	"github.com/headless-tools/headless-tools-cms/internal/db/models"
)

// Unknown is reported for anything that could not be classified.
const Unknown = "Unknown"

// eventTypeRules are checked in order, the first rule with a matching substring wins.
var eventTypeRules = []struct { //nolint:gochecknoglobals
	needles []string
	typ     models.EventType
}{
	{[]string{"page_view", "visit"}, models.EventPageView},
	{[]string{"tool_", "use_"}, models.EventToolUsage},
	{[]string{"register", "signup"}, models.EventUserRegister},
	{[]string{"login", "signin"}, models.EventUserLogin},
	{[]string{"upload"}, models.EventFileUpload},
	{[]string{"download"}, models.EventFileDownload},
	{[]string{"search"}, models.EventSearchQuery},
	{[]string{"click"}, models.EventButtonClick},
	{[]string{"submit"}, models.EventFormSubmit},
	{[]string{"error"}, models.EventError},
}

// DetermineEventType classifies an event by substrings of its name.
// Names matching no rule are custom events.
func DetermineEventType(name string) models.EventType {
	for _, r := range eventTypeRules {
		for _, n := range r.needles {
			if strings.Contains(name, n) {
				return r.typ
			}
		}
	}

	return models.EventCustom
}

// uaRule maps a user agent token to a name. version extracts the version following the token.
type uaRule struct {
	token   string
	name    string
	version *regexp.Regexp
}

// Edge and Opera carry Chrome and Safari tokens, Chrome carries Safari, so order matters.
var browserRules = []uaRule{ //nolint:gochecknoglobals
	{"Edg", "Edge", regexp.MustCompile(`Edg(?:e|A|iOS)?/([\d.]+)`)},
	{"OPR/", "Opera", regexp.MustCompile(`OPR/([\d.]+)`)},
	{"Firefox/", "Firefox", regexp.MustCompile(`Firefox/([\d.]+)`)},
	{"FxiOS/", "Firefox", regexp.MustCompile(`FxiOS/([\d.]+)`)},
	{"CriOS/", "Chrome", regexp.MustCompile(`CriOS/([\d.]+)`)},
	{"Chrome/", "Chrome", regexp.MustCompile(`Chrome/([\d.]+)`)},
	{"Safari/", "Safari", regexp.MustCompile(`Version/([\d.]+)`)},
}

// Android and iOS user agents also mention Linux and Mac OS X.
var osRules = []uaRule{ //nolint:gochecknoglobals
	{"Windows", "Windows", regexp.MustCompile(`Windows NT ([\d.]+)`)},
	{"Android", "Android", regexp.MustCompile(`Android ([\d.]+)`)},
	{"iPhone", "iOS", regexp.MustCompile(`OS (\d+(?:_\d+)*) like Mac OS X`)},
	{"iPad", "iOS", regexp.MustCompile(`OS (\d+(?:_\d+)*) like Mac OS X`)},
	{"iOS", "iOS", nil},
	{"Mac", "macOS", regexp.MustCompile(`Mac OS X (\d+(?:[_.]\d+)*)`)},
	{"CrOS", "ChromeOS", nil},
	{"Linux", "Linux", nil},
}

func match(ua string, rules []uaRule) (name, version string) {
	for _, r := range rules {
		if !strings.Contains(ua, r.token) {
			continue
		}

		if r.version != nil {
			if m := r.version.FindStringSubmatch(ua); len(m) > 1 {
				version = strings.ReplaceAll(m[1], "_", ".")
			}
		}

		return r.name, version
	}

	return Unknown, ""
}

// ParseUserAgent classifies browser, operating system and device family of a user agent.
func ParseUserAgent(ua string) models.UserAgentInfo {
	info := models.UserAgentInfo{Raw: ua}

	info.Browser, info.BrowserVersion = match(ua, browserRules)
	info.OS, info.OSVersion = match(ua, osRules)

	switch {
	case strings.TrimSpace(ua) == "":
		info.Device = models.DeviceUnknown
	case strings.Contains(ua, "iPad") || strings.Contains(ua, "Tablet"):
		info.Device = models.DeviceTablet
	case strings.Contains(ua, "Mobile") || strings.Contains(ua, "Android") || strings.Contains(ua, "iPhone"):
		info.Device = models.DeviceMobile
	default:
		info.Device = models.DeviceDesktop
	}

	return info
}

// MaskIP hides the host part of an address: the last IPv4 octet or the last IPv6 group
// becomes ***. An empty address is Unknown. Input that is not an ip is masked after its
// last dot or colon.
func MaskIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return Unknown
	}

	sep := "."
	if parsed := net.ParseIP(ip); parsed != nil && parsed.To4() == nil {
		sep = ":"
	} else if parsed == nil && strings.Count(ip, ":") > 1 {
		sep = ":"
	}

	i := strings.LastIndex(ip, sep)
	if i < 0 {
		return "***"
	}

	return ip[:i+1] + "***"
}
