package telemetry

import "strings"

// Device is the classification of a user agent
type Device struct {
	DeviceType string `json:"device_type"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
}

const unknownValue = "Unknown"

type signature struct {
	needle string
	name   string
}

// checked in order; the first substring hit wins
var (
	browserSignatures = []signature{
		{"edg/", "Edge"},
		{"edga/", "Edge"},
		{"opr/", "Opera"},
		{"opera", "Opera"},
		{"samsungbrowser", "Samsung Internet"},
		{"firefox/", "Firefox"},
		{"fxios", "Firefox"},
		{"crios", "Chrome"},
		{"chrome/", "Chrome"},
		{"safari/", "Safari"},
	}
	osSignatures = []signature{
		{"windows nt", "Windows"},
		{"iphone", "iOS"},
		{"ipad", "iOS"},
		{"ipod", "iOS"},
		{"android", "Android"},
		{"cros", "Chrome OS"},
		{"mac os x", "macOS"},
		{"macintosh", "macOS"},
		{"linux", "Linux"},
	}
)

// ParseUserAgent classifies ua by substring matching
func ParseUserAgent(ua string) Device {
	lower := strings.ToLower(ua)
	return Device{
		DeviceType: deviceType(lower),
		Browser:    match(lower, browserSignatures),
		OS:         match(lower, osSignatures),
	}
}

func deviceType(ua string) string {
	switch {
	case ua == "":
		return unknownValue
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return "tablet"
	case strings.Contains(ua, "mobi"), strings.Contains(ua, "iphone"), strings.Contains(ua, "ipod"):
		return "mobile"
	default:
		return "desktop"
	}
}

func match(ua string, sigs []signature) string {
	for _, s := range sigs {
		if strings.Contains(ua, s.needle) {
			return s.name
		}
	}
	return unknownValue
}
