package geo

type country struct {
	name string
	code string
}

var timezoneCountries = map[string]country{
	// North America
	"America/New_York":      {"United States", "US"},
	"America/Chicago":       {"United States", "US"},
	"America/Denver":        {"United States", "US"},
	"America/Phoenix":       {"United States", "US"},
	"America/Los_Angeles":   {"United States", "US"},
	"America/Anchorage":     {"United States", "US"},
	"America/Detroit":       {"United States", "US"},
	"Pacific/Honolulu":      {"United States", "US"},
	"America/Toronto":       {"Canada", "CA"},
	"America/Vancouver":     {"Canada", "CA"},
	"America/Edmonton":      {"Canada", "CA"},
	"America/Winnipeg":      {"Canada", "CA"},
	"America/Halifax":       {"Canada", "CA"},
	"America/Mexico_City":   {"Mexico", "MX"},
	"America/Cancun":        {"Mexico", "MX"},
	"America/Tijuana":       {"Mexico", "MX"},
	"America/Panama":        {"Panama", "PA"},
	"America/Costa_Rica":    {"Costa Rica", "CR"},
	"America/Puerto_Rico":   {"Puerto Rico", "PR"},
	"America/Jamaica":       {"Jamaica", "JM"},
	"America/Havana":        {"Cuba", "CU"},
	"America/Santo_Domingo": {"Dominican Republic", "DO"},

	// South America
	"America/Sao_Paulo":              {"Brazil", "BR"},
	"America/Argentina/Buenos_Aires": {"Argentina", "AR"},
	"America/Buenos_Aires":           {"Argentina", "AR"},
	"America/Santiago":               {"Chile", "CL"},
	"America/Bogota":                 {"Colombia", "CO"},
	"America/Lima":                   {"Peru", "PE"},
	"America/Caracas":                {"Venezuela", "VE"},
	"America/Montevideo":             {"Uruguay", "UY"},
	"America/Asuncion":               {"Paraguay", "PY"},
	"America/Guayaquil":              {"Ecuador", "EC"},
	"America/La_Paz":                 {"Bolivia", "BO"},

	// Europe
	"Europe/London":     {"United Kingdom", "GB"},
	"Europe/Dublin":     {"Ireland", "IE"},
	"Europe/Paris":      {"France", "FR"},
	"Europe/Berlin":     {"Germany", "DE"},
	"Europe/Madrid":     {"Spain", "ES"},
	"Europe/Lisbon":     {"Portugal", "PT"},
	"Europe/Rome":       {"Italy", "IT"},
	"Europe/Amsterdam":  {"Netherlands", "NL"},
	"Europe/Brussels":   {"Belgium", "BE"},
	"Europe/Luxembourg": {"Luxembourg", "LU"},
	"Europe/Zurich":     {"Switzerland", "CH"},
	"Europe/Vienna":     {"Austria", "AT"},
	"Europe/Stockholm":  {"Sweden", "SE"},
	"Europe/Oslo":       {"Norway", "NO"},
	"Europe/Copenhagen": {"Denmark", "DK"},
	"Europe/Helsinki":   {"Finland", "FI"},
	"Europe/Warsaw":     {"Poland", "PL"},
	"Europe/Prague":     {"Czech Republic", "CZ"},
	"Europe/Budapest":   {"Hungary", "HU"},
	"Europe/Bucharest":  {"Romania", "RO"},
	"Europe/Sofia":      {"Bulgaria", "BG"},
	"Europe/Athens":     {"Greece", "GR"},
	"Europe/Istanbul":   {"Turkey", "TR"},
	"Europe/Kiev":       {"Ukraine", "UA"},
	"Europe/Kyiv":       {"Ukraine", "UA"},
	"Europe/Moscow":     {"Russia", "RU"},
	"Europe/Belgrade":   {"Serbia", "RS"},
	"Europe/Zagreb":     {"Croatia", "HR"},
	"Europe/Vilnius":    {"Lithuania", "LT"},
	"Europe/Riga":       {"Latvia", "LV"},
	"Europe/Tallinn":    {"Estonia", "EE"},
	"Europe/Malta":      {"Malta", "MT"},
	"Asia/Nicosia":      {"Cyprus", "CY"},

	// Asia-Pacific
	"Asia/Tokyo":          {"Japan", "JP"},
	"Asia/Seoul":          {"South Korea", "KR"},
	"Asia/Shanghai":       {"China", "CN"},
	"Asia/Hong_Kong":      {"Hong Kong", "HK"},
	"Asia/Taipei":         {"Taiwan", "TW"},
	"Asia/Singapore":      {"Singapore", "SG"},
	"Asia/Kuala_Lumpur":   {"Malaysia", "MY"},
	"Asia/Bangkok":        {"Thailand", "TH"},
	"Asia/Jakarta":        {"Indonesia", "ID"},
	"Asia/Manila":         {"Philippines", "PH"},
	"Asia/Ho_Chi_Minh":    {"Vietnam", "VN"},
	"Asia/Kolkata":        {"India", "IN"},
	"Asia/Calcutta":       {"India", "IN"},
	"Asia/Karachi":        {"Pakistan", "PK"},
	"Asia/Dhaka":          {"Bangladesh", "BD"},
	"Asia/Dubai":          {"United Arab Emirates", "AE"},
	"Asia/Riyadh":         {"Saudi Arabia", "SA"},
	"Asia/Qatar":          {"Qatar", "QA"},
	"Asia/Jerusalem":      {"Israel", "IL"},
	"Asia/Tehran":         {"Iran", "IR"},
	"Australia/Sydney":    {"Australia", "AU"},
	"Australia/Melbourne": {"Australia", "AU"},
	"Australia/Brisbane":  {"Australia", "AU"},
	"Australia/Perth":     {"Australia", "AU"},
	"Australia/Adelaide":  {"Australia", "AU"},
	"Pacific/Auckland":    {"New Zealand", "NZ"},

	// Africa
	"Africa/Johannesburg": {"South Africa", "ZA"},
	"Africa/Lagos":        {"Nigeria", "NG"},
	"Africa/Cairo":        {"Egypt", "EG"},
	"Africa/Nairobi":      {"Kenya", "KE"},
	"Africa/Casablanca":   {"Morocco", "MA"},
	"Africa/Accra":        {"Ghana", "GH"},
	"Africa/Algiers":      {"Algeria", "DZ"},
	"Africa/Tunis":        {"Tunisia", "TN"},
	"Africa/Addis_Ababa":  {"Ethiopia", "ET"},
}

// regionLabels maps the leading IANA segment to a coarse label
var regionLabels = map[string]string{
	"Europe":     "Europe",
	"America":    "Americas",
	"Asia":       "Asia",
	"Africa":     "Africa",
	"Australia":  "Oceania",
	"Pacific":    "Oceania",
	"Atlantic":   "Atlantic",
	"Indian":     "Indian Ocean",
	"Antarctica": "Antarctica",
}

var languageCountries = map[string]country{
	"en-US": {"United States", "US"},
	"en-GB": {"United Kingdom", "GB"},
	"en-CA": {"Canada", "CA"},
	"en-AU": {"Australia", "AU"},
	"en-NZ": {"New Zealand", "NZ"},
	"en-IE": {"Ireland", "IE"},
	"en-IN": {"India", "IN"},
	"en-ZA": {"South Africa", "ZA"},
	"fr-FR": {"France", "FR"},
	"fr-CA": {"Canada", "CA"},
	"fr-BE": {"Belgium", "BE"},
	"de-DE": {"Germany", "DE"},
	"de-AT": {"Austria", "AT"},
	"de-CH": {"Switzerland", "CH"},
	"es-ES": {"Spain", "ES"},
	"es-MX": {"Mexico", "MX"},
	"es-AR": {"Argentina", "AR"},
	"pt-BR": {"Brazil", "BR"},
	"pt-PT": {"Portugal", "PT"},
	"it-IT": {"Italy", "IT"},
	"nl-NL": {"Netherlands", "NL"},
	"pl-PL": {"Poland", "PL"},
	"ja-JP": {"Japan", "JP"},
	"ko-KR": {"South Korea", "KR"},
	"zh-CN": {"China", "CN"},
	"zh-TW": {"Taiwan", "TW"},
	"ru-RU": {"Russia", "RU"},
	"tr-TR": {"Turkey", "TR"},

	// bare languages resolve to their most common country
	"de": {"Germany", "DE"},
	"fr": {"France", "FR"},
	"es": {"Spain", "ES"},
	"it": {"Italy", "IT"},
	"ja": {"Japan", "JP"},
	"ko": {"South Korea", "KR"},
	"pl": {"Poland", "PL"},
	"nl": {"Netherlands", "NL"},
	"ru": {"Russia", "RU"},
	"tr": {"Turkey", "TR"},
}
