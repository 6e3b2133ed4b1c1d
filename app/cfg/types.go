package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// News search configuration
	NewsProvider   string
	NewsAPIURL     string
	RSSSearchURL   string
	Language       string
	LookbackDays   int
	PageSize       int
	ExtractContent bool

	// Delivery configuration
	WhatsAppAPIURL        string
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	DefaultCountryCode    string
	SMTPHost              string
	SMTPPort              string
	EmailAddress          string
	EmailPassword         string

	// Scheduler configuration
	DailyTime    string
	PollInterval int

	// Application configuration
	Port         string
	APIAccessKey string
	SeedFile     string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
