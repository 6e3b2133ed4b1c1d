package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/text/language"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/news_digest.db" description:"Path to the SQLite database file"`

	// News search configuration
	NewsProvider   string `long:"news-provider" env:"NEWS_PROVIDER" default:"newsapi" choice:"newsapi" choice:"rss" description:"Article source backend"`
	NewsAPIURL     string `long:"news-api-url" env:"NEWS_API_URL" default:"https://newsapi.org/v2" description:"Base URL of the news search API"`
	RSSSearchURL   string `long:"rss-search-url" env:"RSS_SEARCH_URL" default:"https://news.google.com/rss/search" description:"Base URL of the keyword RSS search feed"`
	Language       string `long:"language" env:"NEWS_LANGUAGE" default:"pt" description:"Search language tag (BCP 47)"`
	LookbackDays   int    `long:"lookback-days" env:"LOOKBACK_DAYS" default:"1" description:"How many days back to search for articles"`
	PageSize       int    `long:"page-size" env:"PAGE_SIZE" default:"20" description:"Number of articles requested per topic query"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Extract readable page content for RSS articles"`

	// Delivery configuration
	WhatsAppAPIURL        string `long:"whatsapp-api-url" env:"WHATSAPP_API_URL" default:"https://graph.facebook.com/v18.0" description:"Base URL of the WhatsApp Business API"`
	WhatsAppAccessToken   string `long:"whatsapp-access-token" env:"WHATSAPP_ACCESS_TOKEN" description:"WhatsApp Business API access token"`
	WhatsAppPhoneNumberID string `long:"whatsapp-phone-number-id" env:"WHATSAPP_PHONE_NUMBER_ID" description:"WhatsApp Business API phone number ID"`
	DefaultCountryCode    string `long:"default-country-code" env:"DEFAULT_COUNTRY_CODE" default:"55" description:"Country code prefixed to phone numbers without one"`
	SMTPHost              string `long:"smtp-host" env:"SMTP_SERVER" default:"smtp.gmail.com" description:"SMTP server host"`
	SMTPPort              string `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP server port"`
	EmailAddress          string `long:"email-address" env:"EMAIL_ADDRESS" description:"Sender email address"`
	EmailPassword         string `long:"email-password" env:"EMAIL_PASSWORD" description:"Sender email password"`

	// Scheduler configuration
	DailyTime    string `long:"daily-time" env:"DAILY_TIME" default:"08:00" description:"Time of day (HH:MM) for the daily digest run"`
	PollInterval int    `long:"poll-interval" env:"POLL_INTERVAL" default:"60" description:"Scheduler polling interval in seconds"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	SeedFile     string `long:"seed-file" env:"SEED_FILE" default:"./users.yml" description:"YAML file with user profiles loaded at startup"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Sao_Paulo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if _, err := language.Parse(raw.Language); err != nil {
		return nil, fmt.Errorf("invalid search language '%s': %w", raw.Language, err)
	}

	cfg := &Cfg{
		DBPath:                raw.DBPath,
		NewsProvider:          raw.NewsProvider,
		NewsAPIURL:            raw.NewsAPIURL,
		RSSSearchURL:          raw.RSSSearchURL,
		Language:              raw.Language,
		LookbackDays:          raw.LookbackDays,
		PageSize:              raw.PageSize,
		ExtractContent:        raw.ExtractContent,
		WhatsAppAPIURL:        raw.WhatsAppAPIURL,
		WhatsAppAccessToken:   raw.WhatsAppAccessToken,
		WhatsAppPhoneNumberID: raw.WhatsAppPhoneNumberID,
		DefaultCountryCode:    raw.DefaultCountryCode,
		SMTPHost:              raw.SMTPHost,
		SMTPPort:              raw.SMTPPort,
		EmailAddress:          raw.EmailAddress,
		EmailPassword:         raw.EmailPassword,
		DailyTime:             raw.DailyTime,
		PollInterval:          raw.PollInterval,
		Port:                  raw.Port,
		APIAccessKey:          raw.APIAccessKey,
		SeedFile:              raw.SeedFile,
		UserAgent:             raw.UserAgent,
		Timezone:              raw.Timezone,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Used by tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
