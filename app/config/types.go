package config

// SeedFile represents a user-profile seed file
type SeedFile struct {
	Users []UserProfile `yaml:"users"`
}

// UserProfile contains one user's digest configuration
type UserProfile struct {
	Username   string             `yaml:"username"`
	NewsAPIKey string             `yaml:"news_api_key"`
	IsAdmin    bool               `yaml:"is_admin"`
	Topics     []TopicProfile     `yaml:"topics"`
	Sources    []SourceProfile    `yaml:"sources"`
	Recipients []RecipientProfile `yaml:"recipients"`
}

// TopicProfile is an interest or avoid keyword
type TopicProfile struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Avoid    bool   `yaml:"avoid"`
}

// SourceProfile is a preferred or avoided publication
type SourceProfile struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Avoid    bool   `yaml:"avoid"`
}

// RecipientProfile is a delivery destination
type RecipientProfile struct {
	Kind    string `yaml:"kind"`
	Address string `yaml:"address"`
}
