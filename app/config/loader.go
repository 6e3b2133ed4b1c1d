package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmcruz/news-digest/app/database"
)

// Loader handles loading and validation of user seed profiles
type Loader struct {
	path string
}

// NewLoader creates a new seed-profile loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the seed file. A missing file is not an error: it returns
// an empty seed so the application can start with whatever the database
// already holds.
func (l *Loader) Load() (*SeedFile, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return &SeedFile{}, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range seed.Users {
		l.setDefaults(&seed.Users[i])
		if err := l.validate(&seed.Users[i]); err != nil {
			return nil, fmt.Errorf("invalid profile '%s': %w", seed.Users[i].Username, err)
		}
	}

	return &seed, nil
}

// Apply upserts every profile into the database, replacing the user's
// topics, sources and recipients with the seeded ones.
func (l *Loader) Apply(seed *SeedFile, repo database.UserRepository) (int, error) {
	applied := 0
	for _, profile := range seed.Users {
		userID, err := repo.UpsertUser(profile.Username, "", profile.NewsAPIKey, profile.IsAdmin)
		if err != nil {
			return applied, fmt.Errorf("failed to upsert user '%s': %w", profile.Username, err)
		}

		topics := make([]database.Topic, 0, len(profile.Topics))
		for _, t := range profile.Topics {
			topics = append(topics, database.Topic{Name: t.Name, Priority: t.Priority, Avoid: t.Avoid})
		}
		if err := repo.ReplaceTopics(userID, topics); err != nil {
			return applied, fmt.Errorf("failed to seed topics for '%s': %w", profile.Username, err)
		}

		sources := make([]database.Source, 0, len(profile.Sources))
		for _, s := range profile.Sources {
			sources = append(sources, database.Source{Name: s.Name, Priority: s.Priority, Avoid: s.Avoid})
		}
		if err := repo.ReplaceSources(userID, sources); err != nil {
			return applied, fmt.Errorf("failed to seed sources for '%s': %w", profile.Username, err)
		}

		recipients := make([]database.Recipient, 0, len(profile.Recipients))
		for _, r := range profile.Recipients {
			recipients = append(recipients, database.Recipient{Kind: r.Kind, Address: r.Address})
		}
		if err := repo.ReplaceRecipients(userID, recipients); err != nil {
			return applied, fmt.Errorf("failed to seed recipients for '%s': %w", profile.Username, err)
		}

		applied++
	}

	return applied, nil
}

// setDefaults applies default values to a profile
func (l *Loader) setDefaults(profile *UserProfile) {
	for i := range profile.Topics {
		if profile.Topics[i].Priority == 0 {
			profile.Topics[i].Priority = 3
		}
	}
	for i := range profile.Sources {
		if profile.Sources[i].Priority == 0 {
			profile.Sources[i].Priority = 3
		}
	}
}

// validate validates a profile
func (l *Loader) validate(profile *UserProfile) error {
	if profile.Username == "" {
		return fmt.Errorf("username is required")
	}

	for i, t := range profile.Topics {
		if t.Name == "" {
			return fmt.Errorf("topic at index %d has no name", i)
		}
		if t.Priority < 1 || t.Priority > 5 {
			return fmt.Errorf("topic '%s' priority must be between 1 and 5", t.Name)
		}
	}

	for i, s := range profile.Sources {
		if s.Name == "" {
			return fmt.Errorf("source at index %d has no name", i)
		}
		if s.Priority < 1 || s.Priority > 5 {
			return fmt.Errorf("source '%s' priority must be between 1 and 5", s.Name)
		}
	}

	for i, r := range profile.Recipients {
		if r.Kind != database.RecipientWhatsApp && r.Kind != database.RecipientEmail {
			return fmt.Errorf("recipient at index %d has invalid kind: %s", i, r.Kind)
		}
		if r.Address == "" {
			return fmt.Errorf("recipient at index %d has no address", i)
		}
	}

	return nil
}
