package database

import (
	"time"
)

type User struct {
	ID         int64
	Username   string
	NewsAPIKey string
	IsAdmin    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Topics     []Topic
	Sources    []Source
	Recipients []Recipient
}

// Topic is a user-defined interest keyword. Priority ranges 1-5 with 1 the
// most important. Topics with Avoid set are used for exclusion only.
type Topic struct {
	ID       int64
	UserID   int64
	Name     string
	Priority int
	Avoid    bool
}

// Source is a publication preference. Non-avoided sources narrow the
// search; avoided sources are excluded from results after fetching.
type Source struct {
	ID       int64
	UserID   int64
	Name     string
	Priority int
	Avoid    bool
}

const (
	RecipientWhatsApp = "whatsapp"
	RecipientEmail    = "email"
)

type Recipient struct {
	ID      int64
	UserID  int64
	Kind    string
	Address string
}

// InterestTopics returns the names of non-avoided topics.
func (u *User) InterestTopics() []string {
	names := make([]string, 0, len(u.Topics))
	for _, t := range u.Topics {
		if !t.Avoid {
			names = append(names, t.Name)
		}
	}
	return names
}

// AvoidTopics returns the names of avoided topics.
func (u *User) AvoidTopics() []string {
	var names []string
	for _, t := range u.Topics {
		if t.Avoid {
			names = append(names, t.Name)
		}
	}
	return names
}

// TopicPriorities maps non-avoided topic names to their priority.
func (u *User) TopicPriorities() map[string]int {
	priorities := make(map[string]int, len(u.Topics))
	for _, t := range u.Topics {
		if !t.Avoid {
			priorities[t.Name] = t.Priority
		}
	}
	return priorities
}

// PreferredSources returns the names of non-avoided sources.
func (u *User) PreferredSources() []string {
	var names []string
	for _, s := range u.Sources {
		if !s.Avoid {
			names = append(names, s.Name)
		}
	}
	return names
}

// AvoidSources returns the names of avoided sources.
func (u *User) AvoidSources() []string {
	var names []string
	for _, s := range u.Sources {
		if s.Avoid {
			names = append(names, s.Name)
		}
	}
	return names
}
