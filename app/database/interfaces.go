package database

type UserRepository interface {
	GetUserByID(id int64) (*User, error)
	GetUserByUsername(username string) (*User, error)
	GetUsersWithNewsAPIKey() ([]User, error)
	GetUserCount() (int, error)

	UpsertUser(username, passwordHash, newsAPIKey string, isAdmin bool) (int64, error)
	ReplaceTopics(userID int64, topics []Topic) error
	ReplaceSources(userID int64, sources []Source) error
	ReplaceRecipients(userID int64, recipients []Recipient) error
	DeleteUser(id int64) error
}
