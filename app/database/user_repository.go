package database

import (
	"database/sql"
	"fmt"
)

// UserRepositoryImpl handles database operations for users and their
// owned topics, sources and recipients.
type UserRepositoryImpl struct {
	db *DB
}

var _ UserRepository = (*UserRepositoryImpl)(nil)

func NewUserRepository(db *DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) GetUserByID(id int64) (*User, error) {
	return r.getUser("SELECT id, username, news_api_key, is_admin, created_at, updated_at FROM users WHERE id = ?", id)
}

func (r *UserRepositoryImpl) GetUserByUsername(username string) (*User, error) {
	return r.getUser("SELECT id, username, news_api_key, is_admin, created_at, updated_at FROM users WHERE username = ?", username)
}

func (r *UserRepositoryImpl) getUser(query string, arg interface{}) (*User, error) {
	var user User
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID, &user.Username, &user.NewsAPIKey, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := r.loadOwned(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUsersWithNewsAPIKey returns every user with a non-empty news search
// credential, with their topics, sources and recipients hydrated.
func (r *UserRepositoryImpl) GetUsersWithNewsAPIKey() ([]User, error) {
	rows, err := r.db.Query(`
		SELECT id, username, news_api_key, is_admin, created_at, updated_at
		FROM users
		WHERE news_api_key != ''
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		err := rows.Scan(&user.ID, &user.Username, &user.NewsAPIKey,
			&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	for i := range users {
		if err := r.loadOwned(&users[i]); err != nil {
			return nil, err
		}
	}

	return users, nil
}

func (r *UserRepositoryImpl) GetUserCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepositoryImpl) UpsertUser(username, passwordHash, newsAPIKey string, isAdmin bool) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO users (username, password_hash, news_api_key, is_admin)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			news_api_key = excluded.news_api_key,
			is_admin = excluded.is_admin,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, username, passwordHash, newsAPIKey, isAdmin).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert user: %w", err)
	}
	return id, nil
}

func (r *UserRepositoryImpl) ReplaceTopics(userID int64, topics []Topic) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM topics WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear topics: %w", err)
	}
	for _, t := range topics {
		_, err := tx.Exec(
			"INSERT INTO topics (user_id, name, priority, avoid) VALUES (?, ?, ?, ?)",
			userID, t.Name, t.Priority, t.Avoid)
		if err != nil {
			return fmt.Errorf("failed to insert topic '%s': %w", t.Name, err)
		}
	}

	return tx.Commit()
}

func (r *UserRepositoryImpl) ReplaceSources(userID int64, sources []Source) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sources WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear sources: %w", err)
	}
	for _, s := range sources {
		_, err := tx.Exec(
			"INSERT INTO sources (user_id, name, priority, avoid) VALUES (?, ?, ?, ?)",
			userID, s.Name, s.Priority, s.Avoid)
		if err != nil {
			return fmt.Errorf("failed to insert source '%s': %w", s.Name, err)
		}
	}

	return tx.Commit()
}

func (r *UserRepositoryImpl) ReplaceRecipients(userID int64, recipients []Recipient) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM recipients WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear recipients: %w", err)
	}
	for _, rec := range recipients {
		_, err := tx.Exec(
			"INSERT INTO recipients (user_id, kind, address) VALUES (?, ?, ?)",
			userID, rec.Kind, rec.Address)
		if err != nil {
			return fmt.Errorf("failed to insert recipient '%s': %w", rec.Address, err)
		}
	}

	return tx.Commit()
}

// DeleteUser removes a user. Owned topics, sources and recipients are
// removed by the schema's cascade rules.
func (r *UserRepositoryImpl) DeleteUser(id int64) error {
	_, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepositoryImpl) loadOwned(user *User) error {
	topicRows, err := r.db.Query(
		"SELECT id, user_id, name, priority, avoid FROM topics WHERE user_id = ? ORDER BY id", user.ID)
	if err != nil {
		return fmt.Errorf("failed to query topics: %w", err)
	}
	defer topicRows.Close()

	user.Topics = nil
	for topicRows.Next() {
		var t Topic
		if err := topicRows.Scan(&t.ID, &t.UserID, &t.Name, &t.Priority, &t.Avoid); err != nil {
			return fmt.Errorf("failed to scan topic: %w", err)
		}
		user.Topics = append(user.Topics, t)
	}
	if err := topicRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate topics: %w", err)
	}

	sourceRows, err := r.db.Query(
		"SELECT id, user_id, name, priority, avoid FROM sources WHERE user_id = ? ORDER BY id", user.ID)
	if err != nil {
		return fmt.Errorf("failed to query sources: %w", err)
	}
	defer sourceRows.Close()

	user.Sources = nil
	for sourceRows.Next() {
		var s Source
		if err := sourceRows.Scan(&s.ID, &s.UserID, &s.Name, &s.Priority, &s.Avoid); err != nil {
			return fmt.Errorf("failed to scan source: %w", err)
		}
		user.Sources = append(user.Sources, s)
	}
	if err := sourceRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate sources: %w", err)
	}

	recipientRows, err := r.db.Query(
		"SELECT id, user_id, kind, address FROM recipients WHERE user_id = ? ORDER BY id", user.ID)
	if err != nil {
		return fmt.Errorf("failed to query recipients: %w", err)
	}
	defer recipientRows.Close()

	user.Recipients = nil
	for recipientRows.Next() {
		var rec Recipient
		if err := recipientRows.Scan(&rec.ID, &rec.UserID, &rec.Kind, &rec.Address); err != nil {
			return fmt.Errorf("failed to scan recipient: %w", err)
		}
		user.Recipients = append(user.Recipients, rec)
	}
	if err := recipientRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate recipients: %w", err)
	}

	return nil
}
