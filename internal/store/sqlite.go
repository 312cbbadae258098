package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT UNIQUE NOT NULL,
			name TEXT,
			email TEXT,
			company TEXT,
			role TEXT,
			pain_points TEXT,
			interests TEXT,
			qualification_score REAL DEFAULT 0.0,
			conversation_summary TEXT,
			recommended_solutions TEXT,
			status TEXT DEFAULT 'new',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_session_id ON leads(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_session_id ON conversations(session_id)`,
		`CREATE TABLE IF NOT EXISTS conversation_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT UNIQUE NOT NULL,
			summary TEXT NOT NULL,
			intents TEXT,
			duration_minutes REAL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			lead_id INTEGER,
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (lead_id) REFERENCES leads (id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_lead_id ON notifications(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_is_read ON notifications(is_read)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveLead upserts a lead by session id and records a new_lead notification.
func (s *SQLiteStore) SaveLead(ctx context.Context, lead *domain.Lead) (int64, error) {
	painPoints := marshalList(lead.PainPoints)
	interests := marshalList(lead.Interests)
	solutions := marshalList(lead.RecommendedSolutions)

	status := lead.Status
	if status == "" {
		status = domain.LeadStatusNew
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO leads (
			session_id, name, email, company, role, pain_points, interests,
			qualification_score, conversation_summary, recommended_solutions, status, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.SessionID, lead.Name, lead.Email, lead.Company, lead.Role,
		painPoints, interests, lead.QualificationScore, lead.ConversationSummary,
		solutions, status, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to save lead: %w", err)
	}

	leadID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read lead id: %w", err)
	}

	name := lead.Name
	if name == "" {
		name = "Sem nome"
	}
	email := lead.Email
	if email == "" {
		email = "Sem email"
	}
	if err := s.createNotification(ctx, leadID, "new_lead",
		fmt.Sprintf("Novo lead: %s (%s)", name, email)); err != nil {
		return leadID, err
	}

	return leadID, nil
}

// GetLead retrieves a lead by session id, or nil when absent.
func (s *SQLiteStore) GetLead(ctx context.Context, sessionID string) (*domain.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, name, email, company, role, pain_points, interests,
			qualification_score, conversation_summary, recommended_solutions, status,
			created_at, updated_at
		 FROM leads WHERE session_id = ?`, sessionID)

	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListLeads returns leads newest first, optionally filtered by status.
func (s *SQLiteStore) ListLeads(ctx context.Context, status string, limit int) ([]domain.Lead, error) {
	query := `SELECT id, session_id, name, email, company, role, pain_points, interests,
			qualification_score, conversation_summary, recommended_solutions, status,
			created_at, updated_at
		 FROM leads`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// UpdateLeadStatus changes a lead's status and records a status notification.
func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, sessionID, status string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE session_id = ?`,
		status, time.Now(), sessionID); err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}

	lead, err := s.GetLead(ctx, sessionID)
	if err != nil || lead == nil {
		return err
	}
	name := lead.Name
	if name == "" {
		name = "Sem nome"
	}
	return s.createNotification(ctx, lead.ID, "status_change",
		fmt.Sprintf("Lead %s mudou para status: %s", name, status))
}

// SaveConversation appends the transcript messages for a session.
func (s *SQLiteStore) SaveConversation(ctx context.Context, sessionID string, messages []domain.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range messages {
		metadata, _ := json.Marshal(m.Metadata)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (session_id, role, content, metadata, timestamp) VALUES (?, ?, ?, ?, ?)`,
			sessionID, string(m.Role), m.Content, string(metadata), m.Timestamp); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
	}

	return tx.Commit()
}

// GetConversationMessages retrieves a saved transcript in timestamp order.
func (s *SQLiteStore) GetConversationMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, metadata, timestamp FROM conversations WHERE session_id = ? ORDER BY timestamp ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var role string
		var metadata sql.NullString
		if err := rows.Scan(&role, &m.Content, &metadata, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(role)
		if metadata.Valid && metadata.String != "" && metadata.String != "null" {
			_ = json.Unmarshal([]byte(metadata.String), &m.Metadata)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SaveConversationSummary upserts the summary-only record for a session.
func (s *SQLiteStore) SaveConversationSummary(ctx context.Context, summary *domain.ConversationSummary) error {
	intents := marshalList(summary.Intents)
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversation_summaries (session_id, summary, intents, duration_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		summary.SessionID, summary.Summary, intents, summary.DurationMinutes, time.Now()); err != nil {
		return fmt.Errorf("failed to save conversation summary: %w", err)
	}
	return nil
}

// GetConversationSummary retrieves a summary by session id, or nil when absent.
func (s *SQLiteStore) GetConversationSummary(ctx context.Context, sessionID string) (*domain.ConversationSummary, error) {
	var cs domain.ConversationSummary
	var intents sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, summary, intents, duration_minutes, created_at
		 FROM conversation_summaries WHERE session_id = ?`, sessionID).
		Scan(&cs.ID, &cs.SessionID, &cs.Summary, &intents, &cs.DurationMinutes, &cs.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation summary: %w", err)
	}
	cs.Intents = unmarshalList(intents)
	return &cs, nil
}

// ListConversationSummaries returns summaries newest first with pagination.
func (s *SQLiteStore) ListConversationSummaries(ctx context.Context, limit, offset int) ([]domain.ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, summary, intents, duration_minutes, created_at
		 FROM conversation_summaries ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ConversationSummary
	for rows.Next() {
		var cs domain.ConversationSummary
		var intents sql.NullString
		if err := rows.Scan(&cs.ID, &cs.SessionID, &cs.Summary, &intents, &cs.DurationMinutes, &cs.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}
		cs.Intents = unmarshalList(intents)
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}

// ListNotifications returns dashboard notifications newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `SELECT id, lead_id, type, message, is_read, created_at FROM notifications`
	args := []any{}
	if unreadOnly {
		query += " WHERE is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var leadID sql.NullInt64
		if err := rows.Scan(&n.ID, &leadID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.LeadID = leadID.Int64
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags a notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *SQLiteStore) createNotification(ctx context.Context, leadID int64, notificationType, message string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (lead_id, type, message) VALUES (?, ?, ?)`,
		leadID, notificationType, message); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var lead domain.Lead
	var name, email, company, role, summary sql.NullString
	var painPoints, interests, solutions sql.NullString
	if err := row.Scan(&lead.ID, &lead.SessionID, &name, &email, &company, &role,
		&painPoints, &interests, &lead.QualificationScore, &summary, &solutions,
		&lead.Status, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return nil, err
	}
	lead.Name = name.String
	lead.Email = email.String
	lead.Company = company.String
	lead.Role = role.String
	lead.ConversationSummary = summary.String
	lead.PainPoints = unmarshalList(painPoints)
	lead.Interests = unmarshalList(interests)
	lead.RecommendedSolutions = unmarshalList(solutions)
	return &lead, nil
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func unmarshalList(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
