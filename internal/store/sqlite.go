package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospector/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	query        TEXT NOT NULL DEFAULT '',
	search_type  TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT 'frontend',
	status       TEXT NOT NULL DEFAULT 'pending',
	priority     INTEGER NOT NULL DEFAULT 0,
	progress     TEXT NOT NULL DEFAULT '{}',
	results      TEXT,
	result_count INTEGER NOT NULL DEFAULT 0,
	retry_count  INTEGER NOT NULL DEFAULT 0,
	max_retries  INTEGER NOT NULL DEFAULT 3,
	error        TEXT NOT NULL DEFAULT '',
	metadata     TEXT,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	started_at   DATETIME,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS companies (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	job_id      TEXT NOT NULL,
	list_id     TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	website     TEXT NOT NULL DEFAULT '',
	industry    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	job_id             TEXT NOT NULL DEFAULT '',
	name               TEXT NOT NULL,
	role               TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	email_confidence   REAL NOT NULL DEFAULT 0,
	probability        REAL NOT NULL DEFAULT 0,
	completed_searches TEXT NOT NULL DEFAULT '[]',
	last_validated     DATETIME,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS credits (
	user_id TEXT PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_user ON jobs(user_id);
CREATE INDEX IF NOT EXISTS idx_companies_user ON companies(user_id);
CREATE INDEX IF NOT EXISTS idx_companies_job ON companies(job_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ----- jobs -----

const jobColumns = `id, user_id, query, search_type, source, status, priority,
	progress, results, result_count, retry_count, max_retries, error, metadata,
	created_at, updated_at, started_at, completed_at`

func (s *SQLiteStore) CreateJob(ctx context.Context, job *model.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	if job.MaxRetries <= 0 {
		job.MaxRetries = model.DefaultMaxRetries
	}

	progress, err := json.Marshal(job.Progress)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal progress")
	}
	metadata, err := marshalNullable(job.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metadata")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, user_id, query, search_type, source, status, priority,
			progress, result_count, retry_count, max_retries, error, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, '', ?, ?, ?)`,
		job.ID, job.UserID, job.Query, string(job.SearchType), string(job.Source),
		string(job.Status), job.Priority, string(progress), job.MaxRetries,
		metadata, job.CreatedAt, job.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert job")
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, jobID)
	job, err := scanJob(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get job %s", jobID)
	}
	return job, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, userID string, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (s *SQLiteStore) ClaimJob(ctx context.Context, jobID string) (*model.Job, bool, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, started_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(model.JobStatusProcessing), now, now, jobID, string(model.JobStatusPending),
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: claim job %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: claim rows affected")
	}
	if n == 0 {
		return nil, false, nil
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *SQLiteStore) UpdateJobProgress(ctx context.Context, jobID string, p model.Progress) error {
	progress, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal progress")
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`,
		string(progress), time.Now().UTC(), jobID,
	)
	return eris.Wrapf(err, "sqlite: update progress %s", jobID)
}

func (s *SQLiteStore) CompleteJob(ctx context.Context, jobID string, results *model.JobResults, resultCount int) error {
	payload, err := marshalNullable(results)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal results")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, results = ?, result_count = ?, error = '', completed_at = ?, updated_at = ? WHERE id = ?`,
		string(model.JobStatusCompleted), payload, resultCount, now, now, jobID,
	)
	return eris.Wrapf(err, "sqlite: complete job %s", jobID)
}

func (s *SQLiteStore) FailJob(ctx context.Context, jobID string, errMsg string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		string(model.JobStatusFailed), errMsg, now, now, jobID,
	)
	return eris.Wrapf(err, "sqlite: fail job %s", jobID)
}

func (s *SQLiteStore) RequeueJob(ctx context.Context, jobID string, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, retry_count = retry_count + 1, error = ?, updated_at = ? WHERE id = ?`,
		string(model.JobStatusPending), errMsg, time.Now().UTC(), jobID,
	)
	return eris.Wrapf(err, "sqlite: requeue job %s", jobID)
}

func (s *SQLiteStore) CancelPendingJob(ctx context.Context, jobID string, reason string) (bool, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, completed_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(model.JobStatusFailed), reason, now, now, jobID, string(model.JobStatusPending),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: cancel job %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: cancel rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) NextPendingJob(ctx context.Context) (*model.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY priority DESC, created_at ASC LIMIT 1`,
		string(model.JobStatusPending),
	)
	job, err := scanJob(row)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: next pending job")
	}
	return job, nil
}

func (s *SQLiteStore) ResetStuckJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE status = ? AND started_at < ?`,
		string(model.JobStatusPending), time.Now().UTC(), string(model.JobStatusProcessing), cutoff,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: reset stuck jobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: reset rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) DeleteOldJobs(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE status IN (?, ?) AND updated_at < ?`,
		string(model.JobStatusCompleted), string(model.JobStatusFailed), cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete old jobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) ListFailedJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? AND retry_count < max_retries ORDER BY updated_at ASC`,
		string(model.JobStatusFailed),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list failed jobs")
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ----- companies -----

const companyColumns = `id, user_id, job_id, list_id, name, website, industry, location, description, created_at`

func (s *SQLiteStore) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, user_id, job_id, list_id, name, website, industry, location, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.JobID, c.ListID, c.Name, c.Website, c.Industry, c.Location, c.Description, c.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert company %s", c.Name)
}

func (s *SQLiteStore) CreateCompanies(ctx context.Context, companies []*model.Company) error {
	for _, c := range companies {
		if err := s.CreateCompany(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListCompaniesByUser(ctx context.Context, userID string) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (s *SQLiteStore) GetCompaniesByIDs(ctx context.Context, ids []string) ([]model.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get companies by ids")
	}
	defer rows.Close()
	return collectCompanies(rows)
}

// ----- contacts -----

const contactColumns = `id, company_id, job_id, name, role, email, email_confidence,
	probability, completed_searches, last_validated, created_at, updated_at`

func (s *SQLiteStore) ListContactsByCompany(ctx context.Context, companyID string) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE company_id = ? ORDER BY probability DESC, created_at ASC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func (s *SQLiteStore) InsertContact(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	tags, err := json.Marshal(emptyIfNil(c.CompletedSearches))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal tags")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, company_id, job_id, name, role, email, email_confidence,
			probability, completed_searches, last_validated, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CompanyID, c.JobID, c.Name, c.Role, c.Email, c.EmailConfidence,
		c.Probability, string(tags), nullableTime(c.LastValidated), c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert contact %s", c.Name)
}

func (s *SQLiteStore) UpdateContact(ctx context.Context, c *model.Contact) error {
	tags, err := json.Marshal(emptyIfNil(c.CompletedSearches))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal tags")
	}
	c.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, role = ?, email = ?, email_confidence = ?,
			probability = ?, completed_searches = ?, last_validated = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Role, c.Email, c.EmailConfidence, c.Probability, string(tags),
		nullableTime(c.LastValidated), c.UpdatedAt, c.ID,
	)
	return eris.Wrapf(err, "sqlite: update contact %s", c.ID)
}

func (s *SQLiteStore) SetContactEmail(ctx context.Context, contactID, email, source string, confidence float64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET email = ?, email_confidence = ?, last_validated = ?, updated_at = ?
		 WHERE id = ? AND email = ''`,
		email, confidence, now, now, contactID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set contact email %s", contactID)
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		// Already has an email: first writer won, drop this result.
		return nil
	}
	return s.TagContactSearched(ctx, contactID, emailSearchTag(source))
}

func (s *SQLiteStore) TagContactSearched(ctx context.Context, contactID, tag string) error {
	// Read-merge-write is safe here: only one job touches a contact at a time.
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT completed_searches FROM contacts WHERE id = ?`, contactID,
	).Scan(&raw)
	if err != nil {
		return eris.Wrapf(err, "sqlite: read tags %s", contactID)
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return eris.Wrapf(err, "sqlite: parse tags %s", contactID)
	}
	for _, t := range tags {
		if t == tag {
			return nil
		}
	}
	tags = append(tags, tag)

	updated, err := json.Marshal(tags)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal tags")
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE contacts SET completed_searches = ?, updated_at = ? WHERE id = ?`,
		string(updated), time.Now().UTC(), contactID,
	)
	return eris.Wrapf(err, "sqlite: write tags %s", contactID)
}

// ----- credits -----

func (s *SQLiteStore) GrantCredits(ctx context.Context, userID string, amount int) (int, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credits (user_id, balance) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET balance = balance + excluded.balance`,
		userID, amount,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: grant credits %s", userID)
	}
	var balance int
	if err := s.db.QueryRowContext(ctx, `SELECT balance FROM credits WHERE user_id = ?`, userID).Scan(&balance); err != nil {
		return 0, eris.Wrap(err, "sqlite: read balance")
	}
	return balance, nil
}

func (s *SQLiteStore) DeductCredits(ctx context.Context, userID string, amount int) (int, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE credits SET balance = balance - ? WHERE user_id = ? AND balance >= ?`,
		amount, userID, amount,
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: deduct credits %s", userID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: deduct rows affected")
	}

	var balance int
	err = s.db.QueryRowContext(ctx, `SELECT balance FROM credits WHERE user_id = ?`, userID).Scan(&balance)
	if eris.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: read balance")
	}
	return balance, n > 0, nil
}

// ----- scanning helpers -----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		job         model.Job
		searchType  string
		source      string
		status      string
		progressRaw string
		resultsRaw  sql.NullString
		metadataRaw sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.UserID, &job.Query, &searchType, &source, &status, &job.Priority,
		&progressRaw, &resultsRaw, &job.ResultCount, &job.RetryCount, &job.MaxRetries,
		&job.Error, &metadataRaw, &job.CreatedAt, &job.UpdatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	job.SearchType = model.SearchType(searchType)
	job.Source = model.JobSource(source)
	job.Status = model.JobStatus(status)
	if err := json.Unmarshal([]byte(progressRaw), &job.Progress); err != nil {
		return nil, eris.Wrap(err, "parse progress")
	}
	if resultsRaw.Valid && resultsRaw.String != "" {
		job.Results = &model.JobResults{}
		if err := json.Unmarshal([]byte(resultsRaw.String), job.Results); err != nil {
			return nil, eris.Wrap(err, "parse results")
		}
	}
	if metadataRaw.Valid && metadataRaw.String != "" {
		if err := json.Unmarshal([]byte(metadataRaw.String), &job.Metadata); err != nil {
			return nil, eris.Wrap(err, "parse metadata")
		}
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]model.Job, error) {
	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "iterate jobs")
}

func scanCompany(row rowScanner) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.UserID, &c.JobID, &c.ListID, &c.Name, &c.Website,
		&c.Industry, &c.Location, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCompanies(rows *sql.Rows) ([]model.Company, error) {
	var companies []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan company")
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "iterate companies")
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var (
		c             model.Contact
		tagsRaw       string
		lastValidated sql.NullTime
	)
	err := row.Scan(&c.ID, &c.CompanyID, &c.JobID, &c.Name, &c.Role, &c.Email,
		&c.EmailConfidence, &c.Probability, &tagsRaw, &lastValidated, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsRaw), &c.CompletedSearches); err != nil {
		return nil, eris.Wrap(err, "parse tags")
	}
	if lastValidated.Valid {
		t := lastValidated.Time
		c.LastValidated = &t
	}
	return &c, nil
}

func marshalNullable(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case *model.JobResults:
		if val == nil {
			return nil, nil
		}
	case map[string]any:
		if len(val) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
