package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/db"
	"github.com/sells-group/prospector/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot-path job queue operations.
var preparedStatements = map[string]string{
	"claim_job":        `UPDATE jobs SET status = $1, started_at = $2, updated_at = $3 WHERE id = $4 AND status = $5`,
	"update_progress":  `UPDATE jobs SET progress = $1, updated_at = $2 WHERE id = $3`,
	"next_pending_job": `SELECT ` + jobColumnsPG + ` FROM jobs WHERE status = $1 ORDER BY priority DESC, created_at ASC LIMIT 1`,
	"set_email":        `UPDATE contacts SET email = $1, email_confidence = $2, last_validated = $3, updated_at = $4 WHERE id = $5 AND email = ''`,
	"deduct_credits":   `UPDATE credits SET balance = balance - $1 WHERE user_id = $2 AND balance >= $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	query        TEXT NOT NULL DEFAULT '',
	search_type  TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT 'frontend',
	status       TEXT NOT NULL DEFAULT 'pending',
	priority     INTEGER NOT NULL DEFAULT 0,
	progress     JSONB NOT NULL DEFAULT '{}',
	results      JSONB,
	result_count INTEGER NOT NULL DEFAULT 0,
	retry_count  INTEGER NOT NULL DEFAULT 0,
	max_retries  INTEGER NOT NULL DEFAULT 3,
	error        TEXT NOT NULL DEFAULT '',
	metadata     JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at   TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
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
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	job_id             TEXT NOT NULL DEFAULT '',
	name               TEXT NOT NULL,
	role               TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	email_confidence   DOUBLE PRECISION NOT NULL DEFAULT 0,
	probability        DOUBLE PRECISION NOT NULL DEFAULT 0,
	completed_searches JSONB NOT NULL DEFAULT '[]',
	last_validated     TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS credits (
	user_id TEXT PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_user ON jobs(user_id);
CREATE INDEX IF NOT EXISTS idx_jobs_pending ON jobs(priority DESC, created_at ASC) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_companies_user ON companies(user_id);
CREATE INDEX IF NOT EXISTS idx_companies_job ON companies(job_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// ----- jobs -----

const jobColumnsPG = `id, user_id, query, search_type, source, status, priority,
	progress, results, result_count, retry_count, max_retries, error, metadata,
	created_at, updated_at, started_at, completed_at`

func (s *PostgresStore) CreateJob(ctx context.Context, job *model.Job) error {
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
		return eris.Wrap(err, "postgres: marshal progress")
	}
	metadata, err := marshalNullable(job.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metadata")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, user_id, query, search_type, source, status, priority,
			progress, max_retries, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID, job.UserID, job.Query, string(job.SearchType), string(job.Source),
		string(job.Status), job.Priority, progress, job.MaxRetries,
		metadata, job.CreatedAt, job.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert job")
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumnsPG+` FROM jobs WHERE id = $1`, jobID)
	job, err := scanJobPG(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", jobID)
	}
	return job, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, userID string, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumnsPG+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()
	return collectJobsPG(rows)
}

func (s *PostgresStore) ClaimJob(ctx context.Context, jobID string) (*model.Job, bool, error) {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, started_at = $2, updated_at = $3 WHERE id = $4 AND status = $5`,
		string(model.JobStatusProcessing), now, now, jobID, string(model.JobStatusPending),
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: claim job %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return nil, false, nil
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *PostgresStore) UpdateJobProgress(ctx context.Context, jobID string, p model.Progress) error {
	progress, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal progress")
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE jobs SET progress = $1, updated_at = $2 WHERE id = $3`,
		progress, time.Now().UTC(), jobID,
	)
	return eris.Wrapf(err, "postgres: update progress %s", jobID)
}

func (s *PostgresStore) CompleteJob(ctx context.Context, jobID string, results *model.JobResults, resultCount int) error {
	payload, err := marshalNullable(results)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal results")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, results = $2, result_count = $3, error = '', completed_at = $4, updated_at = $5 WHERE id = $6`,
		string(model.JobStatusCompleted), payload, resultCount, now, now, jobID,
	)
	return eris.Wrapf(err, "postgres: complete job %s", jobID)
}

func (s *PostgresStore) FailJob(ctx context.Context, jobID string, errMsg string) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, error = $2, completed_at = $3, updated_at = $4 WHERE id = $5`,
		string(model.JobStatusFailed), errMsg, now, now, jobID,
	)
	return eris.Wrapf(err, "postgres: fail job %s", jobID)
}

func (s *PostgresStore) RequeueJob(ctx context.Context, jobID string, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, retry_count = retry_count + 1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.JobStatusPending), errMsg, time.Now().UTC(), jobID,
	)
	return eris.Wrapf(err, "postgres: requeue job %s", jobID)
}

func (s *PostgresStore) CancelPendingJob(ctx context.Context, jobID string, reason string) (bool, error) {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, error = $2, completed_at = $3, updated_at = $4 WHERE id = $5 AND status = $6`,
		string(model.JobStatusFailed), reason, now, now, jobID, string(model.JobStatusPending),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: cancel job %s", jobID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) NextPendingJob(ctx context.Context) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumnsPG+` FROM jobs WHERE status = $1 ORDER BY priority DESC, created_at ASC LIMIT 1`,
		string(model.JobStatusPending),
	)
	job, err := scanJobPG(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: next pending job")
	}
	return job, nil
}

func (s *PostgresStore) ResetStuckJobs(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE status = $3 AND started_at < $4`,
		string(model.JobStatusPending), time.Now().UTC(), string(model.JobStatusProcessing), cutoff,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: reset stuck jobs")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteOldJobs(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM jobs WHERE status IN ($1, $2) AND updated_at < $3`,
		string(model.JobStatusCompleted), string(model.JobStatusFailed), cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete old jobs")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListFailedJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumnsPG+` FROM jobs WHERE status = $1 AND retry_count < max_retries ORDER BY updated_at ASC`,
		string(model.JobStatusFailed),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list failed jobs")
	}
	defer rows.Close()
	return collectJobsPG(rows)
}

// ----- companies -----

var companyCopyColumns = []string{
	"id", "user_id", "job_id", "list_id", "name",
	"website", "industry", "location", "description", "created_at",
}

func (s *PostgresStore) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, user_id, job_id, list_id, name, website, industry, location, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.UserID, c.JobID, c.ListID, c.Name, c.Website, c.Industry, c.Location, c.Description, c.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert company %s", c.Name)
}

func (s *PostgresStore) CreateCompanies(ctx context.Context, companies []*model.Company) error {
	if len(companies) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(companies))
	for _, c := range companies {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.CreatedAt = now
		rows = append(rows, []any{
			c.ID, c.UserID, c.JobID, c.ListID, c.Name,
			c.Website, c.Industry, c.Location, c.Description, c.CreatedAt,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "companies", companyCopyColumns, rows)
	return eris.Wrap(err, "postgres: bulk insert companies")
}

func (s *PostgresStore) ListCompaniesByUser(ctx context.Context, userID string) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_id, list_id, name, website, industry, location, description, created_at
		 FROM companies WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()
	return collectCompaniesPG(rows)
}

func (s *PostgresStore) GetCompaniesByIDs(ctx context.Context, ids []string) ([]model.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_id, list_id, name, website, industry, location, description, created_at
		 FROM companies WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get companies by ids")
	}
	defer rows.Close()
	return collectCompaniesPG(rows)
}

// ----- contacts -----

func (s *PostgresStore) ListContactsByCompany(ctx context.Context, companyID string) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, job_id, name, role, email, email_confidence,
			probability, completed_searches, last_validated, created_at, updated_at
		 FROM contacts WHERE company_id = $1 ORDER BY probability DESC, created_at ASC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContactPG(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: iterate contacts")
}

func (s *PostgresStore) InsertContact(ctx context.Context, c *model.Contact) error {
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
		return eris.Wrap(err, "postgres: marshal tags")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO contacts (id, company_id, job_id, name, role, email, email_confidence,
			probability, completed_searches, last_validated, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.CompanyID, c.JobID, c.Name, c.Role, c.Email, c.EmailConfidence,
		c.Probability, tags, nullableTime(c.LastValidated), c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert contact %s", c.Name)
}

func (s *PostgresStore) UpdateContact(ctx context.Context, c *model.Contact) error {
	tags, err := json.Marshal(emptyIfNil(c.CompletedSearches))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal tags")
	}
	c.UpdatedAt = time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`UPDATE contacts SET name = $1, role = $2, email = $3, email_confidence = $4,
			probability = $5, completed_searches = $6, last_validated = $7, updated_at = $8 WHERE id = $9`,
		c.Name, c.Role, c.Email, c.EmailConfidence, c.Probability, tags,
		nullableTime(c.LastValidated), c.UpdatedAt, c.ID,
	)
	return eris.Wrapf(err, "postgres: update contact %s", c.ID)
}

func (s *PostgresStore) SetContactEmail(ctx context.Context, contactID, email, source string, confidence float64) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET email = $1, email_confidence = $2, last_validated = $3, updated_at = $4
		 WHERE id = $5 AND email = ''`,
		email, confidence, now, now, contactID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set contact email %s", contactID)
	}
	if tag.RowsAffected() == 0 {
		// Already has an email: first writer won, drop this result.
		return nil
	}
	return s.TagContactSearched(ctx, contactID, emailSearchTag(source))
}

func (s *PostgresStore) TagContactSearched(ctx context.Context, contactID, tag string) error {
	tagJSON, err := json.Marshal(tag)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal tag")
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE contacts
		 SET completed_searches = completed_searches || $1::jsonb, updated_at = $2
		 WHERE id = $3 AND NOT completed_searches @> $1::jsonb`,
		string(tagJSON), time.Now().UTC(), contactID,
	)
	return eris.Wrapf(err, "postgres: tag contact %s", contactID)
}

// ----- credits -----

func (s *PostgresStore) GrantCredits(ctx context.Context, userID string, amount int) (int, error) {
	var balance int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO credits (user_id, balance) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET balance = credits.balance + excluded.balance
		 RETURNING balance`,
		userID, amount,
	).Scan(&balance)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: grant credits %s", userID)
	}
	return balance, nil
}

func (s *PostgresStore) DeductCredits(ctx context.Context, userID string, amount int) (int, bool, error) {
	var balance int
	err := s.pool.QueryRow(ctx,
		`UPDATE credits SET balance = balance - $1 WHERE user_id = $2 AND balance >= $1
		 RETURNING balance`,
		amount, userID,
	).Scan(&balance)
	if err == nil {
		return balance, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, eris.Wrapf(err, "postgres: deduct credits %s", userID)
	}

	// Either no such user or an insufficient balance; report the balance as-is.
	err = s.pool.QueryRow(ctx, `SELECT balance FROM credits WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "postgres: read balance")
	}
	return balance, false, nil
}

// ----- scanning helpers -----

func scanJobPG(row pgx.Row) (*model.Job, error) {
	var (
		job         model.Job
		searchType  string
		source      string
		status      string
		progressRaw []byte
		resultsRaw  []byte
		metadataRaw []byte
		startedAt   *time.Time
		completedAt *time.Time
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
	if err := json.Unmarshal(progressRaw, &job.Progress); err != nil {
		return nil, eris.Wrap(err, "parse progress")
	}
	if len(resultsRaw) > 0 {
		job.Results = &model.JobResults{}
		if err := json.Unmarshal(resultsRaw, job.Results); err != nil {
			return nil, eris.Wrap(err, "parse results")
		}
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &job.Metadata); err != nil {
			return nil, eris.Wrap(err, "parse metadata")
		}
	}
	job.StartedAt = startedAt
	job.CompletedAt = completedAt
	return &job, nil
}

func collectJobsPG(rows pgx.Rows) ([]model.Job, error) {
	var jobs []model.Job
	for rows.Next() {
		job, err := scanJobPG(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "iterate jobs")
}

func collectCompaniesPG(rows pgx.Rows) ([]model.Company, error) {
	var companies []model.Company
	for rows.Next() {
		var c model.Company
		err := rows.Scan(&c.ID, &c.UserID, &c.JobID, &c.ListID, &c.Name,
			&c.Website, &c.Industry, &c.Location, &c.Description, &c.CreatedAt)
		if err != nil {
			return nil, eris.Wrap(err, "scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "iterate companies")
}

func scanContactPG(row pgx.Row) (*model.Contact, error) {
	var (
		c             model.Contact
		tagsRaw       []byte
		lastValidated *time.Time
	)
	err := row.Scan(&c.ID, &c.CompanyID, &c.JobID, &c.Name, &c.Role, &c.Email,
		&c.EmailConfidence, &c.Probability, &tagsRaw, &lastValidated, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tagsRaw, &c.CompletedSearches); err != nil {
		return nil, eris.Wrap(err, "parse tags")
	}
	c.LastValidated = lastValidated
	return &c, nil
}
