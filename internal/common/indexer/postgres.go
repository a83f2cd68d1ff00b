package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresIndexer upserts notices into PostgreSQL keyed by id
type PostgresIndexer struct {
	db        *sql.DB
	tableName string
	log       *logger.Logger
}

// NewPostgresIndexer opens a connection, pings it and ensures the table exists
func NewPostgresIndexer(ctx context.Context, connStr string, tableName string, log *logger.Logger) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	indexer, err := NewPostgresIndexerFromDB(db, tableName, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Ensure table exists
	if err := indexer.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return indexer, nil
}

// NewPostgresIndexerFromDB wraps an existing handle
func NewPostgresIndexerFromDB(db *sql.DB, tableName string, log *logger.Logger) (*PostgresIndexer, error) {
	if tableName == "" {
		tableName = "warn_notices"
	}
	if !tableNamePattern.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &PostgresIndexer{db: db, tableName: tableName, log: log}, nil
}

// EnsureTable creates the notices table if it doesn't exist
func (i *PostgresIndexer) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			jurisdiction CHAR(2) NOT NULL,
			employer_name TEXT NOT NULL,
			parent_system TEXT,
			city TEXT,
			county TEXT,
			address TEXT,
			notice_date DATE,
			effective_date DATE,
			employees_affected INTEGER,
			industry_code TEXT,
			reason TEXT,
			raw_text TEXT,
			provider_name TEXT,
			provider_url TEXT,
			provider_record_id TEXT,
			retrieved_at TIMESTAMP WITH TIME ZONE,
			attachments JSONB,
			impact_score INTEGER,
			impact_label TEXT,
			care_setting TEXT,
			keywords TEXT[],
			specialties TEXT[],
			signals TEXT[],
			role_mix JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS %[1]s_jurisdiction_date_idx ON %[1]s (jurisdiction, notice_date DESC);
		CREATE INDEX IF NOT EXISTS %[1]s_score_idx ON %[1]s (impact_score DESC)
	`, i.tableName)

	_, err := i.db.ExecContext(ctx, query)
	return err
}

func (i *PostgresIndexer) upsertQuery() string {
	return fmt.Sprintf(`
		INSERT INTO %s (
			id, jurisdiction, employer_name, parent_system, city, county, address,
			notice_date, effective_date, employees_affected, industry_code, reason, raw_text,
			provider_name, provider_url, provider_record_id, retrieved_at, attachments,
			impact_score, impact_label, care_setting, keywords, specialties, signals, role_mix,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25,
			NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			employer_name = EXCLUDED.employer_name,
			parent_system = EXCLUDED.parent_system,
			city = EXCLUDED.city,
			county = EXCLUDED.county,
			address = EXCLUDED.address,
			notice_date = EXCLUDED.notice_date,
			effective_date = EXCLUDED.effective_date,
			employees_affected = EXCLUDED.employees_affected,
			industry_code = EXCLUDED.industry_code,
			reason = EXCLUDED.reason,
			raw_text = EXCLUDED.raw_text,
			provider_name = EXCLUDED.provider_name,
			provider_url = EXCLUDED.provider_url,
			provider_record_id = EXCLUDED.provider_record_id,
			retrieved_at = EXCLUDED.retrieved_at,
			attachments = EXCLUDED.attachments,
			impact_score = EXCLUDED.impact_score,
			impact_label = EXCLUDED.impact_label,
			care_setting = EXCLUDED.care_setting,
			keywords = EXCLUDED.keywords,
			specialties = EXCLUDED.specialties,
			signals = EXCLUDED.signals,
			role_mix = EXCLUDED.role_mix,
			updated_at = NOW()
	`, i.tableName)
}

// rowSavepoint isolates each upsert: PostgreSQL aborts the whole transaction
// on a failed statement unless it is rolled back to a savepoint
const rowSavepoint = "notice_row"

// BulkIndex upserts notices in one transaction. A row that fails is rolled
// back to its savepoint, logged and skipped so one bad record does not lose
// the batch.
func (i *PostgresIndexer) BulkIndex(ctx context.Context, notices []*domain.NormalizedNotice) error {
	if len(notices) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, i.upsertQuery())
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	skipped := 0
	for _, n := range notices {
		args, err := rowArgs(n)
		if err != nil {
			i.log.Warn("encode notice", "id", n.ID, "error", err)
			skipped++
			continue
		}
		ok, err := i.upsertRow(ctx, tx, stmt, args)
		if err != nil {
			return err
		}
		if !ok {
			i.log.Warn("index notice", "id", n.ID, "jurisdiction", n.Jurisdiction)
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if skipped > 0 {
		i.log.Warn("rows skipped", "skipped", skipped, "total", len(notices))
	}
	return nil
}

// upsertRow runs one upsert inside a savepoint. ok is false when the row was
// rejected and rolled back; err is set only when the transaction itself is
// no longer usable.
func (i *PostgresIndexer) upsertRow(ctx context.Context, tx *sql.Tx, stmt *sql.Stmt, args []any) (ok bool, err error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+rowSavepoint); err != nil {
		return false, fmt.Errorf("savepoint: %w", err)
	}

	if _, execErr := stmt.ExecContext(ctx, args...); execErr != nil {
		i.log.Debug("upsert failed", "error", execErr)
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+rowSavepoint); err != nil {
			return false, fmt.Errorf("rollback to savepoint: %w", err)
		}
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+rowSavepoint); err != nil {
		return false, fmt.Errorf("release savepoint: %w", err)
	}
	return true, nil
}

func rowArgs(n *domain.NormalizedNotice) ([]any, error) {
	attachments, err := json.Marshal(n.Attachments)
	if err != nil {
		return nil, fmt.Errorf("marshal attachments: %w", err)
	}

	var (
		score     any
		label     any
		setting   any
		roleMix   any
		keywords  []string
		specialty []string
		signals   []string
	)
	if imp := n.Impact; imp != nil {
		score, label, setting = imp.Score, string(imp.Label), string(imp.CareSetting)
		keywords, specialty, signals = imp.KeywordsFound, imp.Specialties, imp.Signals
		if imp.RoleMix != nil {
			b, err := json.Marshal(imp.RoleMix)
			if err != nil {
				return nil, fmt.Errorf("marshal role mix: %w", err)
			}
			roleMix = string(b)
		}
	}

	return []any{
		n.ID, string(n.Jurisdiction), n.EmployerName, nullString(n.ParentSystem), nullString(n.City), nullString(n.County), nullString(n.Address),
		nullDate(n.NoticeDate), nullDate(n.EffectiveDate), nullInt(n.EmployeesAffected), nullString(n.IndustryCode), nullString(n.Reason), nullString(n.RawText),
		n.Provenance.ProviderName, n.Provenance.ProviderURL, nullString(n.Provenance.ProviderRecordID), n.Provenance.RetrievedAt, string(attachments),
		score, label, setting, pq.Array(keywords), pq.Array(specialty), pq.Array(signals), roleMix,
	}, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

// Close closes the database connection
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}
