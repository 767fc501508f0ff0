package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Shivamm1101/doc-ai/internal/config"
	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

// NewDatabaseClient opens the pool, pings it and applies the schema once.
func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
	}
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends verify-ca SSL parameters when a root certificate is configured.
func buildDSN(cfg *config.Config) (string, error) {
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if cfg.SslCertPath == "" {
		return cfg.DatabaseURL, nil
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", cfg.SslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) (int64, error) {
	if doc == nil {
		return 0, errors.New("nil document")
	}
	var cls []byte
	if doc.Classification != nil {
		b, err := json.Marshal(doc.Classification)
		if err != nil {
			return 0, fmt.Errorf("encode classification: %w", err)
		}
		cls = b
	}
	const q = `
		INSERT INTO documents (document_name, document_type, layout_type, classification)
		VALUES ($1, $2, $3, $4)
		RETURNING document_id
	`
	var id int64
	err := c.db.QueryRowContext(ctx, q, doc.Name, string(doc.Type), doc.LayoutType, cls).Scan(&id)
	return id, err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id int64) (*models.Document, error) {
	const q = `
		SELECT document_id, document_name, document_type, layout_type, classification, uploaded_at
		FROM documents
		WHERE document_id = $1
	`
	var (
		d   models.Document
		cls []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.Name, &d.Type, &d.LayoutType, &cls, &d.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d.Classification, err = decodeClassification(cls); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	const q = `
		SELECT d.document_id, d.document_name, d.document_type, d.layout_type, d.uploaded_at,
			(SELECT count(*) FROM cost_items c WHERE c.document_id = d.document_id),
			(SELECT count(*) FROM project_tasks t WHERE t.document_id = d.document_id),
			(SELECT count(*) FROM regulatory_rules r WHERE r.document_id = d.document_id),
			(SELECT count(*) FROM approval_steps a WHERE a.document_id = d.document_id)
		FROM documents d
		ORDER BY d.uploaded_at DESC, d.document_id DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentSummary
	for rows.Next() {
		var s models.DocumentSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Type, &s.LayoutType, &s.UploadedAt,
			&s.CostItems, &s.ProjectTasks, &s.RegulatoryRules, &s.ApprovalSteps,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteDocument removes the header row; records and vectors cascade.
func (c *DatabaseClient) DeleteDocument(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %d", id)
	}
	return nil
}

// Structured records

// InsertRecords inserts every record kind for one document in a single transaction.
func (c *DatabaseClient) InsertRecords(ctx context.Context, documentID int64, recs *models.Records) error {
	if recs.Len() == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	if err := insertRows(ctx, tx, `
		INSERT INTO cost_items
			(document_id, item_name, quantity, unit_of_measure, currency, unit_price, total_cost, cost_type, page_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, recs.CostItems, func(ci models.CostItem) []any {
		return []any{documentID, ci.ItemName, ci.Quantity, ci.UnitOfMeasure, ci.Currency, ci.UnitPrice, ci.TotalCost, ci.CostType, ci.PageNumber}
	}); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("cost_items: %w", err)
	}

	if err := insertRows(ctx, tx, `
		INSERT INTO project_tasks (document_id, task_name, duration_days, start_date, finish_date, page_number)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, recs.ProjectTasks, func(pt models.ProjectTask) []any {
		return []any{documentID, pt.TaskName, pt.DurationDays, pt.StartDate, pt.FinishDate, pt.PageNumber}
	}); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("project_tasks: %w", err)
	}

	if err := insertRows(ctx, tx, `
		INSERT INTO regulatory_rules (document_id, rule_summary, measurement_basis, page_number)
		VALUES ($1, $2, $3, $4)
	`, recs.RegulatoryRules, func(r models.RegulatoryRule) []any {
		return []any{documentID, r.RuleSummary, r.MeasurementBasis, r.PageNumber}
	}); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("regulatory_rules: %w", err)
	}

	if err := insertRows(ctx, tx, `
		INSERT INTO approval_steps (document_id, step_number, description, page_number)
		VALUES ($1, $2, $3, $4)
	`, recs.ApprovalSteps, func(s models.ApprovalStep) []any {
		return []any{documentID, s.StepNumber, s.Description, s.PageNumber}
	}); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("approval_steps: %w", err)
	}

	return tx.Commit()
}

func insertRows[T any](ctx context.Context, tx *sql.Tx, q string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, args(r)...); err != nil {
			return err
		}
	}
	return nil
}

func (c *DatabaseClient) ListCostItems(ctx context.Context, documentID int64) ([]models.CostItem, error) {
	const q = `
		SELECT document_id, item_name, quantity, unit_of_measure, currency, unit_price, total_cost, cost_type, page_number
		FROM cost_items
		WHERE document_id = $1
		ORDER BY page_number NULLS LAST, id
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CostItem
	for rows.Next() {
		var ci models.CostItem
		if err := rows.Scan(
			&ci.DocumentID, &ci.ItemName, &ci.Quantity, &ci.UnitOfMeasure, &ci.Currency,
			&ci.UnitPrice, &ci.TotalCost, &ci.CostType, &ci.PageNumber,
		); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// KeywordSearch matches the keyword case-insensitively against the text
// column of every record table.
func (c *DatabaseClient) KeywordSearch(ctx context.Context, keyword string, limit int) ([]models.RecordMatch, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT d.document_id, d.document_name, m.kind, m.text, m.page_number
		FROM (
			SELECT document_id, 'cost_item' AS kind, item_name AS text, page_number
			FROM cost_items WHERE item_name ILIKE $1
			UNION ALL
			SELECT document_id, 'project_task', task_name, page_number
			FROM project_tasks WHERE task_name ILIKE $1
			UNION ALL
			SELECT document_id, 'regulatory_rule', rule_summary, page_number
			FROM regulatory_rules WHERE rule_summary ILIKE $1 OR measurement_basis ILIKE $1
			UNION ALL
			SELECT document_id, 'approval_step', description, page_number
			FROM approval_steps WHERE description ILIKE $1
		) m
		JOIN documents d ON d.document_id = m.document_id
		ORDER BY d.uploaded_at DESC, m.page_number NULLS LAST
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, likePattern(keyword), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RecordMatch
	for rows.Next() {
		var m models.RecordMatch
		if err := rows.Scan(&m.DocumentID, &m.DocumentName, &m.Kind, &m.Text, &m.PageNumber); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// likePattern wraps the keyword in % after escaping LIKE metacharacters.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

func decodeClassification(raw []byte) (*models.Classification, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cls models.Classification
	if err := json.Unmarshal(raw, &cls); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}
	return &cls, nil
}
