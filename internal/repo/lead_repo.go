package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/domain"
)

// pgUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can match either.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate is returned when an insert hits a unique constraint: the
// leads(email) index when uniqueness is enabled, or (scope, key) for
// idempotency records.
var ErrDuplicate = errors.New("duplicate")

// CreateLead inserts lead and returns the stored row. The ID is assigned here
// and CreatedAt by GORM; source and status are re-pinned so a caller cannot
// persist anything else.
func CreateLead(ctx context.Context, db *gorm.DB, lead *domain.Lead) (*domain.Lead, error) {
	row := *lead
	row.ID = uuid.NewString()
	row.Source = domain.SourceWebsite
	row.Status = domain.StatusNew
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &row, nil
}

// GetLead fetches a lead by ID, or ErrNotFound.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.Lead, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	var l domain.Lead
	if err := db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// isUniqueViolation recognises duplicate-key failures across drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
