package docnum

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

// Series keys for the document counter table.
const (
	SeriesGRN     = "GRN"
	SeriesInvoice = "INV"
	SeriesReturn  = "RET"
)

// Seeder reports the highest sequence already issued for a series, branch,
// and day. It is consulted once, when the counter row for that key does not
// exist yet, so numbering continues past documents created before the
// counter table was introduced.
type Seeder func(ctx context.Context, tx *gorm.DB, branchCode, day string) (int, error)

// Service issues collision-free per-day document sequence numbers. Each
// workflow calls NextSeq inside its own transaction; the counter row update
// rides that transaction, so a rolled-back document never burns a number
// permanently ahead of a committed one on Postgres, and two concurrent
// writers serialize on the row.
type Service struct {
	mu      sync.RWMutex
	seeders map[string]Seeder
}

// NewService returns a numbering service with no seeders registered.
func NewService() *Service {
	return &Service{seeders: map[string]Seeder{}}
}

// RegisterSeeder installs the max-existing-sequence lookup for a series.
func (s *Service) RegisterSeeder(series string, seeder Seeder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeders[series] = seeder
}

func (s *Service) seederFor(series string) Seeder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeders[series]
}

// NextSeq increments and returns the sequence for (series, branchCode, day).
func (s *Service) NextSeq(ctx context.Context, tx *gorm.DB, series, branchCode string, at time.Time) (int, error) {
	if tx == nil {
		return 0, apperrors.New(apperrors.CodeInternal, "document numbering requires a transaction")
	}
	if series == "" || branchCode == "" {
		return 0, apperrors.New(apperrors.CodeValidation, "series and branch code are required")
	}
	day := Day(at)

	seq, incremented, err := s.increment(ctx, tx, series, branchCode, day)
	if err != nil {
		return 0, err
	}
	if incremented {
		return seq, nil
	}

	// No counter row yet. Seed it from the highest existing document and
	// claim the next slot; a unique violation means another writer seeded
	// first, so fall back to incrementing their row.
	seed := 0
	if seeder := s.seederFor(series); seeder != nil {
		seed, err = seeder(ctx, tx, branchCode, day)
		if err != nil {
			return 0, apperrors.Wrap(apperrors.CodeInternal, err, "seeding document counter")
		}
	}
	counter := models.DocumentCounter{
		Series:     series,
		BranchCode: branchCode,
		Day:        day,
		LastSeq:    seed + 1,
	}
	if err := tx.WithContext(ctx).Create(&counter).Error; err != nil {
		if !db.IsUniqueViolation(err, "") {
			return 0, apperrors.Wrap(apperrors.CodeInternal, err, "creating document counter")
		}
		seq, incremented, err = s.increment(ctx, tx, series, branchCode, day)
		if err != nil {
			return 0, err
		}
		if !incremented {
			return 0, apperrors.New(apperrors.CodeInternal, "document counter disappeared mid-transaction")
		}
		return seq, nil
	}
	return counter.LastSeq, nil
}

func (s *Service) increment(ctx context.Context, tx *gorm.DB, series, branchCode, day string) (int, bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.DocumentCounter{}).
		Where("series = ? AND branch_code = ? AND day = ?", series, branchCode, day).
		UpdateColumn("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return 0, false, apperrors.Wrap(apperrors.CodeInternal, res.Error, "incrementing document counter")
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	var counter models.DocumentCounter
	if err := tx.WithContext(ctx).
		Where("series = ? AND branch_code = ? AND day = ?", series, branchCode, day).
		First(&counter).Error; err != nil {
		return 0, false, apperrors.Wrap(apperrors.CodeInternal, err, "reading document counter")
	}
	return counter.LastSeq, true, nil
}

// Day renders the calendar day used in document numbers and counter keys.
func Day(at time.Time) string {
	return at.UTC().Format("20060102")
}

// FormatGRN builds a goods receipt number, e.g. GRN-DT-20260115-0003.
func FormatGRN(branchCode, day string, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%04d", SeriesGRN, branchCode, day, seq)
}

// FormatReturn builds a sales return number, e.g. RET-DT-20260115-0001.
func FormatReturn(branchCode, day string, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%04d", SeriesReturn, branchCode, day, seq)
}

// FormatInvoice builds a sales invoice number from the branch's invoice
// prefix, e.g. DT-20260115-0042.
func FormatInvoice(prefix, day string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day, seq)
}
