package docnum

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// MaxSuffix scans a document table for numbers starting with prefix and
// returns the highest trailing sequence. Workflows wrap this in their
// Seeder registrations so counters pick up behind documents that predate
// the counter table.
func MaxSuffix(ctx context.Context, tx *gorm.DB, table, column, prefix string) (int, error) {
	var numbers []string
	if err := tx.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", prefix+"%").
		Pluck(column, &numbers).Error; err != nil {
		return 0, err
	}
	max := 0
	for _, number := range numbers {
		idx := strings.LastIndex(number, "-")
		if idx < 0 || idx == len(number)-1 {
			continue
		}
		seq, err := strconv.Atoi(number[idx+1:])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}
