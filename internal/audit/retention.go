package audit

import (
	"context"
	"fmt"
	"time"
)

// RetentionConfig defines how much of the audit log is kept
type RetentionConfig struct {
	// MaxAge is the age past which actions are deleted; zero keeps everything
	MaxAge time.Duration

	// MaxRecordsPerProject caps the actions kept per project; zero means no cap
	MaxRecordsPerProject int
}

// DefaultRetentionConfig returns the default retention: 90 days, 1000 actions per project
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		MaxAge:               90 * 24 * time.Hour,
		MaxRecordsPerProject: 1000,
	}
}

// Prune applies both retention rules and reports how many actions each removed
func (d *DAO) Prune(ctx context.Context, config RetentionConfig) (map[string]int64, error) {
	results := make(map[string]int64)

	if config.MaxAge > 0 {
		deleted, err := d.PruneOldRecords(ctx, config.MaxAge)
		if err != nil {
			return results, fmt.Errorf("time-based pruning failed: %w", err)
		}
		results["time_based"] = deleted
	}

	if config.MaxRecordsPerProject > 0 {
		deleted, err := d.PruneExcessRecords(ctx, config.MaxRecordsPerProject)
		if err != nil {
			return results, fmt.Errorf("count-based pruning failed: %w", err)
		}
		results["count_based"] = deleted
	}

	return results, nil
}
