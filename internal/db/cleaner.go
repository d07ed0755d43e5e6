package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const purgeOrphans = `DELETE FROM items WHERE user_id NOT IN (SELECT id FROM users)`

// PurgeOrphanItems removes items whose owner no longer exists. Such rows
// can only appear when the file was written by a connection that did not
// enable foreign keys. It returns the number of removed rows.
func PurgeOrphanItems(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, purgeOrphans)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartOrphanCleaner runs PurgeOrphanItems every interval until ctx is done.
func StartOrphanCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := PurgeOrphanItems(ctx, db)
				if err != nil {
					log.Error("failed to purge orphan items", zap.Error(err))
					continue
				}
				if rows > 0 {
					log.Info("purged orphan items", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
