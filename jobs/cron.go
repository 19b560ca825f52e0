package jobs

import (
	"context"
	"time"

	"catalog/dto"
	"catalog/services/logger"

	"github.com/robfig/cron/v3"
)

// StatusRefresher tính lại trạng thái mọi discount theo giờ hiện tại
type StatusRefresher interface {
	RefreshAllStatuses(ctx context.Context) (*dto.RefreshResult, error)
}

// Reindexer đẩy lại toàn bộ sản phẩm lên search index
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

type Specs struct {
	StatusRefresh string
	Reindex       string
	// SearchEnabled = false thì không đăng ký job reindex
	SearchEnabled bool
}

const jobTimeout = 5 * time.Minute

// InitCronJobs đăng ký các job định kỳ rồi start cron
func InitCronJobs(c *cron.Cron, specs Specs, refresher StatusRefresher, reindexer Reindexer, log logger.Logger) error {
	if _, err := c.AddFunc(specs.StatusRefresh, RefreshStatusesJob(refresher, log)); err != nil {
		return err
	}

	if specs.SearchEnabled {
		if _, err := c.AddFunc(specs.Reindex, ReindexJob(reindexer, log)); err != nil {
			return err
		}
	}

	c.Start()
	log.Info("cron jobs initialized (%d entries)", len(c.Entries()))
	return nil
}

func RefreshStatusesJob(refresher StatusRefresher, log logger.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res, err := refresher.RefreshAllStatuses(ctx)
		if err != nil {
			log.Error("refresh discount statuses: %v", err)
			return
		}
		log.Debug("discount statuses refreshed: %d ongoing, %d expired", res.Ongoing, res.Expired)
	}
}

func ReindexJob(reindexer Reindexer, log logger.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := reindexer.Reindex(ctx)
		if err != nil {
			log.Error("reindex products: %v", err)
			return
		}
		log.Info("reindexed %d products", n)
	}
}
