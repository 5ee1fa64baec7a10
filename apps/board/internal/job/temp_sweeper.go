// Package job 后台定时任务
package job

import (
	"context"
	"time"

	"CommunityBoard/apps/board/internal/metrics"
	"CommunityBoard/apps/board/internal/repository"
	"CommunityBoard/apps/board/internal/service"
	rediskey "CommunityBoard/consts/redisKey"
	"CommunityBoard/model"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/logger"
	pkgredis "CommunityBoard/pkg/redis"
	"CommunityBoard/pkg/util"

	"github.com/redis/go-redis/v9"
)

// TempSweeper 回收被放弃的编辑会话留下的临时附件。
// 超过 ttl 仍未确认或取消的临时附件，记录在事务中删除，对象在提交后清理。
// 多实例部署时通过 Redis 锁保证同一时刻只有一个实例在清理。
type TempSweeper struct {
	tx          repository.ITransactor
	attachRepo  repository.IAttachmentRepository
	attachments *service.AttachmentManager
	redisClient *redis.Client

	ttl      time.Duration
	interval time.Duration
	batch    int
	now      func() time.Time
}

// NewTempSweeper 创建临时附件清理任务
func NewTempSweeper(
	tx repository.ITransactor,
	attachRepo repository.IAttachmentRepository,
	attachments *service.AttachmentManager,
	redisClient *redis.Client,
	ttl, interval time.Duration,
	batch int,
) *TempSweeper {
	if batch <= 0 {
		batch = 200
	}
	return &TempSweeper{
		tx:          tx,
		attachRepo:  attachRepo,
		attachments: attachments,
		redisClient: redisClient,
		ttl:         ttl,
		interval:    interval,
		batch:       batch,
		now:         time.Now,
	}
}

// Run 按 interval 周期执行，直到 ctx 取消
func (s *TempSweeper) Run(ctx context.Context) {
	if s.ttl <= 0 || s.interval <= 0 {
		logger.Info(ctx, "临时附件清理未启用")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx := ctxmeta.WithTraceID(ctx, util.NewUUID())
			if _, err := s.SweepOnce(runCtx); err != nil {
				logger.Error(runCtx, "临时附件清理失败", logger.ErrorField("error", err))
			}
		}
	}
}

// SweepOnce 执行一轮清理，返回删除的记录数。未抢到锁时返回 0。
func (s *TempSweeper) SweepOnce(ctx context.Context) (int, error) {
	if s.redisClient != nil {
		ok, unlock, err := pkgredis.TryLock(ctx, s.redisClient, rediskey.SweeperLockKey(), util.NewUUID(), rediskey.SweeperLockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			logger.Debug(ctx, "其他实例正在清理临时附件")
			return 0, nil
		}
		defer unlock()
	}

	cutoff := s.now().Add(-s.ttl)
	total := 0
	for {
		var stale []*model.Attachment
		err := s.tx.Transaction(ctx, func(ctx context.Context) error {
			list, err := s.attachRepo.ListStaleTemporary(ctx, cutoff, s.batch)
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(list))
			for _, att := range list {
				ids = append(ids, att.Id)
			}
			if _, err := s.attachRepo.DeleteByIDs(ctx, ids); err != nil {
				return err
			}
			stale = list
			return nil
		})
		if err != nil {
			return total, err
		}
		if len(stale) == 0 {
			break
		}

		if err := s.attachments.PurgeBlobs(ctx, stale); err != nil {
			logger.Warn(ctx, "临时附件对象清理未全部成功", logger.ErrorField("error", err))
		}
		total += len(stale)
		metrics.RecordAttachments("swept", len(stale))

		if len(stale) < s.batch {
			break
		}
	}

	if total > 0 {
		logger.Info(ctx, "临时附件清理完成", logger.Int("removed", total), logger.Time("cutoff", cutoff))
	}
	return total, nil
}
