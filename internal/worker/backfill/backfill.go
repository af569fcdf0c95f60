// Package backfill は周期日数（cycle_length）の再計算ジョブを提供する。
// 周期記録の追加時にも同じユーザー分は再計算されるが、
// 手動投入や取り込みで欠けた値を定期バッチで埋め直す。
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/cycle/internal/metrics"
	"github.com/hitoshi/cycle/internal/repository"
)

// Job は全ユーザーの周期日数を再計算するバッチジョブ。
// 再計算は冪等で、値が変わらない行は更新しない。
type Job struct {
	backfiller repository.CycleLengthBackfiller
	metrics    metrics.MetricsCollector
	logger     *slog.Logger
}

// NewJob は新しいJobを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewJob(backfiller repository.CycleLengthBackfiller, collector metrics.MetricsCollector, logger *slog.Logger) *Job {
	return &Job{
		backfiller: backfiller,
		metrics:    collector,
		logger:     logger,
	}
}

// Run は周期日数の再計算を1回実行する。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	updated, err := j.backfiller.RecomputeAllLengths(ctx)
	if j.metrics != nil {
		j.metrics.RecordBackfill(updated, err)
	}
	if err != nil {
		j.logger.Error("周期日数の再計算に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("周期日数の再計算に失敗: %w", err)
	}

	j.logger.Info("周期日数の再計算が完了しました",
		slog.Int64("updated_count", updated),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回、その後interval間隔でRunを実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("周期日数バックフィルを開始しました",
		slog.Duration("interval", interval),
	)

	// エラーはRun内でログ出力済み
	_ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("周期日数バックフィルを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
