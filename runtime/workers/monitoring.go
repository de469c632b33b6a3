package workers

import (
	"chat-hub/contract"
	"chat-hub/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*MonitoringWorker)(nil)

// MonitoringWorker periodically logs the hub state, the counters and the
// process resource usage.
type MonitoringWorker struct {
	log            *slog.Logger
	hub            contract.IHub
	monitor        *observability.Monitor
	metricInterval time.Duration
}

func NewMonitoringWorker(
	log *slog.Logger,
	hub contract.IHub,
	monitor *observability.Monitor,
	metricInterval time.Duration,
) *MonitoringWorker {
	return &MonitoringWorker{
		log:            log,
		hub:            hub,
		monitor:        monitor,
		metricInterval: metricInterval,
	}
}

func (w *MonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping monitoring")
			return nil
		case <-ticker.C:
			w.report(ctx, p)
		}
	}
}

func (w *MonitoringWorker) report(ctx context.Context, p *process.Process) {
	stats, err := w.hub.Stats(ctx)
	if err != nil {
		w.log.Debug("Hub stats unavailable", "error", err)
		return
	}
	snapshot := w.monitor.Snapshot()
	attrs := []any{
		"online_users", stats.OnlineUsers,
		"connections", stats.Connections,
		"rooms", stats.Rooms,
		"frames_delivered", snapshot.FramesDelivered,
		"frames_dropped", snapshot.FramesDropped,
		"messages_sent", snapshot.MessagesSent,
		"persistence_errors", snapshot.PersistenceErrors,
		"goroutines", snapshot.Goroutines,
	}
	if cpu, err := p.CPUPercent(); err == nil {
		attrs = append(attrs, "cpu_percent", cpu)
	}
	if mem, err := p.MemoryInfo(); err == nil {
		attrs = append(attrs, "rss_mb", mem.RSS/1024/1024)
	}
	w.log.Info("Hub health", attrs...)
}
