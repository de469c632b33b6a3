package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelUsage struct {
	Name     string
	Length   int
	Capacity int
	Backlog  bool
}

// ChannelCapacityWorker periodically samples buffered channels and warns when
// one fills past thresholdPercent. Reading len and cap never blocks the owners.
type ChannelCapacityWorker struct {
	log              *slog.Logger
	channels         []NamedChannel
	thresholdPercent int
	metricInterval   time.Duration
}

func NewChannelCapacityWorker(
	log *slog.Logger,
	channels []NamedChannel,
	thresholdPercent int,
	metricInterval time.Duration,
) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:              log,
		channels:         channels,
		thresholdPercent: thresholdPercent,
		metricInterval:   metricInterval,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping channel capacity worker")
			return nil
		case <-ticker.C:
			for _, usage := range w.sample() {
				if usage.Backlog {
					w.log.Warn("Channel backlog", "name", usage.Name, "length", usage.Length, "capacity", usage.Capacity)
					continue
				}
				w.log.Debug("Channel usage", "name", usage.Name, "length", usage.Length, "capacity", usage.Capacity)
			}
		}
	}
}

func (w *ChannelCapacityWorker) sample() []ChannelUsage {
	usages := make([]ChannelUsage, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		usage := ChannelUsage{Name: nc.Name, Length: v.Len(), Capacity: v.Cap()}
		usage.Backlog = usage.Capacity > 0 && usage.Length*100 >= usage.Capacity*w.thresholdPercent
		usages = append(usages, usage)
	}
	return usages
}
