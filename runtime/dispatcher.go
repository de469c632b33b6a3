package runtime

import (
	"chat-hub/domain"
	"chat-hub/observability"
	"log/slog"
)

// Dispatcher resolves a target to connections and hands the frame to each sink.
// Delivery is best effort: a full or closed sink is skipped and never blocks the others.
type Dispatcher struct {
	log      *slog.Logger
	registry *Registry
	tracker  *Tracker
	monitor  *observability.Monitor
}

func NewDispatcher(log *slog.Logger, registry *Registry, tracker *Tracker, monitor *observability.Monitor) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, tracker: tracker, monitor: monitor}
}

// Deliver returns the number of sinks that accepted the frame.
func (d *Dispatcher) Deliver(target domain.Target, frame []byte) int {
	delivered := 0
	for _, connID := range d.resolve(target) {
		if target.Except != "" && connID == target.Except {
			continue
		}
		// Registered but already gone is a benign race with disconnect
		sink, ok := d.registry.Sink(connID)
		if !ok {
			continue
		}
		if err := sink.Consume(frame); err != nil {
			d.log.Debug("Frame skipped", "conn_id", connID, "error", err)
			if d.monitor != nil {
				d.monitor.IncrFramesDropped()
			}
			continue
		}
		delivered++
	}
	if d.monitor != nil {
		d.monitor.AddFramesDelivered(delivered)
	}
	return delivered
}

func (d *Dispatcher) resolve(target domain.Target) []domain.ConnectionID {
	switch target.Kind {
	case domain.TargetUser:
		return d.registry.ConnectionIDsOf(target.User)
	case domain.TargetRoom:
		return d.tracker.Subscribers(target.Room)
	case domain.TargetConnection:
		return []domain.ConnectionID{target.Connection}
	case domain.TargetAll:
		return d.registry.AllConnectionIDs()
	default:
		d.log.Warn("Unknown delivery target", "kind", target.Kind)
		return nil
	}
}
