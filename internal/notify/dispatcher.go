package notify

import (
	"context"
	"log/slog"

	"github.com/MayankGitHub86/solvehub-sub000/internal/metrics"
)

// Transport is a live delivery channel. Deliver must not block; it returns the
// number of connections the message was handed to.
type Transport interface {
	Name() string
	Deliver(m Message) int
}

type Dispatcher struct {
	transports []Transport
	recorder   Recorder
	durable    map[Type]bool
	logger     *slog.Logger
}

// NewDispatcher builds a dispatcher over the given transports. Events whose
// type is in durableTypes are also handed to recorder when they have a target.
func NewDispatcher(logger *slog.Logger, recorder Recorder, durableTypes []string, transports ...Transport) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	durable := make(map[Type]bool, len(durableTypes))
	for _, t := range durableTypes {
		durable[Type(t)] = true
	}
	return &Dispatcher{transports: transports, recorder: recorder, durable: durable, logger: logger}
}

// Notify delivers ev to every transport and records it when durable. It never
// fails; problems are logged. Calling it twice delivers twice.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	msg, err := ev.Encode()
	if err != nil {
		d.logger.Error("notify: encode event", "type", ev.Type, "err", err)
	} else {
		for _, t := range d.transports {
			d.deliver(t, msg)
		}
	}

	if d.isDurable(ev) {
		d.record(ctx, ev)
	}
}

func (d *Dispatcher) isDurable(ev Event) bool {
	if ev.TargetUserID == 0 || d.recorder == nil {
		return false
	}
	return ev.Durable || d.durable[ev.Type]
}

func (d *Dispatcher) deliver(t Transport, msg Message) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("notify: transport panic", "transport", t.Name(), "event", msg.Name, "panic", rec)
		}
	}()

	n := t.Deliver(msg)
	if n > 0 {
		metrics.EventsDelivered.WithLabelValues(t.Name(), msg.Name).Add(float64(n))
	}
}

func (d *Dispatcher) record(ctx context.Context, ev Event) {
	n, err := ev.Record()
	if err == nil {
		err = d.recorder.Record(ctx, n)
	}
	if err != nil {
		metrics.NotificationsRecorded.WithLabelValues("error").Inc()
		d.logger.Error("notify: record notification", "type", ev.Type, "user_id", ev.TargetUserID, "err", err)
		return
	}
	metrics.NotificationsRecorded.WithLabelValues("ok").Inc()
}
