package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

// Publisher is where relayed changes go.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// PGListener relays PostgreSQL NOTIFY payloads into the hub so changes made
// outside this service (the call agent writing calls, manual edits) still
// reach dashboards.
type PGListener struct {
	dsn     string
	channel string
	pub     Publisher
	log     *logger.Logger
}

func NewPGListener(dsn, channel string, pub Publisher, log *logger.Logger) *PGListener {
	return &PGListener{dsn: dsn, channel: channel, pub: pub, log: log.Component("pglistener")}
}

// Run blocks until ctx is cancelled. The driver reconnects on its own once
// listening; the initial LISTEN is retried with backoff.
func (l *PGListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, time.Second, time.Minute, l.reportEvent)
	defer listener.Close()

	listen := func() error {
		err := listener.Listen(l.channel)
		if err == pq.ErrChannelAlreadyOpen {
			return nil
		}
		return err
	}
	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.RetryNotify(listen, b, func(err error, wait time.Duration) {
		l.log.WithError(err).Warnf("LISTEN %s failed, retrying in %s", l.channel, wait)
	}); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	l.log.Infof("listening for row changes on %s", l.channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; events may have been missed, nothing to relay
			if n == nil {
				continue
			}
			ev, err := ParseNotification(n.Extra)
			if err != nil {
				l.log.WithError(err).Warn("ignoring notification")
				continue
			}
			if err := l.pub.Publish(ctx, ev); err != nil {
				l.log.WithError(err).Error("failed to relay row change")
			}
		case <-time.After(90 * time.Second):
			go listener.Ping()
		}
	}
}

func (l *PGListener) reportEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.log.Debug("listener connected")
	case pq.ListenerEventDisconnected:
		l.log.WithError(err).Warn("listener disconnected")
	case pq.ListenerEventReconnected:
		l.log.Info("listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.log.WithError(err).Warn("listener connection attempt failed")
	}
}

// ParseNotification decodes the trigger payload {"table": ..., "op": ...}.
func ParseNotification(payload string) (ChangeEvent, error) {
	var raw struct {
		Table string `json:"table"`
		Op    string `json:"op"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return ChangeEvent{}, fmt.Errorf("malformed payload %q: %w", payload, err)
	}
	if raw.Table == "" {
		return ChangeEvent{}, fmt.Errorf("payload %q has no table", payload)
	}
	op := Op(strings.ToUpper(raw.Op))
	switch op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return ChangeEvent{}, fmt.Errorf("unknown operation %q", raw.Op)
	}
	return ChangeEvent{Table: raw.Table, Op: op, At: time.Now().UTC()}, nil
}
