package channel

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"campaigner/internal/constants"
	"campaigner/internal/retry"
	"campaigner/pkg/channel/types"
)

func reconnectBackoff() *retry.Backoff {
	return retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: constants.DefaultEventReconnectMinSec * time.Second,
		MaxDelay:     constants.DefaultEventReconnectMaxSec * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	})
}

// EventListener keeps a websocket connection to the channel's event stream
// and forwards decoded status events to a handler. Connection drops are
// retried with jittered exponential backoff, reset after a healthy session.
type EventListener struct {
	url          string
	apiKey       string
	handler      types.EventHandler
	logger       *logrus.Logger
	backoff      *retry.Backoff
	healthyAfter time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewEventListener(url, apiKey string, handler types.EventHandler, logger *logrus.Logger) *EventListener {
	return &EventListener{
		url:          url,
		apiKey:       apiKey,
		handler:      handler,
		logger:       logger,
		backoff:      reconnectBackoff(),
		healthyAfter: time.Minute,
	}
}

// Start launches the listen loop. It returns immediately; Stop tears the
// loop down and waits for it to exit.
func (l *EventListener) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running = true

	go l.run(loopCtx)
}

func (l *EventListener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.cancel()
	done := l.done
	l.running = false
	l.mu.Unlock()

	<-done
}

func (l *EventListener) run(ctx context.Context) {
	defer close(l.done)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		healthy, err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.logger.WithError(err).Warn("Event stream disconnected")
		}
		if healthy {
			// A session that stayed up long enough starts the reconnect
			// schedule over.
			attempt = 0
		}

		delay := l.backoff.NextDelay(attempt)
		attempt++
		l.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay.String(),
		}).Info("Reconnecting to event stream")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// listen dials the stream and reads events until the connection fails or the
// context is canceled. The returned bool reports whether the session stayed
// up long enough to count as healthy.
func (l *EventListener) listen(ctx context.Context) (bool, error) {
	opts := &websocket.DialOptions{}
	if l.apiKey != "" {
		opts.HTTPHeader = map[string][]string{"X-Api-Key": {l.apiKey}}
	}

	conn, _, err := websocket.Dial(ctx, l.url, opts)
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	l.logger.WithField("url", l.url).Info("Connected to event stream")
	connectedAt := time.Now()

	for {
		var envelope types.EventEnvelope
		if err := wsjson.Read(ctx, conn, &envelope); err != nil {
			return time.Since(connectedAt) >= l.healthyAfter, err
		}

		if err := l.handler(ctx, envelope.Payload); err != nil {
			l.logger.WithError(err).WithField("externalId", envelope.Payload.ExternalID).
				Warn("Failed to handle status event")
		}
	}
}
