package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// redialDelay paces reconnection attempts after the feed drops.
const redialDelay = 5 * time.Second

// Notifier listens to the hosted service's change feed for one user. The feed
// carries no task data; every message means "tasks changed, re-fetch".
type Notifier struct {
	wsURL  string
	apiKey string
	logger *slog.Logger
}

// NewNotifier builds a notifier for the websocket endpoint at wsURL
// (ws:// or wss://).
func NewNotifier(wsURL, apiKey string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{wsURL: wsURL, apiKey: apiKey, logger: logger}
}

// Subscribe opens the feed for userID and returns a channel that receives one
// signal per change notification. The channel closes when ctx ends. Dropped
// connections are redialed; signals are coalesced when the receiver lags.
func (n *Notifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, error) {
	u, err := url.Parse(n.wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	q.Set("user_id", userID)
	q.Set("apikey", n.apiKey)
	u.RawQuery = q.Encode()

	changes := make(chan struct{}, 1)
	go n.run(ctx, u.String(), changes)
	return changes, nil
}

func (n *Notifier) run(ctx context.Context, addr string, changes chan<- struct{}) {
	defer close(changes)

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
		if err != nil {
			n.logger.Warn("change feed dial failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(redialDelay):
				continue
			}
		}

		n.readLoop(ctx, conn, changes)
	}
}

// readLoop pumps messages from one connection until it breaks or ctx ends.
func (n *Notifier) readLoop(ctx context.Context, conn *websocket.Conn, changes chan<- struct{}) {
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ctx.Err() == nil {
				n.logger.Warn("change feed dropped", slog.String("error", err.Error()))
			}
			return
		}
		select {
		case changes <- struct{}{}:
		default:
			// receiver is already due to re-fetch
		}
	}
}
