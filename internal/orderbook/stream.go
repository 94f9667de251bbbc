package orderbook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Stream maintains a WebSocket subscription to the order book's event
// feed. Events land on a buffered channel; a full channel drops the
// event rather than stalling the read loop.
type Stream struct {
	url          string
	conn         *websocket.Conn
	logger       *zap.Logger
	backoff      *backoff
	config       StreamConfig
	eventChan    chan *OrderEvent
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	collections  map[string]bool // tracks subscribed collection addresses
	connected    atomic.Bool
	lastPongTime atomic.Int64
}

// StreamConfig holds order stream configuration.
type StreamConfig struct {
	URL                   string
	DialTimeout           time.Duration
	PongTimeout           time.Duration // 0 disables the staleness check
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	EventBufferSize       int
	Logger                *zap.Logger
}

// NewStream creates an order stream. Call Start to connect.
func NewStream(cfg StreamConfig) *Stream {
	ctx, cancel := context.WithCancel(context.Background())

	backoffCfg := BackoffConfig{
		InitialDelay: cfg.ReconnectInitialDelay,
		MaxDelay:     cfg.ReconnectMaxDelay,
		Multiplier:   cfg.ReconnectBackoffMult,
		Jitter:       0.2,
	}

	return &Stream{
		url:         cfg.URL,
		logger:      cfg.Logger,
		backoff:     newBackoff(backoffCfg, cfg.Logger),
		config:      cfg,
		eventChan:   make(chan *OrderEvent, cfg.EventBufferSize),
		ctx:         ctx,
		cancel:      cancel,
		collections: make(map[string]bool),
	}
}

// Start connects and launches the read, ping and reconnect loops.
func (s *Stream) Start() error {
	s.logger.Info("order-stream-starting", zap.String("url", s.url))

	err := s.connect(s.ctx)
	if err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}

	s.wg.Add(3)
	go s.readLoop()
	go s.pingLoop()
	go s.reconnectLoop()

	return nil
}

func (s *Stream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		s.lastPongTime.Store(time.Now().Unix())
		return nil
	})

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.connected.Store(true)
	s.lastPongTime.Store(time.Now().Unix())
	StreamConnected.Set(1)

	s.logger.Info("order-stream-connected")

	return nil
}

// Subscribe adds collection addresses to the live subscription.
func (s *Stream) Subscribe(ctx context.Context, collections []string) error {
	if len(collections) == 0 {
		return nil
	}

	s.mu.Lock()

	added := make([]string, 0, len(collections))
	for _, collection := range collections {
		if !s.collections[collection] {
			added = append(added, collection)
			s.collections[collection] = true
		}
	}

	if len(added) == 0 {
		s.mu.Unlock()
		return nil
	}

	total := len(s.collections)
	s.mu.Unlock()

	msg := map[string]interface{}{
		"action":      "subscribe",
		"collections": added,
	}

	// Network I/O without holding the lock.
	err := s.conn.WriteJSON(msg)
	if err != nil {
		s.mu.Lock()
		for _, collection := range added {
			delete(s.collections, collection)
		}
		total = len(s.collections)
		s.mu.Unlock()

		SubscribedCollections.Set(float64(total))

		return fmt.Errorf("write subscribe message: %w", err)
	}

	SubscribedCollections.Set(float64(total))

	s.logger.Info("subscribed-to-collections",
		zap.Int("new-count", len(added)),
		zap.Int("total-count", total))

	return nil
}

// Unsubscribe removes collection addresses from the subscription.
func (s *Stream) Unsubscribe(ctx context.Context, collections []string) error {
	if len(collections) == 0 {
		return nil
	}

	s.mu.Lock()

	removed := make([]string, 0, len(collections))
	for _, collection := range collections {
		if s.collections[collection] {
			removed = append(removed, collection)
			delete(s.collections, collection)
		}
	}

	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}

	total := len(s.collections)
	s.mu.Unlock()

	msg := map[string]interface{}{
		"action":      "unsubscribe",
		"collections": removed,
	}

	err := s.conn.WriteJSON(msg)
	if err != nil {
		s.mu.Lock()
		for _, collection := range removed {
			s.collections[collection] = true
		}
		total = len(s.collections)
		s.mu.Unlock()

		SubscribedCollections.Set(float64(total))

		return fmt.Errorf("write unsubscribe message: %w", err)
	}

	SubscribedCollections.Set(float64(total))

	s.logger.Info("unsubscribed-from-collections",
		zap.Int("count", len(removed)),
		zap.Int("remaining-count", total))

	return nil
}

func (s *Stream) readLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			s.logger.Warn("stream-read-error", zap.Error(err))
			s.connected.Store(false)
			StreamConnected.Set(0)
			return
		}

		var event OrderEvent
		err = json.Unmarshal(message, &event)
		if err != nil || event.EventType == "" {
			// Keepalives and control acks come through the same socket.
			s.logger.Debug("stream-control-message", zap.Int("bytes", len(message)))
			continue
		}

		EventsReceivedTotal.WithLabelValues(event.EventType).Inc()

		select {
		case s.eventChan <- &event:
		default:
			s.logger.Warn("event-channel-full", zap.String("event-type", event.EventType))
			EventsDroppedTotal.Inc()
		}
	}
}

func (s *Stream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if !s.connected.Load() {
				continue
			}

			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()

			if conn == nil {
				continue
			}

			if s.config.PongTimeout > 0 {
				lastPong := time.Unix(s.lastPongTime.Load(), 0)
				if time.Since(lastPong) > s.config.PongTimeout {
					s.logger.Warn("stream-pong-timeout",
						zap.Time("last-pong", lastPong))
					s.connected.Store(false)
					StreamConnected.Set(0)
					// Unblocks the read loop so reconnect can take over.
					conn.Close()
					continue
				}
			}

			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			if err != nil {
				s.logger.Warn("stream-ping-error", zap.Error(err))
			}
		}
	}
}

func (s *Stream) reconnectLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if s.connected.Load() {
			time.Sleep(time.Second)
			continue
		}

		s.logger.Warn("stream-connection-lost")

		err := s.backoff.retry(s.ctx, s.connect)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error("stream-reconnect-exhausted", zap.Error(err))
			continue
		}

		err = s.resubscribeAll()
		if err != nil {
			s.logger.Error("stream-resubscribe-failed", zap.Error(err))
			s.connected.Store(false)
			continue
		}

		s.wg.Add(1)
		go s.readLoop()
	}
}

func (s *Stream) resubscribeAll() error {
	s.mu.RLock()
	collections := make([]string, 0, len(s.collections))
	for collection := range s.collections {
		collections = append(collections, collection)
	}
	s.mu.RUnlock()

	if len(collections) == 0 {
		return nil
	}

	msg := map[string]interface{}{
		"action":      "subscribe",
		"collections": collections,
	}

	s.mu.RLock()
	err := s.conn.WriteJSON(msg)
	s.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("write resubscribe message: %w", err)
	}

	s.logger.Info("resubscribed-to-collections", zap.Int("count", len(collections)))

	return nil
}

// Events returns the channel carrying order events.
func (s *Stream) Events() <-chan *OrderEvent {
	return s.eventChan
}

// Close shuts the stream down and waits for its loops to finish.
func (s *Stream) Close() error {
	s.logger.Info("closing-order-stream")

	s.cancel()

	s.mu.RLock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.RUnlock()

	s.wg.Wait()

	close(s.eventChan)

	StreamConnected.Set(0)

	s.logger.Info("order-stream-closed")

	return nil
}
