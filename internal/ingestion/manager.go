package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-raid-alerts/internal/broadcast"
	"github.com/mr1hm/go-raid-alerts/internal/config"
	"github.com/mr1hm/go-raid-alerts/internal/delivery"
	"github.com/mr1hm/go-raid-alerts/internal/filter"
	"github.com/mr1hm/go-raid-alerts/internal/metrics"
	"github.com/mr1hm/go-raid-alerts/internal/models"
	"github.com/mr1hm/go-raid-alerts/internal/repository"
	"github.com/mr1hm/go-raid-alerts/internal/worker"
)

var ErrStopped = errors.New("ingestion manager stopped")

// Deps are the collaborators forwarded alerts flow into. Every field is
// optional; deliveries need both Subscribers and Sender.
type Deps struct {
	Alerts      repository.AlertRepository
	Subscribers repository.SubscriberRepository
	Sender      delivery.Sender
	Broadcaster *broadcast.Broadcaster
	Metrics     *metrics.Metrics
}

type Option func(*Manager)

// WithEventTime calls fn with each message's ReceivedAt on the engine
// goroutine right before the message is processed.
func WithEventTime(fn func(time.Time)) Option {
	return func(m *Manager) {
		m.eventTime = fn
	}
}

// WithAlertHook calls fn on the engine goroutine for every forwarded alert,
// after it is stored and broadcast.
func WithAlertHook(fn func(*models.Alert)) Option {
	return func(m *Manager) {
		m.onAlert = fn
	}
}

type deliveryJob struct {
	alertID string
	chatID  int64
	text    string
}

// Manager serializes messages into a single AlertFilter and fans forwarded
// alerts out to history, live streams and subscribers.
type Manager struct {
	cfg       *config.Config
	engine    *filter.AlertFilter
	deps      Deps
	eventTime func(time.Time)
	onAlert   func(*models.Alert)

	inbox chan models.Message
	done  chan struct{}
	pool  *worker.WorkerPool[deliveryJob]

	mu      sync.RWMutex
	started bool
	stopped bool

	countsMu sync.Mutex
	counts   map[filter.Outcome]int
}

func NewManager(cfg *config.Config, engine *filter.AlertFilter, deps Deps, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		engine: engine,
		deps:   deps,
		inbox:  make(chan models.Message, cfg.Worker.BufferSize),
		done:   make(chan struct{}),
		counts: make(map[filter.Outcome]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the engine goroutine and the delivery pool. It is a no-op
// once the manager has been started or stopped.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.stopped {
		return
	}
	m.started = true

	m.pool = worker.NewWorkerPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.deliver)
	m.pool.Start(ctx)

	go m.run(ctx)
	slog.Info("ingestion manager started", "engine", m.engine.String(), "workers", m.cfg.Worker.Count)
}

// Submit queues a message for the engine. It blocks while the queue is full.
func (m *Manager) Submit(ctx context.Context, msg models.Message) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return ErrStopped
	}

	select {
	case m.inbox <- msg:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop processes everything already queued, waits for pending deliveries
// and returns. Messages submitted afterwards are rejected with ErrStopped.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.inbox)
	started := m.started
	m.mu.Unlock()

	if !started {
		return
	}
	<-m.done
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}

// Counts returns how many messages ended in each outcome.
func (m *Manager) Counts() map[filter.Outcome]int {
	m.countsMu.Lock()
	defer m.countsMu.Unlock()
	out := make(map[filter.Outcome]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	for {
		if ctx.Err() != nil {
			slog.Info("ingestion loop shutting down", "reason", ctx.Err())
			return
		}
		select {
		case <-ctx.Done():
		case msg, ok := <-m.inbox:
			if !ok {
				return
			}
			m.handle(ctx, msg)
		}
	}
}

func (m *Manager) handle(ctx context.Context, msg models.Message) {
	if m.eventTime != nil {
		m.eventTime(msg.ReceivedAt)
	}

	start := time.Now()
	res := m.engine.Process(ctx, msg.SourceID, msg.SourceTitle, msg.Text)

	m.countsMu.Lock()
	m.counts[res.Outcome]++
	m.countsMu.Unlock()

	if m.deps.Metrics != nil {
		m.deps.Metrics.ObserveMessage(string(res.Outcome), time.Since(start))
		st := m.engine.Stats()
		m.deps.Metrics.SetEngineState(st.Sources, st.ContextEntries, st.DedupEntries, st.StatusLatches)
	}

	if !res.Forwarded() {
		return
	}
	m.publish(ctx, newAlert(msg, res.Alert))
}

func (m *Manager) publish(ctx context.Context, alert *models.Alert) {
	slog.Info("alert forwarded", "id", alert.ID, "source_id", alert.SourceID, "primary", alert.Primary, "proximity", alert.Proximity)

	if m.deps.Alerts != nil {
		if err := m.deps.Alerts.AddAlert(ctx, alert); err != nil {
			slog.Error("error saving alert", "id", alert.ID, "error", err)
		}
	}

	if m.deps.Broadcaster != nil {
		m.deps.Broadcaster.Broadcast(alert)
	}
	if m.onAlert != nil {
		m.onAlert(alert)
	}

	if m.deps.Subscribers == nil || m.deps.Sender == nil {
		return
	}
	subs, err := m.deps.Subscribers.ListSubscribers(ctx)
	if err != nil {
		slog.Error("error listing subscribers", "id", alert.ID, "error", err)
		return
	}
	for _, s := range subs {
		job := deliveryJob{alertID: alert.ID, chatID: s.ChatID, text: alert.Text}
		if !m.pool.TrySubmit(job) {
			slog.Warn("delivery queue full, alert dropped", "id", alert.ID, "chat_id", s.ChatID)
			m.observeDelivery("dropped")
		}
	}
}

func (m *Manager) deliver(ctx context.Context, job deliveryJob) error {
	if err := m.deps.Sender.Send(ctx, job.chatID, job.text); err != nil {
		m.observeDelivery("failed")
		return fmt.Errorf("error delivering alert %s to chat_id %d: %w", job.alertID, job.chatID, err)
	}
	m.observeDelivery("sent")
	return nil
}

func (m *Manager) observeDelivery(result string) {
	if m.deps.Metrics != nil {
		m.deps.Metrics.ObserveDelivery(result)
	}
}

func newAlert(msg models.Message, a *filter.Alert) *models.Alert {
	threats := make([]string, len(a.Threats))
	for i, k := range a.Threats {
		threats[i] = k.Name()
	}
	createdAt := msg.ReceivedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &models.Alert{
		ID:          uuid.NewString(),
		SourceID:    a.SourceID,
		SourceTitle: a.SourceTitle,
		Primary:     a.Primary.Name(),
		Threats:     threats,
		Proximity:   a.Proximity.String(),
		Nationwide:  a.Nationwide,
		Urgent:      a.Urgent,
		Status:      a.Status,
		Text:        a.Text,
		CreatedAt:   createdAt.UTC(),
	}
}
