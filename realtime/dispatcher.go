package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Sink 事件的最终投递目标
type Sink interface {
	Publish(ctx context.Context, itineraryID uint, event string, payload any) error
}

type job struct {
	itineraryID uint
	event       string
	payload     any
}

// Dispatcher 异步投递：Publish 只入队不等待，队列满时丢弃，Shutdown 时排空队列
type Dispatcher struct {
	queue   chan job
	sink    Sink
	log     *slog.Logger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher 创建投递队列
func NewDispatcher(log *slog.Logger, sink Sink, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:  make(chan job, queueSize),
		sink:   sink,
		log:    log.With("component", "dispatcher"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动投递协程
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.ctx.Done():
				d.log.Info("draining events before shutdown", "remaining_events", len(d.queue))
				for len(d.queue) > 0 {
					d.deliver(context.Background(), <-d.queue)
				}
				return
			case j := <-d.queue:
				d.deliver(d.ctx, j)
			}
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	if err := d.sink.Publish(ctx, j.itineraryID, j.event, j.payload); err != nil {
		d.log.Error("failed to deliver event",
			"error", err,
			"itinerary_id", j.itineraryID,
			"event", j.event)
	}
}

// Publish 实现 Notifier，从不阻塞
func (d *Dispatcher) Publish(_ context.Context, itineraryID uint, event string, payload any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		d.log.Warn("dispatcher closed, dropping event", "event", event)
		return nil
	}
	select {
	case d.queue <- job{itineraryID: itineraryID, event: event, payload: payload}:
	default:
		d.dropped.Add(1)
		d.log.Warn("event queue full, dropping event", "event", event, "itinerary_id", itineraryID)
	}
	return nil
}

// Dropped 被丢弃的事件数
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Shutdown 停止接收新事件，投递完已入队的事件后返回
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()
	d.wg.Wait()
}
