package notify

import (
	"context"
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/domain/port"
	"surface-inspector/internal/logger"
)

// TopicInspectionFailed тема события о забракованной поверхности.
const TopicInspectionFailed = "inspection:failed"

// Dispatcher рассылает оповещения подписчикам через шину событий асинхронно.
type Dispatcher struct {
	bus  evbus.Bus
	mu   sync.Mutex
	subs int
}

// NewDispatcher создаёт диспетчер и подписывает получателей.
func NewDispatcher(notifiers ...port.Notifier) (*Dispatcher, error) {
	d := &Dispatcher{bus: evbus.New()}
	for _, n := range notifiers {
		if err := d.Subscribe(n); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Subscribe добавляет получателя. Ошибки получателя только логируются.
func (d *Dispatcher) Subscribe(n port.Notifier) error {
	if n == nil {
		return nil
	}
	handler := func(record *entity.InspectionRecord) {
		if err := n.NotifyFailure(context.Background(), record); err != nil {
			logger.WithError(err).WithField("inspection_id", record.ID).Warn("failure notification was not delivered")
		}
	}
	if err := d.bus.SubscribeAsync(TopicInspectionFailed, handler, false); err != nil {
		return entity.Wrap(entity.KindInternal, "notify.subscribe", "failed to subscribe notifier", err)
	}
	d.mu.Lock()
	d.subs++
	d.mu.Unlock()
	return nil
}

// NotifyFailure публикует копию записи и не ждёт доставки.
func (d *Dispatcher) NotifyFailure(ctx context.Context, record *entity.InspectionRecord) error {
	if record == nil {
		return nil
	}
	snapshot := *record
	d.bus.Publish(TopicInspectionFailed, &snapshot)
	return nil
}

// Subscribers число подписанных получателей.
func (d *Dispatcher) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.subs
}

// Wait дожидается обработки опубликованных событий.
func (d *Dispatcher) Wait() {
	d.bus.WaitAsync()
}

var _ port.Notifier = (*Dispatcher)(nil)
