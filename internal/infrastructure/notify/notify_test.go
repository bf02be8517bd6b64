package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"surface-inspector/internal/domain/entity"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (r *recordingNotifier) NotifyFailure(ctx context.Context, record *entity.InspectionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, record.ID)
	return r.err
}

func (r *recordingNotifier) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func failedRecord() *entity.InspectionRecord {
	score := 42.0
	defects := 8
	return &entity.InspectionRecord{
		ID:      "6f1c2f0e-07c5-4c44-9b83-5b1b2f0f2a11",
		Subject: entity.Subject{Inspector: "Tanaka", Batch: "B-9"},
		Result: entity.InspectionResult{
			Status:      entity.StatusFail,
			HealthScore: &score,
			DefectCount: &defects,
			Reason:      entity.ReasonLowScore,
		},
	}
}

func TestDispatcher_FansOutToAllSubscribers(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{err: errors.New("smtp down")}

	d, err := NewDispatcher(first, second)
	require.NoError(t, err)
	require.Equal(t, 2, d.Subscribers())

	rec := failedRecord()
	require.NoError(t, d.NotifyFailure(context.Background(), rec))
	d.Wait()

	require.Equal(t, []string{rec.ID}, first.ids())
	require.Equal(t, []string{rec.ID}, second.ids())
}

func TestDispatcher_NilRecordIgnored(t *testing.T) {
	n := &recordingNotifier{}
	d, err := NewDispatcher(n)
	require.NoError(t, err)

	require.NoError(t, d.NotifyFailure(context.Background(), nil))
	d.Wait()
	require.Empty(t, n.ids())
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	require.NoError(t, NewLogNotifier(l).NotifyFailure(context.Background(), failedRecord()))
	require.Contains(t, buf.String(), `"health_score":42`)
	require.Contains(t, buf.String(), `"batch":"B-9"`)
}

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, 777)

	require.NoError(t, n.NotifyFailure(context.Background(), failedRecord()))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, int64(777), msg.ChatID)
	require.Contains(t, msg.Text, "Health score: 42.0")
	require.Contains(t, msg.Text, "Defects: 8")
}

func TestTelegramNotifier_SendError(t *testing.T) {
	n := NewTelegramNotifier(&fakeSender{err: errors.New("forbidden")}, 1)
	require.Error(t, n.NotifyFailure(context.Background(), failedRecord()))
}
