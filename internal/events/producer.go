package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"example.com/octofit/internal/domain"
)

// Producer publishes tracker events to Kafka, lazily managing one writer
// per topic. It implements domain.Publisher: publish failures are logged
// and never surfaced to the caller.
type Producer struct {
	brokers []string
	log     *zap.Logger
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewProducer creates a Producer.
func NewProducer(brokers []string, log *zap.Logger) *Producer {
	return &Producer{
		brokers: brokers,
		log:     log,
		writers: make(map[string]*kafka.Writer),
	}
}

// ActivityRecorded publishes an activity.recorded event keyed by user.
func (p *Producer) ActivityRecorded(ctx context.Context, activity domain.Activity) {
	p.publish(ctx, TopicActivityEvents, activity.UserID, ActivityRecorded{
		ActivityID:      activity.ID,
		UserID:          activity.UserID,
		WorkoutID:       activity.WorkoutID,
		WorkoutName:     activity.WorkoutName,
		DurationMinutes: activity.DurationMinutes,
		CaloriesBurned:  activity.CaloriesBurned,
		DistanceKM:      activity.DistanceKM,
		ActivityDate:    activity.ActivityDate,
	})
}

// LeaderboardRebuilt publishes a leaderboard.rebuilt event.
func (p *Producer) LeaderboardRebuilt(ctx context.Context, total int, at time.Time) {
	p.publish(ctx, TopicLeaderboardEvents, "leaderboard", LeaderboardRebuilt{
		TotalEntries: total,
		RebuiltAt:    at,
	})
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal event", zap.String("topic", topic), zap.Error(err))
		return
	}

	writer := p.writerForTopic(topic)
	if err := writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: body}); err != nil {
		p.log.Warn("publish event", zap.String("topic", topic), zap.Error(err))
	}
}

func (p *Producer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
