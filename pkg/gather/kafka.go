package gather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/MrDoghead/COMP90024-project1/models"
	"github.com/MrDoghead/COMP90024-project1/pkg/partition"
)

// KafkaConfig points every rank of a run at the same topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	RunID   string
}

// Kafka is a gather transport over a shared topic. Non-coordinators publish their
// envelope and then wait for the coordinator's complete marker; the coordinator consumes
// until every rank has arrived and then publishes that marker.
type Kafka struct {
	id     partition.Identity
	cfg    KafkaConfig
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafka(cfg KafkaConfig, id partition.Identity, logger *slog.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	if cfg.RunID == "" {
		return nil, errors.New("run id is required so every rank joins the same run")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           20 * time.Millisecond,
		BatchBytes:             64 << 20,
	}

	return &Kafka{id: id, cfg: cfg, writer: writer, logger: logger}, nil
}

// nextFunc yields the next envelope of the current run and round.
type nextFunc func(ctx context.Context) (Envelope, error)

func (k *Kafka) Gather(ctx context.Context, round string, local *models.Tally) ([]*models.Tally, error) {
	if local == nil {
		return nil, errors.New("nil tally")
	}

	reader := k.newReader(round)
	defer reader.Close()
	next := func(ctx context.Context) (Envelope, error) { return k.next(ctx, reader, round) }

	if !k.id.IsCoordinator() {
		env := k.envelope(round, KindTally)
		env.Hashtags = local.Hashtags
		env.Languages = local.Languages
		if err := k.publish(ctx, env); err != nil {
			return nil, err
		}
		k.logger.Info("Published tally", "rank", k.id.Rank, "round", round, "topic", k.cfg.Topic)

		return nil, k.awaitComplete(ctx, next)
	}

	tallies, err := k.collect(ctx, round, local, next)
	if err != nil {
		return nil, err
	}
	if err := k.publish(ctx, k.envelope(round, KindComplete)); err != nil {
		return nil, err
	}
	return tallies, nil
}

// awaitComplete blocks a non-coordinator until the coordinator's complete marker arrives.
func (k *Kafka) awaitComplete(ctx context.Context, next nextFunc) error {
	for {
		env, err := next(ctx)
		if err != nil {
			return err
		}
		if env.Kind == KindComplete {
			return nil
		}
	}
}

// collect reads envelopes until every rank of the group has a tally, indexed by rank.
func (k *Kafka) collect(ctx context.Context, round string, local *models.Tally, next nextFunc) ([]*models.Tally, error) {
	tallies := make([]*models.Tally, k.id.Size)
	tallies[k.id.Rank] = local
	arrived := 1

	for arrived < k.id.Size {
		env, err := next(ctx)
		if err != nil {
			return nil, err
		}
		if env.Kind != KindTally {
			continue
		}
		if env.Size != k.id.Size || env.Rank <= partition.Coordinator || env.Rank >= k.id.Size {
			k.logger.Warn("Ignoring tally from outside the group", "rank", env.Rank, "size", env.Size, "round", round)
			continue
		}
		// Delivery is at-least-once, so a repeat is dropped rather than failing the round.
		if tallies[env.Rank] != nil {
			k.logger.Warn("Ignoring duplicate tally", "rank", env.Rank, "round", round)
			continue
		}

		tallies[env.Rank] = env.Tally()
		arrived++
		k.logger.Info("Received tally", "rank", env.Rank, "round", round, "arrived", arrived, "size", k.id.Size)
	}

	return tallies, nil
}

func (k *Kafka) envelope(round, kind string) Envelope {
	return Envelope{
		RunID: k.cfg.RunID,
		Round: round,
		Kind:  kind,
		Rank:  k.id.Rank,
		Size:  k.id.Size,
	}
}

func (k *Kafka) publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", env.Kind, err)
	}
	msg := kafka.Message{
		Key:   []byte(k.cfg.RunID),
		Value: value,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s envelope: %w", env.Kind, err)
	}
	return nil
}

// next returns the next envelope that belongs to this run and round.
func (k *Kafka) next(ctx context.Context, reader *kafka.Reader, round string) (Envelope, error) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return Envelope{}, fmt.Errorf("failed to read from %s: %w", k.cfg.Topic, err)
		}

		var env Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			k.logger.Warn("Skipping undecodable message", "offset", msg.Offset, "error", err)
			continue
		}
		if env.RunID == k.cfg.RunID && env.Round == round {
			return env, nil
		}
	}
}

// newReader starts a consumer group private to this rank and round, reading from the
// start of the topic so nothing published before it joined is missed.
func (k *Kafka) newReader(round string) *kafka.Reader {
	roundKey := uuid.NewSHA1(uuid.NameSpaceOID, []byte(round)).String()[:8]
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.cfg.Brokers,
		Topic:       k.cfg.Topic,
		GroupID:     fmt.Sprintf("tweetrank-%s-%s-%d", k.cfg.RunID, roundKey, k.id.Rank),
		StartOffset: kafka.FirstOffset,
		MaxBytes:    64 << 20,
	})
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
