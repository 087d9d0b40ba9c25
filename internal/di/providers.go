package di

import (
	"fmt"

	"TickBoard/internal/domain/repository"
	"TickBoard/internal/handler/api"
	internalrepo "TickBoard/internal/repository"
	"TickBoard/internal/service/feed"
	"TickBoard/internal/service/poll"
	"TickBoard/internal/usecase"
	"TickBoard/pkg/config"
	xhttp "TickBoard/pkg/http"
	pkgkafka "TickBoard/pkg/kafka"
	"TickBoard/pkg/logger"
	"TickBoard/pkg/metrics"
	"TickBoard/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStream creates the push-channel stream.
func ProvideStream(cfg *config.Config, log *logger.Logger, m repository.Metrics) repository.SnapshotStream {
	return feed.New(
		cfg.Feed.PushURL,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.HandshakeTimeout,
		log,
		m,
	)
}

// ProvidePoller creates the polling fallback, or nil when disabled.
func ProvidePoller(cfg *config.Config, log *logger.Logger) *poll.Poller {
	if !cfg.Poll.Enabled {
		return nil
	}
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Poll.Timeout))
	source := poll.NewHTTPSource(cfg.Feed.SnapshotURL, client)
	return poll.NewPoller(source, cfg.Poll.Interval, log)
}

// ProvideNotifier selects the alert sink from config.
func ProvideNotifier(cfg *config.Config, log *logger.Logger) (repository.Notifier, error) {
	switch cfg.Alerts.Sink {
	case "log", "":
		return internalrepo.NewLogNotifier(log), nil
	case "redis":
		return internalrepo.NewRedisNotifier(
			cfg.Alerts.Redis.Addr,
			cfg.Alerts.Redis.Password,
			cfg.Alerts.Redis.DB,
			cfg.Alerts.Redis.Channel,
		), nil
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Alerts.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Alerts.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Alerts.Kafka.RequiredAcks),
			pkgkafka.WithTimeouts(cfg.Alerts.Kafka.WriteTimeout, cfg.Alerts.Kafka.WriteTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaNotifier(producer, cfg.Alerts.Kafka.Topic), nil
	default:
		return nil, fmt.Errorf("unknown alert sink %q", cfg.Alerts.Sink)
	}
}

// ProvideBoard creates the snapshot board.
func ProvideBoard() *usecase.Board {
	return usecase.NewBoard()
}

// ProvideDeduplicator creates the alert deduplicator.
func ProvideDeduplicator() *usecase.AlertDeduplicator {
	return usecase.NewAlertDeduplicator()
}

// ProvideCollector creates the snapshot collector use case.
func ProvideCollector(
	stream repository.SnapshotStream,
	poller *poll.Poller,
	board *usecase.Board,
	dedup *usecase.AlertDeduplicator,
	notifier repository.Notifier,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.SnapshotCollector {
	return usecase.NewSnapshotCollector(stream, poller, board, dedup, notifier, m, log)
}

// ProvideBoardHandler creates the view API handler.
func ProvideBoardHandler(log *logger.Logger, board *usecase.Board) xhttp.Handler {
	return api.NewBoardEchoHandler(log, board)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.SnapshotCollector,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, collector, handler)
}
