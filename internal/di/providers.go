package di

import (
	"fmt"

	"marketpulse/internal/domain/repository"
	"marketpulse/internal/domain/service"
	"marketpulse/internal/fetcher"
	"marketpulse/internal/handler/api"
	internalrepo "marketpulse/internal/repository"
	"marketpulse/internal/service/llm"
	"marketpulse/internal/usecase"
	"marketpulse/pkg/cache"
	"marketpulse/pkg/config"
	xhttp "marketpulse/pkg/http"
	pkgkafka "marketpulse/pkg/kafka"
	"marketpulse/pkg/logger"
	"marketpulse/pkg/metrics"
	"marketpulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideCacheStore creates the configured cache backend.
func ProvideCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisStore(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideQuoteFetcher creates the quote provider client.
func ProvideQuoteFetcher(cfg *config.Config) usecase.QuoteFetcher {
	return fetcher.NewStooqClient(cfg.Quotes.BaseURL, cfg.Refresh.FetchTimeout)
}

// ProvideHeadlineFetcher creates the RSS feed fetcher.
func ProvideHeadlineFetcher(cfg *config.Config) usecase.HeadlineFetcher {
	return fetcher.NewRSSFetcher(cfg.Headlines.PerFeedLimit, cfg.Headlines.MaxAge)
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePublisher creates the Kafka snapshot publisher, or nil when
// publishing is disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Publisher.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Publisher.Brokers),
		pkgkafka.WithCompression(cfg.Publisher.Compression),
		pkgkafka.WithRequiredAcks(cfg.Publisher.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Publisher.WriteTimeout, cfg.Publisher.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewSnapshotPublisher(producer, cfg.Publisher.Topic), nil
}

// ProvideTaskStore opens the task database.
func ProvideTaskStore(cfg *config.Config) (repository.TaskStore, error) {
	return internalrepo.NewTaskRepository(cfg.Tasks.DBPath)
}

// ProvideSummarizer creates the LLM summarizer, or nil when no API key is
// configured.
func ProvideSummarizer(cfg *config.Config) service.Summarizer {
	if s := llm.NewOpenAISummarizer(cfg); s != nil {
		return s
	}
	return nil
}

// ProvideAggregator creates the refresh pipeline.
func ProvideAggregator(
	log *logger.Logger,
	store cache.Store,
	quotes usecase.QuoteFetcher,
	feeds usecase.HeadlineFetcher,
	m repository.Metrics,
	pub repository.Publisher,
	cfg *config.Config,
) *usecase.Aggregator {
	return usecase.NewAggregator(log, store, quotes, feeds, m, pub, cfg)
}

// ProvideSynthesizer creates the decision synthesizer.
func ProvideSynthesizer(cfg *config.Config) *usecase.Synthesizer {
	return usecase.NewSynthesizer(cfg)
}

// ProvideBriefService creates the brief pipeline.
func ProvideBriefService(log *logger.Logger, summarizer service.Summarizer, tasks repository.TaskStore) *usecase.BriefService {
	return usecase.NewBriefService(log, summarizer, tasks)
}

// ProvideHandler creates the dashboard API handler.
func ProvideHandler(
	log *logger.Logger,
	aggregator *usecase.Aggregator,
	decisions *usecase.Synthesizer,
	briefs *usecase.BriefService,
	tasks repository.TaskStore,
) xhttp.Handler {
	return api.NewDashboardHandler(log, aggregator, decisions, briefs, tasks)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	aggregator *usecase.Aggregator,
	store cache.Store,
	pub repository.Publisher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, aggregator, store, pub, handler)
}
