// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"os"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"readrecall-api/internal/application/book"
	"readrecall-api/internal/application/checkpoint"
	"readrecall-api/internal/application/extract"
	"readrecall-api/internal/application/search"
	"readrecall-api/internal/config"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	infraembedding "readrecall-api/internal/infrastructure/embedding"
	"readrecall-api/internal/infrastructure/extractor"
	"readrecall-api/internal/infrastructure/llm"
	"readrecall-api/internal/infrastructure/messaging"
	"readrecall-api/internal/infrastructure/persistence/milvus"
	"readrecall-api/internal/infrastructure/persistence/postgres"
	"readrecall-api/internal/infrastructure/persistence/redis"
	"readrecall-api/internal/infrastructure/storage"
	"readrecall-api/internal/interfaces/http/middleware"
	"readrecall-api/internal/interfaces/http/router"
	"readrecall-api/pkg/logger"
)

// App API 网关应用容器
type App struct {
	Router   *router.Router
	PgClient *postgres.Client
	Index    search.ArtifactIndex
}

// CheckpointConsumer 检查点生成流的消费者
type CheckpointConsumer *messaging.Consumer

// BookProcessConsumer 图书处理流的消费者
type BookProcessConsumer *messaging.Consumer

// WorkerApp 任务执行器容器
type WorkerApp struct {
	PgClient            *postgres.Client
	Index               search.ArtifactIndex
	CheckpointConsumer  CheckpointConsumer
	BookProcessConsumer BookProcessConsumer
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideMilvusClientOptional 提供可选的 Milvus 客户端
// 不可达时返回 nil，向量检索功能整体禁用而不阻塞启动。
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Database.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus not available, vector search disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusRepositoryOptional 提供可选的向量仓储
func ProvideMilvusRepositoryOptional(client *milvus.Client) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client)
}

// ProvideEmbedderOptional 提供可选的 Embedder
func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, vector search disabled", "error", err.Error())
		return nil, nil
	}
	return embedder, nil
}

// ProvideArtifactIndexOptional 提供可选的产物索引
// Milvus 或 Embedder 任一缺失时返回 nil。
func ProvideArtifactIndexOptional(repo *milvus.Repository, embedder einoembedding.Embedder) search.ArtifactIndex {
	if repo == nil || embedder == nil {
		return nil
	}
	return milvus.NewArtifactIndexAdapter(repo, embedder)
}

// ProvideArtifactIndexer 把产物索引适配为管道的索引 port
func ProvideArtifactIndexer(index search.ArtifactIndex) checkpoint.ArtifactIndexer {
	if index == nil {
		return nil
	}
	return index
}

// ProvideExtractService 提供图书处理服务
func ProvideExtractService(books repository.BookRepository) *extract.Service {
	extractors := map[entity.BookFormat]extract.TextExtractor{
		entity.BookFormatEPUB: extractor.NewEPUBExtractor(),
		entity.BookFormatPDF:  extractor.NewPDFExtractor(),
		entity.BookFormatTXT:  extractor.NewTXTExtractor(),
	}
	return extract.NewService(books, extractors)
}

// ProvideFileStore 提供上传文件存储
func ProvideFileStore(cfg *config.Config) (*storage.LocalStore, error) {
	return storage.NewLocalStore(&cfg.Storage)
}

// ProvideBookService 提供图书服务
func ProvideBookService(
	books repository.BookRepository,
	artifacts repository.ArtifactRepository,
	states repository.ReadingStateRepository,
	jobs repository.JobRepository,
	txm repository.Transactor,
	store book.FileStore,
	queue book.ProcessQueue,
	index search.ArtifactIndex,
	cache *redis.Cache,
	extractSvc *extract.Service,
	cfg *config.Config,
) *book.Service {
	return book.NewService(books, artifacts, states, jobs, txm, store, queue, index, cache, extractSvc, cfg.Storage.MaxUploadSize)
}

// ProvideGenerator 提供 LLM 生成器
func ProvideGenerator(factory *llm.EinoFactory, cfg *config.Config) *checkpoint.LLMGenerator {
	provider := cfg.LLM.DefaultProvider
	model := ""
	if p, ok := cfg.LLM.Providers[provider]; ok {
		model = p.Model
	}
	return checkpoint.NewLLMGenerator(factory, checkpoint.GeneratorConfig{
		Provider:       provider,
		Model:          model,
		MaxAttempts:    cfg.Checkpoint.MaxAttempts,
		RetryBase:      cfg.Checkpoint.RetryBase,
		AttemptTimeout: cfg.Checkpoint.AttemptTimeout,
	})
}

// ProvidePipeline 提供检查点生成管道
func ProvidePipeline(gen checkpoint.Generator, artifacts repository.ArtifactRepository, indexer checkpoint.ArtifactIndexer, cfg *config.Config) *checkpoint.Pipeline {
	return checkpoint.NewPipeline(gen, artifacts, indexer, checkpoint.PipelineConfig{
		Step:          cfg.Checkpoint.Step,
		FallbackRunes: cfg.Checkpoint.FallbackRunes,
	})
}

// ProvideRateLimiter 提供滑动窗口限流器
func ProvideRateLimiter(redisClient *redis.Client) middleware.RateLimiter {
	return redis.NewRateLimiter(redisClient)
}

// ProvideAuthConfig 提供认证配置
func ProvideAuthConfig(cfg *config.Config) middleware.AuthConfig {
	return middleware.AuthConfig{
		Secret:            cfg.Security.JWT.Secret,
		Issuer:            cfg.Security.JWT.Issuer,
		Expiration:        cfg.Security.JWT.Expiration,
		RefreshExpiration: cfg.Security.JWT.RefreshExpiration,
		SkipPaths:         middleware.DefaultSkipPaths,
		Enabled:           true,
	}
}

// ProvideCheckpointConsumer 提供检查点生成流的消费者
func ProvideCheckpointConsumer(redisClient *redis.Client, cfg *config.Config, worker *checkpoint.Worker) CheckpointConsumer {
	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamCheckpointGen,
		Group:         messaging.ConsumerGroupGenWorker,
		ConsumerName:  consumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})
	consumer.RegisterHandler(messaging.MsgTypeCheckpointGen, messaging.NewCheckpointGenHandler(worker))
	return CheckpointConsumer(consumer)
}

// ProvideBookProcessConsumer 提供图书处理流的消费者
func ProvideBookProcessConsumer(redisClient *redis.Client, cfg *config.Config, extractSvc *extract.Service, cache *redis.Cache) BookProcessConsumer {
	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamBookProcess,
		Group:         messaging.ConsumerGroupBookProcessor,
		ConsumerName:  consumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})
	consumer.RegisterHandler(messaging.MsgTypeBookProcess, messaging.NewBookProcessHandler(func(ctx context.Context, bookID string) error {
		if _, err := extractSvc.Process(ctx, bookID); err != nil {
			return err
		}
		if cache != nil {
			if err := cache.InvalidateBook(ctx, bookID); err != nil {
				logger.Warn(ctx, "failed to invalidate book cache", "book_id", bookID, "error", err.Error())
			}
		}
		return nil
	}))
	return BookProcessConsumer(consumer)
}

// consumerName 生成本进程的消费者名
func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
