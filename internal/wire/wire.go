//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"readrecall-api/internal/application/book"
	"readrecall-api/internal/application/checkpoint"
	"readrecall-api/internal/application/reading"
	"readrecall-api/internal/application/search"
	"readrecall-api/internal/config"
	"readrecall-api/internal/domain/repository"
	"readrecall-api/internal/infrastructure/llm"
	"readrecall-api/internal/infrastructure/messaging"
	"readrecall-api/internal/infrastructure/persistence/postgres"
	"readrecall-api/internal/infrastructure/persistence/redis"
	"readrecall-api/internal/infrastructure/storage"
	"readrecall-api/internal/interfaces/http/handler"
	"readrecall-api/internal/interfaces/http/router"
)

// InitializeApp 初始化 API 网关应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		VectorSet,
		ServiceSet,
		HandlerSet,
		wire.Struct(new(router.Handlers), "*"),
		router.New,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeWorker 初始化任务执行器
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerApp, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		VectorSet,
		ProvideExtractService,
		llm.NewEinoFactory,
		ProvideGenerator,
		wire.Bind(new(checkpoint.Generator), new(*checkpoint.LLMGenerator)),
		ProvidePipeline,
		checkpoint.NewWorker,
		ProvideCheckpointConsumer,
		ProvideBookProcessConsumer,
		wire.Struct(new(WorkerApp), "*"),
	)
	return nil, nil, nil
}

// RepoSet PostgreSQL 提供者集合
var RepoSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewBookRepository,
	postgres.NewReadingStateRepository,
	postgres.NewArtifactRepository,
	postgres.NewJobRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.BookRepository), new(*postgres.BookRepository)),
	wire.Bind(new(repository.ReadingStateRepository), new(*postgres.ReadingStateRepository)),
	wire.Bind(new(repository.ArtifactRepository), new(*postgres.ArtifactRepository)),
	wire.Bind(new(repository.JobRepository), new(*postgres.JobRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	messaging.NewJobQueueAdapter,
	wire.Bind(new(checkpoint.JobQueue), new(*messaging.JobQueueAdapter)),
	wire.Bind(new(book.ProcessQueue), new(*messaging.JobQueueAdapter)),
)

// VectorSet 可选向量检索提供者集合（Milvus/Embedding 不可用时禁用）
var VectorSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideEmbedderOptional,
	ProvideArtifactIndexOptional,
	ProvideArtifactIndexer,
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ProvideExtractService,
	ProvideFileStore,
	wire.Bind(new(book.FileStore), new(*storage.LocalStore)),
	ProvideBookService,
	llm.NewEinoFactory,
	ProvideGenerator,
	wire.Bind(new(checkpoint.Generator), new(*checkpoint.LLMGenerator)),
	ProvidePipeline,
	checkpoint.NewJobService,
	reading.NewService,
	search.NewService,
)

// HandlerSet HTTP 处理器提供者集合
var HandlerSet = wire.NewSet(
	ProvideAuthConfig,
	ProvideRateLimiter,
	handler.NewAuthHandler,
	handler.NewHealthHandler,
	handler.NewBookHandler,
	handler.NewJobHandler,
	handler.NewReadingHandler,
	handler.NewSearchHandler,
)
