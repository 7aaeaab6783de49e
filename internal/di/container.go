// Package di provides the dependency injection container for the
// application. Components are constructed once, in dependency order, and
// handed to the orchestrator explicitly; nothing is a global singleton.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/internal/persistence"
	"github.com/caseymrobbins/personal-ai-sub001/internal/pipeline"
	"github.com/caseymrobbins/personal-ai-sub001/internal/routing"
	"github.com/caseymrobbins/personal-ai-sub001/internal/strongman"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	"github.com/caseymrobbins/personal-ai-sub001/internal/viewpoint"
	ws "github.com/caseymrobbins/personal-ai-sub001/internal/websocket"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       logging.Logger
	Scorer       *routing.Scorer
	Analyzer     *viewpoint.Analyzer
	StrongManner *strongman.Engine
	Synthesizer  *synthesis.Synthesizer
	SummaryStore pipeline.SummaryStore
	ResultCache  pipeline.ResultCache
	Executor     *pipeline.Executor
	Hub          *ws.Hub

	redisClient  *redis.Client
	sqliteStore  *persistence.SQLiteStore
	shutdownHubs context.CancelFunc
}

// NewContainer builds every component in dependency order
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	c.Logger = logging.NewLogger(logging.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Format)

	if err := c.initializeStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.initializePipeline()
	return c, nil
}

// initializeStorage selects the summary store and result cache backends
func (c *Container) initializeStorage() error {
	if c.Config.Persistence.Enabled {
		store, err := persistence.NewSQLiteStore(c.Config.Persistence.DatabasePath, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to open summary store: %w", err)
		}
		c.sqliteStore = store
		c.SummaryStore = store
	} else {
		c.SummaryStore = persistence.NoopStore{}
	}

	if c.Config.Redis.Enabled {
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		c.ResultCache = pipeline.NewRedisResultCache(c.redisClient,
			time.Duration(c.Config.Redis.TTLSeconds)*time.Second)
	} else {
		c.ResultCache = pipeline.NewMemoryResultCache(c.Config.Pipeline.ResultCacheSize)
	}
	return nil
}

// initializePipeline builds the stage components and the executor
func (c *Container) initializePipeline() {
	c.Scorer = routing.NewScorer(&c.Config.Routing)
	c.Analyzer = viewpoint.NewAnalyzer(c.Config.Pipeline.MaxOpposingViewpoints, c.Scorer)
	c.StrongManner = strongman.NewEngine(&c.Config.Pipeline, c.Logger)
	c.Synthesizer = synthesis.NewSynthesizer(c.Logger)
	c.Executor = pipeline.NewExecutor(
		&c.Config.Pipeline,
		c.Scorer,
		c.Analyzer,
		c.StrongManner,
		c.Synthesizer,
		c.SummaryStore,
		c.ResultCache,
		c.Logger,
	)
	c.Hub = ws.NewHub()
}

// StartHub runs the WebSocket hub until Shutdown is called
func (c *Container) StartHub(ctx context.Context) {
	hubCtx, cancel := context.WithCancel(ctx)
	c.shutdownHubs = cancel
	go c.Hub.Run(hubCtx)
}

// HealthCheck verifies the optional backends are reachable
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.redisClient != nil {
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unreachable: %w", err)
		}
	}
	return nil
}

// Shutdown releases all held resources
func (c *Container) Shutdown() error {
	if c.shutdownHubs != nil {
		c.shutdownHubs()
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			return fmt.Errorf("closing redis client: %w", err)
		}
	}
	if c.sqliteStore != nil {
		if err := c.sqliteStore.Close(); err != nil {
			return fmt.Errorf("closing summary store: %w", err)
		}
	}
	return nil
}
