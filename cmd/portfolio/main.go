package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/Araychaudhur/portfolio-2025/internal/ai"
	"github.com/Araychaudhur/portfolio-2025/internal/config"
	"github.com/Araychaudhur/portfolio-2025/internal/content"
	"github.com/Araychaudhur/portfolio-2025/internal/db"
	"github.com/Araychaudhur/portfolio-2025/internal/embedcache"
	"github.com/Araychaudhur/portfolio-2025/internal/handler"
	"github.com/Araychaudhur/portfolio-2025/internal/indexer"
	"github.com/Araychaudhur/portfolio-2025/internal/middleware"
	"github.com/Araychaudhur/portfolio-2025/internal/rag"
	"github.com/Araychaudhur/portfolio-2025/internal/repo"
	"github.com/Araychaudhur/portfolio-2025/internal/schedule"
	"github.com/Araychaudhur/portfolio-2025/internal/source"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "portfolio rag backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the ask api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "extract, embed and upsert all content into the index store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			return runIndex(cfg)
		},
	}

	rootCmd.AddCommand(serveCmd, indexCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func openStore(cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

func buildEmbedder(cfg *config.Config) (ai.IEmbedder, error) {
	provider, err := ai.NewProvider(cfg.AI.EmbedProvider, cfg.AI.EmbedData)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel)
	embedder = embedcache.WrapLRU(embedder, cfg.AI.CacheSize, time.Duration(cfg.AI.CacheTTLMin)*time.Minute)
	return embedder, nil
}

func buildGenerator(cfg *config.Config) (ai.IGenerator, error) {
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	return ai.NewGenerator(provider, cfg.AI.Model), nil
}

func buildIndexer(cfg *config.Config, conn *sql.DB, embedder ai.IEmbedder) (*indexer.Indexer, error) {
	contentStore, err := source.New(cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("init content store: %w", err)
	}
	extractor := content.NewExtractor(contentStore, content.ExtractorConfig{
		CaseDir:         cfg.Content.CaseDir,
		ReplayDir:       cfg.Content.ReplayDir,
		ProfileDir:      cfg.Content.ProfileDir,
		AllowedSlugs:    cfg.Index.AllowedSlugs,
		MaxSectionChars: cfg.Index.MaxSectionChars,
	})
	docRepo := repo.NewDocumentRepo(conn)
	return indexer.New(extractor, embedder, docRepo, cfg.Index.BatchSize), nil
}

func runIndex(cfg *config.Config) error {
	conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	ix, err := buildIndexer(cfg, conn, embedder)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := ix.Run(ctx); err != nil {
		return fmt.Errorf("index run: %w", err)
	}
	return nil
}

func runServer(cfg *config.Config) error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required for serve")
	}
	conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	docRepo := repo.NewDocumentRepo(conn)
	engine := rag.NewEngine(embedder, generator, docRepo, rag.NewKeywordClassifier(), rag.EngineConfig{
		FetchCount: cfg.Ask.FetchCount,
		Take:       cfg.Ask.Take,
	})

	deps := handler.RouterDeps{
		Ask:             handler.NewAskHandler(engine),
		Debug:           handler.NewDebugHandler(docRepo, docRepo, embedder),
		RateLimitWindow: time.Duration(cfg.Ask.RateLimitMS) * time.Millisecond,
	}

	web, err := webapi.NewEngine(
		"/api",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.Ask.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scheduler *schedule.ReindexScheduler
	if cfg.Index.Cron != "" {
		ix, err := buildIndexer(cfg, conn, embedder)
		if err != nil {
			return err
		}
		scheduler, err = schedule.NewReindexScheduler(ix, cfg.Index.Cron)
		if err != nil {
			return err
		}
		scheduler.Start(ctx)
	}

	logutil.GetLogger(ctx).Info("http server listening", zap.Int("port", cfg.Port))
	go func() {
		if err := web.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	if scheduler != nil {
		scheduler.Stop()
	}
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
