// Package servecmder provides the serve command for running the mind as a
// long-lived server.
package servecmder

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/api"
	"github.com/inwardlabs/psyche/api/mcp"
	"github.com/inwardlabs/psyche/pkg/config"
	"github.com/inwardlabs/psyche/pkg/dream"
	embeddingutils "github.com/inwardlabs/psyche/pkg/embeddings/utils"
	"github.com/inwardlabs/psyche/pkg/engine"
	"github.com/inwardlabs/psyche/pkg/eventstream"
	"github.com/inwardlabs/psyche/pkg/eventstream/kafka"
	"github.com/inwardlabs/psyche/pkg/eventstream/nop"
	"github.com/inwardlabs/psyche/pkg/logger"
	"github.com/inwardlabs/psyche/pkg/memory"
	memoryinmemory "github.com/inwardlabs/psyche/pkg/memory/inmemory"
	memorysqlite "github.com/inwardlabs/psyche/pkg/memory/sqlite"
	"github.com/inwardlabs/psyche/pkg/recall"
	"github.com/inwardlabs/psyche/pkg/responder"
	responderollama "github.com/inwardlabs/psyche/pkg/responder/ollama"
	"github.com/inwardlabs/psyche/pkg/responder/rulebased"
	"github.com/inwardlabs/psyche/pkg/sentiment"
	"github.com/inwardlabs/psyche/pkg/values"
	vectorutils "github.com/inwardlabs/psyche/pkg/vector/utils"
)

type ServeCommander struct {
	apiListen  string
	mcpListen  string
	sqlitePath string
	idleEvery  time.Duration
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the mind as a long-lived server.

Assembles the mind from the configured providers (memory, vector store,
embeddings, responder, event stream) and exposes it over two surfaces:
  - the HTTP API (turns, idle ticks, dreams, state, memory queries, recall)
  - an MCP server so agents can inspect state and query memories as tools

While running, the mind ticks on its own: energy recovers, drives drift,
memory maintenance runs, and dreams may trigger during idle stretches.

Examples:
  psyche serve
  psyche serve --api-listen :8080 --mcp-listen :8081
  psyche serve --sqlite psyche.sqlite
  psyche serve --idle-every 10s`

const serveShortDesc string = "Run the mind as a server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg

			if !cmd.Flags().Changed("api-listen") {
				cmder.apiListen = cfg.API.Listen
			}

			if !cmd.Flags().Changed("sqlite") {
				cmder.sqlitePath = cfg.Storage.SQLitePath
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiListen, "api-listen", "a", defaults.API.Listen, "Address for the API server to listen on")
	cmd.Flags().StringVarP(&cmder.mcpListen, "mcp-listen", "m", ":8081", "Address for the MCP server to listen on (empty to disable)")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to the long-term memory SQLite database")
	cmd.Flags().DurationVar(&cmder.idleEvery, "idle-every", 30*time.Second, "Interval between idle ticks (0 to disable)")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	mind, err := c.assembleMind()
	if err != nil {
		return err
	}
	defer mind.Close()

	apiServer, err := api.NewServer(api.Config{ListenAddr: c.apiListen}, mind, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting API server",
		zap.String("api_addr", c.apiListen),
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	var mcpHTTP *http.Server
	if c.mcpListen != "" {
		mcpServer, err := mcp.NewServer(mcp.Config{Mind: mind, Logger: c.logger})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}

		mcpHTTP = &http.Server{
			Addr:              c.mcpListen,
			Handler:           mcpServer.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		c.logger.Info("starting MCP server",
			zap.String("mcp_addr", c.mcpListen),
		)

		go func() {
			if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("MCP server error: %w", err)
			}
		}()
	}

	// The idle loop gives the mind its own sense of passing time.
	idleCtx, stopIdle := context.WithCancel(context.Background())
	defer stopIdle()
	if c.idleEvery > 0 {
		go c.idleLoop(idleCtx, mind)
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	stopIdle()

	if err := apiServer.Shutdown(); err != nil {
		c.logger.Warn("API server shutdown", zap.Error(err))
	}

	if mcpHTTP != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mcpHTTP.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("MCP server shutdown", zap.Error(err))
		}
	}

	return nil
}

func (c *ServeCommander) idleLoop(ctx context.Context, mind *engine.Mind) {
	ticker := time.NewTicker(c.idleEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := mind.IdleTick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("idle tick failed", zap.Error(err))
				continue
			}
			c.logger.Debug("idle tick",
				zap.Int("tick", result.Tick),
				zap.Bool("maintained", result.Maintained),
				zap.Bool("dreamed", result.Dreamed),
			)
		}
	}
}

// assembleMind builds the mind from the configured providers.
func (c *ServeCommander) assembleMind() (*engine.Mind, error) {
	ltm, err := c.newMemoryDriver()
	if err != nil {
		return nil, err
	}

	rsp, err := c.newResponder()
	if err != nil {
		return nil, err
	}

	publisher, err := c.newPublisher()
	if err != nil {
		return nil, err
	}

	index, err := c.newRecallIndex()
	if err != nil {
		return nil, err
	}

	vs, err := values.NewSystem(values.Defaults(), values.DefaultReshapeThreshold)
	if err != nil {
		return nil, fmt.Errorf("creating value system: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	weaver, err := dream.NewWeaver(dream.DefaultParams(), dream.DefaultThemes(), rng, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating dream weaver: %w", err)
	}

	mind, err := engine.New(engine.DefaultConfig(), engine.Deps{
		LongTerm:  ltm,
		Analyzer:  sentiment.NewLexicon(),
		Responder: rsp,
		Values:    vs,
		Weaver:    weaver,
		Publisher: publisher,
		Recall:    index,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("assembling mind: %w", err)
	}

	return mind, nil
}

func (c *ServeCommander) newMemoryDriver() (memory.Driver, error) {
	switch c.cfg.Memory.Provider {
	case "sqlite":
		if c.sqlitePath == "" {
			return nil, fmt.Errorf("memory provider %q requires storage.sqlite_path or --sqlite", c.cfg.Memory.Provider)
		}
		driver, err := memorysqlite.NewDriver(c.sqlitePath, memory.DefaultParams())
		if err != nil {
			return nil, fmt.Errorf("creating SQLite memory driver: %w", err)
		}
		c.logger.Info("using SQLite long-term memory", zap.String("path", c.sqlitePath))
		return driver, nil
	case "inmemory", "":
		c.logger.Info("using in-memory long-term memory")
		return memoryinmemory.NewDriver(memory.DefaultParams()), nil
	default:
		return nil, fmt.Errorf("unsupported memory provider: %s", c.cfg.Memory.Provider)
	}
}

func (c *ServeCommander) newResponder() (responder.Responder, error) {
	switch c.cfg.Responder.Provider {
	case "ollama":
		rsp, err := responderollama.New(responderollama.Config{
			BaseURL: c.cfg.Responder.Target,
			Model:   c.cfg.Responder.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating ollama responder: %w", err)
		}
		c.logger.Info("using ollama responder",
			zap.String("target", c.cfg.Responder.Target),
			zap.String("model", c.cfg.Responder.Model),
		)
		return rsp, nil
	case "rulebased", "":
		c.logger.Info("using rule-based responder")
		return rulebased.New(), nil
	default:
		return nil, fmt.Errorf("unsupported responder provider: %s", c.cfg.Responder.Provider)
	}
}

func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	if !c.cfg.EventStream.Enabled {
		return nop.NewPublisher(), nil
	}

	brokers := strings.Split(c.cfg.EventStream.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.cfg.EventStream.Topic,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}
	return publisher, nil
}

// newRecallIndex wires semantic recall when both an embedder and a vector
// store are configured. Returns nil when either is missing; the mind falls
// back to tag search.
func (c *ServeCommander) newRecallIndex() (*recall.Index, error) {
	if c.cfg.VectorStore.Provider == "" || c.cfg.Embedding.Provider == "" {
		c.logger.Info("semantic recall disabled: no vector store or embedder configured")
		return nil, nil
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.cfg.Embedding.Provider,
		TargetURL:    c.cfg.Embedding.Target,
		Model:        c.cfg.Embedding.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType: c.cfg.VectorStore.Provider,
		DBPath:       c.cfg.VectorStore.Target,
		Dimensions:   c.cfg.Embedding.Dimensions,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	c.logger.Info("semantic recall enabled",
		zap.String("vector_store", c.cfg.VectorStore.Provider),
		zap.String("embedding_provider", c.cfg.Embedding.Provider),
		zap.String("embedding_model", c.cfg.Embedding.Model),
	)

	return recall.NewIndex(embedder, store, c.logger), nil
}
