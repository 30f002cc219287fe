package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialdl/config"
	"socialdl/internal/extractor"
	"socialdl/internal/handler"
	"socialdl/internal/model"
	"socialdl/internal/resolver"
	"socialdl/internal/service"
	"socialdl/internal/strategy"
	"socialdl/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	cfg      *model.Config
	port     int
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "socialdl",
	Short: "Social media download link resolver",
	Long: `socialdl resolves TikTok, Instagram, YouTube, Twitter/X, Facebook and
Snapchat post URLs into direct media links, and can stream the media itself.`,
	PersistentPreRunE: setup,
	RunE:              runServe,
	SilenceUsage:      true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve one post URL and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "HTTP server port (overrides SERVER_PORT)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, resolveCmd)
}

// setup loads configuration and initializes the logger for every command
func setup(cmd *cobra.Command, _ []string) error {
	cfg = config.Load()
	if port > 0 {
		cfg.Server.Port = port
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	// resolve prints its result on stdout
	if cmd == resolveCmd {
		cfg.Logging.Stderr = true
	}

	if err := logger.Init(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

type services struct {
	resolve *service.ResolveService
	stream  *service.StreamService
}

func buildServices() (*services, error) {
	ytdlp := extractor.New(cfg.Extractor)

	chains, err := strategy.Build(cfg, ytdlp, strategy.NewHTTPClient())
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy chains: %w", err)
	}

	engine := resolver.NewEngine(chains,
		resolver.WithAttemptTimeout(cfg.Resolver.AttemptTimeout),
		resolver.WithChainBudget(cfg.Resolver.ChainBudget),
	)
	for _, p := range model.SupportedPlatforms() {
		logger.Logger.Debug("Strategy chain", zap.String("platform", string(p)), zap.Strings("chain", engine.Chain(p)))
	}

	return &services{
		resolve: service.NewResolveService(engine, cfg.Security.MaxURLLength),
		stream:  service.NewStreamService(ytdlp),
	}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	defer logger.Sync()

	logger.Logger.Info("Starting Social Downloader Server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	svcs, err := buildServices()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg, svcs.resolve, svcs.stream)

	// No WriteTimeout: direct downloads stream for as long as the media lasts.
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Logger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	logger.Logger.Info("Server stopped")
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	svcs, err := buildServices()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svcs.resolve.Resolve(ctx, args[0])
	if err != nil {
		var failure *resolver.Failure
		if errors.As(err, &failure) {
			for _, msg := range failure.Messages() {
				fmt.Fprintln(cmd.ErrOrStderr(), "  "+msg)
			}
		}
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
