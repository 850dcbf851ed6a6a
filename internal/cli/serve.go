package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/rumorguard/internal/api"
	"github.com/ppiankov/rumorguard/internal/logging"
	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/simulate"
	"github.com/ppiankov/rumorguard/internal/store"
	"github.com/ppiankov/rumorguard/internal/worker"
	"golang.org/x/sync/errgroup"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the claim intake and alert feed HTTP service",
	Long: `Serve starts the HTTP service:
- POST /api/submit_claim scores a claim and escalates risky ones
- GET  /api/alerts returns every alert in arrival order
- POST /api/ai/text proxies a free-form prompt to the configured model
- GET  /healthz reports readiness

With --simulate, synthetic cyclone rumors are submitted to the service
shortly after startup.

Example:
  rumorguard serve
  rumorguard serve --addr 0.0.0.0:8000 --simulate
  GEMINI_API_KEY=... rumorguard serve --simulate --simulate-loop`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8000)")
	serveCmd.Flags().Bool("simulate", false, "submit synthetic claims after startup")
	serveCmd.Flags().Bool("simulate-loop", false, "keep cycling the synthetic claims")
	serveCmd.Flags().String("claims", "", "YAML file of synthetic claims (default: built-in cyclone set)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("simulator.enabled", serveCmd.Flags().Lookup("simulate"))
	_ = viper.BindPFlag("simulator.loop", serveCmd.Flags().Lookup("simulate-loop"))
	_ = viper.BindPFlag("simulator.claims_file", serveCmd.Flags().Lookup("claims"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	logger := logging.New("serve")

	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	logStartup(logger, cfg, c)

	var limiter *worker.Limiter
	if cfg.Intake.RateLimit > 0 {
		limiter = worker.NewLimiter(cfg.Intake.RateLimit, cfg.Intake.Burst)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := api.New(api.Deps{
		Processor:      c.processor,
		Store:          store.NewAlertStore(),
		Provider:       c.provider,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logging.New("http"),
	})
	server := api.NewServer(cfg.Server, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})

	if cfg.Simulator.Enabled {
		sim, err := buildSimulator(cfg)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			n, err := sim.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("simulator: %w", err)
			}
			logger.Info("simulator finished", "submitted", n)
			return nil
		})
	}

	return g.Wait()
}

func buildSimulator(cfg *model.Config) (*simulate.Simulator, error) {
	var claims []model.Claim
	if cfg.Simulator.ClaimsFile != "" {
		loaded, err := worker.ReadClaimsFromFile(cfg.Simulator.ClaimsFile)
		if err != nil {
			return nil, fmt.Errorf("load simulator claims: %w", err)
		}
		claims = loaded
	}

	target := cfg.Simulator.TargetURL
	if target == "" {
		target = submitURL(cfg.Server.Addr)
	}

	// Each submission waits for verification, so allow for the model timeout
	timeout := time.Duration(cfg.LLM.Timeout)*time.Second + 10*time.Second

	return simulate.New(
		simulate.NewHTTPSubmitter(target, timeout),
		claims,
		simulate.Config{
			StartDelay: cfg.Simulator.StartDelay,
			Interval:   cfg.Simulator.Interval,
			Loop:       cfg.Simulator.Loop,
		},
		logging.New("simulator"),
	), nil
}
