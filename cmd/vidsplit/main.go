package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vidsplit/vidsplit/internal/api"
	"github.com/vidsplit/vidsplit/internal/artifacts"
	"github.com/vidsplit/vidsplit/internal/config"
	"github.com/vidsplit/vidsplit/internal/db"
	"github.com/vidsplit/vidsplit/internal/export"
	"github.com/vidsplit/vidsplit/internal/janitor"
	"github.com/vidsplit/vidsplit/internal/logging"
	"github.com/vidsplit/vidsplit/internal/mirror"
	"github.com/vidsplit/vidsplit/internal/probe"
	"github.com/vidsplit/vidsplit/internal/render"
	"github.com/vidsplit/vidsplit/internal/session"
	"github.com/vidsplit/vidsplit/internal/ui"
)

func main() {
	_ = godotenv.Load()

	var (
		flagPort     int
		flagDataDir  string
		flagHeadless bool
	)

	root := &cobra.Command{
		Use:          "vidsplit",
		Short:        "Local agent that splits one video into rendered segment clips",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.SetPort(flagPort)
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.SetDataDir(flagDataDir)
			}
			if flagHeadless {
				cfg.SetHeadless(true)
			}
			return run(cfg)
		},
	}

	root.Flags().IntVar(&flagPort, "port", config.DefaultPort, "API listen port")
	root.Flags().StringVar(&flagDataDir, "data-dir", "", "Data directory (database, uploads, job output)")
	root.Flags().BoolVar(&flagHeadless, "headless", false, "Run without the system tray")

	if err := root.Execute(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run(cfg config.Config) error {
	startTime := time.Now()

	for _, dir := range []string{cfg.DataDir(), cfg.WorkRoot(), cfg.UploadsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting vidsplit agent", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := session.NewRepository(database.Conn())
	sessions := session.NewService(repo, logging.WithComponent(logger, "session"))

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Printf("║           VIDSPLIT AGENT v%-8s            ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:     http://127.0.0.1:%-14d ║\n", cfg.Port())
	fmt.Printf("║  Render URL:  %-31s ║\n", cfg.RenderURL())
	fmt.Println("╚═══════════════════════════════════════════════╝")
	fmt.Println()

	renderer := render.NewHTTPClient(cfg.RenderURL(), cfg.RenderTimeout(), logging.WithComponent(logger, "render"))

	var artifactMirror export.Mirror
	if cfg.S3Bucket() != "" {
		m, err := mirror.NewS3Mirror(context.Background(), cfg.S3Bucket(), cfg.S3Prefix(), cfg.S3Region(), logger)
		if err != nil {
			logger.Warn("S3 mirror unavailable", "error", err)
		} else {
			artifactMirror = m
			logger.Info("S3 mirror enabled", "bucket", cfg.S3Bucket())
		}
	}

	exporter := export.NewOrchestrator(export.Config{
		Renderer:    renderer,
		WorkRoot:    cfg.WorkRoot(),
		ProjectFile: cfg.ProjectFile(),
		Recorder:    sessions,
		Mirror:      artifactMirror,
		Logger:      logging.WithComponent(logger, "export"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go janitor.New(cfg.WorkRoot(), cfg.Retention(), logging.WithComponent(logger, "janitor")).Run(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		UploadsDir: cfg.UploadsDir(),
		Sessions:   sessions,
		Exporter:   exporter,
		Artifacts:  artifacts.NewServer(cfg.WorkRoot(), logger),
		Prober:     probe.NewFFprobe(cfg.FFprobePath(), logger),
		Logger:     logger,
		StartTime:  startTime,
		Version:    config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Sessions: sessions,
			Logger:   logger,
			OnOpen: func() error {
				logger.Info("open editor requested from tray", "url", fmt.Sprintf("http://127.0.0.1:%d", cfg.Port()))
				return nil
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		sessions.SetJobListener(func(job session.Job) {
			switch job.Status {
			case session.JobStatusRunning:
				tray.UpdateStatus("Rendering")
			default:
				tray.UpdateStatus("Idle")
				if count, err := sessions.CompletedJobCount(context.Background()); err == nil {
					tray.UpdateJobCount(count)
				}
			}
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
