package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"findash/internal/config"
	"findash/internal/server"
	"findash/internal/util"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	Long: `Start the HTTP API and the embedded front end.

--port only applies when config.toml does not set server.port.`,
	RunE: runServe,
}

type serveFlags struct {
	port    int
	dev     bool
	dataDir string
	noOpen  bool
}

var sf serveFlags

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sf.port, "port", 0, "server port (used only when config.toml has no port)")
	cmd.Flags().BoolVar(&sf.dev, "dev", false, "development mode")
	cmd.Flags().StringVar(&sf.dataDir, "dataDir", "", "data directory (overrides config)")
	cmd.Flags().BoolVar(&sf.noOpen, "no-browser", false, "do not open a browser")
}

// applyServeFlags 命令行参数覆盖配置
func applyServeFlags(cfg *config.AppConfig, info config.LoadConfigInfo, f serveFlags) {
	if f.port > 0 && !info.PortSpecified {
		cfg.Server.Port = f.port
	}
	if f.dev {
		cfg.Server.DevMode = true
	}
	if f.dataDir != "" {
		cfg.Data.DataDir = f.dataDir
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("==========================================")
	fmt.Println("  findash - financial & recruiting dashboards")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Printf("failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	applyServeFlags(cfg, info, sf)
	util.InitLogger(cfg.Log.Level, cfg.Log.Pretty || cfg.Server.DevMode)

	// 端口未显式配置且被占用时向后顺延
	if !info.PortSpecified {
		if port, err := util.FindAvailablePort(cfg.Server.Port, 20); err == nil && port != cfg.Server.Port {
			util.LogWarn("port busy, using next free port", map[string]interface{}{"from": cfg.Server.Port, "to": port})
			cfg.Server.Port = port
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer srv.Close()

	fmt.Printf("data dir: %s\n", config.ResolveDataDir(cfg))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("listening on port %d ...\n", cfg.Server.Port)
		errCh <- srv.Run(ctx, addr)
	}()

	switch {
	case cfg.Server.DevMode:
		fmt.Printf("dev mode: open %s\n", url)
	case !sf.noOpen:
		fmt.Printf("opening browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("could not open a browser, visit %s manually\n", url)
		}
	}
	fmt.Println("\nPress Ctrl+C to stop...")

	if err := <-errCh; err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	fmt.Println("\nshut down")
	return nil
}
