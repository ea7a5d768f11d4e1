package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/deepresearch/config"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/core"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepresearch/internal/server"
	"github.com/mohammad-safakhou/deepresearch/internal/store"
)

func serveCMD() *cobra.Command {
	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			tel := telemetry.NewTelemetry(cfg.Telemetry)
			orchLogger := log.New(os.Stderr, "[ORCH] ", log.LstdFlags)
			orch, err := core.NewStagedOrchestrator(cfg, orchLogger, tel, nil)
			if err != nil {
				return err
			}

			archive, err := store.NewRunArchive(cfg.Storage)
			if err != nil {
				return err
			}
			defer archive.Close()

			if serveAddr == "" {
				serveAddr = cfg.Server.Addr
			}
			return server.New(orch, archive, tel).Start(serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	return serve
}
