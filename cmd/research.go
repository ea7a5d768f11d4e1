package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/deepresearch/config"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/core"
	"github.com/mohammad-safakhou/deepresearch/internal/agent/telemetry"
)

var stageLabels = map[core.StageID]string{
	core.StagePlan:   "Plan",
	core.StageSearch: "Search",
	core.StageReport: "Report",
}

func researchCMD() *cobra.Command {
	var research = &cobra.Command{
		Use:   "research <query>",
		Short: "Run a one-shot research pipeline for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.General.MaxProcessingTime > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.General.MaxProcessingTime)
				defer cancel()
			}

			tel := telemetry.NewTelemetry(cfg.Telemetry)
			sink := func(stage core.StageID, delta string) {
				fmt.Printf("[%s Stream] %s", stageLabels[stage], delta)
			}
			orchLogger := log.New(os.Stderr, "[ORCH] ", log.LstdFlags)
			orch, err := core.NewStagedOrchestrator(cfg, orchLogger, tel, sink)
			if err != nil {
				return err
			}

			result, err := orch.Run(ctx, query)
			if err != nil {
				return err
			}

			divider := strings.Repeat("-", 80)
			fmt.Println()
			fmt.Println("Research Plan:")
			fmt.Println(result.Plan)
			fmt.Println(divider)
			fmt.Println("Sources Retrieved:")
			for i, r := range result.Results {
				fmt.Printf("%d. %s (%s)\n", i+1, r.Title, r.Source)
				fmt.Printf("   URL: %s\n", r.URL)
			}
			fmt.Println(divider)
			fmt.Println("Final Report:")
			fmt.Println(result.Report)
			return nil
		},
	}
	return research
}
