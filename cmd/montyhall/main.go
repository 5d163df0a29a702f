package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/montyhall/internal/config"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/orchestrator"
	"github.com/danielpatrickdp/montyhall/internal/rpc"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("MONTYHALL_CONFIG", ""), "path to YAML config")
	remote := flag.Bool("remote", false, "run inference on the gRPC inference server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	st, err := store.NewStore(cfg.DB)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	var engine infer.Engine = infer.NewLocalEngine()
	engineName := "local"
	if *remote {
		client, err := rpc.NewClient(cfg.Addr)
		if err != nil {
			log.Fatalf("failed to connect to inference service at %s: %v", cfg.Addr, err)
		}
		defer client.Close()
		engine = client
		engineName = "remote"
	}

	orch := orchestrator.NewOrchestrator(st, engine, engineName, cfg.Simulation, cfg.GateThresholds())

	fmt.Println("Monty Hall driver ready.")
	fmt.Printf("  DB: %s | Engine: %s | Samples: %d | Particles: %d | Seed: %d\n",
		cfg.DB, engineName, cfg.Simulation.Samples, cfg.Simulation.Particles, cfg.Simulation.Seed)
	fmt.Println("Enter '<contestant> [host]' with doors 0-2 (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		cmd, err := orchestrator.ParseCommand(line)
		if err != nil {
			log.Printf("parse error: %v", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		out, err := orch.Run(ctx, cmd)
		cancel()
		if err != nil {
			if errors.Is(err, model.ErrInvalidScenario) {
				log.Printf("invalid scenario: the host never opens the contestant's door")
			} else {
				log.Printf("run error: %v", err)
			}
			if out.Run.RunID == "" {
				continue
			}
		}

		printRun(out)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("read input: %v", err)
	}
}

// #endregion main

// #region output
func printRun(out orchestrator.Outcome) {
	fmt.Println()
	for _, d := range model.Doors() {
		fmt.Printf("  door %d  %6d  %.4f\n", d, out.Run.Counts[d], out.Run.Frequencies[d])
	}
	if out.Result != nil {
		gd := out.Result.GateDecision
		fmt.Printf("[%s] %s decision=%s ess=%.1f log_marginal=%.4f\n\n",
			shortID(out.Run.RunID), out.Run.Mode, gd.Action, gd.ESS, out.Result.Population.LogMarginal)
		return
	}
	fmt.Printf("[%s] %s\n\n", shortID(out.Run.RunID), out.Run.Mode)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
