package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/montyhall/internal/config"
	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/rpc"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("MONTYHALL_CONFIG", ""), "path to YAML config")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", cfg.Addr, err)
	}

	gs := grpc.NewServer()
	rpc.NewServer(infer.NewLocalEngine()).Register(gs)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("shutting down inference server...")
		gs.GracefulStop()
	}()

	log.Printf("inference server listening on %s", lis.Addr())
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
