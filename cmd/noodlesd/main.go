// Command noodlesd runs a standalone NOODLES scene server: the scene
// engine, its WebSocket transport, and an optional out-of-band byte host,
// wired together the way a hand-written embedder would use the library
// (mirroring the shape of rigatoni.server.start_server, generalized past a
// single hardcoded starting_state).
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noodles-run/noodles-server/builtin/aspect"
	"github.com/noodles-run/noodles-server/bytehost"
	"github.com/noodles-run/noodles-server/engine"
	"github.com/noodles-run/noodles-server/transport"
	"github.com/noodles-run/noodles-server/types"
)

func main() {
	addr := flag.String("addr", ":50000", "address to listen for WebSocket connections on")
	byteAddr := flag.String("byte-addr", ":50001", "address to listen for out-of-band byte requests on")
	startingFile := flag.String("starting", "", "optional JSON file of starting components (engine.JSONParser format)")
	frameLog := flag.String("frame-log", "", "optional path to append a JSON line per broadcast frame (SPEC_FULL §C.4)")
	debugAspect := flag.Bool("debug-aspect", false, "log every scene operation via the Debug aspect")
	flag.Parse()

	logger := types.DefaultLogger()

	opts := []types.Option{
		types.WithLogger(logger),
		types.WithAspects(aspect.NewMetrics()),
	}
	if *debugAspect {
		opts = append(opts, types.WithAspects(aspect.NewDebug(logger)))
	}
	if *frameLog != "" {
		f, err := os.OpenFile(*frameLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Errorf("opening frame log: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		opts = append(opts, types.WithFrameLog(f))
	}

	var starting []types.StartingComponent
	if *startingFile != "" {
		data, err := os.ReadFile(*startingFile)
		if err != nil {
			logger.Errorf("reading starting components: %v", err)
			os.Exit(1)
		}
		parser := &engine.JSONParser{}
		starting, err = parser.DecodeStartingComponents(data)
		if err != nil {
			logger.Errorf("decoding starting components: %v", err)
			os.Exit(1)
		}
	}

	cfg := engine.NewConfig(opts...)

	byteURL, err := bytehost.LocalURL(addrPort(*byteAddr))
	if err != nil {
		logger.Errorf("resolving byte host URL: %v", err)
		os.Exit(1)
	}
	byteHost := bytehost.New(byteURL, logger)

	// engine.Scene and transport.Scene are each other's only collaborator -
	// transport.Scene is built first as a Broadcaster with its EngineScene
	// side left nil, then bound once the engine.Scene it will drive exists.
	tscene := transport.NewScene(nil, logger)
	scene, err := engine.NewScene(cfg, tscene, starting)
	if err != nil {
		logger.Errorf("constructing scene: %v", err)
		os.Exit(1)
	}
	tscene.BindEngine(scene)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopScene := scene.RunInBackground()
	defer stopScene()

	go func() {
		logger.Infof("byte host listening on %s", *byteAddr)
		if err := bytehost.Serve(*byteAddr, byteHost); err != nil && err != http.ErrServerClosed {
			logger.Errorf("byte host: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/", tscene.Handler())
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Infof("NOODLES server listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("websocket server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// addrPort extracts the numeric port from a ":PORT" or "host:PORT" listen
// address, for bytehost.LocalURL which needs the port as an int to build a
// reachable URL before the HTTP server has actually bound it.
func addrPort(addr string) int {
	i := len(addr) - 1
	for i >= 0 && addr[i] != ':' {
		i--
	}
	port := 0
	for _, c := range addr[i+1:] {
		if c < '0' || c > '9' {
			break
		}
		port = port*10 + int(c-'0')
	}
	return port
}
