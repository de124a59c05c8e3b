// Command tracker runs the particle-filter road/ground tracker as a
// websocket service: one connection per vehicle, one fix in, one updated
// position estimate out. The road graph is either loaded from a
// previously saved file or imported fresh from an OpenStreetMap PBF
// extract.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/roadtrack/pkg/estimator"
	"github.com/lintang-b-s/roadtrack/pkg/logger"
	"github.com/lintang-b-s/roadtrack/pkg/rgraph"
	"github.com/lintang-b-s/roadtrack/pkg/rgraph/osmimport"
	"github.com/lintang-b-s/roadtrack/pkg/rtconfig"
	"github.com/lintang-b-s/roadtrack/pkg/trackserver"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config-path", ".", "directory containing the tracker config file")
		configName = flag.String("config-name", "tracker", "config file base name (without extension)")
		graphPath  = flag.String("graph", "graph.bz2", "path to a saved road graph")
		osmPath    = flag.String("osm", "", "OpenStreetMap PBF extract to import; when set, the graph is (re)built and saved to -graph")
		port       = flag.Int("port", 6060, "websocket/HTTP listen port")
	)
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	if err := run(*configPath, *configName, *graphPath, *osmPath, *port, log); err != nil {
		log.Fatal("tracker exited with error", zap.Error(err))
	}
}

func run(configPath, configName, graphPath, osmPath string, port int, log *zap.Logger) error {
	params, err := rtconfig.Read(configPath, configName)
	if err != nil {
		return err
	}

	graph, err := loadGraph(graphPath, osmPath, log)
	if err != nil {
		return err
	}
	log.Info("road graph ready", zap.Int("edges", graph.NumEdges()))

	updater := estimator.New(graph, params.ToFilterParameters(), log)
	tracker := trackserver.NewTracker(updater, graph.Origin, params, log)
	server := trackserver.New(log, tracker)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return server.Run(ctx, trackserver.Config{
		Port:         port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
}

func loadGraph(graphPath, osmPath string, log *zap.Logger) (*rgraph.Graph, error) {
	if osmPath == "" {
		return rgraph.Load(graphPath)
	}

	log.Info("importing road graph from OSM extract", zap.String("path", osmPath))
	graph, err := osmimport.Import(osmPath, log)
	if err != nil {
		return nil, err
	}
	if err := rgraph.Save(graph, graphPath); err != nil {
		return nil, err
	}
	log.Info("saved imported road graph", zap.String("path", graphPath))
	return graph, nil
}
