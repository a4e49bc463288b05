package main

import (
	"flag"
	"os"
	"time"

	"github.com/dd0wney/cluso-fastindex/pkg/api"
	"github.com/dd0wney/cluso-fastindex/pkg/fastidx"
	"github.com/dd0wney/cluso-fastindex/pkg/keyfile"
	"github.com/dd0wney/cluso-fastindex/pkg/logging"
	"github.com/dd0wney/cluso-fastindex/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	keyPath := flag.String("keys", "", "Key file to index (overrides config)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	logger := logging.NewDefaultLogger()

	cfg := api.DefaultConfig()
	if *configPath != "" {
		loaded, err := api.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load config", logging.Error(err), logging.Path(*configPath))
			os.Exit(1)
		}
		cfg = loaded
	}
	if *keyPath != "" {
		cfg.KeyFile = *keyPath
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", logging.Error(err))
		os.Exit(1)
	}
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	keys, err := keyfile.Load(cfg.KeyFile)
	if err != nil {
		logger.Error("failed to load keys", logging.Error(err), logging.Path(cfg.KeyFile))
		os.Exit(1)
	}

	reg := metrics.NewRegistry()

	start := time.Now()
	tree, err := fastidx.New(keys)
	if err != nil {
		reg.RecordBuild("error", 0)
		logger.Error("failed to build index", logging.Error(err), logging.Keys(len(keys)))
		os.Exit(1)
	}
	defer tree.Close()
	reg.RecordBuild("ok", time.Since(start))

	st := tree.Stats()
	reg.SetIndexShape(st.Keys, st.Depth, st.LayoutBytes)
	logger.Info("index built",
		logging.Keys(st.Keys),
		logging.Int("depth", st.Depth),
		logging.Int("padded_nodes", st.PaddedNodes),
		logging.Int("layout_bytes", st.LayoutBytes),
		logging.Latency(time.Since(start)),
	)

	srv := api.NewServer(cfg, tree, logger, reg)
	if err := srv.Start(); err != nil {
		logger.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
