// Command gigchaind boots a gigchain node: it loads the protocol
// configuration, opens the persistent state trie, and wires every native
// module into a core/chain.Chain ready to receive extrinsics from an
// embedding host runtime. Consensus, networking, and RPC are the host
// chain's responsibility and are intentionally not implemented here.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gigchain/config"
	"gigchain/core/chain"
	"gigchain/crypto"
	"gigchain/observability"
	"gigchain/observability/logging"
	"gigchain/storage"
	"gigchain/storage/trie"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("GIGCHAIN_ENV"))
	logger := logging.Setup("gigchaind", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	devAccount, err := crypto.DecodeAddress(cfg.Params.DevAccount)
	if err != nil {
		logger.Error("failed to decode DevAccount", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	tr, err := trie.NewTrie(db, nil)
	if err != nil {
		logger.Error("failed to open state trie", slog.Any("error", err))
		os.Exit(1)
	}

	c, err := chain.New(tr, cfg.Params, devAccount)
	if err != nil {
		logger.Error("failed to construct chain", slog.Any("error", err))
		os.Exit(1)
	}
	c.SetEmitter(observability.ChainMetricsEmitter{})

	logger.Info("gigchain node ready",
		slog.String("dataDir", cfg.DataDir),
		slog.String("treasury", c.Treasury.AccountID().String()),
		slog.String("devAccount", devAccount.String()),
	)

	fmt.Fprintf(os.Stdout, "gigchaind listening for host-driven extrinsics on treasury account %s\n", c.Treasury.AccountID().String())
	select {}
}
