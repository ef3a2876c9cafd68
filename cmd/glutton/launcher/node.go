package launcher

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-opera-glutton/glutton"
	"github.com/rony4d/go-opera-glutton/opera"
)

// node is everything a command needs: the database, the network rules and
// the pallet on top of them.
type node struct {
	cfg    Config
	log    logrus.FieldLogger
	rules  opera.Rules
	db     ethdb.KeyValueStore
	pallet *glutton.Pallet

	// registry is nil unless metrics are enabled.
	registry metrics.Registry
}

func makeNode(cfg Config, out io.Writer) (*node, error) {
	logger, err := makeLogger(cfg.Logging, out)
	if err != nil {
		return nil, err
	}
	log := logger.WithFields(logrus.Fields{
		"name": cfg.Node.Name,
		"run":  uuid.New().String(),
	})

	rules, err := opera.RulesByName(cfg.Glutton.Network)
	if err != nil {
		return nil, err
	}

	weights, err := makeWeights(cfg, rules)
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"network": rules.Name,
		"weights": weights.Version(),
		"memory":  cfg.Store.InMemory,
	}).Debug("Node assembled")

	n := &node{
		cfg:   cfg,
		log:   log,
		rules: rules,
		db:    db,
	}
	opts := []glutton.Option{glutton.WithLogger(log)}
	if cfg.Metrics.Enabled {
		n.registry = metrics.NewRegistry()
		opts = append(opts, glutton.WithMetrics(n.registry))
	}
	n.pallet = glutton.NewPallet(glutton.NewStore(db), weights, opts...)
	return n, nil
}

func makeWeights(cfg Config, rules opera.Rules) (*glutton.Calibration, error) {
	if cfg.Glutton.WeightsFile == "" {
		return glutton.SubstrateWeights(rules.DbWeight), nil
	}
	return glutton.LoadCalibration(cfg.Glutton.WeightsFile)
}

func openDB(cfg Config) (ethdb.KeyValueStore, error) {
	if cfg.Store.InMemory {
		return memorydb.New(), nil
	}
	db, err := leveldb.New(cfg.StorePath(), cfg.Store.CacheMB, cfg.Store.Handles, "glutton/db/", false)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.StorePath(), err)
	}
	return db, nil
}

func (n *node) Close() error {
	n.pallet.Close()
	if n.registry != nil {
		n.registry.UnregisterAll()
	}
	return n.db.Close()
}
