// Package main provides the worldcheck binary that loads and validates a
// world definition content tree, reporting per-kind counts.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/eidolonmud/worlddata/internal/config"
	"github.com/eidolonmud/worlddata/internal/datastore"
	"github.com/eidolonmud/worlddata/internal/game/definitions"
	"github.com/eidolonmud/worlddata/internal/observability"
	"github.com/eidolonmud/worlddata/internal/schema"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("loading world definitions",
		zap.String("content_root", cfg.Content.Root),
	)

	src, err := datastore.NewDir(cfg.Content.Root)
	if err != nil {
		logger.Fatal("opening content root", zap.Error(err))
	}

	var registry definitions.SchemaRegistry
	if cfg.Content.SchemaPath != "" {
		reg, err := schema.Load(cfg.Content.SchemaPath)
		if err != nil {
			logger.Fatal("loading schema registry", zap.Error(err))
		}
		registry = reg
		logger.Info("schema registry loaded", zap.String("path", cfg.Content.SchemaPath))
	} else {
		logger.Warn("no schema registry configured, skipping schema-dependent definitions")
	}

	store := definitions.NewStore()
	loader := definitions.NewLoader(store, registry, logger)
	loader.SetInstructionLimit(cfg.Scripting.InstructionLimit)

	for _, path := range cfg.Content.ExtraScriptPaths {
		scripts, err := loader.LoadScriptsFrom(src, path)
		if err != nil {
			logger.Fatal("loading extra scripts", zap.String("path", path), zap.Error(err))
		}
		logger.Info("extra scripts loaded",
			zap.String("path", path),
			zap.Int("count", len(scripts)),
		)
	}

	if err := loader.LoadAll(src); err != nil {
		logger.Fatal("loading definitions", zap.Error(err))
	}

	stats := store.Stats()
	logger.Info("world definitions loaded",
		zap.Int("zones", stats.Zones),
		zap.Int("zone_partials", stats.Partials),
		zap.Int("zone_instances", stats.Instances),
		zap.Int("instance_variants", stats.Variants),
		zap.Int("events", stats.Events),
		zap.Int("shops", stats.Shops),
		zap.Int("ai_logic_groups", stats.AILogicGroups),
		zap.Int("demon_presents", stats.DemonPresents),
		zap.Int("demon_quest_rewards", stats.DemonQuestRewards),
		zap.Int("drop_sets", stats.DropSets),
		zap.Int("scripts", stats.Scripts),
		zap.Int("ai_scripts", stats.AIScripts),
		zap.Duration("elapsed", time.Since(start)),
	)
}
