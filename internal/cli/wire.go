package cli

import (
	"fmt"
	"log/slog"

	"github.com/OpenBMB/privacyguard/internal/config"
	"github.com/OpenBMB/privacyguard/internal/detect"
	"github.com/OpenBMB/privacyguard/internal/events"
	"github.com/OpenBMB/privacyguard/internal/guard"
	"github.com/OpenBMB/privacyguard/internal/localmodel"
	"github.com/OpenBMB/privacyguard/internal/memory"
	"github.com/OpenBMB/privacyguard/internal/orchestrator"
	"github.com/OpenBMB/privacyguard/internal/redact"
	"github.com/OpenBMB/privacyguard/internal/session"
	"github.com/OpenBMB/privacyguard/internal/track"
)

// wired bundles the components an orchestrator needs so subcommands can
// reach into them (sessions, for reset; guard, for config hot reload).
type wired struct {
	cfg      *config.Config
	orch     *orchestrator.Orchestrator
	sessions *session.Registry
	guard    *guard.Guard
}

// buildOrchestrator loads a config file and wires the full detection,
// guard, track, memory, and orchestrator stack from it — the same
// component graph every subcommand that touches privacy state needs.
func buildOrchestrator(path string) (*wired, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	ruleCfg, err := cfg.BuildRuleConfig()
	if err != nil {
		return nil, fmt.Errorf("building rule config: %w", err)
	}
	ruleDetector := detect.NewRuleDetector(ruleCfg)

	var client *localmodel.Client
	var semanticDetector *detect.SemanticDetector
	if cfg.LocalModel.Enabled {
		client = localmodel.New(cfg.BuildLocalModelConfig())
		semanticDetector = detect.NewSemanticDetector(client)
	}

	checkpointDetectors, err := cfg.BuildCheckpointDetectors()
	if err != nil {
		return nil, fmt.Errorf("building checkpoint config: %w", err)
	}
	aggregator := detect.NewAggregator(ruleDetector, semanticDetector, checkpointDetectors)

	baseDir := cfg.Session.BaseDir
	if baseDir == "" {
		baseDir = cfg.GuardAgent.Workspace
	}
	sessions := session.NewRegistry()
	tracks := track.NewStore(baseDir)
	gcfg := guard.DeriveConfig(baseDir, cfg.GuardAgent.ID)
	g := guard.New(gcfg, sessions)

	extractor := redact.NewExtractor(client)
	mem := memory.New(cfg.GuardAgent.Workspace, extractor, nil)

	orch := orchestrator.New(
		orchestrator.Config{
			AgentID:       cfg.GuardAgent.ID,
			Workspace:     cfg.GuardAgent.Workspace,
			GuardProvider: "local",
			GuardModel:    cfg.GuardAgent.Model,
		},
		aggregator, sessions, g, tracks, mem, extractor, nil,
		events.NewBus(), client, slog.Default(),
	)

	return &wired{cfg: cfg, orch: orch, sessions: sessions, guard: g}, nil
}
