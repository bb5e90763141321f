package cmd

import (
	"context"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/metrics"
	"github.com/medley-cli/medley/provider"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/watch"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session builds a registry from the builtin and scripted sources. Sources
// that fail to load are reported and skipped. Metrics and the source
// watcher run until ctx ends when they are enabled.
func session(ctx context.Context, cmd *cobra.Command) *registry.Registry {
	reg := registry.New(
		registry.WithConfig(config.BundleFor),
		registry.WithRanks(config.ConfiguredRanks()),
		registry.WithAllow(viper.GetStringSlice(key.SourcesAllow)),
	)

	plugins, err := provider.Plugins()
	if err != nil {
		warn(err)
	}
	handleErr(reg.Register(plugins...))

	for _, err := range reg.Load(ctx) {
		warn(err)
	}

	log.WithFields(log.Fields{
		"command": cmd.Name(),
		"sources": reg.Len(),
	}).Debug("registry loaded")

	if addr := viper.GetString(key.MetricsAddress); addr != "" {
		metrics.Register()
		metrics.SetSourcesLoaded(reg.Len())
		reg.OnSourceAdded(func(*registry.Entry) { metrics.SetSourcesLoaded(reg.Len()) })
		reg.OnSourceRemoved(func(*registry.Entry) { metrics.SetSourcesLoaded(reg.Len()) })

		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				log.Error(err)
			}
		}()
	}

	if viper.GetBool(key.SourcesWatch) {
		go func() {
			if err := watch.New(reg, where.Sources(), watch.WithPost(watch.Serial(ctx))).Run(ctx); err != nil {
				log.Error(err)
			}
		}()
	}

	return reg
}

func completionSourceIDs(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	plugins, _ := provider.Plugins()
	return lo.Map(plugins, func(p registry.Plugin, _ int) string {
		return p.ID
	}), cobra.ShellCompDirectiveNoFileComp
}
