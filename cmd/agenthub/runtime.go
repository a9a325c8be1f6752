package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agenthub"
	"github.com/hupe1980/agenthub/capability"
	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/catalog/rediscache"
	"github.com/hupe1980/agenthub/catalog/sqlite"
	"github.com/hupe1980/agenthub/config"
	"github.com/hupe1980/agenthub/credential"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/metrics"
	"github.com/hupe1980/agenthub/provider"
	"github.com/hupe1980/agenthub/tool/vectorstore"
)

// runtime bundles the resources opened for one command.
type runtime struct {
	settings *config.Settings
	logger   logging.Logger
	store    catalog.Store
	registry *prometheus.Registry
	closers  []func() error
}

func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	files, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}
	return config.Load(files...)
}

func openRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		settings: settings,
		logger:   logging.NewLogger(settings.LoggerConfig()),
		registry: prometheus.NewRegistry(),
	}

	db, err := sqlite.Open(settings.DatabasePath)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, db.Close)
	rt.store = db

	if settings.RedisURL != "" {
		client, err := rediscache.NewClient(ctx, settings.RedisURL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		rt.store = rediscache.New(db, client, func(o *rediscache.Options) {
			o.TTL = settings.ConfigCacheTTL
			o.Logger = rt.logger
		})
	}

	return rt, nil
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
}

func (rt *runtime) hub() (*agenthub.Hub, error) {
	s := rt.settings

	decrypter, err := credential.NewFernet(s.FernetKeys...)
	if err != nil {
		return nil, fmt.Errorf("configure credential decryption: %w", err)
	}

	return agenthub.New(func(o *agenthub.Options) {
		o.Store = rt.store
		o.Decrypter = decrypter
		o.ModelFactories = provider.DefaultFactories(s.ProviderConfig())
		if vs := vectorstore.NewClient(s.VectorStoreURL, s.VectorStoreTimeout); vs != nil {
			o.Retriever = vs
		}
		o.CredentialPolicy = capability.CredentialPolicy{
			DisableAuth:     s.DisableAuth,
			TestBearerToken: s.TestBearerToken,
		}
		o.RoutingModelID = s.RoutingModelID
		o.ModelTimeout = s.ModelTimeout
		o.ToolTimeout = s.ToolTimeout
		o.MaxCapabilities = s.MaxCapabilities
		o.MaxParallelTools = s.MaxParallelTools
		o.MaxConcurrentRoutes = s.MaxConcurrentRoutes
		o.Metrics = metrics.New(rt.registry)
		o.Logger = rt.logger
	})
}

// writeMetrics prints every counter and histogram sample count recorded in
// the runtime's registry, one sample per line.
func (rt *runtime) writeMetrics(w io.Writer) error {
	families, err := rt.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			labels := ""
			if len(pairs) > 0 {
				labels = "{" + strings.Join(pairs, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s_count%s %d", mf.GetName(), labels, m.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
