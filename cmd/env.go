package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/billing"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/job"
	"github.com/sells-group/prospector/internal/providers"
	"github.com/sells-group/prospector/internal/resilience"
	"github.com/sells-group/prospector/internal/resolver"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/apollo"
	"github.com/sells-group/prospector/pkg/hunter"
	"github.com/sells-group/prospector/pkg/perplexity"
)

// env bundles the wired application services shared by the worker, run,
// and serve commands.
type env struct {
	Store     store.Store
	Service   *job.Service
	Processor *job.Processor
}

func (e *env) Close() {
	_ = e.Store.Close()
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "prospector.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	retry := resilience.DefaultRetryConfig()

	perplexityClient := perplexity.NewClient(cfg.Perplexity.Key,
		perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
		perplexity.WithModel(cfg.Perplexity.Model),
	)
	apolloClient := apollo.NewClient(cfg.Apollo.Key, apollo.WithBaseURL(cfg.Apollo.BaseURL))
	hunterClient := hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))

	companies := search.ThrottleCompanies(
		providers.NewPerplexityCompanies(perplexityClient), cfg.Perplexity.RateLimit, retry)

	contacts := search.ThrottleContacts(
		providers.NewApolloContacts(apolloClient), cfg.Apollo.RateLimit, retry)

	strategies := search.NewStrategyRegistry()
	strategies.Register(search.StrategyDecisionMakers, contacts)
	strategies.Register(search.StrategyDepartmentHeads, contacts)
	strategies.Register(search.StrategyCustomRole, contacts)

	emails := search.NewEmailRegistry()
	emails.Register(search.ThrottleEmail(
		providers.NewHunterEmails(hunterClient), cfg.Hunter.RateLimit, retry))
	emails.Register(search.ThrottleEmail(
		providers.NewApolloEmails(apolloClient), cfg.Apollo.RateLimit, retry))
	emails.Register(search.ThrottleEmail(
		providers.NewPerplexityEmails(perplexityClient), cfg.Perplexity.RateLimit, retry))

	resolverCfg := resolver.DefaultConfig()
	if cfg.Resolver.ConfigPath != "" {
		resolverCfg, err = resolver.LoadConfig(cfg.Resolver.ConfigPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	res := resolver.New(resolverCfg, emails, st)

	enricher := enrich.New(st, strategies, res, cfg.Search.MaxConcurrentCompanies)

	var ledger billing.Ledger
	if cfg.Billing.Enabled {
		ledger = billing.NewStoreLedger(st, map[billing.Action]int{
			billing.ActionCompanySearch: cfg.Billing.CompanySearch,
			billing.ActionContactSearch: cfg.Billing.ContactSearch,
			billing.ActionEmailSearch:   cfg.Billing.EmailSearch,
		})
	}

	svc := job.NewService(st, companies, enricher, ledger, cfg.Search.CompanyLimit)

	proc := job.NewProcessor(st, svc, job.ProcessorConfig{
		Interval:    cfg.Worker.Interval,
		StaleAfter:  cfg.Worker.StaleAfter,
		ExecTimeout: cfg.Worker.ExecTimeout,
	})

	return &env{Store: st, Service: svc, Processor: proc}, nil
}
