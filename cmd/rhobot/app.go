package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/julianshen/rhobot/internal/apidocs"
	"github.com/julianshen/rhobot/internal/commands"
	"github.com/julianshen/rhobot/internal/config"
	"github.com/julianshen/rhobot/internal/corpus"
	"github.com/julianshen/rhobot/internal/faq"
	"github.com/julianshen/rhobot/internal/fff"
	"github.com/julianshen/rhobot/internal/integrations"
	"github.com/julianshen/rhobot/internal/modportal"
	"github.com/julianshen/rhobot/internal/parser"
	"github.com/julianshen/rhobot/internal/store"
	"github.com/julianshen/rhobot/internal/wiki"
	"github.com/julianshen/rhobot/internal/xref"
)

// app holds every long-lived component behind the commands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *store.Store
	faq        *faq.Service
	session    commands.Session
	runtime    *corpus.Refresher[apidocs.RuntimeAPI]
	data       *corpus.Refresher[apidocs.DataAPI]
	titles     *corpus.Refresher[faq.TitleIndex]
	dispatcher *commands.Dispatcher
}

// newApp wires the components described by cfg. Caches start empty; call
// prime before serving.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	fetcher := integrations.NewHTTPFetcher(cfg.HTTP.Timeout.Duration,
		integrations.WithUserAgent(cfg.HTTP.UserAgent),
		integrations.WithRateLimit(cfg.Wiki.RateLimit, cfg.Wiki.RateBurst),
	)

	dsn, err := cfg.FAQDSN()
	if err != nil {
		return nil, fmt.Errorf("resolving faq dsn: %w", err)
	}
	st, err := store.Open(cfg.FAQ.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening faq store: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		session: commands.Session{ServerID: cfg.FAQ.ServerID, Author: cfg.FAQ.Author},
	}
	a.faq = faq.NewService(st, faq.WithThreshold(cfg.FAQ.Threshold), faq.WithLogger(logger.Named("faq")))
	a.titles = a.faq.Refresher(cfg.FAQ.RefreshInterval.Duration)

	runtimeCache := corpus.NewCache[apidocs.RuntimeAPI]("runtime api")
	dataCache := corpus.NewCache[apidocs.DataAPI]("data api")
	a.runtime = corpus.NewRefresher(runtimeCache,
		corpus.JSONSource(fetcher, cfg.API.RuntimeURL, apidocs.DecodeRuntimeAPI),
		cfg.API.RefreshInterval.Duration, logger.Named("runtime"))
	a.data = corpus.NewRefresher(dataCache,
		corpus.JSONSource(fetcher, cfg.API.DataURL, apidocs.DecodeDataAPI),
		cfg.API.RefreshInterval.Duration, logger.Named("data"))

	links := apidocs.NewLinks(cfg.API.DocsBase)
	wikiClient := wiki.NewClient(fetcher,
		wiki.WithAPIURL(cfg.Wiki.APIURL),
		wiki.WithPageBase(cfg.Wiki.PageBase),
		wiki.WithPageCache(cfg.Wiki.PageCacheSize, cfg.Wiki.PageCacheTTL.Duration),
		wiki.WithMinLeadLength(cfg.Wiki.MinLeadLength),
		wiki.WithLogger(logger.Named("wiki")),
	)

	reg := commands.NewRegistry()
	cmds := []commands.SlashCommand{
		commands.NewHelpCommand(reg),
		commands.NewQuitCommand(),
		commands.NewAPICommand(runtimeCache, dataCache, links,
			xref.New(dataCache, links, logger.Named("xref")), parser.NewParser()),
		commands.NewWikiCommand(wikiClient),
		commands.NewFFFCommand(fff.NewClient(fetcher, cfg.FFF.BaseURL)),
		commands.NewModCommand(modportal.NewClient(fetcher, cfg.Mods.SearchURL, modCredentials(cfg, logger))),
	}
	cmds = append(cmds, commands.NewFAQCommands(a.faq, a.session)...)
	for _, c := range cmds {
		if err := reg.Register(c); err != nil {
			st.Close()
			return nil, fmt.Errorf("registering commands: %w", err)
		}
	}
	a.dispatcher = commands.NewDispatcher(reg, logger)
	return a, nil
}

// modCredentials resolves the portal login. Without one the mod command
// reports that it is not configured.
func modCredentials(cfg *config.Config, logger *zap.Logger) *modportal.Credentials {
	user, token, err := cfg.ModPortalCredentials()
	if err != nil {
		logger.Info("mod search disabled", zap.Error(err))
		return nil
	}
	return &modportal.Credentials{Username: user, Token: token}
}

// primers names the caches a command needs before it can answer.
func (a *app) primers(command string) []corpus.Primer {
	if c, ok := a.dispatcher.Registry().Get(command); ok {
		command = c.Name()
	}
	switch command {
	case "api":
		return []corpus.Primer{a.runtime, a.data}
	case "faq", "faqedit", "export_faqs", "import_faqs", "drop_faqs":
		return []corpus.Primer{a.titles}
	case "wiki", "fff", "mod", "help", "quit", "version":
		return nil
	default:
		return []corpus.Primer{a.runtime, a.data, a.titles}
	}
}

// prime blocks until the caches command needs are filled. An empty command
// primes everything.
func (a *app) prime(ctx context.Context, command string) error {
	if err := corpus.PrimeAll(ctx, a.primers(command)...); err != nil {
		return fmt.Errorf("priming caches: %w", err)
	}
	return nil
}

// refreshAll keeps every cache current until ctx is done.
func (a *app) refreshAll(ctx context.Context) {
	go a.runtime.Run(ctx)
	go a.data.Run(ctx)
	go a.titles.Run(ctx)
}

// saveDraft stores an entry collected by the console form.
func (a *app) saveDraft(ctx context.Context, d faq.Draft) (commands.Result, error) {
	return commands.SaveDraft(ctx, a.faq, a.session, d)
}

func (a *app) Close() error {
	return a.store.Close()
}
