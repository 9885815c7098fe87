package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"aethelred/catalog"
	"aethelred/config"
	"aethelred/document"
	"aethelred/export"
	"aethelred/generator"
	"aethelred/server"
)

// inputFlags collects repeated -input key=value pairs.
type inputFlags map[string]string

func (f inputFlags) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k+"="+f[k])
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (f inputFlags) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("input %q must be key=value", v)
	}
	f[strings.TrimSpace(key)] = value
	return nil
}

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	templateID := flag.String("template", "", "template id for a one-shot draft")
	out := flag.String("out", "", "write the draft to this file instead of stdout")
	asHTML := flag.Bool("html", false, "write the draft as a rendered HTML page")
	list := flag.Bool("list", false, "list templates and their fields")
	verbose := flag.Bool("v", false, "enable debug logs")
	inputs := inputFlags{}
	flag.Var(inputs, "input", "template input as key=value (repeatable)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fail(err)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fail(err)
	}
	logger, err := newLogger(cfg, *verbose, *serve)
	if err != nil {
		fail(err)
	}
	slog.SetDefault(logger)

	cat, err := loadCatalog(cfg)
	if err != nil {
		fail(err)
	}

	if *list {
		printTemplates(cat)
		return
	}

	llm, err := buildLLM(cfg)
	if err != nil {
		fail(err)
	}
	agent, err := generator.NewAgent(llm, logger)
	if err != nil {
		fail(err)
	}

	// Web server mode
	if *serve {
		srv, err := server.New(server.Options{
			Catalog:        cat,
			Drafter:        agent,
			Refiner:        agent,
			Logger:         logger,
			RequestTimeout: cfg.RequestTimeout(),
			CORSOrigins:    cfg.CORSOrigins,
			SeedExamples:   cfg.SeedExamples,
		})
		if err != nil {
			fail(err)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		logger.Info("starting web server", "addr", listen, "provider", cfg.LLM.Provider)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fail(err)
		}
		return
	}

	if *templateID == "" {
		fmt.Fprintln(os.Stderr, "--template is required (or use --serve / --list)")
		os.Exit(2)
	}
	if err := draftOnce(cfg, cat, agent, *templateID, inputs, *out, *asHTML, logger); err != nil {
		fail(err)
	}
}

func draftOnce(cfg config.Config, cat *catalog.Catalog, agent *generator.Agent, templateID string, inputs map[string]string, out string, asHTML bool, logger *slog.Logger) error {
	tmpl, err := cat.Get(templateID)
	if err != nil {
		return err
	}
	if err := tmpl.Validate(inputs); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	logger.Info("generating draft", "template", tmpl.ID)
	draft, err := agent.Generate(ctx, tmpl, inputs)
	if err != nil {
		return err
	}

	body := draft.Content
	if asHTML {
		body, err = export.NewExporter().Page(document.Document{
			Title:   draft.Title,
			Content: draft.Content,
			Status:  document.StatusDraft,
		})
		if err != nil {
			return err
		}
	}

	if out == "" {
		fmt.Println(body)
		return nil
	}
	if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
		return err
	}
	logger.Info("draft written", "path", out, "title", draft.Title)
	return nil
}

func newLogger(cfg config.Config, verbose, serve bool) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if serve {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.TemplatesPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.TemplatesPath)
}

func printTemplates(cat *catalog.Catalog) {
	for _, t := range cat.List() {
		fmt.Printf("%s\t%s\n", t.ID, t.DisplayName)
		for _, f := range t.Fields {
			fmt.Printf("  -input %s=...\t%s (%s)\n", f.Key, f.Label, f.Kind)
		}
	}
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, errors.New("llm config missing; set llm.provider/model/api_key in config or AETHELRED_LLM_* (provider \"mock\" runs offline)")
	}
	settings := &generator.LLMSettings{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// OpenAI-compatible endpoint; base_url is mandatory.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "anthropic":
		return generator.NewAnthropicLLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
