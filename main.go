// go_vidminer — YouTube research dataset builder.
//
// Four batch stages, run as subcommands:
//
//	collect      search YouTube and merge keyword-matched videos into a CSV table
//	transcripts  fetch a transcript per table row into a JSON document set
//	analyze      extract structured categories from transcripts via an LLM
//	explode      normalize a list-valued CSV column into one row per item
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_vidminer/internal/dataset"
	"github.com/anatolykoptev/go_vidminer/internal/engine"
	"github.com/anatolykoptev/go_vidminer/internal/engine/sources"
	"github.com/anatolykoptev/go_vidminer/internal/pipeline"
	"github.com/anatolykoptev/go_vidminer/internal/store"
)

var version = "dev"

var defaultKeywords = []string{
	"Electrical troubleshooting in construction",
	"Electrical conduit installation",
	"Commercial electrical construction",
}

type globalOpts struct {
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

type collectCmd struct {
	Keywords      []string `long:"keyword" env:"SEARCH_KEYWORDS" env-delim:"," description:"Search keyword (repeatable)"`
	TitleFilters  []string `long:"title-filter" env:"TITLE_FILTERS" env-delim:"," default:"electrical" default:"construction" description:"Keep only videos whose title contains one of these (repeatable)"`
	MaxPerKeyword int      `long:"max-per-keyword" env:"MAX_RESULTS_PER_KEYWORD" default:"50" description:"Maximum videos collected per keyword"`
	QuotaLimit    int      `long:"quota-limit" env:"QUOTA_LIMIT" default:"9900" description:"Stop searching once this many records are collected"`
	Output        string   `long:"output" short:"o" env:"VIDEO_TABLE" default:"video_URL.csv" description:"Video table CSV path"`
}

type transcriptsCmd struct {
	Input   string `long:"input" short:"i" env:"VIDEO_TABLE" default:"video_URL.csv" description:"Video table CSV path"`
	Output  string `long:"output" short:"o" env:"TRANSCRIPTS_FILE" default:"transcripts.json" description:"Transcripts JSON path"`
	Cache   string `long:"cache" env:"TRANSCRIPT_CACHE" default:"transcripts.db" description:"Transcript cache database path"`
	NoCache bool   `long:"no-cache" description:"Always fetch from the network"`
}

type analyzeCmd struct {
	Input    string `long:"input" short:"i" env:"TRANSCRIPTS_FILE" default:"transcripts.json" description:"Transcripts JSON path"`
	Output   string `long:"output" short:"o" env:"ANALYSIS_TABLE" default:"analysis.csv" description:"Analysis table CSV path, appended across runs"`
	StartID  int    `long:"start-id" env:"START_ID" default:"0" description:"First VideoID to analyze"`
	EndID    int    `long:"end-id" env:"END_ID" default:"0" description:"Last VideoID to analyze (0 = no upper bound)"`
	MinWords int    `long:"min-words" env:"MIN_TRANSCRIPT_WORDS" default:"20" description:"Skip transcripts shorter than this many words"`
}

type explodeCmd struct {
	Input   string `long:"input" short:"i" required:"true" description:"Input CSV path"`
	Output  string `long:"output" short:"o" required:"true" description:"Output CSV path"`
	Column  string `long:"column" default:"Problems/Challenges" description:"List-valued column to explode"`
	Renamed string `long:"rename" default:"Problem_Challenge" description:"Name of the singular column in the output"`
}

func (c *collectCmd) Execute(_ []string) error {
	cfg := newEngineConfig()
	cfg.TitleFilters = c.TitleFilters
	if len(c.Keywords) == 0 {
		c.Keywords = defaultKeywords
	}

	collector := pipeline.NewCollector(cfg, sources.New(cfg))
	stats, outcomes, err := collector.Run(context.Background(), pipeline.CollectOpts{
		Keywords:      c.Keywords,
		MaxPerKeyword: c.MaxPerKeyword,
		QuotaLimit:    c.QuotaLimit,
		Output:        c.Output,
	})
	if err != nil {
		return err
	}
	ok, skip, fail := pipeline.CountByStatus(outcomes)
	slog.Info("collect finished",
		slog.Int("total", stats.Total),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("ok", ok), slog.Int("skipped", skip), slog.Int("failed", fail))
	slog.Info(engine.FormatMetrics())
	return nil
}

func (c *transcriptsCmd) Execute(_ []string) error {
	cfg := newEngineConfig()

	var cache *store.TranscriptCache
	if !c.NoCache {
		var err error
		cache, err = store.OpenTranscriptCache(c.Cache)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	tr := pipeline.NewTranscriber(cfg, sources.New(cfg), cache)
	outcomes, err := tr.Run(context.Background(), pipeline.TranscribeOpts{
		Input:  c.Input,
		Output: c.Output,
	})
	if err != nil {
		return err
	}
	ok, skip, fail := pipeline.CountByStatus(outcomes)
	slog.Info("transcripts finished",
		slog.Int("ok", ok), slog.Int("skipped", skip), slog.Int("failed", fail))
	slog.Info(engine.FormatMetrics())
	return nil
}

func (c *analyzeCmd) Execute(_ []string) error {
	cfg := newEngineConfig()

	analyzer := pipeline.NewAnalyzer(cfg)
	outcomes, err := analyzer.Run(context.Background(), pipeline.AnalyzeOpts{
		Input:              c.Input,
		Output:             c.Output,
		StartID:            c.StartID,
		EndID:              c.EndID,
		MinTranscriptWords: c.MinWords,
	})
	if err != nil {
		return err
	}
	ok, skip, fail := pipeline.CountByStatus(outcomes)
	slog.Info("analyze finished",
		slog.Int("ok", ok), slog.Int("skipped", skip), slog.Int("failed", fail))
	slog.Info(engine.FormatMetrics())
	return nil
}

func (c *explodeCmd) Execute(_ []string) error {
	if err := dataset.ExplodeFile(c.Input, c.Output, c.Column, c.Renamed); err != nil {
		return err
	}
	slog.Info("explode finished",
		slog.String("column", c.Column), slog.String("output", c.Output))
	return nil
}

// newEngineConfig assembles the engine configuration from the environment.
// Stage constructors receive it explicitly.
func newEngineConfig() *engine.Config {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	cfg := &engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		TranscriptLangs:       env.List("TRANSCRIPT_LANGS", strings.Join(engine.DefaultTranscriptLangs, ",")),
		SearchInterval:        env.Duration("SEARCH_INTERVAL", time.Second),
		LLMInterval:           env.Duration("LLM_INTERVAL", 100*time.Millisecond),
		HTTPClient:            httpClient,
	}

	cfg.LLMClient = llm.NewClient(
		env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		env.Str("OPENAI_API_KEY", env.Str("LLM_API_KEY", "")),
		env.Str("LLM_MODEL", "gpt-4o-mini"),
		llm.WithFallbackKeys(env.List("LLM_API_KEY_FALLBACKS", "")),
		llm.WithMaxTokens(env.Int("LLM_MAX_TOKENS", 1000)),
		llm.WithTemperature(env.Float("LLM_TEMPERATURE", 0.3)),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return cfg
}

func main() {
	_ = godotenv.Load()

	var global globalOpts
	parser := flags.NewParser(&global, flags.Default)

	mustAdd := func(name, short, long string, cmd interface{}) {
		if _, err := parser.AddCommand(name, short, long, cmd); err != nil {
			slog.Error("command registration failed", slog.String("name", name), slog.Any("error", err))
			os.Exit(1)
		}
	}
	mustAdd("collect", "Collect keyword-matched videos",
		"Search YouTube per keyword, fetch video details, and merge new rows into the video table.", &collectCmd{})
	mustAdd("transcripts", "Fetch transcripts for collected videos",
		"Fetch a transcript for each video table row and write the JSON document set.", &transcriptsCmd{})
	mustAdd("analyze", "Extract structured categories from transcripts",
		"Send each transcript through the LLM and append structured rows to the analysis table.", &analyzeCmd{})
	mustAdd("explode", "Expand a list-valued CSV column",
		"Split a comma-separated list column into one output row per item.", &explodeCmd{})

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		level := slog.LevelInfo
		if global.Debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		slog.Info("go_vidminer", slog.String("version", version))
		return command.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		slog.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
