package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZaguanLabs/xlate"
	"github.com/ZaguanLabs/xlate/document"
	"github.com/ZaguanLabs/xlate/linkage"
	"github.com/ZaguanLabs/xlate/memory"
	"github.com/ZaguanLabs/xlate/pipeline"
	"github.com/ZaguanLabs/xlate/provider"
	"github.com/ZaguanLabs/xlate/quality"
)

var (
	outputDir    string
	providerName string
	openaiKey    string
	openaiModel  string
	googleKey    string
	googleCreds  string

	memoryBackend string
	memoryPath    string
	redisURL      string
	memoryFile    string

	concurrency    int
	docConcurrency int
	partial        bool
	autoAdopt      float64
	threshold      float64
	maxRetries     int
	rpm            int
	minIntervalMS  int

	linksOut string
)

var translateCmd = &cobra.Command{
	Use:   "translate [files...]",
	Short: "Translate XLIFF files in one batch",
	Long: `Translate one or more XLIFF 1.2/2.0 files. Each input file carries its
own source and target language; multiple target languages mean multiple
input files referencing the same source content.

Rebuilt documents are written next to the inputs (or into --output), and
the linkage table is emitted as JSON for the destination platform's import.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: next to each input)")
	translateCmd.Flags().StringVar(&providerName, "provider", "openai", "Translation provider: openai, google, mock")
	translateCmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key (or OPENAI_API_KEY)")
	translateCmd.Flags().StringVar(&openaiModel, "openai-model", "", "OpenAI model override")
	translateCmd.Flags().StringVar(&googleKey, "google-key", "", "Google Cloud API key")
	translateCmd.Flags().StringVar(&googleCreds, "google-credentials", "", "Google Cloud credentials file")

	translateCmd.Flags().StringVar(&memoryBackend, "memory", "inmem", "Translation memory backend: inmem, sqlite, redis")
	translateCmd.Flags().StringVar(&memoryPath, "memory-db", "./xlate-memory.db", "SQLite memory database path")
	translateCmd.Flags().StringVar(&redisURL, "redis-url", "redis://localhost:6379", "Redis URL for the redis backend")
	translateCmd.Flags().StringVar(&memoryFile, "memory-file", "", "JSON memory file to import before and export after the run")

	translateCmd.Flags().IntVar(&concurrency, "concurrency", pipeline.DefaultConcurrency, "Parallel units per document")
	translateCmd.Flags().IntVar(&docConcurrency, "doc-concurrency", 1, "Parallel documents")
	translateCmd.Flags().BoolVar(&partial, "partial", false, "Emit documents even when some units failed or were flagged")
	translateCmd.Flags().Float64Var(&autoAdopt, "auto-adopt", pipeline.DefaultAutoAdoptThreshold, "Fuzzy similarity adopted without a provider call")
	translateCmd.Flags().Float64Var(&threshold, "quality-threshold", quality.DefaultThreshold, "Minimum register score")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Provider retries per unit after the first attempt")
	translateCmd.Flags().IntVar(&rpm, "rpm", 60, "Provider requests per minute")
	translateCmd.Flags().IntVar(&minIntervalMS, "min-interval", 0, "Minimum milliseconds between provider calls")

	translateCmd.Flags().StringVar(&linksOut, "links", "links.json", "Linkage table output path")

	viper.BindPFlag("openai-key", translateCmd.Flags().Lookup("openai-key"))
	viper.BindPFlag("google-key", translateCmd.Flags().Lookup("google-key"))
	viper.BindPFlag("redis-url", translateCmd.Flags().Lookup("redis-url"))
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	prov, err := buildProvider(ctx)
	if err != nil {
		return err
	}

	mem, closer, err := buildMemory()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	if memoryFile != "" {
		if _, err := os.Stat(memoryFile); err == nil {
			result, err := memory.NewImporter(mem).ImportFromFile(ctx, memoryFile)
			if err != nil {
				return fmt.Errorf("importing memory: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Imported %d memory entries (%d skipped)\n", result.Imported, result.Skipped)
		}
	}

	validator := quality.NewValidator(quality.WithThreshold(threshold))
	orch := pipeline.NewOrchestrator(prov, mem,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithAutoAdoptThreshold(autoAdopt),
		pipeline.WithRetryConfig(xlate.RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  1 * time.Second,
			MaxDelay:   30 * time.Second,
		}),
		pipeline.WithValidator(validator),
	)

	links := linkage.NewManager()
	opts := []pipeline.BatchOption{
		pipeline.WithLinkage(links),
		pipeline.WithDocumentConcurrency(docConcurrency),
	}
	if partial {
		opts = append(opts, pipeline.WithPartialOutput())
	}
	batch := pipeline.NewBatch(orch, opts...)

	docs := make([]*document.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		doc, err := document.Parse(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		docs = append(docs, doc)
	}

	report, results := batch.Run(ctx, docs)

	for i, dr := range results {
		if dr.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[i], dr.Err)
		}
		if dr.Output == nil {
			continue
		}
		out := outputPath(args[i], dr.Doc.TargetLang)
		if err := os.WriteFile(out, dr.Output, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	}

	if table := links.Table(); len(table) > 0 && linksOut != "" {
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(linksOut, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", linksOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d group(s))\n", linksOut, len(table))
	}

	if memoryFile != "" {
		if enum, ok := mem.(memory.Enumerable); ok {
			if err := memory.NewExporter(enum).ExportToFile(ctx, memoryFile, map[string]string{
				"tool": xlate.FullVersion(),
			}); err != nil {
				return fmt.Errorf("exporting memory: %w", err)
			}
		}
	}

	fmt.Print(report.String())
	return nil
}

func buildProvider(ctx context.Context) (xlate.Provider, error) {
	var p xlate.Provider

	switch providerName {
	case "openai":
		key := viper.GetString("openai-key")
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey: key,
			Model:  openaiModel,
		})
	case "google":
		gp, err := provider.NewGoogleProvider(ctx, provider.GoogleConfig{
			APIKey:          viper.GetString("google-key"),
			CredentialsFile: googleCreds,
		})
		if err != nil {
			return nil, err
		}
		p = gp
	case "mock":
		p = provider.NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown provider %q", providerName)
	}

	return xlate.NewRateLimitedProvider(p, xlate.RateLimitConfig{
		RequestsPerMinute: rpm,
		MinInterval:       time.Duration(minIntervalMS) * time.Millisecond,
	}), nil
}

func buildMemory() (memory.Memory, func(), error) {
	switch memoryBackend {
	case "inmem", "memory":
		return memory.NewInMemoryStore(), nil, nil
	case "sqlite":
		s, err := memory.NewSQLiteStore(memoryPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		s, err := memory.NewRedisStore(memory.RedisConfig{URL: viper.GetString("redis-url")})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", memoryBackend)
	}
}

func outputPath(input, targetLang string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+"."+xlate.BaseLang(targetLang)+ext)
}
