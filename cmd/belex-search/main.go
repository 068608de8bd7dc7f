// Command belex-search is a terminal client for the BELEX filestore. With
// arguments it runs a single query; without, it starts an interactive loop.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kueblaw/belex/internal/api/belex"
	"github.com/kueblaw/belex/internal/api/gemini"
	"github.com/kueblaw/belex/internal/config"
	"github.com/kueblaw/belex/internal/domain"
	"github.com/kueblaw/belex/internal/search"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "secrets.yaml", "path to the secrets file")
	flag.Parse()

	// Keep stdout clean for answers; log to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := gemini.NewClient(cfg.Gemini.APIKey)
	lawClient := belex.NewClient(belex.WithBaseURL(cfg.Belex.BaseURL))
	resolver := search.NewLawResolver(lawClient, cfg.LawCacheTTL(), logger)

	systemPrompt := cfg.Gemini.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = search.DefaultSystemPrompt
	}
	engine := search.NewEngine(client, cfg.Gemini.FilestoreID, cfg.Gemini.Model, systemPrompt, resolver, logger)

	if flag.NArg() > 0 {
		query := strings.Join(flag.Args(), " ")
		if !runQuery(engine, query) {
			os.Exit(1)
		}
		return
	}

	runInteractive(engine)
}

func runQuery(engine *search.Engine, query string) bool {
	fmt.Printf("Searching for: %q\n\n", query)

	result, err := engine.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		return false
	}

	printResult(result)
	return true
}

func runInteractive(engine *search.Engine) {
	fmt.Println("BELEX search - interactive mode")
	fmt.Println("Type your search queries (or 'quit' to exit)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Search: ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		switch strings.ToLower(query) {
		case "quit", "exit", "q":
			return
		}

		runQuery(engine, query)
		fmt.Println()
	}
}

func printResult(result *domain.SearchResult) {
	divider := strings.Repeat("=", 80)

	fmt.Println(divider)
	if result.Answer == "" {
		fmt.Println("No answer generated")
	} else {
		fmt.Println("Answer:")
		fmt.Println(strings.Repeat("-", 80))
		fmt.Println(result.Answer)
	}
	fmt.Println(divider)

	if len(result.Sources) == 0 {
		return
	}

	fmt.Println("Sources:")
	fmt.Println(strings.Repeat("-", 80))
	for i, src := range result.Sources {
		name := src.Title
		if src.LawName != "" {
			name = fmt.Sprintf("%s - %s", src.Title, src.LawName)
		}
		fmt.Printf("%d. %s\n", i+1, name)
		if src.URL != "" {
			fmt.Printf("   URL: %s\n", src.URL)
		}
		if len(src.Snippets) > 0 {
			fmt.Printf("   %q\n", src.Snippets[0])
		}
	}
	fmt.Println(divider)
}
