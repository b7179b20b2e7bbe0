package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holloway/lector/internal/config"
	"github.com/holloway/lector/internal/metadata"
	"github.com/holloway/lector/internal/profiler"
)

// --- profile (offline) ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile a book's difficulty without starting the server",
	Long: `Profile a book's difficulty without starting the server.

Examples:
  lector profile --title "War and Peace" --author "Leo Tolstoy" --pages 1225 --year 1869
  lector profile --pdf ./book.pdf
  lector profile --title Ulysses --author "James Joyce" --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		description, _ := cmd.Flags().GetString("description")
		pages, _ := cmd.Flags().GetInt("pages")
		year, _ := cmd.Flags().GetString("year")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		asJSON, _ := cmd.Flags().GetBool("json")

		var book metadata.Book
		if pdfPath != "" {
			extracted, err := metadata.FromPDF(pdfPath)
			if err != nil {
				return fmt.Errorf("reading pdf: %w", err)
			}
			book = extracted
			if title != "" {
				book.Title = title
			}
			if author != "" {
				book.Author = author
			}
		} else {
			if title == "" {
				return fmt.Errorf("--title or --pdf is required")
			}
			book = metadata.Book{
				Title:         title,
				Author:        author,
				Description:   description,
				PageCount:     pages,
				PublishedYear: year,
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		tables := loadTables(cfg)
		p := tables.Assess(book)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		printProfile(tables, p)
		return nil
	},
}

func printProfile(tables profiler.Tables, p profiler.BookProfile) {
	heading := p.Title
	if p.Author != "" {
		heading += " by " + p.Author
	}
	fmt.Println(colorize(colorBold, heading))

	printStatus("Difficulty", "%s", p.Difficulty.Level)
	printStatus("Era", "%s", p.Difficulty.Era)
	printStatus("Language", "%s", p.Difficulty.Language)
	printStatus("Structure", "%s", p.Difficulty.Structure)
	if p.Curated {
		printStatus("Source", "curated assessment")
	}
	for _, r := range p.Difficulty.Reasons {
		printStep("%s", r)
	}

	score := tables.IntimidationScore(p)
	printStatus("Intimidation", "%.2f (%s mode)", score, tables.Mode(score))

	if len(p.Challenges) > 0 {
		fmt.Println(colorize(colorBold, "Challenges:"))
		for _, c := range p.Challenges {
			fmt.Printf("  - [%s] %s\n", c.Severity, c.Description)
			if c.Mitigation != "" {
				fmt.Printf("    %s\n", c.Mitigation)
			}
		}
	}

	fmt.Println(colorize(colorBold, "Approach:"))
	fmt.Printf("  Strategy: %s\n", p.Approach.Strategy)
	fmt.Printf("  Pace: %s\n", p.Approach.PaceGuidance)
	for _, s := range p.Approach.PreparationSteps {
		fmt.Printf("  Prepare: %s\n", s)
	}
	for _, tip := range p.Approach.ReadingTips {
		fmt.Printf("  Tip: %s\n", tip)
	}

	if len(p.ContextNeeds) > 0 {
		fmt.Println(colorize(colorBold, "Context:"))
		for _, n := range p.ContextNeeds {
			fmt.Printf("  - [%s] %s\n", n.Importance, n.ShortBriefing)
		}
	}
}

func init() {
	profileCmd.Flags().String("title", "", "book title")
	profileCmd.Flags().String("author", "", "author name")
	profileCmd.Flags().String("description", "", "publisher or store description")
	profileCmd.Flags().Int("pages", 0, "total page count")
	profileCmd.Flags().String("year", "", "year of first publication")
	profileCmd.Flags().String("pdf", "", "profile a local PDF instead of flag metadata")
	profileCmd.Flags().Bool("json", false, "print the full profile as JSON")
}

// --- books ---

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage books on the running server",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered books",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/books")
		if err != nil {
			return err
		}

		var books []struct {
			ID          string `json:"ID"`
			Title       string `json:"Title"`
			Author      string `json:"Author"`
			PageCount   int    `json:"PageCount"`
			CurrentPage int    `json:"CurrentPage"`
		}
		if err := decodeJSON(resp, &books); err != nil {
			return err
		}

		if len(books) == 0 {
			fmt.Println("No books registered.")
			return nil
		}

		for _, b := range books {
			position := ""
			if b.PageCount > 0 {
				position = fmt.Sprintf("  p.%d/%d", b.CurrentPage, b.PageCount)
			}
			fmt.Printf("%s  %s%s\n", colorize(colorCyan, b.ID[:8]), b.Title, position)
		}
		return nil
	},
}

var booksOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Register a book and open a reading session",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		pages, _ := cmd.Flags().GetInt("pages")
		year, _ := cmd.Flags().GetString("year")
		id, _ := cmd.Flags().GetString("id")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/books", map[string]any{
			"id":             id,
			"title":          title,
			"author":         author,
			"page_count":     pages,
			"published_year": year,
		})
		if err != nil {
			return err
		}

		var result struct {
			Book struct {
				ID string `json:"id"`
			} `json:"book"`
			Mode        string `json:"mode"`
			Suggestions []struct {
				ID       string `json:"id"`
				Headline string `json:"headline"`
			} `json:"suggestions"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Opened %s (%s mode)", result.Book.ID, result.Mode)
		for _, s := range result.Suggestions {
			fmt.Printf("  %s  %s\n", colorize(colorCyan, s.ID[:8]), s.Headline)
		}
		return nil
	},
}

var booksProgressCmd = &cobra.Command{
	Use:   "progress <book-id> <fraction>",
	Short: "Report reading progress for an open book",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var progress float64
		if _, err := fmt.Sscanf(args[1], "%g", &progress); err != nil {
			return fmt.Errorf("invalid progress %q: %w", args[1], err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/books/"+args[0]+"/progress", map[string]any{
			"progress": progress,
		})
		if err != nil {
			return err
		}

		var result struct {
			State       string `json:"state"`
			Progress    float64 `json:"progress"`
			Suggestions []struct {
				ID       string `json:"id"`
				Headline string `json:"headline"`
			} `json:"suggestions"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Progress %.0f%% (%s)", result.Progress*100, result.State)
		for _, s := range result.Suggestions {
			fmt.Printf("  %s  %s\n", colorize(colorCyan, s.ID[:8]), s.Headline)
		}
		return nil
	},
}

var booksAskCmd = &cobra.Command{
	Use:   "ask <book-id> <question...>",
	Short: "Ask the companion a question about an open book",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/books/"+args[0]+"/question", map[string]any{
			"text": strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}

		var result struct {
			State       string `json:"state"`
			Suggestions []struct {
				ID       string `json:"id"`
				Headline string `json:"headline"`
			} `json:"suggestions"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printStatus("State", "%s", result.State)
		for _, s := range result.Suggestions {
			fmt.Printf("  %s  %s\n", colorize(colorCyan, s.ID[:8]), s.Headline)
		}
		return nil
	},
}

var booksCloseCmd = &cobra.Command{
	Use:   "close <book-id>",
	Short: "End a book's reading session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/books/"+args[0]+"/close", nil)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Closed session for %s", args[0])
		return nil
	},
}

func init() {
	booksOpenCmd.Flags().String("title", "", "book title")
	booksOpenCmd.Flags().String("author", "", "author name")
	booksOpenCmd.Flags().Int("pages", 0, "total page count")
	booksOpenCmd.Flags().String("year", "", "year of first publication")
	booksOpenCmd.Flags().String("id", "", "stable book id (generated when omitted)")

	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksOpenCmd)
	booksCmd.AddCommand(booksProgressCmd)
	booksCmd.AddCommand(booksAskCmd)
	booksCmd.AddCommand(booksCloseCmd)
}

// --- suggest ---

var suggestCmd = &cobra.Command{
	Use:   "suggest <book-id>",
	Short: "Show the current suggestion pills for an open book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lastMessage, _ := cmd.Flags().GetString("last-message")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/books/" + args[0] + "/suggestions"
		if lastMessage != "" {
			path += "?last_message=" + url.QueryEscape(lastMessage)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var result struct {
			Show  bool `json:"show"`
			Pills []struct {
				Text     string `json:"text"`
				Category string `json:"category"`
			} `json:"pills"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if !result.Show {
			fmt.Println("Companion is observing quietly.")
			return nil
		}
		for _, p := range result.Pills {
			fmt.Printf("  [%s] %s\n", colorize(colorCyan, p.Category), p.Text)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().String("last-message", "", "the companion's last message, for reactive pills")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a single configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			if k.Key == args[0] {
				fmt.Println(k.Value)
				return nil
			}
		}
		return fmt.Errorf("unknown config key %q (valid: %s)", args[0], strings.Join(config.ValidKeys(), ", "))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
