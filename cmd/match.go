package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/zap"

	"github.com/BihanDasgupta/CareerNodes/internal/graph"
	"github.com/BihanDasgupta/CareerNodes/internal/issues"
	"github.com/BihanDasgupta/CareerNodes/internal/logger"
	"github.com/BihanDasgupta/CareerNodes/internal/pipeline"
	"github.com/BihanDasgupta/CareerNodes/internal/profile"
	"github.com/BihanDasgupta/CareerNodes/internal/ranking"
	"github.com/BihanDasgupta/CareerNodes/internal/report"
	"github.com/BihanDasgupta/CareerNodes/internal/resume"
	"github.com/BihanDasgupta/CareerNodes/internal/results"
	"github.com/BihanDasgupta/CareerNodes/internal/source"
)

const (
	PromptExit         = "Exit"
	PromptBack         = "back"
	PromptShowReport   = "Show report"
	PromptBrowse       = "Browse results"
	PromptReportToFile = "Dump report to file"
	PromptWriteGraph   = "Write graph"

	defaultQuery = "internship"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Fetch listings and rank them against your profile",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	flags := matchCmd.Flags()
	flags.StringP("source", "s", "adzuna", "listing source: adzuna, headhunter or file")
	flags.StringP("query", "q", "", "search query (default is derived from the profile)")
	flags.StringP("location", "l", "", "search location")
	flags.Int("limit", 50, "maximum number of listings to fetch")
	flags.StringP("profile", "p", "", "profile file (JSON5, or the text form printed by the profile summary)")
	flags.StringP("resume", "r", "", "resume file (.txt, .md or .pdf)")
	flags.StringP("format", "o", "table", "output format: table, json or md")
	flags.StringP("graph", "g", "", "write the star graph to a .dot, .json or .html file")
	flags.Int("top-k", ranking.DefaultTopK, "listings kept by the similarity stage")
	flags.String("scorer", "gemini", "scorer: gemini, cohere, rules or embedding")
	flags.String("embedder", "gemini", "embedder for the similarity stage: gemini or none")
	flags.BoolP("interactive", "i", false, "browse the results after ranking")

	bindings := map[string]string{
		"source.name":     "source",
		"source.query":    "query",
		"source.location": "location",
		"source.limit":    "limit",
		"profile-file":    "profile",
		"resume-file":     "resume",
		"output.format":   "format",
		"output.graph":    "graph",
		"ranking.top-k":   "top-k",
		"ai.scorer":       "scorer",
		"ai.embedder":     "embedder",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(logger.Options{
		JSON:    viper.GetBool("json"),
		Debug:   viper.GetBool("debug"),
		App:     app,
		Version: resolveVersion(),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting careernodes")

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	format, err := report.ParseFormat(config.Output.Format)
	if err != nil {
		logger.Fatal("parsing output format", zap.Error(err))
	}

	pcfg, err := pipelineConfig(config)
	if err != nil {
		logger.Fatal("building pipeline config", zap.Error(err))
	}

	deps, err := buildDeps(ctx, config, logger)
	if err != nil {
		logger.Fatal("binding providers", zap.Error(err))
	}

	matcher, err := pipeline.New(pcfg, deps)
	if err != nil {
		logger.Fatal("creating the pipeline", zap.Error(err))
	}

	src, err := newSource(config.Source, logger)
	if err != nil {
		logger.Fatal("creating the listing source", zap.Error(err))
	}

	rawProfile, found := loadProfile(config.ProfileFile, config.ResumeFile, logger)

	query := config.Source.Query
	if query == "" {
		query = queryFromProfile(rawProfile)
	}
	location := config.Source.Location
	if location == "" {
		location, _ = rawProfile["location"].(string)
	}

	logger.Info("starting the search", zap.String("source", src.Name()), zap.String("query", query), zap.String("location", location))

	records, sourceIssues := source.Collect(ctx, src, query, location, config.Source.Limit, logger)
	found = append(found, sourceIssues...)

	resp, err := matcher.Match(ctx, pipeline.Request{Profile: rawProfile, Listings: records, Issues: found})
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	rep := report.FromResponse(resp)
	opts := report.Options{ColorEnabled: report.ColorEnabled(os.Stdout, config.Output.Color), Limit: config.Output.Limit}
	if err := report.Write(os.Stdout, rep, format, opts); err != nil {
		logger.Fatal("writing the report", zap.Error(err))
	}

	if config.Output.Graph != "" {
		if err := writeGraph(config.Output.Graph, resp.Results, config.Output.GraphLimit); err != nil {
			logger.Error("writing the graph", zap.Error(err))
		} else {
			logger.Info("graph written", zap.String("filename", config.Output.Graph))
		}
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive || resp.Results.Len() == 0 {
		return
	}

	if err := browse(rep, resp.Results, config.Output, logger); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// loadProfile never fails: unreadable inputs become issues and the profile is
// whatever could be read.
func loadProfile(profileFile, resumeFile string, logger *zap.Logger) (map[string]any, []issues.Issue) {
	raw := map[string]any{}
	var found []issues.Issue

	if profileFile != "" {
		parsed, err := readProfileFile(profileFile)
		if err != nil {
			logger.Warn("reading the profile file", zap.String("filename", profileFile), zap.Error(err))
			found = append(found, issues.New(issues.StageProfile, "", "reading %s: %v", profileFile, err))
		} else {
			raw = parsed
		}
	}

	if resumeFile != "" {
		text, err := resume.Extract(resumeFile)
		if err != nil {
			logger.Warn("extracting the resume", zap.String("filename", resumeFile), zap.Error(err))
			found = append(found, issues.New(issues.StageResume, "", "%v", err))
		} else {
			raw["resume"] = text
		}
	}

	return raw, found
}

// readProfileFile accepts JSON5 and the labelled text form of a profile.
func readProfileFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return profile.RawFromText(string(data)), nil
	default:
		var raw map[string]any
		if err := json5.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, errors.New("profile must be an object")
		}
		return raw, nil
	}
}

// queryFromProfile searches by major, then first skill, then a generic term.
func queryFromProfile(raw map[string]any) string {
	if major, ok := raw["major"].(string); ok && strings.TrimSpace(major) != "" {
		return strings.TrimSpace(major)
	}

	switch skills := raw["skills"].(type) {
	case string:
		if first, _, _ := strings.Cut(skills, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	case []any:
		if len(skills) > 0 {
			if first, ok := skills[0].(string); ok && strings.TrimSpace(first) != "" {
				return strings.TrimSpace(first)
			}
		}
	}

	return defaultQuery
}

func writeGraph(path string, set results.Set, limit int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	g := graph.Star(graph.DefaultCenter, set.Pairs(), limit)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return graph.WriteJSON(f, g)
	case ".html", ".htm":
		return graph.WriteHTML(f, g)
	default:
		return graph.WriteDOT(f, g)
	}
}

func browse(rep report.Report, set results.Set, out *OutputConfig, logger *zap.Logger) error {
	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptBrowse, PromptShowReport, PromptReportToFile, PromptWriteGraph, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := handleAction(action, rep, set, out, logger); err != nil {
			return err
		}
	}
}

func handleAction(action string, rep report.Report, set results.Set, out *OutputConfig, logger *zap.Logger) error {
	switch action {
	case PromptBrowse:
		return browseResults(rep)
	case PromptShowReport:
		return report.Write(os.Stdout, rep, report.FormatTable, report.Options{ColorEnabled: report.ColorEnabled(os.Stdout, out.Color)})
	case PromptReportToFile:
		filename, err := dumpToTmpFile(rep)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptWriteGraph:
		path := out.Graph
		if path == "" {
			path = "graph.html"
		}
		if err := writeGraph(path, set, out.GraphLimit); err != nil {
			return err
		}
		logger.Info("graph written", zap.String("filename", path))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func browseResults(rep report.Report) error {
	for {
		items := make([]string, 0, len(rep.Results)+1)
		for i, item := range rep.Results {
			items = append(items, fmt.Sprintf("%d. %s / %s / %s", i+1, item.Listing.Title, item.Listing.Company, report.FormatScore(item)))
		}

		listingPrompt := promptui.Select{
			Label: "Choose a listing and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, selected, err := listingPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		single := report.Report{Results: rep.Results[idx : idx+1]}
		if err := report.Write(os.Stdout, single, report.FormatMarkdown, report.Options{}); err != nil {
			return err
		}
	}
}

func dumpToTmpFile(rep report.Report) (string, error) {
	file, err := os.CreateTemp("", "careernodes_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := report.Write(file, rep, report.FormatJSON, report.Options{}); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// redacted hides secrets before the config is logged.
func redacted(cfg *Config) *Config {
	clone := *cfg
	ai := *cfg.AI
	gem := *cfg.AI.Gemini
	coh := *cfg.AI.Cohere
	src := *cfg.Source
	adz := *cfg.Source.Adzuna

	gem.APIKey = mask(gem.APIKey)
	coh.APIKey = mask(coh.APIKey)
	adz.AppKey = mask(adz.AppKey)

	ai.Gemini, ai.Cohere = &gem, &coh
	src.Adzuna = &adz
	clone.AI, clone.Source = &ai, &src
	return &clone
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
