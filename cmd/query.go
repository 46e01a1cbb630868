package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/matcher"
)

var queryFlags struct {
	topK     int
	topN     int
	asJSON   bool
	skills   []string
	industry string
}

var classifyCmd = &cobra.Command{
	Use:   "classify TEXT",
	Short: "Score text against the programme categories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		topK := queryFlags.topK
		if topK == 0 {
			topK = e.cfg.Classifier.TopK
		}
		scores, err := e.matcher.Classify(cmd.Context(), strings.Join(args, " "), topK)
		if err != nil {
			return err
		}
		if queryFlags.asJSON {
			return printJSON(scores)
		}
		printCategories(scores)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Retrieve the programmes closest to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.attach(cmd.Context()); err != nil {
			return err
		}

		n := queryFlags.topN
		if n == 0 {
			n = e.cfg.Retrieval.TopN
		}
		matches, err := e.matcher.Search(cmd.Context(), strings.Join(args, " "), n)
		if err != nil {
			return err
		}
		if queryFlags.asJSON {
			return printJSON(matches)
		}
		printProgrammes(matches)
		return nil
	},
}

var matchCmd = &cobra.Command{
	Use:   "match GOALS",
	Short: "Classify and retrieve for career goals plus optional skills and industry",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context(), envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.attach(cmd.Context()); err != nil {
			return err
		}

		profile := models.Profile{Skills: queryFlags.skills, Industry: queryFlags.industry}
		res, err := e.matcher.Match(cmd.Context(), profile, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if queryFlags.asJSON {
			return printJSON(res)
		}
		printResult(res)
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCategories(scores []models.CategoryScore) {
	for i, s := range scores {
		fmt.Printf("%d. %s %s\n", i+1, color.CyanString(s.Category), color.New(color.Faint).Sprintf("%.4f", s.Score))
	}
}

func printProgrammes(matches []models.ProgrammeMatch) {
	if len(matches) == 0 {
		color.Yellow("No programmes found\n")
		return
	}
	for i, m := range matches {
		fmt.Printf("%d. %s (%s) %.4f\n", i+1, color.GreenString(m.Title), m.Category, m.RelevanceScore)
		fmt.Printf("   Fee: %s | Format: %s | Location: %s | Start: %s\n", m.Fee, m.Format, m.Location, m.StartDate)
		fmt.Printf("   %s\n", m.URL)
	}
}

func printResult(res matcher.Result) {
	color.Cyan("\nTop categories")
	printCategories(res.Categories)
	color.Cyan("\nProgrammes")
	printProgrammes(res.Programmes)
}

func init() {
	classifyCmd.Flags().IntVarP(&queryFlags.topK, "top-k", "k", 0, "Number of categories (default classifier.top_k)")
	searchCmd.Flags().IntVarP(&queryFlags.topN, "top-n", "n", 0, "Number of index hits to consider (default retrieval.top_n)")
	matchCmd.Flags().StringSliceVar(&queryFlags.skills, "skills", nil, "Comma separated skills")
	matchCmd.Flags().StringVar(&queryFlags.industry, "industry", "", "Industry")
	for _, c := range []*cobra.Command{classifyCmd, searchCmd, matchCmd} {
		c.Flags().BoolVar(&queryFlags.asJSON, "output-json", false, "Print JSON instead of text")
	}
	rootCmd.AddCommand(classifyCmd, searchCmd, matchCmd)
}
