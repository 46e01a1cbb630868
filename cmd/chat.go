package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/progmatch/internal/models"
	"github.com/xhad/progmatch/pkg/matcher"
	"github.com/xhad/progmatch/pkg/processor"
)

var chatFlags struct {
	cvPath   string
	buildDir string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactively recommend programmes for stated career goals",
	Long: "Reads career goals line by line and answers with the three best programmes.\n" +
		"With --cv the extracted plain text of a CV is used for every question.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, envOptions{synthesis: true})
		if err != nil {
			return err
		}
		defer e.Close()

		var cvText string
		if chatFlags.cvPath != "" {
			data, err := os.ReadFile(chatFlags.cvPath)
			if err != nil {
				return fmt.Errorf("failed to read CV: %w", err)
			}
			cvText = string(data)
		}

		if chatFlags.buildDir != "" {
			results, err := processor.Load(chatFlags.buildDir)
			if err != nil {
				return err
			}
			done := e.matcher.BuildIndexAsync(ctx, processor.Records(results))
			if err := waitReady(ctx, e.matcher, done); err != nil {
				return err
			}
		} else if err := e.attach(ctx); err != nil {
			return err
		}

		color.Cyan("\nDescribe your career goals (type 'exit' to quit)")

		scanner := bufio.NewScanner(os.Stdin)
		userPrompt := color.New(color.FgGreen).PrintfFunc()
		assistantPrompt := color.New(color.FgCyan).PrintfFunc()

		for {
			userPrompt("\nYou: ")
			if !scanner.Scan() {
				break
			}

			goals := strings.TrimSpace(scanner.Text())
			if strings.ToLower(goals) == "exit" {
				break
			}
			if goals == "" && cvText == "" {
				continue
			}

			spinner := getSpinner("Finding programmes...")
			report, err := e.matcher.Recommend(ctx, cvText, goals)
			_ = spinner.Finish()
			fmt.Print("\r")
			if err != nil {
				color.Red("Error: %v\n", err)
				continue
			}

			assistantPrompt("Assistant: ")
			printReport(report)
		}

		return scanner.Err()
	},
}

func printReport(r matcher.Report) {
	areas := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		areas[i] = fmt.Sprintf("%s (%.0f%%)", c.Category, c.Score*100)
	}
	fmt.Printf("your strongest interest areas are %s.\n", strings.Join(areas, ", "))
	if len(r.Recommendations) == 0 {
		color.Yellow("No programmes matched.\n")
		return
	}
	for i, rec := range r.Recommendations {
		printRecommendation(i+1, rec)
	}
}

func printRecommendation(n int, rec models.Recommendation) {
	fmt.Printf("\n%d. %s (%s)\n", n, color.GreenString(rec.Title), rec.Category)
	if rec.Fee != "" || rec.Format != "" || rec.Location != "" {
		fmt.Printf("   Fee: %s | Format: %s | Location: %s\n", rec.Fee, rec.Format, rec.Location)
	}
	if rec.URL != "" {
		fmt.Printf("   %s\n", rec.URL)
	}
	fmt.Printf("   %s\n", rec.Reason)
}

func init() {
	chatCmd.Flags().StringVar(&chatFlags.cvPath, "cv", "", "Path to a plain-text CV")
	chatCmd.Flags().StringVar(&chatFlags.buildDir, "build", "", "Build the index from this directory before chatting")
	rootCmd.AddCommand(chatCmd)
}
