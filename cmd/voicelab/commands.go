package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/voicelab/internal/batch"
	"codeberg.org/snonux/voicelab/internal/cli"
	"codeberg.org/snonux/voicelab/internal/history"
	"codeberg.org/snonux/voicelab/internal/models"
	"codeberg.org/snonux/voicelab/internal/phonetic"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runAnalyze(cmd *cobra.Command, audioFile string, flags *cli.Flags) error {
	analyzer, err := buildAnalyzer(nil)
	if err != nil {
		return err
	}
	if store := analyzer.Store(); store != nil {
		defer store.Close()
	}

	fmt.Fprintf(os.Stderr, "Analyzing %s as '%s' (%s)...\n", audioFile, flags.Word, flags.Accent)
	result, err := analyzer.AnalyzeFile(cmd.Context(), audioFile, flags.Word, flags.Accent)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", audioFile, err)
	}
	return printJSON(result)
}

func runScore(args []string, flags *cli.Flags) error {
	table, err := cli.LoadReferenceTable()
	if err != nil {
		return err
	}

	if flags.BatchFile == "" {
		return printJSON(phonetic.Assess(table, args[0], flags.Word, flags.Accent))
	}

	entries, err := batch.ReadBatchFile(flags.BatchFile)
	if err != nil {
		return err
	}
	report := batch.Score(table, entries)

	for i, e := range report.Entries {
		r := report.Results[i]
		mark := " "
		if r.Match {
			mark = "✓"
		}
		fmt.Printf("%s %3d  %-10s %-2s  %-20s expected %s\n",
			mark, r.Score, e.Word, e.Accent, r.Transcription, r.ExpectedArpabet)
	}

	fmt.Printf("\n=== Batch Scoring Summary ===\n")
	fmt.Printf("Total entries: %d\n", len(report.Entries))
	fmt.Printf("Exact matches: %d\n", report.Matches)
	fmt.Printf("Average score: %.1f\n", report.Average)
	return nil
}

func runWords(flags *cli.Flags) error {
	table, err := cli.LoadReferenceTable()
	if err != nil {
		return err
	}

	if flags.Like == "" {
		for _, w := range table.Words() {
			ga := table.Lookup(w, string(phonetic.GeneralAmerican))
			rp := table.Lookup(w, string(phonetic.ReceivedPronunciation))
			fmt.Printf("%-10s GA /%s/  RP /%s/\n", w, ga.IPA, rp.IPA)
		}
		return nil
	}

	suggestions := table.Suggest(flags.Like, flags.Suggestions)
	for _, s := range suggestions {
		alike := ""
		if s.SoundsAlike {
			alike = "  (sounds alike)"
		}
		fmt.Printf("%-10s %.3f%s\n", s.Word, s.Similarity, alike)
	}
	return nil
}

func runModels(cmd *cobra.Command, flags *cli.Flags) error {
	if flags.Remote {
		ids, err := models.NewLister(cli.GetOpenAIKey()).TranscriptionModels(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("OpenAI transcription models:")
		if len(ids) == 0 {
			fmt.Println("  No transcription models found")
		}
		for _, id := range ids {
			fmt.Printf("  %s\n", id)
		}
		return nil
	}

	return printJSON(models.Configured(cli.ProviderConfig()))
}

func runHistory(cmd *cobra.Command, flags *cli.Flags) error {
	if flags.Archive {
		path := viper.GetString("history.path")
		archived, err := history.Archive(path)
		if err != nil {
			return fmt.Errorf("failed to archive history: %w", err)
		}
		fmt.Printf("Archived %s to %s\n", path, archived)
		return nil
	}

	store, err := cli.OpenHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("history is disabled")
	}
	defer store.Close()

	attempts, err := store.Recent(cmd.Context(), flags.Limit)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Println("No attempts recorded yet.")
		return nil
	}

	fmt.Println("Recent attempts:")
	for _, a := range attempts {
		fmt.Printf("  %s  %-10s %-2s %3d  %s\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Word, a.Accent, a.Result.Score,
			strings.TrimSpace(a.Result.Transcription))
	}

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println("\nPer word:")
	for _, s := range stats {
		fmt.Printf("  %-10s %-2s attempts %d, matches %d, best %d, average %.1f\n",
			s.Word, s.Accent, s.Attempts, s.Matches, s.BestScore, s.AvgScore)
	}
	return nil
}
