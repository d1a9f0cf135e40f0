package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/voicelab/internal"
	"codeberg.org/snonux/voicelab/internal/history"
	"codeberg.org/snonux/voicelab/internal/phonetic"
	"codeberg.org/snonux/voicelab/internal/transcribe"
)

// RunFunc is the body of a subcommand
type RunFunc func(cmd *cobra.Command, args []string) error

// Runners holds the implementation of every subcommand. A nil runner
// leaves its command without a body.
type Runners struct {
	Serve   RunFunc
	Analyze RunFunc
	Score   RunFunc
	Words   RunFunc
	Models  RunFunc
	History RunFunc
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, run Runners) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voicelab",
		Short: "Pronunciation scoring and audio to MIDI services",
		Long: `voicelab scores spoken English words against General American and
Received Pronunciation references, and converts recorded melodies to MIDI.

Examples:
  voicelab serve                          # Phoneme service on :5000
  voicelab serve --service all            # Phoneme on :5000, MIDI on :5001
  voicelab analyze take.wav --word tomato # Transcribe and score a recording
  voicelab score "T AH M EY T OW" --word tomato --accent RP
  voicelab score --batch attempts.txt     # Score pre-transcribed attempts`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newServeCommand(flags, run.Serve),
		newAnalyzeCommand(flags, run.Analyze),
		newScoreCommand(flags, run.Score),
		newWordsCommand(flags, run.Words),
		newModelsCommand(flags, run.Models),
		newHistoryCommand(flags, run.History),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.voicelab.yaml)")
	pf.StringVar(&flags.ReferenceFile, "reference", "", "YAML file with reference pronunciations (default: built-in table)")
	pf.StringVar(&flags.HistoryPath, "history-db", DefaultHistoryPath(), "SQLite database for scored attempts")
	pf.BoolVar(&flags.NoHistory, "no-history", false, "Do not record scored attempts")

	pf.StringVar(&flags.Provider, "provider", flags.Provider, "Transcription provider: wav2vec2, openai or gemini")
	pf.StringVar(&flags.Fallback, "fallback", "", "Fallback transcription provider")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI transcription model: whisper-1, gpt-4o-transcribe, gpt-4o-mini-transcribe")
	pf.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model used for transcription")
	pf.StringVar(&flags.PythonPath, "python", "", "Python interpreter for the local models (default: venv or python3)")
	pf.StringVar(&flags.ScriptsDir, "scripts-dir", flags.ScriptsDir, "Directory holding the model scripts")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Transcription timeout per recording")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("reference.file", pf.Lookup("reference"))
	viper.BindPFlag("history.path", pf.Lookup("history-db"))
	viper.BindPFlag("history.disabled", pf.Lookup("no-history"))
	viper.BindPFlag("transcribe.provider", pf.Lookup("provider"))
	viper.BindPFlag("transcribe.fallback", pf.Lookup("fallback"))
	viper.BindPFlag("transcribe.openai_model", pf.Lookup("openai-model"))
	viper.BindPFlag("transcribe.gemini_model", pf.Lookup("gemini-model"))
	viper.BindPFlag("transcribe.python", pf.Lookup("python"))
	viper.BindPFlag("transcribe.scripts_dir", pf.Lookup("scripts-dir"))
	viper.BindPFlag("transcribe.timeout", pf.Lookup("timeout"))
}

func newServeCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the phoneme and/or MIDI web services",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().StringVar(&flags.Service, "service", flags.Service, "Service to run: phoneme, midi or all")
	cmd.Flags().StringVar(&flags.Host, "host", "", "Listen host (default: all interfaces)")
	cmd.Flags().IntVarP(&flags.Port, "port", "p", flags.Port, "Phoneme service port (MIDI port when --service midi)")
	cmd.Flags().IntVar(&flags.MIDIPort, "midi-port", flags.MIDIPort, "MIDI service port when --service all")

	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.midi_port", cmd.Flags().Lookup("midi-port"))
	return cmd
}

func newAnalyzeCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <audio-file>",
		Short: "Transcribe a recording and score it against a word",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	addTargetFlags(cmd, flags)
	cmd.MarkFlagRequired("word")
	return cmd
}

func newScoreCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [transcription]",
		Short: "Score an ARPABET transcription without audio",
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.BatchFile != "" {
				return cobra.NoArgs(cmd, args)
			}
			if len(args) != 1 {
				return fmt.Errorf("requires a transcription argument or --batch")
			}
			if flags.Word == "" {
				return fmt.Errorf("--word is required when scoring a single transcription")
			}
			return nil
		},
		RunE: run,
	}
	addTargetFlags(cmd, flags)
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Score entries from file (lines of 'word [accent] = TRANSCRIPTION')")
	return cmd
}

func addTargetFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVarP(&flags.Word, "word", "w", "", "Target word")
	cmd.Flags().StringVarP(&flags.Accent, "accent", "a", flags.Accent, "Target accent: GA or RP")
}

func newWordsCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List the reference vocabulary",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().StringVar(&flags.Like, "like", "", "Rank words by similarity to this spelling")
	cmd.Flags().IntVarP(&flags.Suggestions, "number", "n", flags.Suggestions, "Number of suggestions with --like")
	return cmd
}

func newModelsCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the configured transcription models",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().BoolVar(&flags.Remote, "remote", false, "List OpenAI transcription models available for the current API key")
	return cmd
}

func newHistoryCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scored attempts and per-word statistics",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", flags.Limit, "Number of attempts to show")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the history database into the archive directory")
	return cmd
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".voicelab" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".voicelab")
	}

	// VOICELAB_SERVER_PORT overrides server.port
	viper.SetEnvPrefix("VOICELAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("transcribe.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("transcribe.gemini_key")
}

// DefaultHistoryPath returns the default location of the attempt database
func DefaultHistoryPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "voicelab", "history.db")
}

// ProviderConfig builds the transcription configuration from flags,
// config file and environment
func ProviderConfig() *transcribe.Config {
	cfg := transcribe.DefaultProviderConfig()

	if v := viper.GetString("transcribe.provider"); v != "" {
		cfg.Provider = v
	}
	cfg.Fallback = viper.GetString("transcribe.fallback")
	if v := viper.GetString("transcribe.openai_model"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := viper.GetString("transcribe.gemini_model"); v != "" {
		cfg.GeminiModel = v
	}
	if v := viper.GetString("transcribe.scripts_dir"); v != "" {
		cfg.ScriptsDir = v
	}
	if v := viper.GetDuration("transcribe.timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v := viper.GetString("transcribe.openai_language"); v != "" {
		cfg.OpenAILanguage = v
	}
	if viper.IsSet("transcribe.cache") {
		cfg.EnableCache = viper.GetBool("transcribe.cache")
	}
	if cfg.EnableCache {
		home, _ := os.UserHomeDir()
		cfg.CacheDir = filepath.Join(home, ".cache", "voicelab", "transcripts")
	}
	cfg.PythonPath = viper.GetString("transcribe.python")
	cfg.OpenAIKey = GetOpenAIKey()
	cfg.GeminiKey = GetGeminiKey()

	return cfg
}

// LoadReferenceTable returns the configured reference table, or the
// built-in one when no file is configured
func LoadReferenceTable() (*phonetic.Table, error) {
	path := viper.GetString("reference.file")
	if path == "" {
		return phonetic.DefaultTable(), nil
	}
	table, err := phonetic.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}
	return table, nil
}

// OpenHistory opens the attempt database unless history is disabled, in
// which case it returns nil
func OpenHistory() (*history.Store, error) {
	if viper.GetBool("history.disabled") {
		return nil, nil
	}
	path := viper.GetString("history.path")
	if path == "" {
		path = DefaultHistoryPath()
	}
	return history.Open(path)
}
