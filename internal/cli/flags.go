package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile       string
	ReferenceFile string
	HistoryPath   string
	NoHistory     bool

	// Transcription flags
	Provider    string
	Fallback    string
	OpenAIModel string
	GeminiModel string
	PythonPath  string
	ScriptsDir  string
	Timeout     time.Duration

	// serve
	Service  string
	Host     string
	Port     int
	MIDIPort int

	// analyze and score
	Word      string
	Accent    string
	BatchFile string

	// words
	Like        string
	Suggestions int

	// models
	Remote bool

	// history
	Limit   int
	Archive bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Provider:    "wav2vec2",
		OpenAIModel: "whisper-1",
		GeminiModel: "gemini-2.5-flash",
		ScriptsDir:  "scripts/python",
		Timeout:     60 * time.Second,
		Service:     "phoneme",
		Port:        5000,
		MIDIPort:    5001,
		Accent:      "GA",
		Suggestions: 5,
		Limit:       20,
	}
}
