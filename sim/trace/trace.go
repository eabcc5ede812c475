package trace

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelCompletions captures completions and second boundaries.
	TraceLevelCompletions TraceLevel = "completions"
	// TraceLevelFull additionally captures the head position on every tick.
	TraceLevelFull TraceLevel = "full"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:        true,
	TraceLevelCompletions: true,
	TraceLevelFull:        true,
	"":                    true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects records during a simulation.
type SimulationTrace struct {
	Config      TraceConfig
	Completions []CompletionRecord
	Seconds     []SecondRecord
	Positions   []PositionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Completions: make([]CompletionRecord, 0),
		Seconds:     make([]SecondRecord, 0),
		Positions:   make([]PositionRecord, 0),
	}
}

// RecordCompletion appends a completion record.
func (st *SimulationTrace) RecordCompletion(record CompletionRecord) {
	st.Completions = append(st.Completions, record)
}

// RecordSecond appends a second-boundary record.
func (st *SimulationTrace) RecordSecond(record SecondRecord) {
	st.Seconds = append(st.Seconds, record)
}

// RecordPosition appends a head-position record. Only meaningful at TraceLevelFull.
func (st *SimulationTrace) RecordPosition(record PositionRecord) {
	st.Positions = append(st.Positions, record)
}

// WantsPositions reports whether per-tick positions should be recorded.
func (st *SimulationTrace) WantsPositions() bool {
	return st.Config.Level == TraceLevelFull
}
