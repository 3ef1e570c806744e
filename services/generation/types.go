package generation

// Request is a validated generation request. Engine and Model are
// selectors; an empty Model means the engine's default.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	Model       string
	Engine      string
}

// Result is the outcome of a successful generation
type Result struct {
	Text   string
	Model  string
	Engine string
}
