package types

// RequestGenerate asks a generation-capable validator to produce
// text from a prompt.
type RequestGenerate struct {
	Prompt string `cramberry:"1"`
	// Upper bound on generated tokens. Zero means the model default.
	MaxTokens uint32 `cramberry:"2"`
	// Sampling temperature in thousandths, so 700 = 0.7.
	TemperatureMilli uint32 `cramberry:"3"`
}

// ResponseGenerate is the produced text and the model that
// produced it.
type ResponseGenerate struct {
	Text         string `cramberry:"1"`
	ModelVersion string `cramberry:"2"`
}
