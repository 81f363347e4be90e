package llm

const (
	chatSystemPrompt = "You are a helpful assistant."
	chatMaxTokens    = 1000
	chatTemperature  = 0.7
)

// ChatRequest wraps a free-form user message for a general assistant reply.
func ChatRequest(message string) Request {
	return Request{
		Kind:        "chat",
		System:      chatSystemPrompt,
		Prompt:      message,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}
}
