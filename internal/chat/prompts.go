package chat

// System prompts for the two conversation modes. The deep thinking
// variant asks for a short reasoning summary without exposing raw
// chain-of-thought traces.
const (
	basePrompt = "You are a helpful Qwen assistant. Reply in Chinese or English as appropriate. " +
		"Answer clearly and stay concise unless extended detail is requested. " +
		"When you reference factual info or external data, be transparent about sources. " +
		"Do not include chain-of-thought markers (e.g., Thought, Action, Observation, Final Answer). " +
		"Provide final answers directly."

	deepThinkingPrompt = "You are a helpful Qwen assistant. The deep thinking mode is enabled. " +
		"Think carefully, and when helpful, provide a short reasoning summary before the final answer. " +
		"Avoid revealing internal step-by-step reasoning traces; keep the response focused and useful."
)

// systemPrompt picks the prompt for the requested mode and appends the
// optional language hint.
func systemPrompt(deepThinking bool, lang string) string {
	prompt := basePrompt
	if deepThinking {
		prompt = deepThinkingPrompt
	}
	switch lang {
	case "zh":
		prompt += " Respond in Chinese."
	case "en":
		prompt += " Respond in English."
	}
	return prompt
}
