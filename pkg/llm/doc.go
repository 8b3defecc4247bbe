// Package llm turns natural-language requests into structured workflow
// parameters. The Client speaks the OpenAI-compatible chat-completions
// protocol (DeepSeek by default) and asks the model for JSON matching
// ParsedQuery; the HeuristicParser is a deterministic offline fallback that
// recognizes the common request shapes without any network access.
package llm
