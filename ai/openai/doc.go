// Package openai provides ai.Provider implementations backed by
// OpenAI-compatible APIs, covering both hosted multi-credential services
// and local servers such as Ollama or vLLM.
package openai
