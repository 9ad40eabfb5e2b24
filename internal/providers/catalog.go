package providers

import "github.com/jayy-77/openclaw/internal/core"

// Local Ollama endpoint used for the fallback provider and for discovery
const OllamaBaseURL = "http://127.0.0.1:11434"

var text = []string{"text"}
var textImage = []string{"text", "image"}

func init() {
	Register(Definition{
		Key:     "minimax",
		EnvVars: []string{"MINIMAX_API_KEY"},
		BaseURL: "https://api.minimax.io/anthropic",
		API:     core.APIAnthropicMessages,
		Models: []core.ModelDefinition{
			{ID: "MiniMax-M2.1", Name: "MiniMax M2.1", Reasoning: true, Input: text, ContextWindow: 200000, MaxTokens: 8192},
			{ID: "MiniMax-VL-01", Name: "MiniMax VL 01", Input: textImage, ContextWindow: 200000, MaxTokens: 8192},
		},
	})

	Register(Definition{
		Key:     "synthetic",
		EnvVars: []string{"SYNTHETIC_API_KEY"},
		BaseURL: "https://api.synthetic.new/anthropic",
		API:     core.APIAnthropicMessages,
		Models: []core.ModelDefinition{
			{ID: "hf:MiniMaxAI/MiniMax-M2.1", Name: "MiniMax M2.1", Reasoning: true, Input: text, ContextWindow: 192000, MaxTokens: 65536},
			{ID: "hf:moonshotai/Kimi-K2-Thinking", Name: "Kimi K2 Thinking", Reasoning: true, Input: text, ContextWindow: 256000, MaxTokens: 8192},
			{ID: "hf:zai-org/GLM-4.7", Name: "GLM-4.7", Reasoning: true, Input: text, ContextWindow: 198000, MaxTokens: 128000},
			{ID: "hf:deepseek-ai/DeepSeek-V3.2", Name: "DeepSeek V3.2", Input: text, ContextWindow: 159000, MaxTokens: 8192},
		},
	})

	Register(Definition{
		Key:     "moonshot",
		EnvVars: []string{"MOONSHOT_API_KEY"},
		BaseURL: "https://api.moonshot.ai/v1",
		API:     core.APIOpenAICompletions,
		Models: []core.ModelDefinition{
			{ID: "kimi-k2.5", Name: "Kimi K2.5", Input: text, ContextWindow: 256000, MaxTokens: 8192},
		},
	})

	Register(Definition{
		Key:     "venice",
		EnvVars: []string{"VENICE_API_KEY"},
		BaseURL: "https://api.venice.ai/api/v1",
		API:     core.APIOpenAICompletions,
		Models: []core.ModelDefinition{
			{ID: "llama-3.3-70b", Name: "Llama 3.3 70B", Input: text, ContextWindow: 131072, MaxTokens: 8192},
			{ID: "qwen3-235b", Name: "Qwen3 235B", Reasoning: true, Input: text, ContextWindow: 131072, MaxTokens: 8192},
		},
	})

	Register(Definition{
		Key:     "xiaomi",
		EnvVars: []string{"XIAOMI_API_KEY"},
		BaseURL: "https://api.xiaomimimo.com/anthropic",
		API:     core.APIAnthropicMessages,
		Models: []core.ModelDefinition{
			{ID: "mimo-v2-flash", Name: "Xiaomi MiMo V2 Flash", Input: text, ContextWindow: 262144, MaxTokens: 8192},
		},
	})

	Register(Definition{
		Key:     "together",
		EnvVars: []string{"TOGETHER_API_KEY"},
		BaseURL: "https://api.together.xyz/v1",
		API:     core.APIOpenAICompletions,
		Models: []core.ModelDefinition{
			{ID: "meta-llama/Llama-3.3-70B-Instruct-Turbo", Name: "Llama 3.3 70B Instruct Turbo", Input: text, ContextWindow: 131072, MaxTokens: 8192},
			{ID: "deepseek-ai/DeepSeek-V3", Name: "DeepSeek V3", Input: text, ContextWindow: 131072, MaxTokens: 8192},
		},
	})

	Register(Definition{
		Key:     "nvidia",
		EnvVars: []string{"NVIDIA_API_KEY"},
		BaseURL: "https://integrate.api.nvidia.com/v1",
		API:     core.APIOpenAICompletions,
		Models: []core.ModelDefinition{
			{ID: "nvidia/llama-3.1-nemotron-70b-instruct", Name: "Llama 3.1 Nemotron 70B Instruct", Input: text, ContextWindow: 131072, MaxTokens: 4096},
		},
	})

	Register(Definition{
		Key:     "qianfan",
		EnvVars: []string{"QIANFAN_API_KEY"},
		BaseURL: "https://qianfan.baidubce.com/v2",
		API:     core.APIOpenAICompletions,
		Models: []core.ModelDefinition{
			{ID: "deepseek-v3.2", Name: "DeepSeek V3.2", Input: text, ContextWindow: 98304, MaxTokens: 32768},
			{ID: "ernie-5.0-thinking-preview", Name: "ERNIE 5.0 Thinking Preview", Reasoning: true, Input: textImage, ContextWindow: 119000, MaxTokens: 64000},
		},
	})

	Register(Definition{
		Key:     "huggingface",
		EnvVars: []string{"HF_TOKEN", "HUGGINGFACE_HUB_TOKEN"},
		BaseURL: "https://router.huggingface.co/v1",
		API:     core.APIOpenAICompletions,
		Models: []core.ModelDefinition{
			{ID: "deepseek-ai/DeepSeek-R1", Name: "DeepSeek R1", Reasoning: true, Input: text, ContextWindow: 131072, MaxTokens: 8192},
			{ID: "meta-llama/Llama-3.3-70B-Instruct", Name: "Llama 3.3 70B Instruct", Input: text, ContextWindow: 131072, MaxTokens: 8192},
		},
	})

	// Ollama has no fixed model list; models come from the running server
	Register(Definition{
		Key:        "ollama",
		EnvVars:    []string{"OLLAMA_API_KEY"},
		BaseURL:    OllamaBaseURL,
		API:        core.APIOllama,
		Discovered: true,
	})
}
