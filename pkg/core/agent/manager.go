package agent

import (
	"context"
	"fmt"

	"carboncredit/pkg/core/llm"
	"carboncredit/pkg/core/utils"
)

// Config maps agent roles to providers. Loaded from config/models.yaml.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Description string `yaml:"description"`
}

// Manager routes agent roles ("guidance", "recommendation", "assessment") to
// concrete LLM providers, with a global active provider and per-role
// overrides.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai":   &llm.OpenAIProvider{},
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// GetProvider resolves the provider for an agent role: role override first,
// then the global active provider, then openai.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}

	return m.providers["openai"]
}

// GetProviderByName retrieves a provider instance by its specific name (e.g. "deepseek", "gemini")
func (m *Manager) GetProviderByName(name string) llm.Provider {
	if p, ok := m.providers[name]; ok {
		return p
	}
	return nil
}

// ExecutePrompt handles instruction adaptation before sending to the model
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)
	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)
	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

// ExecuteStructured requests JSON output and parses it into schema, repairing
// the usual LLM formatting damage on the way.
func (m *Manager) ExecuteStructured(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, schema interface{}) error {
	options := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
	raw, err := m.ExecutePrompt(ctx, agentType, rawPrompt, rawSystemPrompt, options)
	if err != nil {
		return err
	}
	if _, err := utils.SmartParse(utils.CleanMarkdown(raw), schema); err != nil {
		return fmt.Errorf("structured response parse failed: %w", err)
	}
	return nil
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	fmt.Printf("[AGENT] Global provider set to: %s\n", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}

// Available lists the provider names the manager can route to.
func (m *Manager) Available() []string {
	return []string{"openai", "gemini", "deepseek"}
}
