package agent

import (
	"testing"

	"carboncredit/pkg/core/llm"
)

func testConfig() Config {
	return Config{
		ActiveProvider: "openai",
		Agents: map[string]AgentConfig{
			"assessment": {Provider: "gemini", Description: "free-form assessments"},
			"guidance":   {Description: "no override, follows active"},
		},
	}
}

func TestGetProvider_RoleOverride(t *testing.T) {
	m := NewManager(testConfig())

	if _, ok := m.GetProvider("assessment").(*llm.GeminiProvider); !ok {
		t.Errorf("assessment role should route to gemini, got %T", m.GetProvider("assessment"))
	}
}

func TestGetProvider_FallsBackToActive(t *testing.T) {
	m := NewManager(testConfig())

	// No override on the role, and an unknown role entirely: both follow the
	// active provider.
	if _, ok := m.GetProvider("guidance").(*llm.OpenAIProvider); !ok {
		t.Errorf("guidance role should follow active provider, got %T", m.GetProvider("guidance"))
	}
	if _, ok := m.GetProvider("nonexistent").(*llm.OpenAIProvider); !ok {
		t.Errorf("unknown role should follow active provider, got %T", m.GetProvider("nonexistent"))
	}
}

func TestGetProvider_UnknownActiveDefaultsToOpenAI(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "bogus"})

	if _, ok := m.GetProvider("anything").(*llm.OpenAIProvider); !ok {
		t.Errorf("expected openai default, got %T", m.GetProvider("anything"))
	}
}

func TestSetGlobalProvider(t *testing.T) {
	m := NewManager(testConfig())

	if err := m.SetGlobalProvider("deepseek"); err != nil {
		t.Fatalf("switch to deepseek failed: %v", err)
	}
	if m.GetActiveProvider() != "deepseek" {
		t.Errorf("active provider not updated: %s", m.GetActiveProvider())
	}
	if _, ok := m.GetProvider("guidance").(*llm.DeepSeekProvider); !ok {
		t.Errorf("guidance should now route to deepseek, got %T", m.GetProvider("guidance"))
	}

	if err := m.SetGlobalProvider("mistral"); err == nil {
		t.Error("expected error for unknown provider")
	}
	if m.GetActiveProvider() != "deepseek" {
		t.Error("failed switch should not change the active provider")
	}
}

func TestGetProviderByName(t *testing.T) {
	m := NewManager(testConfig())

	if m.GetProviderByName("gemini") == nil {
		t.Error("expected gemini provider")
	}
	if m.GetProviderByName("bogus") != nil {
		t.Error("expected nil for unknown provider name")
	}
}
