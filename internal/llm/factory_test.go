package llm

import (
	"testing"

	"echoguard/internal/config"
)

func TestFactory_CreateClient(t *testing.T) {
	f := NewFactory(&config.Config{OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-4o-mini"})

	c, err := f.CreateClient("OpenAI")
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*OpenAIClient); !ok {
		t.Fatalf("want *OpenAIClient, got %T", c)
	}

	if _, err := f.CreateClient("bard"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestFactory_MissingCredentials(t *testing.T) {
	f := NewFactory(&config.Config{})
	if _, err := f.CreateClient(ProviderOpenAI); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := f.CreateClient(ProviderYandex); err == nil {
		t.Fatalf("expected error without yandex credentials")
	}
}
