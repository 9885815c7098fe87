package main

import (
	"testing"

	"aethelred/config"
	"aethelred/generator"
	"github.com/stretchr/testify/require"
)

func TestInputFlags(t *testing.T) {
	in := inputFlags{}
	require.NoError(t, in.Set("disclosingParty=Acme"))
	require.NoError(t, in.Set("purpose=a=b"))
	require.Error(t, in.Set("novalue"))
	require.Equal(t, "Acme", in["disclosingParty"])
	require.Equal(t, "a=b", in["purpose"])
	require.Equal(t, "disclosingParty=Acme,purpose=a=b", in.String())
}

func TestBuildLLM(t *testing.T) {
	_, err := buildLLM(config.Config{})
	require.Error(t, err)

	llm, err := buildLLM(config.Config{LLM: &config.LLMConfig{Provider: "mock"}})
	require.NoError(t, err)
	require.IsType(t, generator.MockLLM{}, llm)

	_, err = buildLLM(config.Config{LLM: &config.LLMConfig{Provider: "deepseek", Model: "deepseek-chat", APIKey: "k"}})
	require.Error(t, err)

	_, err = buildLLM(config.Config{LLM: &config.LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-5", APIKey: "k"}})
	require.NoError(t, err)

	_, err = buildLLM(config.Config{LLM: &config.LLMConfig{Provider: "gemini"}})
	require.Error(t, err)
}
