package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractProfileName(t *testing.T) {
	profile := ExtractProfile("Meu nome é joão silva")
	assert.Equal(t, "João Silva", profile["name"])

	profile = ExtractProfile("eu sou carlos")
	assert.Equal(t, "Carlos", profile["name"])
}

func TestExtractProfileEmail(t *testing.T) {
	profile := ExtractProfile("pode falar comigo em ana.dev@empresa.com.br")
	assert.Equal(t, "ana.dev@empresa.com.br", profile["email"])
	_, hasName := profile["name"]
	assert.False(t, hasName)
}

func TestExtractProfileNoMatch(t *testing.T) {
	assert.Nil(t, ExtractProfile("quero automatizar meus relatórios"))
}
