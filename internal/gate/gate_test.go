package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateAccept(t *testing.T) {
	g := New("X-Canary", []string{"alpha", "Beta-123"})

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"first secret", "alpha", true},
		{"second secret", "Beta-123", true},
		{"empty value", "", false},
		{"unknown value", "gamma", false},
		{"case differs", "ALPHA", false},
		{"prefix of secret", "alph", false},
		{"secret with suffix", "alpha ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Accept(tt.value))
		})
	}
}

func TestGateWithoutSecretsRejectsEverything(t *testing.T) {
	g := New("X-Canary", nil)
	assert.False(t, g.Accept("anything"))
	assert.False(t, g.Accept(""))
}

func TestGateIgnoresEmptySecrets(t *testing.T) {
	g := New("X-Canary", []string{"", "real"})
	assert.False(t, g.Accept(""))
	assert.True(t, g.Accept("real"))
}

func TestGateWithoutHeaderKeyRejects(t *testing.T) {
	g := New("", []string{"real"})
	assert.False(t, g.Accept("real"))
	assert.Equal(t, "", g.HeaderKey())
}
