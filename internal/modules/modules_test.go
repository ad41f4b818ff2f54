package modules_test

import (
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/modules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	r := modules.Default()

	names := make([]string, 0)
	for _, def := range r.All() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"aragonos", "giveth", "std", "superfluid"}, names)

	def, ok := r.Lookup("ar")
	require.True(t, ok)
	assert.Equal(t, "aragonos", def.Name)
	assert.Equal(t, []string{"connect", "grant", "install", "revoke"}, def.CommandNames())
	assert.Equal(t, []string{"aragonEns"}, def.HelperNames())
}
