package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon/strikelog/internal/models"
)

func TestParseLeg(t *testing.T) {
	leg, err := parseLeg("sell:put:450:-0.30")
	require.NoError(t, err)
	assert.Equal(t, models.SideSell, leg.Side)
	assert.Equal(t, models.OptionPut, leg.OptionType)
	assert.Equal(t, 450.0, leg.Strike)
	assert.Equal(t, -0.30, leg.Delta)

	leg, err = parseLeg("b:c:110")
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, leg.Side)
	assert.Equal(t, models.OptionCall, leg.OptionType)
	assert.Equal(t, 110.0, leg.Strike)
	assert.Zero(t, leg.Delta)
}

func TestParseLeg_Rejections(t *testing.T) {
	for _, spec := range []string{
		"",
		"sell:put",
		"hold:put:450",
		"sell:future:450",
		"sell:put:abc",
		"sell:put:450:x",
		"sell:put:450:-0.3:extra",
	} {
		_, err := parseLeg(spec)
		assert.Errorf(t, err, "spec %q should be rejected", spec)
	}
}

func TestParseExpiry(t *testing.T) {
	exp, err := parseExpiry("2026-04-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 17, 0, 0, 0, 0, time.UTC), exp)

	_, err = parseExpiry("")
	assert.Error(t, err)
	_, err = parseExpiry("04/17/2026")
	assert.Error(t, err)
}

func TestRootCmd_HasAllSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"open", "roll", "close", "assign", "list", "history", "stats", "serve", "version"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.Truef(t, found, "missing %s subcommand", name)
	}
}
