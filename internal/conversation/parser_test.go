package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	parser := NewKeywordParser(logger.Nop())
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Pause/Resume
		{"pause", domain.IntentPause, ""},
		{"P", domain.IntentPause, ""},
		{"brb", domain.IntentPause, ""},
		{"resume", domain.IntentResume, ""},
		{"back", domain.IntentResume, ""},
		{"toggle", domain.IntentPauseResume, ""},
		{"space", domain.IntentPauseResume, ""},

		// Steps and sessions
		{"next", domain.IntentStopStep, ""},
		{"skip", domain.IntentStopStep, ""},
		{"stop   step", domain.IntentStopStep, ""},
		{"stop", domain.IntentClear, ""},
		{"abandon", domain.IntentClear, ""},

		// Start
		{"cook chicken-alfredo", domain.IntentStartCooking, "chicken-alfredo"},
		{"start 2", domain.IntentStartCooking, "2"},
		{"pick vegetable-stir-fry", domain.IntentStartCooking, "vegetable-stir-fry"},
		{"cook", domain.IntentStartCooking, ""},
		{"1", domain.IntentStartCooking, "1"},
		{"  12 ", domain.IntentStartCooking, "12"},

		// Views and misc
		{"tab", domain.IntentToggleView, ""},
		{"mini", domain.IntentToggleView, ""},
		{"status", domain.IntentStatus, ""},
		{"list", domain.IntentListRecipes, ""},
		{"ls", domain.IntentListRecipes, ""},
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},
		{"quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Unknown
		{"make me a sandwich", domain.IntentUnknown, "make me a sandwich"},
		{"", domain.IntentUnknown, ""},
		{"   ", domain.IntentUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, intent.Type, "intent for %q", tt.input)
			assert.Equal(t, tt.wantPayload, intent.Payload)
		})
	}
}

func TestCLINotifier(t *testing.T) {
	var lines []string
	printFn := func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	}
	ctx := context.Background()

	plain := NewCLINotifier(logger.Nop(), printFn, false)
	require.NoError(t, plain.Notify(ctx, "hello"))
	require.NoError(t, plain.NotifyUrgent(ctx, "hurry"))
	assert.Equal(t, []string{"hello", "!! hurry"}, lines)

	lines = nil
	colored := NewCLINotifier(logger.Nop(), printFn, true)
	require.NoError(t, colored.NotifyUrgent(ctx, "hurry"))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "hurry")
	assert.Contains(t, lines[0], red)
}
