// Package conversation turns typed commands into intents and prints
// notifications for the user.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
	start    *regexp.Regexp
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{
		log:   log,
		start: regexp.MustCompile(`(?i)^(?:cook|start|begin|select|pick)(?:\s+(.+))?$`),
	}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(pause|brb|wait|p)$`), domain.IntentPause},
		{regexp.MustCompile(`(?i)^(resume|back|continue|unpause|r)$`), domain.IntentResume},
		{regexp.MustCompile(`(?i)^(toggle|space|t)$`), domain.IntentPauseResume},
		{regexp.MustCompile(`(?i)^(next|skip|done|stop step|n|s)$`), domain.IntentStopStep},
		{regexp.MustCompile(`(?i)^(clear|abandon|stop|end|cancel)$`), domain.IntentClear},
		{regexp.MustCompile(`(?i)^(status|where|progress|info)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(tab|view|mini|page)$`), domain.IntentToggleView},
		{regexp.MustCompile(`(?i)^(list|recipes|ls|browse)$`), domain.IntentListRecipes},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. Start intents carry the
// recipe ID or list position as payload; unknown input is echoed back as
// payload.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.Join(strings.Fields(input), " ")
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	// A bare number picks a recipe by its position in the last listing.
	if len(trimmed) <= 3 && isDigits(trimmed) {
		return &domain.Intent{Type: domain.IntentStartCooking, Payload: trimmed}, nil
	}

	if m := p.start.FindStringSubmatch(trimmed); m != nil {
		return &domain.Intent{Type: domain.IntentStartCooking, Payload: m[1]}, nil
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent}, nil
		}
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// HelpText lists the commands Parse understands.
const HelpText = `Commands:
  list                 show recipes
  cook <id|number>     start cooking a recipe
  pause / resume       pause or resume the timer
  toggle               flip between paused and running
  next                 finish the current step early
  clear                abandon the session
  status               show where you are
  tab                  switch between cooking page and mini-player
  quit                 leave`

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
