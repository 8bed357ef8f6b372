package command

import (
	"context"
	"regexp"
	"strings"

	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

var kindAliases = map[string]Kind{
	"identify":    KindIdentify,
	"id":          KindIdentify,
	"translated":  KindTranslated,
	"doublecheck": KindDoubleCheck,
	"claim":       KindClaim,
	"missing":     KindMissing,
	"reset":       KindReset,
	"page":        KindPage,
	"set":         KindSet,
	"search":      KindSearch,
	"delete":      KindDelete,
	"long":        KindLong,
}

var (
	// !name, !name:arg, !name:"multi word arg"
	commandPattern = regexp.MustCompile(`!([a-zA-Z]+)(?::(?:"([^"\n]+)"|([^\s]+)))?`)
	codeBlockPat   = regexp.MustCompile("(?s)```.*?```")
)

// Parser extracts commands and lookups from comment bodies.
type Parser struct {
	resolver *language.Resolver
	logger   logger.Interface
}

func NewParser(resolver *language.Resolver, log logger.Interface) *Parser {
	return &Parser{resolver: resolver, logger: log}
}

// Parse scans a comment body for command triggers. Duplicate kind+argument
// pairs collapse to the first occurrence; unknown triggers are ignored.
// An identify sharing the comment with a translated or doublecheck is marked
// notification-suppressed, since the identification is already being acted
// on.
func (p *Parser) Parse(ctx context.Context, body string) []Command {
	body = codeBlockPat.ReplaceAllString(body, "")

	var commands []Command
	seen := map[string]bool{}
	for _, match := range commandPattern.FindAllStringSubmatch(body, -1) {
		kind, ok := kindAliases[strings.ToLower(match[1])]
		if !ok {
			continue
		}
		arg := match[2]
		if arg == "" {
			arg = match[3]
		}

		cmd := p.buildCommand(ctx, kind, arg)
		key := string(kind) + "|" + strings.ToLower(strings.TrimSpace(arg))
		if seen[key] {
			continue
		}
		seen[key] = true
		commands = append(commands, cmd)
	}

	return markSuppressed(commands)
}

func (p *Parser) buildCommand(ctx context.Context, kind Kind, arg string) Command {
	cmd := Command{kind: kind, raw: arg}

	switch kind {
	case KindSearch:
		cmd.text = strings.TrimSpace(arg)
		return cmd
	case KindReset, KindDelete, KindLong:
		// No payload; any stray argument is kept as raw only.
		return cmd
	}

	arg = strings.TrimSpace(arg)
	if arg == "" {
		return cmd
	}

	// A 2-4 character argument closed with a second marker requests strict
	// code-class resolution: !identify:ger! means the 639 code, not a name.
	if core, found := strings.CutSuffix(arg, "!"); found && len(core) >= 2 && len(core) <= 4 {
		cmd.specific = true
		ident, err := p.resolver.ResolveSpecific(ctx, core)
		if err != nil {
			cmd.droppedTokens = []string{core}
			if p.logger != nil {
				p.logger.Warnw("dropped unresolvable strict language argument",
					"kind", kind, "token", core)
			}
			return cmd
		}
		cmd.languages = []language.Identity{ident}
		return cmd
	}

	resolved, dropped := p.resolver.ParseLanguageList(ctx, arg)
	cmd.languages = resolved
	cmd.droppedTokens = dropped
	if len(dropped) > 0 && p.logger != nil {
		p.logger.Warnw("dropped unresolvable language arguments",
			"kind", kind, "tokens", dropped)
	}
	return cmd
}

func markSuppressed(commands []Command) []Command {
	stateChange := false
	for _, cmd := range commands {
		if cmd.kind == KindTranslated || cmd.kind == KindDoubleCheck {
			stateChange = true
			break
		}
	}
	if !stateChange {
		return commands
	}
	for i := range commands {
		if commands[i].kind == KindIdentify {
			commands[i].suppressNotify = true
		}
	}
	return commands
}
