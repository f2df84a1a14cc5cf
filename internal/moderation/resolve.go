package moderation

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Resolve extracts the target and reason from an invocation. Only the first
// mention is used. The reason is whatever follows the first argument token.
func Resolve(inv Invocation) (Request, error) {
	if len(inv.Mentions) == 0 {
		return Request{}, ErrNoTargetMentioned
	}
	target := inv.Mentions[0]
	if _, err := snowflake.ParseString(target); err != nil {
		return Request{}, ErrNoTargetMentioned
	}

	return NewRequest(inv.InvokerID, inv.GuildID, target, reasonFrom(inv.Args))
}

func reasonFrom(args string) string {
	args = strings.TrimSpace(args)
	i := strings.IndexFunc(args, isSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(args[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
