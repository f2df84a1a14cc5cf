package moderation

import "errors"

var (
	ErrNoTargetMentioned        = errors.New("no target mentioned")
	ErrMissingReason            = errors.New("no reason provided")
	ErrNotInGuildContext        = errors.New("command only works in a guild")
	ErrInsufficientPrivilege    = errors.New("insufficient privilege")
	ErrCannotInteractWithTarget = errors.New("cannot interact with target")
	ErrTargetNotInGuild         = errors.New("target is not a member of the guild")

	// ErrMemberNotFound is returned by Platform.Member for users outside the guild.
	ErrMemberNotFound = errors.New("member not found")
)
