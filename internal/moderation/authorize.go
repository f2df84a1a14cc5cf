package moderation

import (
	"context"
	"errors"
	"fmt"
)

// parties are the members resolved while authorizing a request.
type parties struct {
	guild   Guild
	invoker Member
	target  Member
}

// authorize runs the checks in order: guild context, capability, target
// presence, rank. It issues lookups only, never a mutating call.
func (w *Workflow) authorize(ctx context.Context, req Request) (parties, error) {
	if req.GuildID == "" {
		return parties{}, ErrNotInGuildContext
	}

	allowed, err := w.platform.HasCapability(ctx, req.GuildID, req.InvokerID, CapabilityRemoveMembers)
	if err != nil {
		return parties{}, fmt.Errorf("check capability: %w", err)
	}
	if !allowed {
		return parties{}, InsufficientPrivilege.Err()
	}

	target, err := w.platform.Member(ctx, req.GuildID, req.TargetID)
	if errors.Is(err, ErrMemberNotFound) {
		return parties{}, ErrTargetNotInGuild
	}
	if err != nil {
		return parties{}, fmt.Errorf("look up target: %w", err)
	}

	canAct, err := w.platform.CanActOn(ctx, req.GuildID, req.InvokerID, req.TargetID)
	if err != nil {
		return parties{}, fmt.Errorf("compare ranks: %w", err)
	}
	if !canAct {
		return parties{}, CannotInteractWithTarget.Err()
	}

	invoker, err := w.platform.Member(ctx, req.GuildID, req.InvokerID)
	if err != nil {
		return parties{}, fmt.Errorf("look up invoker: %w", err)
	}
	guild, err := w.platform.Guild(ctx, req.GuildID)
	if err != nil {
		return parties{}, fmt.Errorf("look up guild: %w", err)
	}

	return parties{guild: guild, invoker: invoker, target: target}, nil
}
