package moderation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberNameAndUsername(t *testing.T) {
	assert.Equal(t, "Mod (mod)", Member{Username: "mod", DisplayName: "Mod"}.NameAndUsername())
	assert.Equal(t, "mod", Member{Username: "mod", DisplayName: "mod"}.NameAndUsername())
	assert.Equal(t, "mod", Member{Username: "mod"}.NameAndUsername())
	assert.Equal(t, "Mod", Member{DisplayName: "Mod"}.NameAndUsername())
	assert.Equal(t, "Mod (mod) [1]", Member{ID: "1", Username: "mod", DisplayName: "Mod"}.String())
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Authorized.Err())
	assert.ErrorIs(t, InsufficientPrivilege.Err(), ErrInsufficientPrivilege)
	assert.ErrorIs(t, CannotInteractWithTarget.Err(), ErrCannotInteractWithTarget)
	assert.Equal(t, "cannot interact with target", CannotInteractWithTarget.String())
}

func TestOutcomeMessageKeepsNoticeEmbed(t *testing.T) {
	target := Member{ID: "200", Username: "troll"}
	notice := Embed{Title: "kicked"}

	msg := outcomeMessage(target, Delivered(MessageHandle{}, notice), Applied(), false)
	if assert.NotNil(t, msg.Embed) {
		assert.Equal(t, "kicked", msg.Embed.Title)
	}

	msg = outcomeMessage(target, Undeliverable(errors.New("closed")), Applied(), false)
	assert.Nil(t, msg.Embed)
	assert.Equal(t, "Kicked troll [200].\n\nUnable to DM the user, please inform them manually if possible: closed", msg.Content)
}

func TestRejectionMessageFallback(t *testing.T) {
	assert.Equal(t, "Unable to process the kick: check capability: timeout",
		rejectionMessage("1", errors.New("check capability: timeout")))
}
