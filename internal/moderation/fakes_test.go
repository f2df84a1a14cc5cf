package moderation

import (
	"context"
	"fmt"
	"sync"
)

const (
	testGuild   = "900"
	testInvoker = "100"
	testTarget  = "200"
)

type sentMessage struct {
	ChannelID string
	Msg       Message
	Handle    MessageHandle
}

type kickCall struct {
	GuildID, UserID, Reason string
}

type fakePlatform struct {
	mu sync.Mutex

	guild    Guild
	members  map[string]Member
	canKick  map[string]bool
	outranks bool

	dmErr   map[string]error // keyed by user id
	sendErr map[string]error // keyed by channel id
	kickErr   error
	deleteErr error

	nextID    int
	calls     []string // remote calls in the order they were made
	sent      []sentMessage
	deleted   []MessageHandle
	kicks     []kickCall
	mutations int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		guild: Guild{ID: testGuild, Name: "Gopher Den"},
		members: map[string]Member{
			testInvoker: {ID: testInvoker, Username: "mod", DisplayName: "Moderator", AvatarURL: "https://cdn/mod.png"},
			testTarget:  {ID: testTarget, Username: "troll", DisplayName: "troll"},
		},
		canKick:  map[string]bool{testInvoker: true},
		outranks: true,
		dmErr:    map[string]error{},
		sendErr:  map[string]error{},
	}
}

func dmChannel(userID string) string { return "dm-" + userID }

func (f *fakePlatform) OpenPrivateChannel(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "open:"+userID)
	if err := f.dmErr[userID]; err != nil {
		return "", err
	}
	return dmChannel(userID), nil
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID string, msg Message) (MessageHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "send:"+channelID)
	if err := f.sendErr[channelID]; err != nil {
		return MessageHandle{}, err
	}
	f.nextID++
	h := MessageHandle{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", f.nextID)}
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Msg: msg, Handle: h})
	f.mutations++
	return h, nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, h MessageHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+h.ChannelID)
	f.mutations++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, h)
	return nil
}

func (f *fakePlatform) Kick(_ context.Context, guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "kick:"+userID)
	f.kicks = append(f.kicks, kickCall{GuildID: guildID, UserID: userID, Reason: reason})
	f.mutations++
	return f.kickErr
}

func (f *fakePlatform) Guild(_ context.Context, guildID string) (Guild, error) {
	return f.guild, nil
}

func (f *fakePlatform) Member(_ context.Context, _ string, userID string) (Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	return m, nil
}

func (f *fakePlatform) HasCapability(_ context.Context, _ string, userID string, c Capability) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c == CapabilityRemoveMembers && f.canKick[userID], nil
}

func (f *fakePlatform) CanActOn(context.Context, string, string, string) (bool, error) {
	return f.outranks, nil
}

func (f *fakePlatform) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sent {
		if s.ChannelID == channelID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakePlatform) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlatform) deletedHandles() []MessageHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MessageHandle(nil), f.deleted...)
}

type fakeAudit struct {
	mu      sync.Mutex
	cases   map[string]int64
	entries []AuditEntry
	err     error
}

func newFakeAudit() *fakeAudit { return &fakeAudit{cases: map[string]int64{}} }

func (a *fakeAudit) AppendAudit(_ context.Context, e AuditEntry) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return 0, a.err
	}
	a.cases[e.GuildID]++
	e.CaseNumber = a.cases[e.GuildID]
	a.entries = append(a.entries, e)
	return e.CaseNumber, nil
}

type fakeNotes struct {
	mu    sync.Mutex
	notes []Note
}

func (n *fakeNotes) AddNote(_ context.Context, note Note) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
	return nil
}
