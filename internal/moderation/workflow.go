package moderation

import (
	"context"
	"errors"
	"time"

	"server-warden/pkg/jobmgr"

	"github.com/rs/zerolog"
)

type Config struct {
	Logger zerolog.Logger
	// DenialTTL is how long the "missing permission" notice stays before it
	// is deleted. Zero keeps it.
	DenialTTL time.Duration
	// Jobs schedules the denial notice deletion. A private manager is used
	// when nil.
	Jobs *jobmgr.Manager
	Now  func() time.Time
}

// Workflow runs kick invocations. It holds no per-invocation state, so one
// Workflow serves concurrent invocations.
type Workflow struct {
	platform  Platform
	audit     AuditLog
	notes     NoteStore
	log       zerolog.Logger
	denialTTL time.Duration
	jobs      *jobmgr.Manager
	now       func() time.Time
}

func New(platform Platform, audit AuditLog, notes NoteStore, cfg Config) *Workflow {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	jobs := cfg.Jobs
	if jobs == nil {
		jobs = jobmgr.NewManager(cfg.Logger)
	}
	return &Workflow{
		platform:  platform,
		audit:     audit,
		notes:     notes,
		log:       cfg.Logger,
		denialTTL: cfg.DenialTTL,
		jobs:      jobs,
		now:       now,
	}
}

// Report describes how an invocation ended. The dispatcher does not need it;
// it exists for logging and tests.
type Report struct {
	// Rejected is set when the request stopped before any mutating call.
	Rejected     error
	Notification *NotificationOutcome
	Action       *ActionOutcome
	CaseNumber   int64
	NoteRecorded bool
	// NoticeDeleted is set when the delivered notice was withdrawn after a failed kick.
	NoticeDeleted bool
	Feedback      string
}

// Run executes one invocation: resolve, authorize, notify, kick, report.
// Each step starts only after the previous remote call settled.
func (w *Workflow) Run(ctx context.Context, inv Invocation) Report {
	log := w.log.With().Str("guild", inv.GuildID).Str("invoker", inv.InvokerID).Logger()

	req, err := Resolve(inv)
	if err != nil {
		log.Debug().Err(err).Msg("kick rejected")
		return w.reject(ctx, inv.InvokerID, err)
	}

	p, err := w.authorize(ctx, req)
	if err != nil {
		log.Debug().Err(err).Str("target", req.TargetID).Msg("kick rejected")
		return w.reject(ctx, req.InvokerID, err)
	}

	n := w.notify(ctx, req, p)
	log.Debug().Bool("delivered", n.Delivered()).AnErr("cause", n.Cause).Str("target", req.TargetID).Msg("notification settled")

	a := w.kick(ctx, req)
	log.Debug().Bool("applied", a.Applied()).AnErr("cause", a.Cause).Str("target", req.TargetID).Msg("kick settled")

	return w.settle(ctx, req, p, n, a)
}

func (w *Workflow) reject(ctx context.Context, invokerID string, err error) Report {
	msg := rejectionMessage(invokerID, err)
	h, ok := w.feedback(ctx, invokerID, Message{Content: msg})
	if ok && w.denialTTL > 0 && errors.Is(err, ErrInsufficientPrivilege) {
		w.expire(h)
	}
	return Report{Rejected: err, Feedback: msg}
}

// feedback DMs the invoker. Delivery is best-effort: when the private
// channel cannot be opened or the send fails, the message is dropped.
func (w *Workflow) feedback(ctx context.Context, invokerID string, msg Message) (MessageHandle, bool) {
	channelID, err := w.platform.OpenPrivateChannel(ctx, invokerID)
	if err != nil {
		w.log.Debug().Err(err).Str("invoker", invokerID).Msg("invoker feedback dropped")
		return MessageHandle{}, false
	}
	h, err := w.platform.SendMessage(ctx, channelID, msg)
	if err != nil {
		w.log.Debug().Err(err).Str("invoker", invokerID).Msg("invoker feedback dropped")
		return MessageHandle{}, false
	}
	return h, true
}

func (w *Workflow) expire(h MessageHandle) {
	scheduleDelete(w.jobs, w.platform, w.log, "expire-denial", h, w.denialTTL)
}

type messageDeleter interface {
	DeleteMessage(ctx context.Context, h MessageHandle) error
}

// scheduleDelete deletes the message behind h once ttl has passed.
func scheduleDelete(jobs *jobmgr.Manager, d messageDeleter, log zerolog.Logger, kind string, h MessageHandle, ttl time.Duration) {
	name := kind + ":" + h.ChannelID + ":" + h.MessageID
	err := jobs.StartAfter(name, ttl, func(ctx context.Context) error {
		return d.DeleteMessage(ctx, h)
	})
	if err != nil {
		log.Debug().Err(err).Str("job", name).Msg("message will not expire")
	}
}
