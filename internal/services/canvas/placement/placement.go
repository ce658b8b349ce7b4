// Package placement orchestrates one pixel placement attempt: coordinate and
// color validation, the cooldown check, and the journal commit.
package placement

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/GusEh06/pixel-battle-lite/internal/platform/errors"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/cooldown"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/domain/event"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/projection"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/stats"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/storage"
)

// MetadataRemainingSeconds is the metadata key carrying the cooldown wait on
// CooldownActive errors.
const MetadataRemainingSeconds = "remaining_seconds"

// Config fixes the grid dimensions and cooldown for one deployment.
type Config struct {
	Width    int
	Height   int
	Cooldown time.Duration
}

// Result is a committed placement plus the configured cooldown the client
// now has to sit out. After a successful placement the remaining wait is by
// definition the full cooldown.
type Result struct {
	Placement       event.Placement
	CooldownSeconds int
}

// Store is the persistence surface the coordinator drives.
type Store interface {
	storage.EventStore
	storage.UserStore
}

// Coordinator adjudicates placement attempts. A single coordinator is shared
// across concurrent requests; per-user critical sections serialize the
// cooldown check with the commit for that user only.
type Coordinator struct {
	width    int
	height   int
	gate     cooldown.Gate
	store    Store
	index    *projection.Index
	recorder stats.Recorder
	locks    *userLocks
	clock    func() time.Time
	tracer   trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithIndex routes accepted placements into an incremental projection index.
func WithIndex(index *projection.Index) Option {
	return func(c *Coordinator) { c.index = index }
}

// WithRecorder sets the placement outcome recorder.
func WithRecorder(recorder stats.Recorder) Option {
	return func(c *Coordinator) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates a coordinator for the given grid and cooldown.
func New(cfg Config, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		width:    cfg.Width,
		height:   cfg.Height,
		gate:     cooldown.NewGate(cfg.Cooldown),
		store:    store,
		recorder: stats.Nop{},
		locks:    newUserLocks(),
		clock:    time.Now,
		tracer:   otel.Tracer("canvas/placement"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Width returns the configured grid width.
func (c *Coordinator) Width() int { return c.width }

// Height returns the configured grid height.
func (c *Coordinator) Height() int { return c.height }

// CooldownSeconds returns the configured cooldown in whole seconds.
func (c *Coordinator) CooldownSeconds() int {
	return int(c.gate.Duration() / time.Second)
}

// InBounds reports whether (x,y) is on the grid.
func (c *Coordinator) InBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// Place runs one placement attempt. Validation and cooldown denial happen
// before any side effect; only the commit step mutates state, and it is
// attempted at most once.
func (c *Coordinator) Place(ctx context.Context, x, y int, rawColor, userID string) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "placement.Place",
		trace.WithAttributes(
			attribute.Int("canvas.x", x),
			attribute.Int("canvas.y", y),
		))
	defer span.End()

	if !c.InBounds(x, y) {
		err := apperrors.WithMetadata(apperrors.CodeInvalidCoordinates,
			"coordinates outside the canvas",
			map[string]string{
				"max_x":      strconv.Itoa(c.width - 1),
				"max_y":      strconv.Itoa(c.height - 1),
				"received_x": strconv.Itoa(x),
				"received_y": strconv.Itoa(y),
			})
		c.record(ctx, userID, false, apperrors.CodeInvalidCoordinates)
		return Result{}, err
	}

	color, err := event.NormalizeColor(rawColor)
	if err != nil {
		c.record(ctx, userID, false, apperrors.CodeInvalidColor)
		return Result{}, err
	}

	// Cooldown check and commit form one read-modify-write on this user's
	// record; the per-user lock makes them a single critical section.
	unlock := c.locks.lock(userID)
	defer unlock()

	user, err := c.store.GetOrCreateUser(ctx, userID)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorageFault, "load user record", err)
	}

	decision := c.gate.Check(user.LastPixelAt, c.clock())
	if !decision.Allowed {
		c.record(ctx, userID, false, apperrors.CodeCooldownActive)
		return Result{}, apperrors.WithMetadata(apperrors.CodeCooldownActive,
			"cooldown active",
			map[string]string{
				MetadataRemainingSeconds: strconv.Itoa(decision.RemainingSeconds),
			})
	}

	placement, err := c.store.AppendPlacement(ctx, x, y, color, userID)
	if err != nil {
		// No retry: a retried append after an ambiguous failure could
		// double-count.
		return Result{}, apperrors.Wrap(apperrors.CodeStorageFault, "append placement", err)
	}

	if err := c.store.RecordAcceptedPlacement(ctx, userID, placement.CreatedAt); err != nil {
		// The journal is the source of truth and the event is already
		// committed; keep it and surface the lag instead of rolling back.
		log.Printf("placement committed but user stats update failed for %s: %v", userID, err)
	}

	if c.index != nil {
		c.index.Apply(placement)
	}
	c.record(ctx, userID, true, "")

	span.SetAttributes(attribute.Int64("canvas.seq", int64(placement.Seq)))
	return Result{
		Placement:       placement,
		CooldownSeconds: c.CooldownSeconds(),
	}, nil
}

func (c *Coordinator) record(ctx context.Context, userID string, accepted bool, reason apperrors.Code) {
	outcome := stats.Outcome{
		UserID:   userID,
		Accepted: accepted,
		Reason:   string(reason),
		At:       c.clock().UTC(),
	}
	if err := c.recorder.Record(ctx, outcome); err != nil {
		log.Printf("record placement outcome: %v", err)
	}
}

// RemainingSeconds extracts the cooldown wait from a CooldownActive error.
func RemainingSeconds(err error) (int, bool) {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeCooldownActive {
		return 0, false
	}
	value, convErr := strconv.Atoi(domainErr.Metadata[MetadataRemainingSeconds])
	if convErr != nil {
		return 0, false
	}
	return value, true
}
