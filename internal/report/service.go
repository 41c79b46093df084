// Package report orchestrates a ledger run: it reads the rosters and exception tables,
// expands the month's lessons, merges them into the ledger and recomputes the quotas.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/runlog"
	"github.com/Veraticus/lessons-ledger/internal/schedule"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Scope selects which rosters a run expands.
type Scope string

// Run scopes.
const (
	ScopeBoth    Scope = "both"
	ScopeGroup   Scope = "group"
	ScopePrivate Scope = "private"
)

// ParseScope validates a scope string. Blank means both.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeBoth, ScopeGroup, ScopePrivate:
		return sc, nil
	case "":
		return ScopeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidScope, s)
	}
}

func (s Scope) group() bool   { return s == ScopeBoth || s == ScopeGroup }
func (s Scope) private() bool { return s == ScopeBoth || s == ScopePrivate }

// Request is one run of the ledger engine.
type Request struct {
	Mode  ledger.Mode
	Scope Scope
	Month model.Month
}

func (r Request) validate() error {
	if r.Month.IsZero() {
		return common.ErrInvalidMonth
	}
	if _, err := ledger.ParseMode(string(r.Mode)); err != nil {
		return err
	}
	if _, err := ParseScope(string(r.Scope)); err != nil {
		return err
	}
	return nil
}

// Summary is the outcome of a run.
type Summary struct {
	RunID   string
	Message string
	Month   model.Month
	// Inserted counts appended rows, Updated rows overwritten in place.
	Inserted int
	Updated  int
	Deleted  int
	// Suppressed counts active-date overrides that fell on a filtered date.
	Suppressed int
	// Locked counts overwrites refused because the existing row is paid or transferred.
	Locked    int
	OverQuota int
}

// Service runs the ledger engine against a tabular store.
type Service struct {
	store   service.TabularStore
	journal service.Journal
	locker  service.Locker
	logger  *slog.Logger
	cfg     Config
}

// New creates a report service with the default configuration. journal and locker may be nil;
// a nil locker falls back to an in-process lock.
func New(store service.TabularStore, journal service.Journal, locker service.Locker) *Service {
	return NewWithConfig(store, journal, locker, DefaultConfig())
}

// NewWithConfig creates a report service with custom configuration.
func NewWithConfig(store service.TabularStore, journal service.Journal, locker service.Locker, config Config) *Service {
	config = config.withDefaults()
	if locker == nil {
		locker = newLocalLocker()
	}
	return &Service{
		store:   store,
		journal: journal,
		locker:  locker,
		logger:  common.OrDefault(config.Logger),
		cfg:     config,
	}
}

func (s *Service) now() time.Time {
	return s.cfg.Clock().In(s.cfg.Location)
}

// RunReport generates the lessons of req.Month and merges them into the ledger. The returned
// summary always carries a user-facing message, also when err is not nil.
func (s *Service) RunReport(ctx context.Context, req Request) (Summary, error) {
	if req.Scope == "" {
		req.Scope = ScopeBoth
	}
	if req.Mode == "" {
		req.Mode = ledger.ModeSkip
	}
	sum := Summary{Month: req.Month}
	if err := req.validate(); err != nil {
		sum.Message = FailureMessage(err)
		return sum, err
	}

	sum.RunID = s.cfg.NewRunID()
	rec := s.recorder(sum.RunID)
	started := s.now()
	defer s.flush(ctx, rec)

	if err := s.acquire(ctx, sum.RunID); err != nil {
		rec.Error(err.Error(), nil)
		s.audit(ctx, sum.RunID, started, req.Month, err)
		sum.Message = FailureMessage(err)
		return sum, err
	}
	defer s.release(ctx, sum.RunID)

	rec.Info("START", common.Fields{"month": req.Month.String(), "mode": string(req.Mode), "scope": string(req.Scope)})

	err := s.run(ctx, req, rec, &sum)
	if err != nil {
		rec.Error(err.Error()+" (RunReport)", nil)
		s.logger.Error("Run failed", "run_id", sum.RunID, "month", req.Month.String(), "error", err)
		s.audit(ctx, sum.RunID, started, req.Month, err)
		sum.Message = FailureMessage(err)
		return sum, err
	}

	rec.Success("COMPLETE", common.Fields{"inserted": sum.Inserted, "deleted": sum.Deleted, "updated": sum.Updated})
	s.audit(ctx, sum.RunID, started, req.Month, nil)
	sum.Message = SuccessMessage(sum, req.Mode)
	return sum, nil
}

func (s *Service) run(ctx context.Context, req Request, rec *runlog.Recorder, sum *Summary) error {
	names := s.cfg.Sheets

	// Sources are validated before anything is written to the workbook.
	src, err := s.loadSources(ctx, req.Month, rec)
	if err != nil {
		return err
	}
	if err := s.store.EnsureSheet(ctx, names.Ledger, s.cfg.Ledger.Header()); err != nil {
		return fmt.Errorf("failed to prepare ledger sheet: %w", err)
	}
	if err := s.store.EnsureSheet(ctx, names.GroupExceptions, s.cfg.Exceptions.Header()); err != nil {
		return fmt.Errorf("failed to prepare exception sheet: %w", err)
	}
	lg, err := s.readLedger(ctx)
	if err != nil {
		return err
	}

	if req.Mode == ledger.ModeReset {
		positions := ledger.InMonth(lg.rows, req.Month)
		if len(positions) > 0 {
			if err := s.store.DeleteRows(ctx, names.Ledger, positions); err != nil {
				return fmt.Errorf("failed to delete month rows: %w", err)
			}
			if lg, err = s.readLedger(ctx); err != nil {
				return err
			}
		}
		sum.Deleted = len(positions)
		rec.Info("RESET deleted month rows", common.Fields{"deleted": sum.Deleted})
	}

	ix := ledger.Build(lg.rows)
	plan := schedule.Plan{Stamp: s.now(), Filter: src.filter, Month: req.Month}
	travel := schedule.NewTravelSet()
	var (
		t          tally
		suppressed []schedule.Suppression
	)

	if req.Scope.group() {
		rec.StartTimer("group")
		for _, l := range plan.GroupRecurring(src.courses, travel) {
			t.add(ix.Upsert(l, req.Mode))
		}
		overrides, supp := plan.GroupOverrides(src.courses, travel)
		for _, l := range overrides {
			t.add(ix.Upsert(l, req.Mode))
		}
		suppressed = supp
		rec.EndTimer("group")
		rec.Info("Group processing completed", common.Fields{"courses": len(src.courses), "overrides": len(overrides), "suppressed": len(supp)})
	}

	if req.Scope.private() {
		if src.assignments == nil {
			rec.Info("Private roster unavailable, private scope skipped", common.Fields{"sheet": names.Private})
		} else {
			rec.StartTimer("private")
			lessons, stats := plan.Private(src.assignments, src.activeDates, ix, travel)
			for _, l := range lessons {
				if l.IsPlaceholder() {
					ix.Append(l)
					t.queued++
					continue
				}
				// Private lessons never replace existing rows.
				t.add(ix.Upsert(l, ledger.ModeSkip))
			}
			rec.EndTimer("private")
			rec.Info("Private processing completed", common.Fields{
				"assignments":  len(src.assignments),
				"exceptional":  stats.Exceptional,
				"placeholders": stats.Placeholders,
				"dated":        stats.Dated,
				"travel":       stats.Travel,
			})
		}
	}
	rec.Debug("Merge outcomes", common.Fields{"queued": t.queued, "skipped": t.skipped, "overwritten": t.overwritten, "locked": t.locked})

	updates := ix.Updates()
	if err := s.overwrite(ctx, lg.layout, updates); err != nil {
		return err
	}
	sum.Updated = len(updates)
	sum.Locked = t.locked

	inserted, err := s.insert(ctx, lg.layout, ix.Pending(), rec)
	if err != nil {
		return err
	}
	sum.Inserted = inserted

	s.annotate(ctx, src.exceptionHeader, suppressed, rec)
	sum.Suppressed = len(suppressed)

	q, err := s.recompute(ctx, src.courses, src.assignments, rec)
	if err != nil {
		return err
	}
	sum.OverQuota = q.over
	return nil
}

type tally struct {
	queued      int
	skipped     int
	overwritten int
	locked      int
}

func (t *tally) add(o ledger.Outcome) {
	switch o {
	case ledger.OutcomeQueued:
		t.queued++
	case ledger.OutcomeOverwritten:
		t.overwritten++
	case ledger.OutcomeLocked:
		t.locked++
	default:
		t.skipped++
	}
}

// SuccessMessage is the user-facing result of a completed run.
func SuccessMessage(sum Summary, mode ledger.Mode) string {
	msg := fmt.Sprintf("העדכון בוצע בהצלחה ✅\nנוספו %d שורות", sum.Inserted)
	if mode == ledger.ModeReset {
		msg += fmt.Sprintf(", נמחקו %d", sum.Deleted)
	}
	return msg + "."
}

// FailureMessage is the user-facing result of a failed run.
func FailureMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return "❌ שגיאה: " + userErr.UserMessage
	}
	return "❌ שגיאה: " + err.Error()
}

func (s *Service) acquire(ctx context.Context, runID string) error {
	return s.locker.Acquire(ctx, s.cfg.Sheets.Ledger, runID)
}

func (s *Service) release(ctx context.Context, runID string) {
	if err := s.locker.Release(context.WithoutCancel(ctx), s.cfg.Sheets.Ledger, runID); err != nil {
		s.logger.Warn("Failed to release run lock", "run_id", runID, "error", err)
	}
}

// localLocker is the in-process fallback when no shared locker is configured.
type localLocker struct {
	held map[string]string
	mu   sync.Mutex
}

func newLocalLocker() *localLocker {
	return &localLocker{held: make(map[string]string)}
}

func (l *localLocker) Acquire(_ context.Context, resource, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if holder, ok := l.held[resource]; ok && holder != owner {
		return fmt.Errorf("%w: %s held by %s", common.ErrLocked, resource, holder)
	}
	l.held[resource] = owner
	return nil
}

func (l *localLocker) Release(_ context.Context, resource, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[resource] == owner {
		delete(l.held, resource)
	}
	return nil
}
