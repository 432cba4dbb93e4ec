package engine

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/core/cache"
	"github.com/handlevet/handlevet/internal/core/checker"
	apperrors "github.com/handlevet/handlevet/internal/errors"
)

// ProfileStore is the external profile backend. FindByNickname matches
// case-insensitively and reports absence as a not-found error; the store's
// unique constraint on the canonical nickname is the only linearization
// point for racing claims.
type ProfileStore interface {
	FindByNickname(ctx context.Context, canonical string) (*core.Profile, error)
	GetProfile(ctx context.Context, id string) (*core.Profile, error)
	UpdateNickname(ctx context.Context, profileID, nickname string) (*core.Profile, error)
}

// Service runs the availability pipeline: validation, the reserved-word
// gate, the identity short-circuit, then the composed checker stack
// (admission, cache, store). Collaborators are injected; there are no
// package-level singletons.
type Service struct {
	Checker       checker.Checker
	Store         ProfileStore
	Cache         *cache.Cache[core.CheckResult]
	ExtraReserved []string
	ToolVersion   string
	Clock         func() time.Time
	Logger        *logging.Logger
}

// Check resolves the availability of nickname for a caller whose current
// nickname is current (may be empty). Failures are folded into an
// error-status result; Check never panics and never returns an error.
func (s *Service) Check(ctx context.Context, nickname, current string) core.CheckResult {
	if ctx == nil {
		ctx = context.Background()
	}

	requestedAt := s.now()
	trimmed := strings.TrimSpace(nickname)
	canonical := core.Normalize(trimmed)

	if err := core.ValidateNickname(trimmed, s.ExtraReserved); err != nil {
		if stderrors.Is(err, core.ErrReserved) {
			return s.localResult(trimmed, canonical, core.StatusUnavailable,
				"this nickname is reserved", false, core.SourceValidation, requestedAt)
		}
		return s.localResult(trimmed, canonical, core.StatusError,
			validationMessage(err), false, core.SourceValidation, requestedAt)
	}

	if current != "" && core.Normalize(current) == canonical {
		return s.localResult(trimmed, canonical, core.StatusAvailable,
			"this is your current nickname", true, core.SourceIdentity, requestedAt)
	}

	if s.Checker == nil {
		return s.localResult(trimmed, canonical, core.StatusError,
			"availability checks are not configured", true, core.SourceStore, requestedAt)
	}

	result, err := s.Checker.Check(ctx, checker.Request{
		Canonical: canonical,
		Current:   core.Normalize(current),
	})
	if err != nil {
		classified := apperrors.Classify(err)
		s.logTerminal(canonical, classified)

		source := core.SourceStore
		if classified.Kind == apperrors.KindRateLimited {
			source = core.SourceRateLimit
		}
		return s.localResult(trimmed, canonical, core.StatusError,
			classified.Message, true, source, requestedAt)
	}

	result.Nickname = trimmed
	return result
}

// UpdateNickname claims nickname for the profile. On success the cache
// entries keyed under both the old and the new canonical nickname are
// invalidated, so the next check for either is a forced miss. A losing
// writer gets the duplicate error and must not retry.
func (s *Service) UpdateNickname(ctx context.Context, profileID, nickname string) (*core.Profile, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindUnknown, "profile store is not configured")
	}

	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, apperrors.New(apperrors.KindValidation, "profile id is required")
	}

	trimmed := strings.TrimSpace(nickname)
	if err := core.ValidateNickname(trimmed, s.ExtraReserved); err != nil {
		return nil, err
	}
	canonical := core.Normalize(trimmed)

	previous, err := s.Store.GetProfile(ctx, profileID)
	if err != nil {
		classified := apperrors.Classify(err)
		s.logTerminal(canonical, classified)
		return nil, classified
	}

	updated, err := s.Store.UpdateNickname(ctx, profileID, trimmed)
	if err != nil {
		classified := apperrors.Classify(err)
		s.logTerminal(canonical, classified)
		return nil, classified
	}

	if previous != nil {
		s.invalidate(previous.Canonical)
	}
	s.invalidate(canonical)

	return updated, nil
}

// invalidate drops every cached answer where canonical is the checked
// nickname, whatever the caller's current nickname was.
func (s *Service) invalidate(canonical string) {
	if s.Cache == nil || canonical == "" {
		return
	}

	pattern := "^" + regexp.QuoteMeta(canonical) + `\|`
	removed, err := s.Cache.DeletePattern(pattern)
	if err != nil {
		return
	}
	if s.Logger != nil && removed > 0 {
		s.Logger.Debug("invalidated cached checks",
			zap.String("nickname", canonical),
			zap.Int("entries", removed),
		)
	}
}

// logTerminal logs a classified failure exactly once, at the boundary
// where it is folded into a surfaced result. Lower layers return errors
// without logging them.
func (s *Service) logTerminal(canonical string, err *apperrors.Error) {
	if s.Logger == nil || err == nil {
		return
	}

	fields := []zap.Field{
		zap.String("nickname", canonical),
		zap.String("kind", string(err.Kind)),
		zap.Error(err),
	}
	if err.Kind == apperrors.KindRateLimited {
		s.Logger.Debug("availability check rejected", fields...)
		return
	}
	s.Logger.Warn("availability check failed", fields...)
}

func (s *Service) localResult(nickname, canonical string, status core.Status, message string, valid bool, source string, requestedAt time.Time) core.CheckResult {
	return core.CheckResult{
		Nickname:  nickname,
		Canonical: canonical,
		Status:    status,
		Message:   message,
		Valid:     valid,
		Available: status == core.StatusAvailable,
		Provenance: core.Provenance{
			CheckID:     uuid.New().String(),
			RequestedAt: requestedAt,
			ResolvedAt:  s.now(),
			Source:      source,
			ToolVersion: s.ToolVersion,
		},
	}
}

func (s *Service) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

func validationMessage(err error) string {
	var appErr *apperrors.Error
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
