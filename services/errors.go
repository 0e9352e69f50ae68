package services

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/beachref/livesync/models"
	"github.com/beachref/livesync/vis"
)

// retryableFragments mark network-layer failures: the next scheduled
// invocation is expected to succeed, so no in-process retry happens.
var retryableFragments = []string{
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"unexpected eof",
}

// rejectedFragments mark responses where the upstream explicitly refused the
// request; retrying within the pass would only burn the call budget.
var rejectedFragments = []string{
	"rejected",
	"returned status",
	"bad request",
	"unauthorized",
	"forbidden",
}

// HandleSyncError classifies a raw failure into a structured SyncError with
// a retry decision and a log-safe message. It never panics, whatever the
// error shape.
func HandleSyncError(err error, errCtx models.ErrorContext) models.SyncError {
	if errCtx.Timestamp.IsZero() {
		errCtx.Timestamp = time.Now()
	}
	if err == nil {
		return models.SyncError{Message: "unknown failure", ShouldRetry: false, Context: errCtx}
	}
	return models.SyncError{
		Message:     err.Error(),
		ShouldRetry: shouldRetry(err),
		Context:     errCtx,
	}
}

// HandleMatchError classifies and logs a single match failure. Guaranteed
// never to panic: a match failure must not take its siblings down.
func HandleMatchError(logger *slog.Logger, err error, errCtx models.ErrorContext) (syncErr models.SyncError) {
	defer func() {
		if r := recover(); r != nil {
			syncErr = models.SyncError{Message: "match error handling failed", Context: errCtx}
		}
	}()

	syncErr = HandleSyncError(err, errCtx)
	logger.Warn("match sync failed",
		slog.Int("tournament_no", errCtx.TournamentNo),
		slog.Int("match_no", errCtx.MatchNo),
		slog.Bool("should_retry", syncErr.ShouldRetry),
		slog.String("error", syncErr.Message),
	)
	return syncErr
}

func shouldRetry(err error) bool {
	// Typed checks first: transport errors and deadline hits are transient.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, vis.ErrRequestRejected) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range rejectedFragments {
		if strings.Contains(msg, fragment) {
			return false
		}
	}
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	// Unclassified failures (parse errors, store writes) are not expected to
	// clear up by the next tick on their own.
	return false
}
