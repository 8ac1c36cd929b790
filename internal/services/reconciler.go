package services

import (
	"context"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CloudFetcher looks up the durable per-user analysis record.
type CloudFetcher interface {
	GetLatest(ctx context.Context, userID string) (*blotter.CloudRecord, error)
}

// Reconciler merges the durable per-user record into a session registry at
// sign-in. It never field-merges: when a record exists, it overwrites the
// local slice wholesale (last writer wins by session). The hydrate is
// revision-guarded so an upload finishing mid-reconcile is not clobbered by a
// stale durable record.
type Reconciler struct {
	fetcher CloudFetcher
	logger  *logrus.Entry
}

// NewReconciler creates a reconciler backed by the given fetcher.
func NewReconciler(fetcher CloudFetcher) *Reconciler {
	return &Reconciler{
		fetcher: fetcher,
		logger:  logrus.WithField("component", "cloud_reconciler"),
	}
}

// OnSignIn runs the reconciliation protocol once for a fresh sign-in:
// discard local state, look up the durable record, hydrate or mark the
// check complete. A fetch failure degrades to a local-only session rather
// than blocking: the flag is still set so the UI knows the check happened.
func (r *Reconciler) OnSignIn(ctx context.Context, reg *blotter.Registry, userID string) {
	ctx, span := otel.Tracer("services").Start(ctx, "blotter.reconcile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	// Stale state from a previous user on a shared device must not leak.
	reg.Reset()
	base := reg.Revision()

	record, err := r.fetcher.GetLatest(ctx, userID)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to fetch latest blotter analysis")
		reg.MarkCloudHydrated()
		return
	}
	if record == nil {
		// Checked, nothing there. Distinct from "not checked yet".
		reg.MarkCloudHydrated()
		return
	}

	if !reg.HydrateFromCloudIfRevision(base, *record) {
		r.logger.WithField("user_id", userID).Info("Skipped cloud hydrate: local state changed during reconciliation")
	}
}

// OnSignOut tears the registry down completely.
func (r *Reconciler) OnSignOut(reg *blotter.Registry) {
	reg.Reset()
}
