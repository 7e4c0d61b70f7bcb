package eventbus

import (
	"github.com/colonyops/roost/internal/core/organize"
	"github.com/colonyops/roost/internal/core/scan"
)

// ScanProgressPayload is emitted on every scan progress transition.
type ScanProgressPayload struct {
	Progress scan.Progress
}

// ScanCompletedPayload is emitted when a scan run finishes.
type ScanCompletedPayload struct {
	Summary scan.Summary
}

// ReposInvalidatedPayload is emitted after a move batch so consumers can
// refresh stale views.
type ReposInvalidatedPayload struct {
	Views []string
	Batch organize.BatchResult
}

// PublishScanProgress enqueues a scan.progress event.
func (b *EventBus) PublishScanProgress(p ScanProgressPayload) {
	b.publish(EventScanProgress, p)
}

// SubscribeScanProgress registers a scan.progress subscriber.
func (b *EventBus) SubscribeScanProgress(fn func(ScanProgressPayload)) {
	b.subscribe(EventScanProgress, func(payload any) {
		if p, ok := payload.(ScanProgressPayload); ok {
			fn(p)
		}
	})
}

// PublishScanCompleted enqueues a scan.completed event.
func (b *EventBus) PublishScanCompleted(p ScanCompletedPayload) {
	b.publish(EventScanCompleted, p)
}

// SubscribeScanCompleted registers a scan.completed subscriber.
func (b *EventBus) SubscribeScanCompleted(fn func(ScanCompletedPayload)) {
	b.subscribe(EventScanCompleted, func(payload any) {
		if p, ok := payload.(ScanCompletedPayload); ok {
			fn(p)
		}
	})
}

// PublishReposInvalidated enqueues a repos.invalidated event.
func (b *EventBus) PublishReposInvalidated(p ReposInvalidatedPayload) {
	b.publish(EventReposInvalidated, p)
}

// SubscribeReposInvalidated registers a repos.invalidated subscriber.
func (b *EventBus) SubscribeReposInvalidated(fn func(ReposInvalidatedPayload)) {
	b.subscribe(EventReposInvalidated, func(payload any) {
		if p, ok := payload.(ReposInvalidatedPayload); ok {
			fn(p)
		}
	})
}
