package services

// ReconcileObserver receives progress reconciliation outcomes.
type ReconcileObserver interface {
	ObserveProgressRecord(outcome string)
	ObserveReconcileConflict(entity string)
}

type nopObserver struct{}

func (nopObserver) ObserveProgressRecord(string)    {}
func (nopObserver) ObserveReconcileConflict(string) {}

func observerOrNop(o ReconcileObserver) ReconcileObserver {
	if o == nil {
		return nopObserver{}
	}
	return o
}

const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeFailed  = "failed"
)
