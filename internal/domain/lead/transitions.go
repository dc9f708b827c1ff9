package lead

// TransitionPolicy decides whether a lead may move from one status to another.
type TransitionPolicy interface {
	Allow(from, to Status) bool
}

// AnyTransition allows every status change.
type AnyTransition struct{}

func (AnyTransition) Allow(_, _ Status) bool { return true }

// TransitionTable allows only the listed moves. Re-applying the current
// status is always allowed.
type TransitionTable map[Status]map[Status]bool

func (t TransitionTable) Allow(from, to Status) bool {
	if from == to {
		return true
	}
	nexts, ok := t[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// PipelineTransitions is the strict pipeline used when transitions are enforced.
var PipelineTransitions = TransitionTable{
	StatusDraft:     {StatusSubmitted: true, StatusRejected: true},
	StatusSubmitted: {StatusApproved: true, StatusRejected: true},
	StatusApproved:  {StatusDisbursed: true, StatusRejected: true},
	StatusDisbursed: {},
	StatusRejected:  {},
}
