// Package check accumulates business-rule violations. Every declared check
// runs regardless of earlier failures, in declared order, so the caller can
// return the complete violation set in one response. Checks are read-only;
// nothing is written until the list comes back empty.
package check

// List collects violation messages and the first repository error hit while
// evaluating checks.
type List struct {
	msgs []string
	err  error
}

func New() *List {
	return &List{}
}

// That appends msg when the condition does not hold.
func (l *List) That(ok bool, msg string) {
	if !ok {
		l.msgs = append(l.msgs, msg)
	}
}

// Check is That for conditions backed by a repository query: a query error
// is recorded separately and suppresses the message for that check only.
func (l *List) Check(ok bool, err error, msg string) {
	if err != nil {
		if l.err == nil {
			l.err = err
		}
		return
	}
	l.That(ok, msg)
}

func (l *List) Failed() bool {
	return len(l.msgs) > 0
}

func (l *List) Messages() []string {
	return l.msgs
}

// Err reports the first repository error, if any. A non-nil error means the
// violation set is incomplete and the request must fail as internal.
func (l *List) Err() error {
	return l.err
}

// UniqueIDs reports whether ids contains no duplicates. Callers emit exactly
// one message per list however many duplicates there are.
func UniqueIDs(ids []uint) bool {
	return len(Dedupe(ids)) == len(ids)
}

// Dedupe returns ids with duplicates removed, order preserved. Referential
// checks compare the matched row count against the deduped length.
func Dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
