package verifier

import (
	"context"
	"slices"
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/filter"
)

// ObserveFunc receives the verdict kind ("confirmed", "changed" or
// "rejected") and the call latency.
type ObserveFunc func(verdict string, took time.Duration)

type instrumented struct {
	next    filter.Verifier
	observe ObserveFunc
}

// Instrument wraps v so that every call is reported to observe.
func Instrument(v filter.Verifier, observe ObserveFunc) filter.Verifier {
	return &instrumented{next: v, observe: observe}
}

func (i *instrumented) Verify(ctx context.Context, req filter.VerifyRequest) []filter.ThreatKind {
	start := time.Now()
	out := i.next.Verify(ctx, req)
	i.observe(verdictKind(req.Threats, out), time.Since(start))
	return out
}

func verdictKind(in, out []filter.ThreatKind) string {
	switch {
	case len(out) == 0:
		return "rejected"
	case slices.Equal(in, out):
		return "confirmed"
	default:
		return "changed"
	}
}
