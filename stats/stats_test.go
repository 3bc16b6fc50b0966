package stats_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/hecclient/stats"
)

func TestStats(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "stats suite")
}

var _ = Describe("Stats", func() {
	It("accumulates counters and snapshots them without resetting", func() {
		s := stats.New(false)

		s.AddQueued(2, 100)
		s.AddSent(2, 100, 60)
		s.AddError()
		s.AddRetry()

		snap := s.Flush()

		Expect(snap.Counters.QueuedMessages).To(Equal(int64(2)))
		Expect(snap.Counters.QueuedBytes).To(Equal(int64(100)))
		Expect(snap.Counters.SentMessages).To(Equal(int64(2)))
		Expect(snap.Counters.SentBytes).To(Equal(int64(100)))
		Expect(snap.Counters.TransferredBytes).To(Equal(int64(60)))
		Expect(snap.Counters.ErrorCount).To(Equal(int64(1)))
		Expect(snap.Counters.RetryCount).To(Equal(int64(1)))

		again := s.Flush()
		Expect(again.Counters.QueuedMessages).To(Equal(int64(2)), "counters never reset, only aggregates do")
	})

	It("does not panic when Prometheus exposition is enabled", func() {
		s := stats.New(true)

		Expect(func() {
			s.AddQueued(1, 10)
			s.AddSent(1, 10, 8)
			s.AddError()
			s.AddRetry()
		}).NotTo(Panic())
	})
})

var _ = Describe("Aggregate", func() {
	It("computes count/sum/min/max/avg and resets on Flush", func() {
		var a stats.Aggregate

		a.Observe(10)
		a.Observe(20)
		a.Observe(30)

		snap := a.Flush()
		Expect(snap.Count).To(Equal(int64(3)))
		Expect(snap.Sum).To(Equal(60.0))
		Expect(snap.Min).To(Equal(10.0))
		Expect(snap.Max).To(Equal(30.0))
		Expect(snap.Avg).To(Equal(20.0))

		reset := a.Flush()
		Expect(reset.Count).To(Equal(int64(0)))
	})
})
