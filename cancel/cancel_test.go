package cancel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/hecclient/cancel"
)

func TestCancel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "cancel suite")
}

var _ = Describe("Group", func() {
	It("runs a closure and de-registers it on success", func() {
		g := cancel.NewGroup()

		err := g.Run(context.Background(), func(ctx context.Context) error {
			Expect(g.Len()).To(Equal(1))
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(g.Len()).To(Equal(0))
	})

	It("de-registers on error too", func() {
		g := cancel.NewGroup()
		boom := errors.New("boom")

		err := g.Run(context.Background(), func(ctx context.Context) error {
			return boom
		})

		Expect(err).To(Equal(boom))
		Expect(g.Len()).To(Equal(0))
	})

	It("cancels every live child when CancelAll fires", func() {
		g := cancel.NewGroup()
		started := make(chan struct{})
		result := make(chan error, 1)

		go func() {
			_ = g.Run(context.Background(), func(ctx context.Context) error {
				close(started)
				<-ctx.Done()
				result <- ctx.Err()
				return ctx.Err()
			})
		}()

		<-started
		g.CancelAll()

		Eventually(result).Should(Receive(Equal(context.Canceled)))
	})

	It("fails fast once triggered", func() {
		g := cancel.NewGroup()
		g.CancelAll()

		err := g.Run(context.Background(), func(ctx context.Context) error {
			Fail("fn should not run after CancelAll")
			return nil
		})

		Expect(err).To(Equal(context.Canceled))
	})
})

var _ = Describe("Race", func() {
	It("returns the operation's result when it finishes first", func() {
		ctx, cancelFn := context.WithCancel(context.Background())
		defer cancelFn()

		v, err := cancel.Race(ctx, func() (int, error) {
			return 42, nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(42))
	})

	It("returns context.Canceled when the context fires first", func() {
		ctx, cancelFn := context.WithCancel(context.Background())
		cancelFn()

		_, err := cancel.Race(ctx, func() (int, error) {
			time.Sleep(50 * time.Millisecond)
			return 1, nil
		})

		Expect(err).To(Equal(context.Canceled))
	})
})

var _ = Describe("RunAll", func() {
	It("cancels siblings as soon as one operation settles", func() {
		var cancelledSeen bool

		errs := cancel.RunAll(context.Background(),
			func(ctx context.Context) error {
				return nil
			},
			func(ctx context.Context) error {
				<-ctx.Done()
				cancelledSeen = true
				return ctx.Err()
			},
		)

		Expect(errs).To(HaveLen(2))
		Expect(errs[0]).NotTo(HaveOccurred())
		Expect(cancelledSeen).To(BeTrue())
	})
})
