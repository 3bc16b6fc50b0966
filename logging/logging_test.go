package logging_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/hecclient/logging"
)

func TestLogging(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "logging suite")
}

var _ = Describe("Entry", func() {
	It("chains field and error additions without panicking", func() {
		l := logging.New(logging.DebugLevel)

		Expect(func() {
			l.Entry().
				FieldAdd("batch_size", 12).
				FieldMerge(map[string]any{"host": "myhost"}).
				ErrorAdd(errors.New("boom")).
				Log(logging.WarnLevel, "flush failed")
		}).NotTo(Panic())
	})

	It("treats a nil error as a no-op", func() {
		l := logging.New(logging.InfoLevel)

		Expect(func() {
			l.Entry().ErrorAdd(nil).Log(logging.InfoLevel, "ok")
		}).NotTo(Panic())
	})
})

var _ = Describe("Level", func() {
	It("converts to the matching logrus level", func() {
		Expect(logging.WarnLevel.String()).To(Equal("warning"))
	})
})
