package hecerr_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/hecclient/hecerr"
)

func TestHecerr(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "hecerr suite")
}

var _ = Describe("Error", func() {
	It("reports its code and message", func() {
		err := hecerr.Shutdown("push after shutdown")

		Expect(err.Code()).To(Equal(hecerr.CodeShutdown))
		Expect(err.Error()).To(ContainSubstring("ShutdownError"))
		Expect(err.Error()).To(ContainSubstring("push after shutdown"))
	})

	It("unwraps to the underlying cause", func() {
		cause := errors.New("dial tcp: timeout")
		err := hecerr.Transport("retries exhausted", cause)

		Expect(errors.Unwrap(err)).To(Equal(cause))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("classifies by code via errors.Is, independent of message", func() {
		a := hecerr.Transport("first attempt", nil)
		b := hecerr.Transport("retries exhausted", errors.New("boom"))

		Expect(errors.Is(a, b)).To(BeTrue())
		Expect(hecerr.IsCode(b, hecerr.CodeTransport)).To(BeTrue())
		Expect(hecerr.IsCode(b, hecerr.CodeConfig)).To(BeFalse())
	})

	It("does not conflate distinct codes", func() {
		cfg := hecerr.Config("invalid url", errors.New("parse error"))
		tr := hecerr.Transport("boom", nil)

		Expect(errors.Is(cfg, tr)).To(BeFalse())
	})
})
