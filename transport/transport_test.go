package transport_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/hecclient/transport"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "transport suite")
}

var _ = Describe("Acquire", func() {
	It("shares one transport across clones pointing at the same origin", func() {
		a := transport.Acquire("https://hec.example.com:8088/services/collector", transport.DefaultPolicy())
		b := transport.Acquire("https://hec.example.com:8088/other/path", transport.DefaultPolicy())

		Expect(a).To(BeIdenticalTo(b))

		transport.Release("https://hec.example.com:8088/services/collector")
	})

	It("gives distinct origins distinct transports", func() {
		a := transport.Acquire("https://one.example.com/collector", transport.DefaultPolicy())
		b := transport.Acquire("https://two.example.com/collector", transport.DefaultPolicy())

		Expect(a).NotTo(BeIdenticalTo(b))

		transport.Release("https://one.example.com/collector")
		transport.Release("https://two.example.com/collector")
	})

	It("applies the configured socket cap and TLS verify toggle", func() {
		endpoint := "https://capped.example.com/collector"
		policy := transport.Policy{KeepAlive: true, MaxSockets: 4, ValidateCertificate: false}

		tr := transport.Acquire(endpoint, policy)

		Expect(tr.MaxConnsPerHost).To(Equal(4))
		Expect(tr.TLSClientConfig.InsecureSkipVerify).To(BeTrue())

		transport.Release(endpoint)
	})
})
