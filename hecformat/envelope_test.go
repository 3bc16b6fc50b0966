package hecformat_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/hecclient/hecerr"
	"github.com/sabouaram/hecclient/hecformat"
)

func TestHecformat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "hecformat suite")
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

var _ = Describe("Serialize", func() {
	It("serializes an event per scenario E1", func() {
		msgs, err := hecformat.Serialize(hecformat.Event{
			Body: "hello world",
			Time: mustTime("2019-11-29T12:15:27.123Z"),
			Metadata: hecformat.Metadata{
				Host: "myhost", Source: "somesource", SourceType: "somesourcetype", Index: "myindex",
			},
		}, hecformat.Options{})

		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		var got map[string]any
		Expect(json.Unmarshal(msgs[0].Bytes, &got)).To(Succeed())

		Expect(got).To(Equal(map[string]any{
			"event":      "hello world",
			"fields":     map[string]any{},
			"host":       "myhost",
			"index":      "myindex",
			"source":     "somesource",
			"sourcetype": "somesourcetype",
			"time":       1575029727.123,
		}))
	})

	It("emits fields in the exact declared key order", func() {
		msgs, err := hecformat.Serialize(hecformat.Event{
			Body: "x",
			Time: mustTime("2019-11-29T12:15:27.123Z"),
			Metadata: hecformat.Metadata{
				Host: "h", Source: "s", SourceType: "st", Index: "i",
			},
		}, hecformat.Options{})
		Expect(err).NotTo(HaveOccurred())

		raw := string(msgs[0].Bytes)
		timeIdx := indexOf(raw, `"time"`)
		hostIdx := indexOf(raw, `"host"`)
		sourceIdx := indexOf(raw, `"source"`)
		sourceTypeIdx := indexOf(raw, `"sourcetype"`)
		indexIdx := indexOf(raw, `"index"`)
		fieldsIdx := indexOf(raw, `"fields"`)
		eventIdx := indexOf(raw, `"event"`)

		Expect(timeIdx).To(BeNumerically("<", hostIdx))
		Expect(hostIdx).To(BeNumerically("<", sourceIdx))
		Expect(sourceIdx).To(BeNumerically("<", sourceTypeIdx))
		Expect(sourceTypeIdx).To(BeNumerically("<", indexIdx))
		Expect(indexIdx).To(BeNumerically("<", fieldsIdx))
		Expect(fieldsIdx).To(BeNumerically("<", eventIdx))
	})

	It("serializes a single metric per scenario M1", func() {
		msgs, err := hecformat.Serialize(hecformat.Metric{
			Name: "mymetric",
			Value: 47.11,
			Time:  mustTime("2019-11-29T12:15:27.123Z"),
			Metadata: hecformat.Metadata{
				Host: "myhost", Source: "somesource", SourceType: "somesourcetype", Index: "myindex",
			},
		}, hecformat.Options{})

		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		var got map[string]any
		Expect(json.Unmarshal(msgs[0].Bytes, &got)).To(Succeed())

		Expect(got).To(Equal(map[string]any{
			"fields": map[string]any{
				"_value":      47.11,
				"metric_name": "mymetric",
			},
			"host":       "myhost",
			"index":      "myindex",
			"source":     "somesource",
			"sourcetype": "somesourcetype",
			"time":       1575029727.123,
		}))
		Expect(got).NotTo(HaveKey("event"))
	})

	It("serializes a multi-metric record per scenario MM1 when enabled", func() {
		cpuUser := 47.11
		cpuSystem := 8.15

		msgs, err := hecformat.Serialize(hecformat.MultiMetric{
			Measurements: map[string]*float64{
				"ethlogger.internal.system.cpu.user":   &cpuUser,
				"ethlogger.internal.system.cpu.system": &cpuSystem,
			},
			Time: mustTime("2019-11-29T12:15:27.123Z"),
			Metadata: hecformat.Metadata{
				Host: "myhost", Source: "somesource", SourceType: "somesourcetype", Index: "myindex",
			},
			Fields: map[string]any{
				"pid":         float64(3158),
				"version":     "1.0.0",
				"nodeVersoin": "12.3.1",
			},
		}, hecformat.Options{MultiMetricFormatEnabled: true})

		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		var got map[string]any
		Expect(json.Unmarshal(msgs[0].Bytes, &got)).To(Succeed())

		fields := got["fields"].(map[string]any)
		Expect(fields["metric_name:ethlogger.internal.system.cpu.user"]).To(Equal(47.11))
		Expect(fields["metric_name:ethlogger.internal.system.cpu.system"]).To(Equal(8.15))
		Expect(fields["pid"]).To(Equal(float64(3158)))
		Expect(fields["version"]).To(Equal("1.0.0"))
		Expect(fields["nodeVersoin"]).To(Equal("12.3.1"))
	})

	It("emits one envelope per measurement when multi-metric format is disabled", func() {
		a := 1.0
		b := 2.0

		msgs, err := hecformat.Serialize(hecformat.MultiMetric{
			Measurements: map[string]*float64{"a": &a, "b": &b},
		}, hecformat.Options{MultiMetricFormatEnabled: false})

		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(2))
	})

	It("drops nil measurements", func() {
		a := 1.0

		msgs, err := hecformat.Serialize(hecformat.MultiMetric{
			Measurements: map[string]*float64{"a": &a, "b": nil},
		}, hecformat.Options{MultiMetricFormatEnabled: false})

		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
	})

	It("coerces both an RFC3339 instant and a raw millisecond integer to the same time (scenario T1)", func() {
		fromInstant, err := hecformat.Serialize(hecformat.Event{
			Body: "x",
			Time: mustTime("2019-11-29T12:15:27.123Z"),
		}, hecformat.Options{})
		Expect(err).NotTo(HaveOccurred())

		fromMillis, err := hecformat.Serialize(hecformat.Event{
			Body: "x",
			Time: int64(1575029727123),
		}, hecformat.Options{})
		Expect(err).NotTo(HaveOccurred())

		var a, b map[string]any
		Expect(json.Unmarshal(fromInstant[0].Bytes, &a)).To(Succeed())
		Expect(json.Unmarshal(fromMillis[0].Bytes, &b)).To(Succeed())

		Expect(a["time"]).To(Equal(1575029727.123))
		Expect(b["time"]).To(Equal(1575029727.123))
	})

	It("omits the time field when the timestamp is unparseable", func() {
		msgs, err := hecformat.Serialize(hecformat.Event{Body: "x", Time: "not a time"}, hecformat.Options{})
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(msgs[0].Bytes, &got)).To(Succeed())
		Expect(got).NotTo(HaveKey("time"))
	})

	It("deep-merges default fields under record fields, record winning on conflict", func() {
		msgs, err := hecformat.Serialize(hecformat.Event{
			Body:   "x",
			Fields: map[string]any{"a": "record", "nested": map[string]any{"x": 1}},
		}, hecformat.Options{
			DefaultFields: map[string]any{"a": "default", "b": "default", "nested": map[string]any{"y": 2}},
		})
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(msgs[0].Bytes, &got)).To(Succeed())

		fields := got["fields"].(map[string]any)
		Expect(fields["a"]).To(Equal("record"))
		Expect(fields["b"]).To(Equal("default"))
		Expect(fields["nested"]).To(Equal(map[string]any{"x": float64(1), "y": float64(2)}))
	})

	It("rejects a non-finite metric value as a SerializationError", func() {
		_, err := hecformat.Serialize(hecformat.Metric{
			Name:  "bad",
			Value: math.NaN(),
		}, hecformat.Options{})

		Expect(err).To(HaveOccurred())
		Expect(hecerr.IsCode(err, hecerr.CodeSerialization)).To(BeTrue())
	})
})

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
