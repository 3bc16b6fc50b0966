/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package duration_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/sabouaram/hecclient/duration"
)

func TestDuration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "duration suite")
}

type holder struct {
	Value duration.Duration `json:"value" yaml:"value"`
}

var _ = Describe("Duration", func() {
	It("converts to time.Duration via Time", func() {
		Expect(duration.Seconds(30).Time()).To(Equal(30 * time.Second))
	})

	It("round-trips through JSON as a string", func() {
		h := holder{Value: duration.Seconds(5)}

		b, err := json.Marshal(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"value":"5s"}`))

		var out holder
		Expect(json.Unmarshal(b, &out)).To(Succeed())
		Expect(out.Value.Time()).To(Equal(5 * time.Second))
	})

	It("round-trips through YAML as a string", func() {
		h := holder{Value: duration.Seconds(90)}

		b, err := yaml.Marshal(h)
		Expect(err).NotTo(HaveOccurred())

		var out holder
		Expect(yaml.Unmarshal(b, &out)).To(Succeed())
		Expect(out.Value.Time()).To(Equal(90 * time.Second))
	})

	It("rejects an unparseable duration string", func() {
		var d duration.Duration
		err := d.UnmarshalJSON([]byte(`"not-a-duration"`))
		Expect(err).To(HaveOccurred())
	})
})
