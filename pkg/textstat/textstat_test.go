package textstat_test

import (
	"worklog_go/pkg/textstat"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tokenize", func() {
	It("splits on punctuation and whitespace and lowercases", func() {
		Expect(textstat.Tokenize("Fix API, 接口开发; user_id=42")).
			To(Equal([]string{"fix", "api", "接口开发", "user_id", "42"}))
	})

	It("drops single-rune tokens and stop words", func() {
		Expect(textstat.Tokenize("a 我 the 今天 ok")).To(Equal([]string{"ok"}))
	})

	It("treats non-ASCII letters outside the CJK block as separators", func() {
		Expect(textstat.Tokenize("café测试")).To(Equal([]string{"caf", "测试"}))
	})

	It("returns nothing for empty input", func() {
		Expect(textstat.Tokenize("")).To(BeEmpty())
	})
})

var _ = Describe("Classify", func() {
	It("matches keywords as substrings of the token", func() {
		Expect(textstat.Classify("接口开发")).To(Equal("开发"))
		Expect(textstat.Classify("bugfix")).To(Equal("开发"))
		Expect(textstat.Classify("周会议")).To(Equal("会议"))
	})

	It("assigns a token to the first matching category only", func() {
		// 同时包含“开发”和“测试”，按顺序归入“开发”
		Expect(textstat.Classify("开发测试")).To(Equal("开发"))
	})

	It("returns empty for unmatched tokens", func() {
		Expect(textstat.Classify("午饭")).To(BeEmpty())
	})
})

var _ = Describe("CategoryCounts", func() {
	It("includes every category even when empty", func() {
		counts := textstat.CategoryCounts(map[string]int{})
		Expect(counts).To(HaveLen(len(textstat.Categories)))
		for _, c := range textstat.Categories {
			Expect(counts).To(HaveKeyWithValue(c.Name, 0))
		}
	})

	It("adds token frequencies to their category", func() {
		freq := textstat.Frequencies("接口开发 测试用例", "测试用例 部署上线")
		Expect(freq).To(HaveKeyWithValue("测试用例", 2))

		counts := textstat.CategoryCounts(freq)
		Expect(counts["开发"]).To(Equal(1))
		Expect(counts["测试"]).To(Equal(2))
		Expect(counts["运维"]).To(Equal(1))
		Expect(counts["会议"]).To(Equal(0))
	})
})

var _ = Describe("TopKeywords", func() {
	It("orders by count then word and truncates", func() {
		top := textstat.TopKeywords(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
		Expect(top).To(Equal([]textstat.KeywordCount{
			{Word: "c", Count: 5},
			{Word: "a", Count: 2},
			{Word: "b", Count: 2},
		}))
	})
})
