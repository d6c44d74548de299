// Package textstat 提供工作日志的关键词切分与分类统计。
package textstat

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category 是一个分类及其关键词子串列表。
type Category struct {
	Name     string
	Keywords []string
}

// Categories 是固定顺序的分类表，一个词只归入第一个命中的分类。
var Categories = []Category{
	{Name: "开发", Keywords: []string{"开发", "编码", "代码", "实现", "接口", "功能", "重构", "bug", "修复", "code", "dev", "api", "fix"}},
	{Name: "测试", Keywords: []string{"测试", "用例", "验证", "联调", "test", "qa"}},
	{Name: "会议", Keywords: []string{"会议", "讨论", "沟通", "评审", "汇报", "meeting", "review"}},
	{Name: "文档", Keywords: []string{"文档", "报告", "总结", "方案", "doc", "report"}},
	{Name: "运维", Keywords: []string{"部署", "上线", "运维", "服务器", "发布", "监控", "deploy", "ops", "release"}},
	{Name: "设计", Keywords: []string{"设计", "原型", "交互", "ui", "design"}},
}

// StopWords 是统计时忽略的常见词。
var StopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {}, "are": {}, "was": {},
	"今天": {}, "明天": {}, "昨天": {}, "工作": {}, "进行": {}, "完成": {}, "一个": {}, "我们": {},
	"已经": {}, "继续": {}, "相关": {}, "内容": {},
}

func isWordRune(r rune) bool {
	switch {
	case r >= 0x4e00 && r <= 0x9fff:
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}

// Tokenize 按 {中日韩统一表意文字, ASCII 字母, 数字, 下划线} 的连续片段切词，
// 转小写后丢弃长度 <= 1 的词和停用词。
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := strings.ToLower(b.String())
		b.Reset()
		if utf8.RuneCountInString(tok) <= 1 {
			return
		}
		if _, stop := StopWords[tok]; stop {
			return
		}
		tokens = append(tokens, tok)
	}
	for _, r := range text {
		if isWordRune(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// Frequencies 统计多段文本的词频。
func Frequencies(texts ...string) map[string]int {
	freq := make(map[string]int)
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			freq[tok]++
		}
	}
	return freq
}

// Classify 返回词所属的第一个分类名，没有命中时返回空串。
func Classify(token string) string {
	for _, c := range Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(token, kw) {
				return c.Name
			}
		}
	}
	return ""
}

// CategoryCounts 把词频按分类汇总。所有分类都会出现在结果中（可能为 0）。
func CategoryCounts(freq map[string]int) map[string]int {
	counts := make(map[string]int, len(Categories))
	for _, c := range Categories {
		counts[c.Name] = 0
	}
	for tok, n := range freq {
		if name := Classify(tok); name != "" {
			counts[name] += n
		}
	}
	return counts
}

// KeywordCount 是排序后的词频项。
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TopKeywords 按频次降序（同频按词序）返回前 n 个词，n <= 0 时返回全部。
func TopKeywords(freq map[string]int, n int) []KeywordCount {
	out := make([]KeywordCount, 0, len(freq))
	for w, c := range freq {
		out = append(out, KeywordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
