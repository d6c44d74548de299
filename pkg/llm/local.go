package llm

import (
	"context"
	"fmt"
	"strings"

	"worklog_go/pkg/textstat"
)

// LocalProvider 不访问外部服务，基于关键词统计生成一段固定格式的分析。
type LocalProvider struct{}

func (LocalProvider) Name() string { return "local" }

func (LocalProvider) Analyze(_ context.Context, req Request) (*Result, error) {
	freq := textstat.Frequencies(req.InputText())
	if len(freq) == 0 {
		return &Result{Analysis: "未识别到有效关键词，建议补充更具体的工作内容。", Provider: "local"}, nil
	}

	top := textstat.TopKeywords(freq, 5)
	words := make([]string, 0, len(top))
	for _, kw := range top {
		words = append(words, fmt.Sprintf("%s(%d)", kw.Word, kw.Count))
	}

	counts := textstat.CategoryCounts(freq)
	var dist []string
	mainCategory, mainCount := "", 0
	for _, c := range textstat.Categories {
		n := counts[c.Name]
		if n == 0 {
			continue
		}
		dist = append(dist, fmt.Sprintf("%s %d", c.Name, n))
		if n > mainCount {
			mainCategory, mainCount = c.Name, n
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "关键词：%s。", strings.Join(words, "、"))
	if len(dist) > 0 {
		fmt.Fprintf(&b, "工作类型分布：%s。主要集中在%s类工作。", strings.Join(dist, "、"), mainCategory)
	} else {
		b.WriteString("未匹配到已知工作类型。")
	}
	return &Result{Analysis: b.String(), Provider: "local"}, nil
}
