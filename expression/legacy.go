package expression

import (
	"regexp"

	"github.com/expr-lang/expr"
)

var parenPattern = regexp.MustCompile(`\(\s*(\d+(?:\.\d+)?)\s*([+-])\s*(\d+(?:\.\d+)?)\s*\)`)

// EvaluateParentheticals は旧形式の "(12+3)" のような数値リテラル同士の括弧式を計算結果に置き換えます。
// Resolve の後に適用する前提で、設定で有効にした場合のみ使用します。
func EvaluateParentheticals(content string) string {
	return parenPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := parenPattern.FindStringSubmatch(match)
		out, err := expr.Eval(m[1]+" "+m[2]+" "+m[3], nil)
		if err != nil {
			return match
		}
		switch v := out.(type) {
		case int:
			return FormatNumber(float64(v))
		case float64:
			return FormatNumber(v)
		}
		return match
	})
}

// Expand は Resolve を行い、legacy が true の場合は続けて括弧式を計算します。
func Expand(content string, params map[string]string, legacy bool) string {
	out := Resolve(content, params)
	if legacy {
		out = EvaluateParentheticals(out)
	}
	return out
}
