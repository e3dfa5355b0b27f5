// Package materialgen は物料生成ルールに従って製品から物料と BOM 明細を生成します。
package materialgen

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"mfg/expression"
	"mfg/model"
)

var strictPattern = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9]*)(?:([+-])(\d+(?:\.\d+)?))?\}`)

// EvaluateStrict はルール式を製品パラメータで評価します。
// expression.Resolve と異なり、未定義のパラメータや数値に変換できない値はエラーにします。
func EvaluateStrict(expr string, params map[string]string) (string, error) {
	var evalErr error
	out := strictPattern.ReplaceAllStringFunc(expr, func(match string) string {
		if evalErr != nil {
			return match
		}
		m := strictPattern.FindStringSubmatch(match)
		name, op, operand := m[1], m[2], m[3]
		value, ok := params[name]
		if !ok {
			evalErr = model.NewClientError("参数 %s 不存在", name)
			return match
		}
		if op == "" {
			return value
		}
		left, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(left) || math.IsInf(left, 0) {
			evalErr = model.NewClientError("参数 %s 的值 %q 不是数字", name, value)
			return match
		}
		right, _ := strconv.ParseFloat(operand, 64)
		if op == "-" {
			return expression.FormatNumber(left - right)
		}
		return expression.FormatNumber(left + right)
	})
	if evalErr != nil {
		return "", evalErr
	}
	if strings.Contains(out, "${") {
		return "", model.NewClientError("无法解析表达式: %s", expr)
	}
	return out, nil
}
