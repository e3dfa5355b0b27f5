// Package expression は工艺内容などの自由テキストに含まれる ${...} プレースホルダを
// 製品パラメータ値で置換します。
//
// 対応する書式は2種類のみです。
//
//	${D}      パラメータ値をそのまま埋め込む
//	${D+3}    パラメータ値に数値を加算 (または減算) した結果を埋め込む
//
// 解決できないプレースホルダはエラーにせず、そのまま文字列に残します。
package expression

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	arithmeticPattern = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9]*)([+-])(\d+(?:\.\d+)?)\}`)
	plainPattern      = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9]*)\}`)
	anyPattern        = regexp.MustCompile(`\$\{[^}]*\}`)
)

// Resolve は content 内のプレースホルダを params で置換した文字列を返します。
// 算術プレースホルダを先に全件処理し、その結果に対して単純プレースホルダを処理します。
func Resolve(content string, params map[string]string) string {
	if content == "" || !strings.Contains(content, "${") {
		return content
	}
	out := arithmeticPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := arithmeticPattern.FindStringSubmatch(match)
		value, ok := params[m[1]]
		if !ok {
			return match
		}
		result, ok := apply(value, m[2], m[3])
		if !ok {
			return match
		}
		return FormatNumber(result)
	})
	return plainPattern.ReplaceAllStringFunc(out, func(match string) string {
		m := plainPattern.FindStringSubmatch(match)
		if value, ok := params[m[1]]; ok {
			return value
		}
		return match
	})
}

func apply(value, op, operand string) (float64, bool) {
	left, err := parseFinite(value)
	if err != nil {
		return 0, false
	}
	right, err := parseFinite(operand)
	if err != nil {
		return 0, false
	}
	if op == "-" {
		return left - right, true
	}
	return left + right, true
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

// FormatNumber は整数値なら小数点なし、それ以外は小数2桁で表記します。
func FormatNumber(f float64) string {
	if f == math.Trunc(f) {
		if f == 0 {
			f = 0 // -0 を 0 に揃える
		}
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Placeholders は s に残っている ${...} トークンを出現順に返します。
func Placeholders(s string) []string {
	return anyPattern.FindAllString(s, -1)
}
