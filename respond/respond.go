// Package respond は各ハンドラで共通の JSON 応答とエラー応答を提供します。
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"mfg/metrics"
	"mfg/model"
)

// JSON は v を JSON として書き込みます。
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// Error はエラーの種類に応じたステータスで {"error": msg} を返します。
// ClientError は 400、ErrNotFound は 404、それ以外は 500 としてスタック付きでログに残します。
func Error(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var ce *model.ClientError
	switch {
	case errors.As(err, &ce):
		metrics.RecordError(operation, "client")
		JSON(w, http.StatusBadRequest, map[string]string{"error": ce.Message})
	case errors.Is(err, model.ErrNotFound):
		metrics.RecordError(operation, "not_found")
		JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		metrics.RecordError(operation, "internal")
		zap.L().Error(operation+" failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
			zap.Stack("stack"))
		JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// Decode はリクエストボディを dst に読み込みます。失敗した場合は 400 を返して false を返します。
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}

// RequireMethod はメソッドが一致しない場合に 405 を返して false を返します。
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// QueryID はクエリパラメータ name を int64 として読み取ります。
func QueryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, model.NewClientError("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, model.NewClientError("invalid %s: %s", name, raw)
	}
	return id, nil
}
