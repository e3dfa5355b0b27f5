package model

import (
	"errors"
	"fmt"
)

// ErrNotFound は対象レコードが存在しない場合に返します。
var ErrNotFound = errors.New("record not found")

// ClientError は利用者が修正できる入力・状態エラーです。HTTP では 400 として返します。
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func NewClientError(format string, args ...interface{}) error {
	return &ClientError{Message: fmt.Sprintf(format, args...)}
}

func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}
