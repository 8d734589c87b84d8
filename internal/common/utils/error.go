package utils

import (
	"fmt"
	"runtime/debug"
)

// GetStackWithError は、エラーとスタックトレースを組み合わせて返します
// 所要時間の事前計算バッチが失敗した際に、Step Functionsへの失敗通知とログに発生箇所を残すために使います
// errors.Is / errors.As で元のエラー(例: context.Canceled)を判定できます
func GetStackWithError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\nStack trace:\n%s", err, debug.Stack())
}
