package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout はバッチ処理が指定された時間内に終わらなかったことを表します
var ErrTimeout = errors.New("batch process timed out")

// RunWithTimeout は指定されたタイムアウト時間内でバッチ処理を実行します
// タイムアウトした場合は ErrTimeout を、呼び出し元のコンテキストがキャンセルされた場合はその理由を返します
// fn は返されたコンテキストのキャンセルを検知して処理を打ち切る必要があります
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- fn(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		if parent.Err() != nil {
			return fmt.Errorf("batch process cancelled: %w", context.Cause(parent))
		}
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
}
