package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunWithTimeout(t *testing.T) {
	errBatch := errors.New("batch failed")

	tests := []struct {
		name    string
		timeout time.Duration
		fn      func(context.Context) error
		wantErr error
	}{
		{
			name:    "正常終了",
			timeout: time.Second,
			fn:      func(ctx context.Context) error { return nil },
		},
		{
			name:    "処理のエラー",
			timeout: time.Second,
			fn:      func(ctx context.Context) error { return errBatch },
			wantErr: errBatch,
		},
		{
			name:    "タイムアウト",
			timeout: 10 * time.Millisecond,
			fn: func(ctx context.Context) error {
				<-ctx.Done()
				time.Sleep(50 * time.Millisecond)
				return ctx.Err()
			},
			wantErr: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunWithTimeout(context.Background(), tt.timeout, tt.fn)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRunWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunWithTimeout(ctx, time.Minute, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestGetStackWithError(t *testing.T) {
	assert.NoError(t, GetStackWithError(nil))

	base := errors.New("store unavailable")
	err := GetStackWithError(base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "Stack trace:")
}
