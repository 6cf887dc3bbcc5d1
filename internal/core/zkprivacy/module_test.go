package zkprivacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkprivacy/internal/core/zkprivacy/testutil"
)

func TestPreloadHook_StopWaitsForPreload(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	hook := preloadHook(testutil.NewTestLogger(), func() error {
		<-release
		close(finished)
		return nil
	})

	require.NoError(t, hook.OnStart(context.Background()))

	// 预加载未结束时，受停止上下文约束返回超时
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, hook.OnStop(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, hook.OnStop(context.Background()))
	select {
	case <-finished:
	default:
		t.Fatal("OnStop 返回时预加载应已结束")
	}
}

func TestPreloadHook_ErrorIsLogged(t *testing.T) {
	logger := testutil.NewTestBehavioralLogger()
	hook := preloadHook(logger, func() error { return errors.New("setup failed") })

	require.NoError(t, hook.OnStart(context.Background()))
	require.NoError(t, hook.OnStop(context.Background()))
	assert.Equal(t, 1, logger.CountContaining("ERROR", "预加载失败"))
}

func TestPreloadHook_StopWithoutStart(t *testing.T) {
	hook := preloadHook(testutil.NewTestLogger(), func() error { return nil })
	assert.NoError(t, hook.OnStop(context.Background()))
}
