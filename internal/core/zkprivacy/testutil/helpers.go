package testutil

import (
	"github.com/weisyn/zkprivacy/pkg/interfaces/infrastructure/log"
)

// NewTestLogger 创建测试用的Logger
func NewTestLogger() log.Logger {
	return &MockLogger{}
}

// NewTestBehavioralLogger 创建行为Logger（记录调用）
func NewTestBehavioralLogger() *BehavioralMockLogger {
	return &BehavioralMockLogger{
		logs: make([]string, 0),
	}
}
