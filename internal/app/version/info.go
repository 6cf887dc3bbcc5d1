// Package version provides version information for the application.
package version

import (
	"fmt"
	"runtime"
)

// 构建时注入的变量，通过ldflags设置
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetFullVersion 获取完整版本信息（用于详细输出）
func GetFullVersion() string {
	info := GetBuildInfo()
	return fmt.Sprintf("zkprivacy %s\n构建时间: %s\n提交: %s\nGo版本: %s\n平台: %s",
		info.Version, info.BuildTime, info.GitCommit, info.GoVersion, info.Platform)
}
