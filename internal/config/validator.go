package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/weisyn/zkprivacy/internal/config/custody"
	"github.com/weisyn/zkprivacy/pkg/types"
)

// ============================================================================
//                           配置校验（启动前拦截）
// ============================================================================

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s（%s）", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors 多个验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msg := "配置验证失败，发现以下问题：\n"
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "panic": true, "fatal": true,
}

// ValidateAppConfig 校验用户配置中显式填写的字段
//
// 只检查用户写了的值，未填写的字段交给各子配置的默认值。
// 🎯 曲线只接受 bls12-377：承诺引擎与电路必须在同一标量域。
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}

	var errs []error

	if l := appConfig.Log; l != nil {
		if l.Level != nil && !validLogLevels[strings.ToLower(*l.Level)] {
			errs = append(errs, &ValidationError{
				Field:   "log.level",
				Message: fmt.Sprintf("未知日志级别 %q", *l.Level),
				Hint:    "可选 debug, info, warn, error, panic, fatal",
			})
		}
		if l.MaxSize != nil && *l.MaxSize <= 0 {
			errs = append(errs, &ValidationError{Field: "log.max_size", Message: "必须大于 0"})
		}
	}

	if a := appConfig.API; a != nil {
		if a.Port != nil && (*a.Port <= 0 || *a.Port > 65535) {
			errs = append(errs, &ValidationError{
				Field:   "api.port",
				Message: fmt.Sprintf("端口 %d 超出范围", *a.Port),
				Hint:    "取值 1-65535",
			})
		}
		if a.RateLimitBurst != nil && *a.RateLimitBurst < 0 {
			errs = append(errs, &ValidationError{Field: "api.rate_limit_burst", Message: "不能为负数"})
		}
		if a.MaxBodyBytes != nil && *a.MaxBodyBytes <= 0 {
			errs = append(errs, &ValidationError{Field: "api.max_body_bytes", Message: "必须大于 0"})
		}
	}

	if c := appConfig.Custody; c != nil && c.Backend != nil {
		backend := strings.ToLower(strings.TrimSpace(*c.Backend))
		if err := (&custody.CustodyOptions{Backend: backend}).Validate(); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "custody.backend",
				Message: err.Error(),
				Hint:    "可选 memory, file, badger",
			})
		}
	}

	if z := appConfig.ZKProof; z != nil {
		if z.Curve != nil {
			curve := strings.ToLower(*z.Curve)
			if curve != "" && curve != "bls12-377" {
				errs = append(errs, &ValidationError{
					Field:   "zkproof.curve",
					Message: fmt.Sprintf("不支持曲线 %s", *z.Curve),
					Hint:    "仅支持 bls12-377",
				})
			}
		}
		if z.VerifyCacheTTL != nil {
			if d, err := time.ParseDuration(*z.VerifyCacheTTL); err != nil || d <= 0 {
				errs = append(errs, &ValidationError{
					Field:   "zkproof.verify_cache_ttl",
					Message: fmt.Sprintf("无法解析时长 %q", *z.VerifyCacheTTL),
					Hint:    "例如 10m、1h",
				})
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
