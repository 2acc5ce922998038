package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"taskhub/internal/model"

	"gorm.io/datatypes"
)

// Default per-type timeouts in seconds, matching the defaults documented in
// the API reference.
const (
	DefaultHTTPTimeout   = 30
	DefaultShellTimeout  = 300
	DefaultScriptTimeout = 300
	DefaultBackupTimeout = 3600
)

type HTTPConfig struct {
	URL     string            `json:"url" validate:"required,url"`
	Method  string            `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
	Timeout int               `json:"timeout" validate:"omitempty,gt=0"`
}

func (c *HTTPConfig) ApplyDefaults() {
	if c.Method == "" {
		c.Method = "GET"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultHTTPTimeout
	}
}

type ShellConfig struct {
	Command    string            `json:"command" validate:"required"`
	WorkingDir string            `json:"working_dir"`
	EnvVars    map[string]string `json:"env_vars"`
	Timeout    int               `json:"timeout" validate:"omitempty,gt=0"`
}

func (c *ShellConfig) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultShellTimeout
	}
}

type ScriptConfig struct {
	Code        string `json:"code" validate:"required"`
	Interpreter string `json:"interpreter"`
	Timeout     int    `json:"timeout" validate:"omitempty,gt=0"`
}

func (c *ScriptConfig) ApplyDefaults() {
	if c.Interpreter == "" {
		c.Interpreter = "python3"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultScriptTimeout
	}
}

type BackupConfig struct {
	SourcePath      string `json:"source_path" validate:"required"`
	DestinationPath string `json:"destination_path" validate:"required"`
	Compress        *bool  `json:"compress"`
	RetentionDays   int    `json:"retention_days" validate:"omitempty,gt=0"`
	Timeout         int    `json:"timeout" validate:"omitempty,gt=0"`
}

func (c *BackupConfig) ApplyDefaults() {
	if c.Compress == nil {
		compress := true
		c.Compress = &compress
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 7
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultBackupTimeout
	}
}

func DecodeHTTPConfig(raw datatypes.JSON) (*HTTPConfig, error) {
	var cfg HTTPConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid http config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func DecodeShellConfig(raw datatypes.JSON) (*ShellConfig, error) {
	var cfg ShellConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid shell config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func DecodeScriptConfig(raw datatypes.JSON) (*ScriptConfig, error) {
	var cfg ScriptConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid script config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func DecodeBackupConfig(raw datatypes.JSON) (*BackupConfig, error) {
	var cfg BackupConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid backup config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// DecodeTaskConfig returns the typed config variant for the given task type.
// The result is one of *HTTPConfig, *ShellConfig, *ScriptConfig or
// *BackupConfig with defaults applied, ready for validator.Struct.
func DecodeTaskConfig(taskType model.TaskType, raw datatypes.JSON) (interface{}, error) {
	switch taskType {
	case model.TaskTypeHTTP:
		return DecodeHTTPConfig(raw)
	case model.TaskTypeShell:
		return DecodeShellConfig(raw)
	case model.TaskTypePython:
		return DecodeScriptConfig(raw)
	case model.TaskTypeBackup:
		return DecodeBackupConfig(raw)
	default:
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}
}

// TimeoutFor extracts the configured timeout for a task without a full decode.
// Falls back to the per-type default when absent or malformed, and returns 0
// for task types without one so the caller can apply its own fallback.
func TimeoutFor(taskType model.TaskType, raw datatypes.JSON) time.Duration {
	var probe struct {
		Timeout int `json:"timeout"`
	}
	_ = json.Unmarshal(raw, &probe)
	if probe.Timeout > 0 {
		return time.Duration(probe.Timeout) * time.Second
	}

	switch taskType {
	case model.TaskTypeHTTP:
		return DefaultHTTPTimeout * time.Second
	case model.TaskTypeShell, model.TaskTypePython:
		return DefaultShellTimeout * time.Second
	case model.TaskTypeBackup:
		return DefaultBackupTimeout * time.Second
	default:
		return 0
	}
}
