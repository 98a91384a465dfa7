package util

import (
	"fmt"
	"time"
)

// ScanTuning holds the worker and retry settings for a scan
type ScanTuning struct {
	Concurrency  int
	Retry        *RetryConfig
	IsNASMode    bool
	DetectedInfo *NetworkInfo
}

// TuneForRoots detects whether any library root is on network storage and
// returns settings for the tag-reading workers. A non-nil nasMode overrides
// auto-detection.
func TuneForRoots(roots []string, nasMode *bool, baseConcurrency int) *ScanTuning {
	cfg := &ScanTuning{
		Concurrency: baseConcurrency,
		Retry:       DefaultRetryConfig(),
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	if nasMode != nil {
		if *nasMode {
			applyNASOptimizations(cfg)
			InfoLog("NAS mode: explicitly enabled via config/flag")
		} else {
			DebugLog("NAS mode: explicitly disabled via config/flag")
		}
		return cfg
	}

	for _, root := range roots {
		info, err := DetectNetworkFilesystem(root)
		if err != nil {
			WarnLog("Failed to detect filesystem for %s: %v", root, err)
			continue
		}
		if info.IsNetwork {
			cfg.DetectedInfo = info
			break
		}
	}

	if cfg.DetectedInfo == nil {
		DebugLog("Local filesystem detected - using standard settings")
		return cfg
	}

	applyNASOptimizations(cfg)
	InfoLog("Network filesystem detected: %s mount at %s", cfg.DetectedInfo.Protocol, cfg.DetectedInfo.MountPath)
	InfoLog("  Concurrency: %d → %d workers", baseConcurrency, cfg.Concurrency)
	InfoLog("  Retry attempts: %d", cfg.Retry.MaxAttempts)
	InfoLog("TIP: Use --nas-mode=false to disable auto-tuning")

	return cfg
}

// applyNASOptimizations trades parallelism for patience on network mounts
func applyNASOptimizations(cfg *ScanTuning) {
	cfg.IsNASMode = true

	// NAS devices often have limited concurrent connection capacity
	if cfg.Concurrency > 4 {
		cfg.Concurrency = 4
	} else if cfg.Concurrency < 2 {
		cfg.Concurrency = 2
	}

	cfg.Retry = &RetryConfig{
		MaxAttempts: 5,
		InitialWait: 250 * time.Millisecond,
		MaxWait:     5 * time.Second,
	}
}

// String returns a human-readable summary of the settings
func (cfg *ScanTuning) String() string {
	if !cfg.IsNASMode {
		return fmt.Sprintf("NAS mode: disabled (local filesystem), %d workers", cfg.Concurrency)
	}

	protocol, mountPath := "unknown", "unknown"
	if cfg.DetectedInfo != nil {
		protocol = cfg.DetectedInfo.Protocol
		mountPath = cfg.DetectedInfo.MountPath
	}

	return fmt.Sprintf(`NAS mode: enabled
  Protocol: %s
  Mount: %s
  Concurrency: %d workers
  Retries: %d`,
		protocol, mountPath, cfg.Concurrency, cfg.Retry.MaxAttempts)
}
