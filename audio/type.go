package audio

import (
	"errors"
	"fmt"
	"strings"
)

// BackendType identifies the playback sink implementation
type BackendType string

const (
	BackendAuto    BackendType = "auto"
	BackendSpeaker BackendType = "speaker" // beep speaker, one Ctrl per worker
	BackendOto     BackendType = "oto"     // oto v3, one Player per worker
	BackendSilent  BackendType = "silent"  // no device, waits out clip duration
)

// ParseBackend maps a config string to a BackendType
func ParseBackend(s string) (BackendType, error) {
	switch b := BackendType(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendAuto, BackendSpeaker, BackendOto, BackendSilent:
		return b, nil
	case "":
		return BackendAuto, nil
	default:
		return "", fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, s)
	}
}

// StopMode selects how StopAll treats a clip that is already playing
type StopMode string

const (
	// StopCooperative queues StopAll behind the in-flight clip on each worker,
	// so a playing clip always runs to completion
	StopCooperative StopMode = "cooperative"
	// StopPreemptive additionally signals every worker out of band,
	// cancelling the blocking play call
	StopPreemptive StopMode = "preemptive"
)

// ParseStopMode maps a config string to a StopMode
func ParseStopMode(s string) (StopMode, error) {
	switch m := StopMode(strings.ToLower(strings.TrimSpace(s))); m {
	case StopCooperative, StopPreemptive:
		return m, nil
	case "":
		return StopCooperative, nil
	default:
		return "", fmt.Errorf("%w: unknown stop mode %q", ErrInvalidConfig, s)
	}
}

// Sentinel errors
var (
	ErrUnknownClip     = errors.New("unknown clip")
	ErrDecodeFailure   = errors.New("clip decode failed")
	ErrClosed          = errors.New("audio service closed")
	ErrQueueFull       = errors.New("audio request queue full")
	ErrShutdownTimeout = errors.New("audio workers did not exit")
	ErrNoAudioBackend  = errors.New("no compatible audio backend found")
	ErrInvalidConfig   = errors.New("invalid audio config")
)
