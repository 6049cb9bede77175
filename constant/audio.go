package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate   = 44100
	AudioChannels     = 2
	AudioBytesPerSamp = 4 // float32 LE, oto output format
	AudioResampleQual = 4 // beep.Resample quality, 1 (fast) .. 64 (best)
)

// Audio Pool
const (
	// AudioPoolSize is the default number of playback workers
	AudioPoolSize = 4

	// AudioInboxSize bounds the dispatcher's inbound queue
	AudioInboxSize = 64

	// AudioWorkerQueueSize holds one Play plus one coalesced StopAll
	AudioWorkerQueueSize = 2
)

// Audio Timing
const (
	// AudioBufferDuration is the speaker/oto device buffer, trades latency for underruns
	AudioBufferDuration = 100 * time.Millisecond

	// AudioPollInterval is how often the oto sink checks player completion
	AudioPollInterval = 10 * time.Millisecond

	// AudioShutdownTimeout bounds the wait for workers to join
	AudioShutdownTimeout = 5 * time.Second

	// AudioCacheTTL is how long a decoded clip stays cached; 0 disables the cache
	AudioCacheTTL = 10 * time.Minute

	// AudioCacheSweep is the go-cache janitor interval
	AudioCacheSweep = time.Minute
)

// Manifest
const (
	// ManifestDebounce coalesces editor write bursts into one reload
	ManifestDebounce = 200 * time.Millisecond

	// ManifestDefaultPath is relative to the working directory
	ManifestDefaultPath = "audio/clips.yaml"
)

// Synthesized Clip Timing
const (
	PewDuration = 180 * time.Millisecond
	PewAttack   = 2 * time.Millisecond
	PewRelease  = 60 * time.Millisecond

	MoveDuration = 60 * time.Millisecond
	MoveAttack   = 2 * time.Millisecond
	MoveRelease  = 20 * time.Millisecond

	ExplosionDuration = 700 * time.Millisecond
	ExplosionAttack   = 5 * time.Millisecond
	ExplosionRelease  = 650 * time.Millisecond

	// NoteDuration is one step of the startup, win and lose jingles
	NoteDuration = 150 * time.Millisecond
	NoteAttack   = 5 * time.Millisecond
	NoteRelease  = 80 * time.Millisecond
)
