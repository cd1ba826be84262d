package domain

import "context"

// SpeechModel transcribes a waveform file. The result mapping carries at least
// a "text" key.
type SpeechModel interface {
	Transcribe(ctx context.Context, wavPath string) (map[string]any, error)
}

// SpeechModelLoader loads a local speech model by name (e.g. "base", "small").
type SpeechModelLoader interface {
	LoadModel(ctx context.Context, name string) (SpeechModel, error)
}

// AudioAcquirer downloads a source URL's audio track and normalizes it to a
// mono 16 kHz WAV file inside workdir, returning its path.
type AudioAcquirer interface {
	Acquire(ctx context.Context, sourceURL, workdir string) (string, error)
}
