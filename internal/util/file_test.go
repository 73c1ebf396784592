package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestAllowedAudioExt(t *testing.T) {
	for _, ext := range []string{".webm", ".MP3", ".wav"} {
		if !AllowedAudioExt(ext) {
			t.Errorf("%s should be allowed", ext)
		}
	}
	for _, ext := range []string{".exe", ".txt", ""} {
		if AllowedAudioExt(ext) {
			t.Errorf("%s must not be allowed", ext)
		}
	}
}

func TestIsAudio(t *testing.T) {
	if !IsAudio("audio/mpeg") {
		t.Error("audio/mpeg")
	}
	// MediaRecorder 的 webm 常被嗅探成 video/webm
	if !IsAudio("video/webm") {
		t.Error("video/webm")
	}
	if IsAudio("text/html") {
		t.Error("text/html")
	}
}

func TestValidateMimeType(t *testing.T) {
	// RIFF....WAVE 头会被识别为 audio/wave
	wav := append([]byte("RIFF"), 0x24, 0x00, 0x00, 0x00)
	wav = append(wav, []byte("WAVEfmt ")...)
	wav = append(wav, make([]byte, 500)...)

	mime, err := ValidateMimeType(bytes.NewReader(wav), []string{MimeAudio})
	if err != nil {
		t.Fatalf("ValidateMimeType: %v", err)
	}
	if !strings.HasPrefix(mime, "audio/") {
		t.Fatalf("mime = %q", mime)
	}

	_, err = ValidateMimeType(strings.NewReader("<html><body>hi</body></html>"), []string{MimeAudio})
	if err == nil {
		t.Fatal("html must be rejected")
	}
}
