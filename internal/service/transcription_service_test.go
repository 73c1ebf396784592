package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"readaloud_backend/internal/config"
	"strings"
)

func TestMemoryJobQueueRoundTrip(t *testing.T) {
	queue := NewMemoryJobQueue(4)
	ctx := context.Background()

	job := TranscriptionJob{
		RecordingID:  "rec-1",
		FilePath:     "recordings/stu-1/story-1-1700000000.webm",
		ExpectedText: "the cat sat",
	}
	if err := queue.Enqueue(ctx, job); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got, err := queue.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got == nil || got.RecordingID != "rec-1" || got.ExpectedText != "the cat sat" {
		t.Fatalf("Dequeue = %+v", got)
	}
}

func TestMemoryJobQueueTimeout(t *testing.T) {
	queue := NewMemoryJobQueue(1)

	start := time.Now()
	got, err := queue.Dequeue(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got != nil {
		t.Fatalf("empty queue returned %+v", got)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("returned before the timeout elapsed")
	}
}

func TestMemoryJobQueueFull(t *testing.T) {
	queue := NewMemoryJobQueue(1)
	ctx := context.Background()

	if err := queue.Enqueue(ctx, TranscriptionJob{RecordingID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := queue.Enqueue(ctx, TranscriptionJob{RecordingID: "b"}); err == nil {
		t.Fatal("full queue must refuse")
	}
}

func TestWhisperClientTranscribe(t *testing.T) {
	var gotModel, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")

		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":             "once upon a time",
			"language":         "en",
			"confidence":       0.93,
			"duration":         12.5,
			"words_per_minute": 88.0,
			"pause_count":      2,
			"fluency_score":    76.4,
		})
	}))
	defer server.Close()

	client := NewWhisperClient(&config.WhisperConfig{
		BaseURL: server.URL,
		Model:   "base",
		Timeout: 5 * time.Second,
	})

	result, err := client.Transcribe(context.Background(), "clip.webm", strings.NewReader("fake-audio"), "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "once upon a time" {
		t.Errorf("text = %q", result.Text)
	}
	if result.WordsPerMinute != 88 || result.PauseCount != 2 {
		t.Errorf("metrics = %+v", result)
	}
	if gotModel != "base" || gotLanguage != "en" {
		t.Errorf("form fields model=%q language=%q", gotModel, gotLanguage)
	}
}

func TestWhisperClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWhisperClient(&config.WhisperConfig{BaseURL: server.URL})
	_, err := client.Transcribe(context.Background(), "clip.webm", strings.NewReader("x"), "")
	if err == nil {
		t.Fatal("non-200 must surface as error")
	}
}

func TestBuildRecordingPath(t *testing.T) {
	assignmentID := "asg-1"

	path := buildRecordingPath("stu-1", &assignmentID, "story-9", 3, ".webm")
	if !strings.HasPrefix(path, "recordings/stu-1/asg-1-3-") {
		t.Errorf("path = %q", path)
	}
	if !strings.HasSuffix(path, ".webm") {
		t.Errorf("path = %q", path)
	}

	// 自由练习没有任务，退回故事 ID
	path = buildRecordingPath("stu-1", nil, "story-9", 1, ".mp3")
	if !strings.HasPrefix(path, "recordings/stu-1/story-9-1-") {
		t.Errorf("path = %q", path)
	}

	path = buildRecordingPath("stu-1", nil, "", 1, ".wav")
	if !strings.HasPrefix(path, "recordings/stu-1/practice-1-") {
		t.Errorf("path = %q", path)
	}
}
