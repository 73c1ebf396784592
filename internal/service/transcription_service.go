package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"readaloud_backend/internal/config"
	"readaloud_backend/internal/model"
	"readaloud_backend/internal/repository"
	"readaloud_backend/pkg/logger"
	"readaloud_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const transcriptionQueueKey = "transcription:jobs"

// TranscriptionJob 一次转写任务。ExpectedText 只在提交时可得，
// 崩溃恢复重新入队的任务没有它，准确率会缺失
type TranscriptionJob struct {
	RecordingID  string `json:"recordingId"`
	FilePath     string `json:"filePath"`
	Language     string `json:"language"`
	ExpectedText string `json:"expectedText"`
}

// JobQueue 转写任务队列
type JobQueue interface {
	Enqueue(ctx context.Context, job TranscriptionJob) error
	// Dequeue 阻塞等待，队列空时最多等 timeout，返回 (nil, nil)
	Dequeue(ctx context.Context, timeout time.Duration) (*TranscriptionJob, error)
}

// RedisJobQueue redis list 实现，多实例共享
type RedisJobQueue struct {
	rdb *redis.Client
}

func NewRedisJobQueue(rdb *redis.Client) *RedisJobQueue {
	return &RedisJobQueue{rdb: rdb}
}

func (q *RedisJobQueue) Enqueue(ctx context.Context, job TranscriptionJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, transcriptionQueueKey, payload).Err()
}

func (q *RedisJobQueue) Dequeue(ctx context.Context, timeout time.Duration) (*TranscriptionJob, error) {
	vals, err := q.rdb.BRPop(ctx, timeout, transcriptionQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(vals) < 2 {
		return nil, nil
	}

	var job TranscriptionJob
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// MemoryJobQueue 进程内队列，没配 redis 时的退路
type MemoryJobQueue struct {
	jobs chan TranscriptionJob
}

func NewMemoryJobQueue(size int) *MemoryJobQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryJobQueue{jobs: make(chan TranscriptionJob, size)}
}

func (q *MemoryJobQueue) Enqueue(ctx context.Context, job TranscriptionJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return errors.New("transcription queue full")
	}
}

func (q *MemoryJobQueue) Dequeue(ctx context.Context, timeout time.Duration) (*TranscriptionJob, error) {
	select {
	case job := <-q.jobs:
		return &job, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// whisperResult whisper 服务 /transcribe 的响应
type whisperResult struct {
	Text           string  `json:"text"`
	Language       string  `json:"language"`
	Confidence     float64 `json:"confidence"`
	Duration       float64 `json:"duration"`
	WordsPerMinute float64 `json:"words_per_minute"`
	PauseCount     int     `json:"pause_count"`
	FluencyScore   float64 `json:"fluency_score"`
}

// WhisperClient 语音转写 HTTP 客户端
type WhisperClient struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewWhisperClient(cfg *config.WhisperConfig) *WhisperClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &WhisperClient{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (*whisperResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, err
	}
	if c.model != "" {
		_ = writer.WriteField("model", c.model)
	}
	if language != "" {
		_ = writer.WriteField("language", language)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("whisper returned %d: %s", resp.StatusCode, string(data))
	}

	var result whisperResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TranscriptionService 后台转写流水线：队列 + worker 池。
// 状态机 uploaded -> processing -> completed|failed
type TranscriptionService struct {
	queue         JobQueue
	whisper       *WhisperClient
	recordingRepo *repository.RecordingRepository
	storage       *StorageService
	workers       int
	wg            sync.WaitGroup
}

func NewTranscriptionService(
	queue JobQueue,
	whisper *WhisperClient,
	recordingRepo *repository.RecordingRepository,
	storage *StorageService,
	workers int,
) *TranscriptionService {
	if workers <= 0 {
		workers = 2
	}
	return &TranscriptionService{
		queue:         queue,
		whisper:       whisper,
		recordingRepo: recordingRepo,
		storage:       storage,
		workers:       workers,
	}
}

func (s *TranscriptionService) Queue() JobQueue {
	return s.queue
}

// Start 启动 worker 池并回捞上次没做完的任务，ctx 取消后退出
func (s *TranscriptionService) Start(ctx context.Context) {
	s.requeuePending(ctx)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
}

func (s *TranscriptionService) Wait() {
	s.wg.Wait()
}

// requeuePending 进程重启后把滞留在 uploaded/processing 的录音重新入队
func (s *TranscriptionService) requeuePending(ctx context.Context) {
	pending, err := s.recordingRepo.ListPendingTranscription(200)
	if err != nil {
		logger.Log.Error("requeue scan failed", zap.Error(err))
		return
	}
	for _, rec := range pending {
		job := TranscriptionJob{
			RecordingID: rec.ID,
			FilePath:    rec.FilePath,
			Language:    rec.Language,
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			logger.Log.Error("requeue failed", zap.String("recordingId", rec.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		logger.Log.Info("requeued pending transcriptions", zap.Int("count", len(pending)))
	}
}

func (s *TranscriptionService) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := s.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error("dequeue failed", zap.Int("worker", id), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		s.process(ctx, job)
	}
}

func (s *TranscriptionService) process(ctx context.Context, job *TranscriptionJob) {
	start := time.Now()

	if err := s.recordingRepo.UpdateStatus(job.RecordingID, model.RecordingProcessing); err != nil {
		logger.Log.Error("mark processing failed", zap.String("recordingId", job.RecordingID), zap.Error(err))
	}
	_ = s.recordingRepo.UpdateSubmissionStatusByRecording(job.RecordingID, string(model.RecordingProcessing))

	result, err := s.transcribe(ctx, job)
	if err != nil {
		logger.Log.Error("transcription failed",
			zap.String("recordingId", job.RecordingID), zap.Error(err))
		_ = s.recordingRepo.UpdateStatus(job.RecordingID, model.RecordingFailed)
		_ = s.recordingRepo.UpdateSubmissionStatusByRecording(job.RecordingID, string(model.RecordingFailed))
		monitoring.TranscriptionJobs.WithLabelValues("failed").Inc()
		return
	}

	fields := map[string]interface{}{
		"status":           model.RecordingCompleted,
		"transcript":       result.Text,
		"language":         result.Language,
		"words_per_minute": result.WordsPerMinute,
		"pause_count":      result.PauseCount,
		"fluency_score":    result.FluencyScore,
	}
	if job.ExpectedText != "" {
		fields["accuracy_score"] = TranscriptAccuracy(result.Text, job.ExpectedText)
	}

	if err := s.recordingRepo.UpdateFields(job.RecordingID, fields); err != nil {
		logger.Log.Error("store transcription failed",
			zap.String("recordingId", job.RecordingID), zap.Error(err))
		monitoring.TranscriptionJobs.WithLabelValues("failed").Inc()
		return
	}
	_ = s.recordingRepo.UpdateSubmissionStatusByRecording(job.RecordingID, string(model.RecordingCompleted))

	monitoring.TranscriptionJobs.WithLabelValues("completed").Inc()
	monitoring.TranscriptionDuration.Observe(time.Since(start).Seconds())
	logger.Log.Info("transcription completed",
		zap.String("recordingId", job.RecordingID),
		zap.Duration("took", time.Since(start)))
}

func (s *TranscriptionService) transcribe(ctx context.Context, job *TranscriptionJob) (*whisperResult, error) {
	audio, err := s.storage.Open(ctx, job.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audio.Close()

	return s.whisper.Transcribe(ctx, job.FilePath, audio, job.Language)
}
