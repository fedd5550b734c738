// Package ocr manages the lifecycle of a Tesseract recognition worker:
// initialization with bounded retries, timeout-raced page recognition,
// corruption detection with mandatory reinitialization, and bounded
// teardown.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/tabula/internal/retry"
)

// ErrRecognitionTimeout marks a recognition call abandoned at its deadline.
var ErrRecognitionTimeout = errors.New("ocr recognition timed out")

// ErrWorkerCommunication marks a failure talking to the recognition engine.
var ErrWorkerCommunication = errors.New("ocr worker communication failed")

// ErrInit marks an initialization failure after all attempts.
var ErrInit = errors.New("ocr worker initialization failed")

// Word is one recognized word with its image-space box and 0-100 confidence.
type Word struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
}

// PageText is the recognition output for one page image.
type PageText struct {
	Words []Word `json:"words"`
	Text  string `json:"text"`
}

// Worker owns a single gosseract client. A worker serves one document at a
// time; the engine serializes page recognition on it.
type Worker struct {
	cfg    Config
	logger *slog.Logger

	// recognizeFn runs one recognition call; tests substitute it.
	recognizeFn func(client *gosseract.Client, imagePath string) (PageText, error)

	mu        sync.Mutex
	client    *gosseract.Client
	corrupted bool
}

// NewWorker creates an uninitialized worker.
func NewWorker(cfg Config, logger *slog.Logger) *Worker {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{cfg: cfg, logger: logger, recognizeFn: recognize}
}

// Initialize creates a fresh gosseract client, tearing down any existing
// one first. Attempts are bounded with a doubling delay; exhaustion returns
// an error wrapping ErrInit.
func (w *Worker) Initialize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initializeLocked(ctx)
}

func (w *Worker) initializeLocked(ctx context.Context) error {
	w.teardownLocked()

	policy := retry.Policy{
		MaxAttempts: w.cfg.MaxInitAttempts,
		Delay:       w.cfg.InitRetryDelay,
		Doubling:    true,
	}
	err := policy.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			w.logger.Warn("retrying ocr worker initialization", "attempt", attempt)
		}
		return w.createClientLocked()
	})
	if err != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrInit, w.cfg.MaxInitAttempts, err)
	}
	w.corrupted = false
	return nil
}

func (w *Worker) createClientLocked() error {
	client := gosseract.NewClient()
	steps := []func() error{
		func() error { return client.SetLanguage(w.cfg.Language) },
		func() error { return client.SetWhitelist(w.cfg.Whitelist) },
		func() error { return client.SetPageSegMode(gosseract.PSM_AUTO_OSD) },
		func() error {
			return client.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1")
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = client.Close()
			return err
		}
	}
	w.client = client
	return nil
}

// Corrupted reports whether the worker must be reinitialized before the
// next recognition call.
func (w *Worker) Corrupted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.corrupted
}

// RecognizePage recognizes one page image, applying the page-local retry
// policy: the first attempt runs under the full timeout, retries under the
// shorter one, and a corrupted worker is reinitialized before the next
// attempt. The returned error wraps ErrRecognitionTimeout or
// ErrWorkerCommunication once attempts are exhausted.
func (w *Worker) RecognizePage(ctx context.Context, imagePath string) (PageText, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	attempts := 1 + w.cfg.MaxPageRetries
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return PageText{}, err
		}
		if w.client == nil || w.corrupted {
			if err := w.initializeLocked(ctx); err != nil {
				return PageText{}, err
			}
		}

		timeout := w.cfg.RecognizeTimeout
		if attempt > 1 {
			timeout = w.cfg.RetryTimeout
		}
		page, err := w.recognizeOnce(ctx, imagePath, timeout)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if isCorruption(err) {
			w.corrupted = true
			w.logger.Warn("ocr worker corrupted, will reinitialize",
				"image", imagePath, "attempt", attempt, "error", err)
		}
		if attempt < attempts && w.cfg.PageRetryDelay > 0 {
			select {
			case <-time.After(w.cfg.PageRetryDelay):
			case <-ctx.Done():
				return PageText{}, ctx.Err()
			}
		}
	}
	return PageText{}, lastErr
}

// recognizeOnce races one recognition call against its deadline. The cgo
// call cannot be interrupted; on timeout ownership of the client transfers
// to the in-flight goroutine, which closes it once the call returns. The
// worker is left without a client, so teardown and reinitialization never
// touch the handle the abandoned call may still be using.
func (w *Worker) recognizeOnce(ctx context.Context, imagePath string, timeout time.Duration) (PageText, error) {
	client := w.client

	type outcome struct {
		page PageText
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		page, err := w.recognizeFn(client, imagePath)
		done <- outcome{page: page, err: err}
	}()

	abandon := func() {
		w.client = nil
		go func() {
			<-done
			_ = client.Close()
		}()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-done:
		if out.err != nil {
			return PageText{}, classify(out.err)
		}
		return out.page, nil
	case <-timer.C:
		abandon()
		return PageText{}, fmt.Errorf("%w after %v", ErrRecognitionTimeout, timeout)
	case <-ctx.Done():
		abandon()
		return PageText{}, ctx.Err()
	}
}

func recognize(client *gosseract.Client, imagePath string) (PageText, error) {
	if err := client.SetImage(imagePath); err != nil {
		return PageText{}, fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return PageText{}, fmt.Errorf("recognize text: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return PageText{}, fmt.Errorf("word boxes: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			X:          float64(box.Box.Min.X),
			Y:          float64(box.Box.Min.Y),
			Width:      float64(box.Box.Dx()),
			Height:     float64(box.Box.Dy()),
			Confidence: box.Confidence,
		})
	}
	return PageText{Words: words, Text: text}, nil
}

// classify maps raw engine errors onto the package sentinels.
func classify(err error) error {
	if isCorruption(err) {
		return fmt.Errorf("%w: %w", ErrWorkerCommunication, err)
	}
	return err
}

// isCorruption reports whether an error means the worker's state can no
// longer be trusted and it must be reinitialized.
func isCorruption(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRecognitionTimeout) || errors.Is(err, ErrWorkerCommunication) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "EOF") || strings.Contains(msg, "broken pipe")
}

// Terminate closes the client, bounded by the terminate timeout; a hung
// close is abandoned.
func (w *Worker) Terminate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teardownLocked()
}

func (w *Worker) teardownLocked() {
	if w.client == nil {
		return
	}
	client := w.client
	w.client = nil

	done := make(chan struct{})
	go func() {
		_ = client.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(w.cfg.TerminateTimeout):
		w.logger.Warn("ocr worker close timed out, abandoning client")
	}
}

// FilterWords drops words at or below the confidence floor.
func (w *Worker) FilterWords(words []Word) []Word {
	kept := make([]Word, 0, len(words))
	for _, word := range words {
		if word.Confidence > w.cfg.MinWordConfidence {
			kept = append(kept, word)
		}
	}
	return kept
}
