package voice

import (
	"bufio"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestExecRecognizerArgs(t *testing.T) {
	r := NewExecRecognizer("whisper-stream --language {lang}", nil)
	got := r.buildArgs("es-AR")
	if len(got) != 2 || got[0] != "--language" || got[1] != "es-AR" {
		t.Fatalf("unexpected args %v", got)
	}
	if NewExecRecognizer("", nil).Available() {
		t.Fatalf("empty command must be unavailable")
	}
}

func TestExecRecognizerTranscripts(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo binary not available")
	}
	r := NewExecRecognizer("echo Arsenal versus Chelsea", nil)

	var mu sync.Mutex
	var transcripts []string
	started := make(chan struct{}, 1)
	ended := make(chan struct{}, 1)
	err := r.Start("en-US", RecognitionEvents{
		OnListeningStart: func() { started <- struct{}{} },
		OnTranscript: func(text string) {
			mu.Lock()
			transcripts = append(transcripts, text)
			mu.Unlock()
		},
		OnListeningEnd: func() { ended <- struct{}{} },
		OnError:        func(err error) { t.Errorf("unexpected recognition error: %v", err) },
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("expected start event")
	}
	select {
	case <-ended:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected end event")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transcripts) != 1 || transcripts[0] != "Arsenal versus Chelsea" {
		t.Fatalf("unexpected transcripts %v", transcripts)
	}
}

func TestExecRecognizerReportsUnreadableOutput(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo binary not available")
	}
	r := NewExecRecognizer("echo "+strings.Repeat("goal", 40), nil)
	r.maxLine = 64

	failed := make(chan error, 1)
	err := r.Start("en-US", RecognitionEvents{
		OnTranscript:   func(text string) { t.Errorf("unexpected transcript %q", text) },
		OnListeningEnd: func() { t.Errorf("listening must end with an error") },
		OnError:        func(err error) { failed <- err },
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case err := <-failed:
		if !errors.Is(err, bufio.ErrTooLong) {
			t.Fatalf("expected bufio.ErrTooLong, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected recognition error for an oversized line")
	}
}
