package voice

import (
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestExecSynthesizerArgs(t *testing.T) {
	s := NewExecSynthesizer("espeak-ng -v {lang} -s 160", nil)
	got := s.buildArgs("Arsenal to win", "en-US")
	want := []string{"-v", "en-US", "-s", "160", "Arsenal to win"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestExecSynthesizerAvailable(t *testing.T) {
	if NewExecSynthesizer("  ", nil).Available() {
		t.Fatalf("empty command must be unavailable")
	}
	s := NewExecSynthesizer("say", nil)
	s.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if s.Available() {
		t.Fatalf("missing binary must be unavailable")
	}
	s.lookPath = func(string) (string, error) { return "/usr/bin/say", nil }
	if !s.Available() {
		t.Fatalf("expected available when binary resolves")
	}
}

func TestExecSynthesizerSpeakEvents(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true binary not available")
	}
	s := NewExecSynthesizer("true", nil)
	started := make(chan struct{}, 1)
	ended := make(chan struct{}, 1)
	err := s.Speak("hello", "en-US", SpeechEvents{
		OnSpeakStart: func() { started <- struct{}{} },
		OnSpeakEnd:   func() { ended <- struct{}{} },
		OnSpeakError: func(err error) { t.Errorf("unexpected speak error: %v", err) },
	})
	if err != nil {
		t.Fatalf("speak: %v", err)
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
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}
