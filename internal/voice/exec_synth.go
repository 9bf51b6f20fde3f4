package voice

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ExecSynthesizer lee texto con un comando local de TTS (espeak, say, ...).
// El placeholder {lang} del comando se reemplaza por el idioma y el texto se
// pasa como ultimo argumento.
type ExecSynthesizer struct {
	args     []string
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewExecSynthesizer parsea command; un comando vacio da un sintetizador no disponible.
func NewExecSynthesizer(command string, logger *zap.Logger) *ExecSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecSynthesizer{
		args:     strings.Fields(command),
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
		logger:   logger,
	}
}

func (s *ExecSynthesizer) Available() bool {
	if len(s.args) == 0 {
		return false
	}
	_, err := s.lookPath(s.args[0])
	return err == nil
}

func (s *ExecSynthesizer) buildArgs(text, language string) []string {
	out := make([]string, 0, len(s.args))
	for _, a := range s.args[1:] {
		out = append(out, strings.ReplaceAll(a, "{lang}", language))
	}
	return append(out, text)
}

// Speak arranca el proceso y devuelve enseguida; los eventos llegan desde
// otra goroutine.
func (s *ExecSynthesizer) Speak(text, language string, events SpeechEvents) error {
	if len(s.args) == 0 {
		return errors.New("speech command not configured")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cmd := s.command(ctx, s.args[0], s.buildArgs(text, language)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start speech command: %w", err)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	if events.OnSpeakStart != nil {
		events.OnSpeakStart()
	}
	go func() {
		err := cmd.Wait()
		cancelled := ctx.Err() != nil
		cancel()
		switch {
		case err != nil && !cancelled:
			s.logger.Debug("speech command failed", zap.Error(err))
			if events.OnSpeakError != nil {
				events.OnSpeakError(err)
			}
		case events.OnSpeakEnd != nil:
			events.OnSpeakEnd()
		}
	}()
	return nil
}

// Cancel mata el proceso en curso, si hay uno.
func (s *ExecSynthesizer) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}
