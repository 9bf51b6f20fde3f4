package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ExecRecognizer escucha con un comando local que imprime un transcript final
// por linea en stdout. El fin del proceso termina la escucha.
type ExecRecognizer struct {
	args     []string
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
	logger   *zap.Logger
	maxLine  int

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewExecRecognizer(command string, logger *zap.Logger) *ExecRecognizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRecognizer{
		args:     strings.Fields(command),
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
		logger:   logger,
		maxLine:  bufio.MaxScanTokenSize,
	}
}

func (r *ExecRecognizer) Available() bool {
	if len(r.args) == 0 {
		return false
	}
	_, err := r.lookPath(r.args[0])
	return err == nil
}

func (r *ExecRecognizer) buildArgs(language string) []string {
	out := make([]string, 0, len(r.args))
	for _, a := range r.args[1:] {
		out = append(out, strings.ReplaceAll(a, "{lang}", language))
	}
	return out
}

func (r *ExecRecognizer) Start(language string, events RecognitionEvents) error {
	if len(r.args) == 0 {
		return errors.New("recognizer command not configured")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cmd := r.command(ctx, r.args[0], r.buildArgs(language)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start recognizer command: %w", err)
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.mu.Unlock()

	if events.OnListeningStart != nil {
		events.OnListeningStart()
	}
	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 4096), r.maxLine)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && events.OnTranscript != nil {
				events.OnTranscript(line)
			}
		}
		scanErr := scanner.Err()
		cancelled := ctx.Err() != nil
		if scanErr != nil {
			// sin lector el proceso quedaria bloqueado escribiendo
			cancel()
		}
		err := cmd.Wait()
		cancel()
		if scanErr != nil && !cancelled {
			err = fmt.Errorf("read recognizer output: %w", scanErr)
		}
		switch {
		case err != nil && !cancelled:
			r.logger.Warn("recognizer command failed", zap.Error(err))
			if events.OnError != nil {
				events.OnError(err)
			}
		case events.OnListeningEnd != nil:
			events.OnListeningEnd()
		}
	}()
	return nil
}

// Stop mata el proceso de escucha, si hay uno.
func (r *ExecRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return nil
}
