package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scoresight/internal/chat"
	"scoresight/internal/domain"
	"scoresight/internal/voice"
)

const chatHelp = `Commands:
  /suggest        list suggested questions
  /<n>            send suggestion n
  /read [n]       read message n aloud (last reply by default)
  /stop           stop reading
  /listen         toggle the microphone
  /mode <m>       speech mode: always, on_demand, off
  /history        show the conversation
  /clear          start a new conversation
  /exit           quit`

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the Scoresight assistant",
		Long:  "Starts an interactive chat. With a message argument, sends it once and prints the reply.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out := &lockedWriter{w: cmd.OutOrStdout()}
			s := newChatSession(a, out)
			s.Mount(ctx)
			defer s.Unmount()

			if len(args) > 0 {
				s.Controller.Send(ctx, strings.Join(args, " "))
				return nil
			}
			fmt.Fprintf(out, "Scoresight: %s\n", s.Log.Last().Content)
			fmt.Fprintln(out, "Type /help for commands.")
			return runChatLoop(ctx, cmd.InOrStdin(), out, s)
		},
	}
}

func newChatSession(a *app, out io.Writer) *chat.Session {
	bridge := voice.NewBridge(voice.Options{
		Recognizer:      voice.NewExecRecognizer(a.cfg.RecognizerCommand, a.logger),
		Synthesizer:     voice.NewExecSynthesizer(a.cfg.SpeechCommand, a.logger),
		Modes:           voice.NewModeStore(a.store, a.logger),
		Logger:          a.logger,
		Language:        a.cfg.SpeechLanguage,
		TranscriptDelay: a.cfg.TranscriptDelay,
	})
	s := chat.NewSession(chat.SessionDeps{
		Chat:           a.client,
		Suggestions:    a.client,
		Voice:          bridge,
		Logger:         a.logger,
		RequestTimeout: a.cfg.ChatRequestTimeout,
		QuickSendDelay: a.cfg.QuickSendDelay,
	})
	s.Log.Subscribe(func(m domain.Message) {
		switch m.Role {
		case domain.RoleAssistant:
			fmt.Fprintln(out, formatReply(m))
		case domain.RoleUser:
			fmt.Fprintf(out, "You: %s\n", m.Content)
		}
	})
	s.Controller.OnLoadingChange(func(loading bool) {
		if loading {
			fmt.Fprintln(out, "Scoresight is thinking...")
		}
	})
	return s
}

func runChatLoop(ctx context.Context, in io.Reader, out io.Writer, s *chat.Session) error {
	scanner := bufio.NewScanner(in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "/") {
			if quit := handleChatCommand(ctx, strings.TrimSpace(line), out, s); quit {
				return nil
			}
			continue
		}
		s.Controller.Send(ctx, line)
	}
}

// handleChatCommand ejecuta un comando del chat; devuelve true para salir.
func handleChatCommand(ctx context.Context, line string, out io.Writer, s *chat.Session) bool {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	if n, err := strconv.Atoi(name); err == nil {
		items := s.Suggestions.Suggestions()
		if n < 1 || n > len(items) {
			fmt.Fprintln(out, "No such suggestion. Use /suggest to list them.")
			return false
		}
		s.Controller.QuickSend(ctx, items[n-1])
		return false
	}

	switch name {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprintln(out, chatHelp)
	case "clear":
		s.Voice.StopSpeaking()
		s.Controller.Clear()
		fmt.Fprintf(out, "Scoresight: %s\n", s.Log.Last().Content)
	case "suggest":
		items := s.Suggestions.Suggestions()
		if len(items) == 0 {
			fmt.Fprintln(out, "No suggestions available.")
			return false
		}
		for i, item := range items {
			fmt.Fprintf(out, "  /%d  %s\n", i+1, item)
		}
	case "history":
		for i, m := range s.Log.Messages() {
			fmt.Fprintf(out, "%3d  %s\n", i+1, formatLine(m))
		}
	case "mode":
		if len(args) == 0 {
			fmt.Fprintf(out, "Speech mode: %s\n", s.Voice.Mode())
			return false
		}
		mode := domain.SpeechMode(strings.ToLower(args[0]))
		if !mode.Valid() {
			fmt.Fprintln(out, "Unknown mode. Use always, on_demand or off.")
			return false
		}
		if err := s.Voice.SetMode(ctx, mode); err != nil {
			fmt.Fprintf(out, "Mode set to %s, but it could not be saved.\n", mode)
			return false
		}
		fmt.Fprintf(out, "Speech mode: %s\n", mode)
	case "read":
		msg, ok := pickMessage(s.Log.Messages(), args)
		if !ok {
			fmt.Fprintln(out, "No such message.")
			return false
		}
		if !s.Voice.ReadAloudAvailable(msg) {
			fmt.Fprintln(out, "Read aloud needs an assistant message, speech mode on_demand and a speech command.")
			return false
		}
		s.Voice.ReadAloud(msg)
	case "stop":
		s.Voice.StopSpeaking()
	case "listen":
		if !s.Voice.CanListen() {
			fmt.Fprintln(out, "Speech recognition is not available. Set SPEECH_RECOGNIZER_COMMAND.")
			return false
		}
		s.Voice.ToggleListening()
		if s.Voice.Listening() {
			fmt.Fprintln(out, "Listening...")
		}
	default:
		fmt.Fprintln(out, "Unknown command. Type /help for commands.")
	}
	return false
}

// pickMessage devuelve el mensaje n (1-based) o la ultima respuesta.
func pickMessage(msgs []domain.Message, args []string) (domain.Message, bool) {
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(msgs) {
			return domain.Message{}, false
		}
		return msgs[n-1], true
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsAssistant() {
			return msgs[i], true
		}
	}
	return domain.Message{}, false
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
