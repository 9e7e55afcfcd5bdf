package dispatcher

import (
	"GeminiClient/internal/ai"
	"GeminiClient/internal/config"
	"GeminiClient/internal/service/attachment"
	"GeminiClient/internal/service/filename"
	"GeminiClient/internal/service/session"
	"GeminiClient/internal/service/stream"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	Prompt   = "Ask your question (or type 'exit' to quit): "
	Farewell = "Exiting the program."
)

// ErrTurnTimeout ход не уложился в TURN_TIMEOUT.
var ErrTurnTimeout = errors.New("turn timed out")

// Route путь, по которому прошёл ход.
type Route int

const (
	RouteSkip Route = iota
	RouteExit
	RouteText
	RouteVision
)

func (r Route) String() string {
	switch r {
	case RouteSkip:
		return "skip"
	case RouteExit:
		return "exit"
	case RouteText:
		return "text"
	case RouteVision:
		return "vision"
	default:
		return "unknown"
	}
}

// Speaker озвучивает готовый ответ.
type Speaker interface {
	Speak(ctx context.Context, reply string) error
}

// Loader читает вложение из рабочей папки.
type Loader interface {
	Load(folder, filename string) (ai.Attachment, error)
}

// Dispatcher цикл вопрос-ответ: классифицирует ввод и отправляет его по текстовому или визуальному пути.
type Dispatcher struct {
	cfg      *config.Config
	client   ai.Client
	detector filename.Detector
	loader   Loader
	session  *session.Session
	consumer *stream.Consumer
	speaker  Speaker
	out      io.Writer
	logger   *zap.SugaredLogger
}

func New(cfg *config.Config, client ai.Client, out io.Writer, logger *zap.SugaredLogger) (*Dispatcher, error) {
	detector, err := filename.NewRegexpDetector(cfg.AttachmentExtensions)
	if err != nil {
		return nil, fmt.Errorf("filename detector: %w", err)
	}
	sess := session.New(client, cfg.MaxHistoryTurns, logger).WithStreaming(cfg.StreamReplies)
	logger.Infow("Session started", "session", sess.ID(), "provider", cfg.Provider, "workspace", cfg.WorkspaceDir, "stream", cfg.StreamReplies)
	return &Dispatcher{
		cfg:      cfg,
		client:   client,
		detector: detector,
		loader:   attachment.NewLoader(cfg.MaxAttachmentBytes, logger),
		session:  sess,
		consumer: stream.New(logger),
		out:      out,
		logger:   logger,
	}, nil
}

// SetSpeaker включает озвучку ответов.
func (d *Dispatcher) SetSpeaker(s Speaker) { d.speaker = s }

// SetLoader подменяет источник вложений.
func (d *Dispatcher) SetLoader(l Loader) { d.loader = l }

// Session текущий текстовый диалог.
func (d *Dispatcher) Session() *session.Session { return d.session }

// IsRecoverable ошибка касается только текущего хода, цикл продолжается.
func IsRecoverable(err error) bool {
	return errors.Is(err, attachment.ErrNotFound) ||
		errors.Is(err, attachment.ErrIO) ||
		errors.Is(err, ai.ErrBlocked) ||
		errors.Is(err, ai.ErrUnsupportedMedia) ||
		errors.Is(err, ErrTurnTimeout)
}

// Run читает вопросы из in до "exit", конца ввода или отмены ctx.
// Возвращает nil при штатном завершении и ошибку транспорта, после которой продолжать нельзя.
func (d *Dispatcher) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(d.out, Prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(d.out)
			fmt.Fprintln(d.out, Farewell)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(d.out)
				fmt.Fprintln(d.out, Farewell)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			line = l
		}

		route, err := d.Handle(ctx, line)
		switch {
		case route == RouteExit:
			fmt.Fprintln(d.out, Farewell)
			return nil
		case err == nil:
		case ctx.Err() != nil:
			fmt.Fprintln(d.out)
			fmt.Fprintln(d.out, Farewell)
			return nil
		case IsRecoverable(err):
			d.logger.Warnw("Turn failed", "route", route.String(), "error", err)
			fmt.Fprintf(d.out, "Error: %v\n", err)
		default:
			return err
		}
	}
}

// Handle выполняет ровно один ход для уже прочитанной строки.
func (d *Dispatcher) Handle(ctx context.Context, utterance string) (Route, error) {
	utterance = strings.TrimSpace(utterance)
	if strings.EqualFold(utterance, "exit") {
		return RouteExit, nil
	}
	if utterance == "" {
		return RouteSkip, nil
	}

	turnCtx, cancel := context.WithTimeoutCause(ctx, d.cfg.TurnTimeout, ErrTurnTimeout)
	defer cancel()

	names := d.detector.Detect(utterance)
	d.logger.Debugw("Extracted filenames", "filenames", names)

	if len(names) == 0 {
		d.logger.Debugw("Calling text model", "session", d.session.ID())
		st, err := d.session.Send(turnCtx, utterance)
		if err != nil {
			return RouteText, d.turnError(ctx, turnCtx, err)
		}
		return RouteText, d.emit(ctx, turnCtx, st)
	}

	// из нескольких упомянутых файлов используется первый
	name := names[0]
	d.logger.Debugw("Calling vision model", "filename", name)
	att, err := d.loader.Load(d.cfg.WorkspaceDir, name)
	if err != nil {
		return RouteVision, err
	}
	req := ai.BuildVision(utterance, att)
	req.Stream = d.cfg.StreamReplies
	st, err := d.client.Stream(turnCtx, req)
	if err != nil {
		return RouteVision, d.turnError(ctx, turnCtx, err)
	}
	return RouteVision, d.emit(ctx, turnCtx, st)
}

// emit печатает фрагменты по мере поступления, затем перевод строки, затем озвучивает ответ.
func (d *Dispatcher) emit(ctx, turnCtx context.Context, st ai.Stream) error {
	var reply strings.Builder
	for frag, err := range d.consumer.Fragments(turnCtx, st) {
		if err != nil {
			fmt.Fprintln(d.out)
			return d.turnError(ctx, turnCtx, err)
		}
		reply.WriteString(frag)
		fmt.Fprint(d.out, frag)
	}
	fmt.Fprintln(d.out)

	if d.speaker != nil && reply.Len() > 0 {
		if err := d.speaker.Speak(turnCtx, reply.String()); err != nil {
			// озвучка не критична для диалога
			d.logger.Warnw("Failed to speak reply", "error", err)
		}
	}
	return nil
}

// turnError переводит истечение таймаута хода в ErrTurnTimeout.
func (d *Dispatcher) turnError(ctx, turnCtx context.Context, err error) error {
	if ctx.Err() == nil && errors.Is(context.Cause(turnCtx), ErrTurnTimeout) && !errors.Is(err, ErrTurnTimeout) {
		return fmt.Errorf("%w: %w", ErrTurnTimeout, err)
	}
	return err
}
