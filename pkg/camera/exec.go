package camera

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	PlaceholderOutput  = "{output}"
	PlaceholderQuality = "{quality}"
)

type (
	// Exec captures by running an external command such as
	// `libcamera-still -n -q {quality} -o {output}` or `fswebcam --jpeg {quality} {output}`.
	Exec struct {
		l       *zap.Logger
		command []string
		tempDir string
		now     func() time.Time
	}
	ExecOption func(*Exec)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewExec(l *zap.Logger, command []string, opts ...ExecOption) (*Exec, error) {
	if len(command) == 0 {
		return nil, errors.New("empty capture command")
	}
	if !strings.Contains(strings.Join(command, " "), PlaceholderOutput) {
		return nil, errors.Errorf("capture command must contain %s", PlaceholderOutput)
	}
	inst := &Exec{
		l:       l.Named("camera.exec"),
		command: command,
		tempDir: os.TempDir(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func ExecWithTempDir(v string) ExecOption {
	return func(o *Exec) {
		o.tempDir = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (e *Exec) GetPhoto(ctx context.Context, opts Options) (*Image, error) {
	target := tempImagePath(e.tempDir, e.now())
	args := e.args(target, opts)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Stderr = &stderr

	e.l.Debug("running capture command", zap.Strings("args", args))
	err := cmd.Run()
	if ctx.Err() != nil {
		_ = os.Remove(target)
		return nil, errors.Wrap(ErrCaptureDeclined, ctx.Err().Error())
	}
	if err != nil {
		_ = os.Remove(target)
		return nil, errors.Wrapf(ErrCaptureFailed, "%s: %s", err.Error(), strings.TrimSpace(stderr.String()))
	}
	if info, err := os.Stat(target); err != nil || info.Size() == 0 {
		// the command exited cleanly without taking a picture
		_ = os.Remove(target)
		return nil, errors.Wrap(ErrCaptureDeclined, "no image was written")
	}

	return finish(e.l, target, opts)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (e *Exec) args(target string, opts Options) []string {
	r := strings.NewReplacer(
		PlaceholderOutput, target,
		PlaceholderQuality, strconv.Itoa(clampQuality(opts.Quality)),
	)
	args := make([]string, len(e.command))
	for i, a := range e.command {
		args[i] = r.Replace(a)
	}
	return args
}
