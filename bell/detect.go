package bell

import (
	"errors"
	"io"
	"os/exec"
	"strconv"
)

// ErrNoBackend is returned when no PCM player is installed
var ErrNoBackend = errors.New("no compatible audio backend found")

// Backend describes a CLI player reading raw PCM from stdin
type Backend struct {
	Name string
	Path string
	Args []string
}

var rateArg = strconv.Itoa(int(SampleRate))

// candidates in priority order: pacat > pw-cat > aplay > play (sox) > ffplay
var candidates = []struct {
	bin  string
	args []string
}{
	{"pacat", []string{"--raw", "--format=s16le", "--rate=" + rateArg, "--channels=2", "--latency-msec=50", "--playback"}},
	{"pw-cat", []string{"--playback", "--format=s16", "--rate=" + rateArg, "--channels=2", "--latency=50ms", "-"}},
	{"aplay", []string{"-t", "raw", "-f", "S16_LE", "-r", rateArg, "-c", "2", "-q"}},
	{"play", []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", rateArg, "-", "-d", "-q"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", rateArg,
		"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet"}},
}

// Detect searches PATH for the first available player
func Detect() (*Backend, error) {
	for _, c := range candidates {
		if path, err := exec.LookPath(c.bin); err == nil {
			return &Backend{Name: c.bin, Path: path, Args: c.args}, nil
		}
	}
	return nil, ErrNoBackend
}

// execSink feeds a player subprocess through its stdin
type execSink struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// OpenDetected starts the detected player; stdout and stderr are discarded so the
// subprocess never writes to the terminal
func OpenDetected() (io.WriteCloser, error) {
	b, err := Detect()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(b.Path, b.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, err
	}
	return &execSink{cmd: cmd, stdin: stdin}, nil
}

func (s *execSink) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

func (s *execSink) Close() error {
	err := s.stdin.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return err
}
