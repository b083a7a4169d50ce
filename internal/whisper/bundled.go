package whisper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const EnginePathEnv = "WHISPERBENCH_WHISPER_PATH"

const gpuLockRetry = 250 * time.Millisecond

// BundledEngine runs the whisper-cli binary shipped next to whisperbench.
type BundledEngine struct {
	Executable string
	Logger     *zap.Logger
	// LockDir holds the GPU lock file. GPU sessions are serialized across
	// processes; an empty LockDir disables locking.
	LockDir string
	// TempDir receives whisper's JSON output; empty means os.TempDir().
	TempDir string
}

func NewBundledEngine(logger *zap.Logger, lockDir string) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(EnginePathEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", EnginePathEnv, err)
		}
		return &BundledEngine{Executable: override, Logger: logger, LockDir: lockDir}, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve whisperbench executable path: %w", err)
	}

	whisperExe, err := ResolveBundledEnginePath(self)
	if err != nil {
		return nil, err
	}

	return &BundledEngine{Executable: whisperExe, Logger: logger, LockDir: lockDir}, nil
}

func ResolveBundledEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("bundled whisper engine not found near %s; set %s or install whisper-cli at ../libexec/whisper/%s", selfExecutable, EnginePathEnv, engineBinaryName())
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()
	hostTarget := fmt.Sprintf("%s_%s", runtime.GOOS, normalizeArch(runtime.GOARCH))

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

func (b *BundledEngine) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b *BundledEngine) SupportsLanguage(model ResolvedModel, language string) bool {
	return SupportsLanguage(model, language)
}

func (b *BundledEngine) Open(ctx context.Context, model ResolvedModel, device Device) (Session, error) {
	if strings.TrimSpace(model.Path) == "" {
		return nil, errors.New("model path is required")
	}
	if model.NeedsDownload {
		return nil, fmt.Errorf("model %s has not been downloaded", model.Name)
	}
	if err := ensureExecutable(b.Executable); err != nil {
		return nil, fmt.Errorf("bundled whisper engine missing or not executable: %w", err)
	}

	session := &bundledSession{engine: b, model: model, device: device}
	if device == CUDA && b.LockDir != "" {
		if err := os.MkdirAll(b.LockDir, 0o755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
		lock := flock.New(filepath.Join(b.LockDir, "gpu.lock"))
		b.log().Debug("waiting for gpu lock", zap.String("lock", lock.Path()))
		ok, err := lock.TryLockContext(ctx, gpuLockRetry)
		if err != nil {
			return nil, fmt.Errorf("acquire gpu lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: gpu is held by another process", ErrDeviceFault)
		}
		session.lock = lock
	}
	return session, nil
}

type bundledSession struct {
	engine *BundledEngine
	model  ResolvedModel
	device Device
	lock   *flock.Flock
	closed bool
}

func (s *bundledSession) Transcribe(ctx context.Context, req TranscriptionRequest, onSegment func(Segment)) ([]Segment, error) {
	if s.closed {
		return nil, errors.New("session is closed")
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, errors.New("audio path is required")
	}

	tempDir := s.engine.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	outBase := filepath.Join(tempDir, fmt.Sprintf("whisperbench-%d", time.Now().UnixNano()))
	jsonOut := outBase + ".json"
	args := s.args(req, outBase)

	cmd := exec.CommandContext(ctx, s.engine.Executable, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("whisper stdout: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.engine.log().Debug("running whisper engine",
		zap.String("engine", s.engine.Executable),
		zap.Stringer("device", s.device),
		zap.Strings("args", args),
	)
	// A failed or cancelled run can leave partial output behind.
	defer os.Remove(jsonOut)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start whisper engine: %w", err)
	}
	scanProgress(stdout, onSegment)
	if err := cmd.Wait(); err != nil {
		return nil, s.classify(err, strings.TrimSpace(stderr.String()))
	}

	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	return parseSegments(content)
}

func (s *bundledSession) args(req TranscriptionRequest, outBase string) []string {
	opts := req.Options
	args := []string{
		"-m", s.model.Path,
		"-f", req.AudioPath,
		"-oj", "-of", outBase,
		"-tp", strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
		"-et", strconv.FormatFloat(opts.EntropyThreshold, 'f', -1, 64),
		"-lpt", strconv.FormatFloat(opts.LogProbThreshold, 'f', -1, 64),
	}
	if opts.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(opts.Threads))
	}
	if s.device == CPU {
		args = append(args, "-ng")
	}
	// whisper-cli defaults to English; detection must be requested.
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = AutoDetect
	}
	return append(args, "-l", lang)
}

func (s *bundledSession) classify(err error, errText string) error {
	switch {
	case isMissingSharedLibraryError(errText):
		return fmt.Errorf("bundled whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF", s.engine.Executable, errText)
	case isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()):
		return fmt.Errorf("bundled whisper engine crashed with an illegal CPU instruction; "+
			"your CPU may lack required instruction set extensions; "+
			"set %s to a whisper-cli binary built for your CPU", EnginePathEnv)
	case s.device == CUDA && isDeviceError(errText):
		return fmt.Errorf("%w: %s", ErrDeviceFault, errText)
	default:
		return fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}
}

func (s *bundledSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			return fmt.Errorf("release gpu lock: %w", err)
		}
	}
	return nil
}

var progressLine = regexp.MustCompile(`^\[(\d+):(\d+):(\d+)\.(\d+) --> (\d+):(\d+):(\d+)\.(\d+)\]\s*(.*)$`)

// scanProgress reports segments as whisper-cli prints them. The printed
// lines only drive progress; final segments come from the JSON output.
func scanProgress(r io.Reader, onSegment func(Segment)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		seg, ok := parseProgressLine(scanner.Text())
		if ok && onSegment != nil {
			onSegment(seg)
		}
	}
	_, _ = io.Copy(io.Discard, r)
}

func parseProgressLine(line string) (Segment, bool) {
	m := progressLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Segment{}, false
	}
	text := strings.TrimSpace(m[9])
	return Segment{
		Start: clockDuration(m[1], m[2], m[3], m[4]),
		End:   clockDuration(m[5], m[6], m[7], m[8]),
		Text:  text,
		Words: splitWords(text),
	}, true
}

func clockDuration(h, m, s, ms string) time.Duration {
	parts := [4]int{}
	for i, v := range []string{h, m, s, ms} {
		parts[i], _ = strconv.Atoi(v)
	}
	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second +
		time.Duration(parts[3])*time.Millisecond
}

type jsonOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseSegments(content []byte) ([]Segment, error) {
	var out jsonOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}
	segments := make([]Segment, 0, len(out.Transcription))
	for _, item := range out.Transcription {
		text := strings.TrimSpace(item.Text)
		segments = append(segments, Segment{
			Start: time.Duration(item.Offsets.From) * time.Millisecond,
			End:   time.Duration(item.Offsets.To) * time.Millisecond,
			Text:  text,
			Words: splitWords(text),
		})
	}
	return segments, nil
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	return containsAny(stderr,
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	)
}

func isIllegalInstructionError(stderr string) bool {
	return containsAny(stderr, "illegal instruction")
}

func isDeviceError(stderr string) bool {
	return containsAny(stderr,
		"cuda error",
		"out of memory",
		"no cuda-capable device",
		"failed to initialize cuda",
	)
}

func containsAny(text string, patterns ...string) bool {
	value := strings.ToLower(strings.TrimSpace(text))
	if value == "" {
		return false
	}
	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}

func normalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}
