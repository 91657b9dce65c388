package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/mcptest/mcptest/pkg/logging"
)

// DockerSupervisor launches an MCP server as a freshly created container and
// talks to it over its attached stdin/stdout/stderr, demultiplexed from
// Docker's single attach stream with stdcopy.
type DockerSupervisor struct {
	logger *slog.Logger
	cli    *client.Client

	mu          sync.Mutex
	containerID string
	running     bool

	stderrMu  sync.Mutex
	stderrBuf []byte

	exitCh chan ExitResult
}

// NewDockerSupervisor creates a Supervisor backed by the Docker Engine API,
// using the client configuration from the environment (DOCKER_HOST, TLS
// certs, API version negotiation).
func NewDockerSupervisor(logger *slog.Logger) (*DockerSupervisor, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger = slog.New(logging.NewRedactingHandler(logger.Handler()))
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("mcp: creating docker client: %w", err)
	}
	return &DockerSupervisor{logger: logger, cli: cli}, nil
}

func (s *DockerSupervisor) Start(ctx context.Context, desc ServerDescriptor) (*ProcessHandle, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, fmt.Errorf("mcp: supervisor already running")
	}
	if desc.Image == "" {
		s.mu.Unlock()
		return nil, &StartupError{Reason: StartupSpawn, Err: fmt.Errorf("no image specified")}
	}
	s.mu.Unlock()

	var readyRe *regexp.Regexp
	if desc.ReadyPattern != "" {
		var err error
		readyRe, err = regexp.Compile(desc.ReadyPattern)
		if err != nil {
			return nil, &StartupError{Reason: StartupSpawn, Err: fmt.Errorf("compiling readyPattern: %w", err)}
		}
	}

	if err := s.ensureImage(ctx, desc.Image); err != nil {
		return nil, &StartupError{Reason: StartupSpawn, Err: err}
	}

	portBindings, exposed, err := natBindings(desc.Ports)
	if err != nil {
		return nil, &StartupError{Reason: StartupSpawn, Err: err}
	}

	env := make([]string, 0, len(desc.Env))
	for k, v := range desc.Env {
		env = append(env, k+"="+v)
	}
	s.logger.Debug("creating container", "image", desc.Image, "args", desc.Args, "env", desc.Env)

	created, err := s.cli.ContainerCreate(ctx, &container.Config{
		Image:        desc.Image,
		Cmd:          desc.Args,
		Env:          env,
		WorkingDir:   desc.Cwd,
		OpenStdin:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		ExposedPorts: exposed,
		Tty:          false,
	}, &container.HostConfig{
		AutoRemove:   true,
		PortBindings: portBindings,
	}, nil, nil, "")
	if err != nil {
		return nil, &StartupError{Reason: StartupSpawn, Err: fmt.Errorf("creating container: %w", err)}
	}

	if err := s.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, &StartupError{Reason: StartupSpawn, Err: fmt.Errorf("starting container: %w", err)}
	}

	attachResp, err := s.cli.ContainerAttach(ctx, created.ID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		_ = s.cli.ContainerRemove(ctx, created.ID, container.RemoveOptions{Force: true})
		return nil, &StartupError{Reason: StartupSpawn, Err: fmt.Errorf("attaching: %w", err)}
	}

	s.mu.Lock()
	s.containerID = created.ID
	s.running = true
	s.exitCh = make(chan ExitResult, 1)
	exitCh := s.exitCh
	s.mu.Unlock()

	stdoutReader, stdoutWriter := io.Pipe()
	stderrReader, stderrWriter := io.Pipe()
	go func() {
		defer stdoutWriter.Close()
		defer stderrWriter.Close()
		_, _ = stdcopy.StdCopy(stdoutWriter, stderrWriter, attachResp.Reader)
	}()

	readyCh := make(chan struct{})
	var readyOnce sync.Once
	go s.readStderr(stderrReader, readyRe, readyCh, &readyOnce)
	go s.watch(ctx, created.ID, readyCh, &readyOnce)

	handle := &ProcessHandle{
		Stdin:  attachResp.Conn,
		Stdout: stdoutReader,
		Exit:   exitCh,
	}

	if readyRe == nil {
		return handle, nil
	}

	timer := time.NewTimer(desc.StartupTimeout())
	defer timer.Stop()
	select {
	case <-readyCh:
		return handle, nil
	case <-timer.C:
		s.Stop()
		return nil, &StartupError{Reason: StartupTimeout, StderrTail: s.stderrTail()}
	case <-ctx.Done():
		s.Stop()
		return nil, &StartupError{Reason: StartupTimeout, Err: ctx.Err(), StderrTail: s.stderrTail()}
	case res := <-waitForExit(exitCh):
		return nil, &StartupError{
			Reason:     StartupEarlyExit,
			ExitCode:   res.Code,
			StderrTail: s.stderrTail(),
			Err:        res.Err,
		}
	}
}

// ensureImage pulls desc.Image if it isn't present locally. The manifest
// media type is logged at debug level purely as an operator aid when an
// OCI (rather than Docker v2) image is in play.
func (s *DockerSupervisor) ensureImage(ctx context.Context, ref string) error {
	if _, _, err := s.cli.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	}

	rc, err := s.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", ref, err)
	}
	defer rc.Close()
	_, _ = io.Copy(io.Discard, rc)

	_, raw, err := s.cli.ImageInspectWithRaw(ctx, ref)
	if err == nil {
		s.logger.Debug("pulled image", "ref", ref, "expectedManifestType", ocispec.MediaTypeImageManifest, "bytes", len(raw))
	}
	return nil
}

func natBindings(specs []string) (nat.PortMap, nat.PortSet, error) {
	if len(specs) == 0 {
		return nil, nil, nil
	}
	_, bindings, err := nat.ParsePortSpecs(specs)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing ports: %w", err)
	}
	exposed := make(nat.PortSet, len(bindings))
	for port := range bindings {
		exposed[port] = struct{}{}
	}
	return bindings, exposed, nil
}

func (s *DockerSupervisor) readStderr(r io.Reader, readyRe *regexp.Regexp, readyCh chan struct{}, readyOnce *sync.Once) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		s.logger.Warn("server stderr", "output", line)

		s.stderrMu.Lock()
		s.stderrBuf = append(s.stderrBuf, []byte(line)...)
		s.stderrBuf = append(s.stderrBuf, '\n')
		s.stderrMu.Unlock()

		if readyRe != nil && readyRe.MatchString(line) {
			readyOnce.Do(func() { close(readyCh) })
		}
	}
}

func (s *DockerSupervisor) watch(ctx context.Context, containerID string, readyCh chan struct{}, readyOnce *sync.Once) {
	statusCh, errCh := s.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	res := ExitResult{}
	select {
	case status := <-statusCh:
		res.Code = int(status.StatusCode)
		if status.Error != nil {
			res.Err = fmt.Errorf("%s", status.Error.Message)
		}
	case err := <-errCh:
		res.Err = err
	}

	s.mu.Lock()
	s.running = false
	exitCh := s.exitCh
	s.mu.Unlock()

	exitCh <- res
}

// Stop asks Docker to stop the container, allowing ProcessKillGrace
// rounded down to whole seconds (at least one) before Docker kills it.
// It does not close the attached stdin stream.
func (s *DockerSupervisor) Stop() error {
	s.mu.Lock()
	id := s.containerID
	s.mu.Unlock()

	if id == "" {
		return nil
	}

	timeout := int(ProcessKillGrace.Seconds())
	if timeout < 1 {
		timeout = 1
	}
	return s.cli.ContainerStop(context.Background(), id, container.StopOptions{Timeout: &timeout})
}

func (s *DockerSupervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *DockerSupervisor) StderrSince(cursor int) ([]byte, int) {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()
	if cursor < 0 || cursor > len(s.stderrBuf) {
		cursor = 0
	}
	data := make([]byte, len(s.stderrBuf)-cursor)
	copy(data, s.stderrBuf[cursor:])
	return data, len(s.stderrBuf)
}

func (s *DockerSupervisor) StderrEnd() int {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()
	return len(s.stderrBuf)
}

func (s *DockerSupervisor) stderrTail() string {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()
	const tailLen = 4 * 1024
	if len(s.stderrBuf) <= tailLen {
		return string(s.stderrBuf)
	}
	return string(s.stderrBuf[len(s.stderrBuf)-tailLen:])
}
