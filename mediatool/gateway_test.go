package mediatool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"kidreel/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFakeGateway_ProbeScriptedResult(t *testing.T) {
	fake := &FakeGateway{
		ProbeResults: map[string][]byte{
			"/tmp/narration.mp3": FakeProbeJSON(184.5),
		},
	}

	output, err := fake.Probe(context.Background(), "/tmp/narration.mp3")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !strings.Contains(string(output), "184.5") {
		t.Errorf("Expected scripted duration in output, got: %s", output)
	}
}

func TestFakeGateway_ProbeUnknownPath(t *testing.T) {
	fake := &FakeGateway{}

	_, err := fake.Probe(context.Background(), "/missing.mp4")
	if err == nil {
		t.Fatal("Expected error for unknown path")
	}

	execErr, ok := AsExecError(err)
	if !ok {
		t.Fatalf("Expected ExecError, got %T", err)
	}
	if execErr.Binary != "ffprobe" {
		t.Errorf("Expected ffprobe error, got %s", execErr.Binary)
	}
}

func TestFakeGateway_EncodeScriptConsumedInOrder(t *testing.T) {
	first := errors.New("first failure")
	fake := &FakeGateway{
		EncodeScript: []error{first, nil},
	}

	err := fake.Encode(context.Background(), EncodeRequest{Args: []string{"-y", "out.mp4"}})
	if !errors.Is(err, first) {
		t.Errorf("Expected first scripted error, got %v", err)
	}

	err = fake.Encode(context.Background(), EncodeRequest{Args: []string{"-y", "out.mp4"}})
	if err != nil {
		t.Errorf("Expected second call to succeed, got %v", err)
	}

	// Past the end of the script every call succeeds.
	err = fake.Encode(context.Background(), EncodeRequest{Args: []string{"-y", "out.mp4"}})
	if err != nil {
		t.Errorf("Expected call past script end to succeed, got %v", err)
	}

	if fake.EncodeCalls() != 3 {
		t.Errorf("Expected 3 recorded encodes, got %d", fake.EncodeCalls())
	}
}

func TestFakeGateway_RecordsInvocations(t *testing.T) {
	fake := &FakeGateway{
		ProbeResults: map[string][]byte{"/a.mp4": FakeProbeJSON(10)},
	}

	_, _ = fake.Probe(context.Background(), "/a.mp4")
	_ = fake.Encode(context.Background(), EncodeRequest{Args: []string{"-i", "/a.mp4", "out.mp4"}})

	invocations := fake.Invocations()
	if len(invocations) != 2 {
		t.Fatalf("Expected 2 invocations, got %d", len(invocations))
	}
	if invocations[0].Binary != "ffprobe" || invocations[1].Binary != "ffmpeg" {
		t.Errorf("Unexpected invocation order: %v", invocations)
	}
	if !strings.Contains(invocations[1].String(), "ffmpeg -i /a.mp4 out.mp4") {
		t.Errorf("Unexpected invocation string: %s", invocations[1].String())
	}
}

func TestFakeGateway_OnEncodeHook(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.mp4")

	fake := &FakeGateway{OnEncode: TouchLastArg}

	err := fake.Encode(context.Background(), EncodeRequest{Args: []string{"-y", output}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("Expected output file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty output file")
	}
}

func TestFakeGateway_EmitsProgress(t *testing.T) {
	fake := &FakeGateway{}

	var got *models.EncodeProgress
	err := fake.Encode(context.Background(), EncodeRequest{
		Args:          []string{"-y", "out.mp4"},
		TotalDuration: 120,
		OnProgress:    func(p *models.EncodeProgress) { got = p },
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if got == nil {
		t.Fatal("Expected progress callback to fire")
	}
	if got.Percent != 100 {
		t.Errorf("Expected 100%% progress, got %.1f", got.Percent)
	}
}

func TestFakeGateway_HonorsCancelledContext(t *testing.T) {
	fake := &FakeGateway{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := fake.Encode(ctx, EncodeRequest{Args: []string{"out.mp4"}}); err == nil {
		t.Error("Expected error from cancelled context")
	}
	if _, err := fake.Probe(ctx, "/a.mp4"); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestExecError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExecError
		contains string
	}{
		{
			name:     "exit code with stderr",
			err:      &ExecError{Binary: "ffmpeg", ExitCode: 1, Stderr: "line one\nConversion failed!"},
			contains: "Conversion failed!",
		},
		{
			name:     "timeout",
			err:      &ExecError{Binary: "ffmpeg", Timeout: true},
			contains: "timed out",
		},
		{
			name:     "no stderr",
			err:      &ExecError{Binary: "ffprobe", ExitCode: 2},
			contains: "exited with code 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Expected %q in error, got: %s", tt.contains, tt.err.Error())
			}
		})
	}
}

func TestAsExecError_ThroughWrapping(t *testing.T) {
	inner := &ExecError{Binary: "ffmpeg", ExitCode: 1}
	wrapped := fmt.Errorf("encode stage: %w", inner)

	execErr, ok := AsExecError(wrapped)
	if !ok {
		t.Fatal("Expected to unwrap ExecError")
	}
	if execErr.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", execErr.ExitCode)
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(&ExecError{Binary: "ffmpeg", Timeout: true}) {
		t.Error("Expected timeout to be detected")
	}
	if IsTimeout(&ExecError{Binary: "ffmpeg", ExitCode: 1}) {
		t.Error("Exit failure should not count as timeout")
	}
	if IsTimeout(errors.New("plain error")) {
		t.Error("Plain error should not count as timeout")
	}
}

func TestDuration_WithFake(t *testing.T) {
	fake := &FakeGateway{
		ProbeResults: map[string][]byte{
			"/tmp/audio.mp3": FakeProbeJSON(92.25),
		},
	}

	duration, err := Duration(context.Background(), fake, "/tmp/audio.mp3")
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if duration != 92.25 {
		t.Errorf("Expected 92.25, got %f", duration)
	}
}

func TestDurationOrDefault_FallsBack(t *testing.T) {
	fake := &FakeGateway{}

	duration, warning := DurationOrDefault(context.Background(), fake, "/gone.mp4")
	if duration != FallbackDuration {
		t.Errorf("Expected fallback %f, got %f", FallbackDuration, duration)
	}
	if warning == nil {
		t.Fatal("Expected warning on fallback")
	}
	if warning.Component != "probe" {
		t.Errorf("Expected probe warning, got %s", warning.Component)
	}
}

func TestDurationOrDefault_NoWarningOnSuccess(t *testing.T) {
	fake := &FakeGateway{
		ProbeResults: map[string][]byte{"/ok.mp4": FakeProbeJSON(12)},
	}

	duration, warning := DurationOrDefault(context.Background(), fake, "/ok.mp4")
	if duration != 12 {
		t.Errorf("Expected 12, got %f", duration)
	}
	if warning != nil {
		t.Errorf("Expected no warning, got %v", warning)
	}
}

func TestNewExecGateway_MissingBinary(t *testing.T) {
	_, err := NewExecGateway("/nonexistent/ffmpeg-binary", "/nonexistent/ffprobe-binary", 0, testLogger())
	if err == nil {
		t.Fatal("Expected error for missing binary")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}

func TestScanMediaLines(t *testing.T) {
	input := "frame=1\rframe=2\nerror line\r\nlast"

	var lines []string
	advance := 0
	data := []byte(input)
	for len(data) > 0 {
		n, token, err := scanMediaLines(data, true)
		if err != nil {
			t.Fatalf("scanMediaLines error: %v", err)
		}
		if n == 0 {
			break
		}
		lines = append(lines, string(token))
		advance += n
		data = data[n:]
	}

	want := []string{"frame=1", "frame=2", "error line", "", "last"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Token %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
