package exiftool_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chronofix/internal/services"
	"chronofix/internal/services/exiftool"
)

type stubExecutor struct {
	stdout string
	stderr string
	err    error

	binary string
	args   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string) (string, string, error) {
	s.binary = binary
	s.args = args
	return s.stdout, s.stderr, s.err
}

func TestProbeParsesDateFields(t *testing.T) {
	exec := &stubExecutor{stdout: `[{"SourceFile":"a.jpg","DateTimeOriginal":"2016:08:15 12:00:00","DateTime":"2019:01:01 00:00:00"}]`}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dt, ok, err := client.EmbeddedDate(context.Background(), "a.jpg")
	if err != nil || !ok {
		t.Fatalf("EmbeddedDate: ok=%v err=%v", ok, err)
	}
	want := time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local)
	if !dt.Equal(want) {
		t.Fatalf("date = %v, want %v (DateTimeOriginal must win)", dt, want)
	}
	if exec.args[0] != "-j" {
		t.Fatalf("args = %v", exec.args)
	}
}

func TestEmbeddedDateAbsorbsToolFailure(t *testing.T) {
	exec := &stubExecutor{err: errors.New("exit status 1"), stderr: "Error: Unknown file type"}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := client.EmbeddedDate(context.Background(), "broken.jpg")
	if err != nil {
		t.Fatalf("tool failure should read as no signal, got %v", err)
	}
	if ok {
		t.Fatal("no date should be reported")
	}
}

type sequenceExecutor struct {
	calls   int
	results []stubExecutor
	args    [][]string
}

func (s *sequenceExecutor) Run(ctx context.Context, binary string, args []string) (string, string, error) {
	s.args = append(s.args, args)
	result := s.results[len(s.results)-1]
	if s.calls < len(s.results) {
		result = s.results[s.calls]
	}
	s.calls++
	return result.stdout, result.stderr, result.err
}

func TestEmbeddedDateFallsBackToSingleField(t *testing.T) {
	exec := &sequenceExecutor{results: []stubExecutor{
		{err: errors.New("exit status 1"), stderr: "Error: Bad IFD"},
		{stdout: `[{"DateTimeOriginal":"2016:08:15 12:00:00"}]`},
	}}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dt, ok, err := client.EmbeddedDate(context.Background(), "odd.jpg")
	if err != nil || !ok {
		t.Fatalf("EmbeddedDate: ok=%v err=%v", ok, err)
	}
	want := time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local)
	if !dt.Equal(want) {
		t.Fatalf("date = %v, want %v", dt, want)
	}
	if exec.calls != 2 {
		t.Fatalf("calls = %d, want full probe then fallback", exec.calls)
	}
	joined := strings.Join(exec.args[1], " ")
	if strings.Contains(joined, "DateTimeDigitized") {
		t.Fatalf("fallback probe should request only the capture tag: %q", joined)
	}
}

func TestEmbeddedDateSurfacesTimeout(t *testing.T) {
	exec := &stubExecutor{err: services.Wrap(services.ErrTimeout, "exiftool", "run", "deadline", context.DeadlineExceeded)}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = client.EmbeddedDate(context.Background(), "hung.jpg")
	if !services.IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestWriteSurfacesCancellation(t *testing.T) {
	exec := &stubExecutor{err: context.Canceled}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dt := time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local)
	err = client.WriteFilesystemDate(context.Background(), "/photos/a.jpg", dt)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if services.IsTimeout(err) {
		t.Fatalf("err = %v, cancellation must not read as a timeout", err)
	}
}

func TestWriteEmbeddedDateArgs(t *testing.T) {
	exec := &stubExecutor{}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dt := time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local)
	if err := client.WriteEmbeddedDate(context.Background(), "/photos/a.jpg", dt); err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{
		"-overwrite_original",
		"-DateTimeOriginal=2016:08:15 12:00:00",
		"-DateTimeDigitized=2016:08:15 12:00:00",
		"-DateTime=2016:08:15 12:00:00",
		"/photos/a.jpg",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

func TestWriteFilesystemDateArgs(t *testing.T) {
	exec := &stubExecutor{}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	dt := time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local)
	if err := client.WriteFilesystemDate(context.Background(), "/photos/a.jpg", dt); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(exec.args, " ")
	if !strings.Contains(joined, "-FileModifyDate=2016:08:15 12:00:00") ||
		!strings.Contains(joined, "-FileCreateDate=2016:08:15 12:00:00") {
		t.Fatalf("args = %q", joined)
	}
}

func TestVideoDatePriority(t *testing.T) {
	exec := &stubExecutor{stdout: `[{"MediaCreateDate":"2017:02:03 04:05:06","CreateDate":"2016:08:15 12:00:00"}]`}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	meta, err := client.ProbeVideo(context.Background(), "a.mov")
	if err != nil {
		t.Fatal(err)
	}
	dt, ok := meta.Date([]string{"CreateDate", "DateTimeOriginal", "MediaCreateDate", "CreationDate", "TrackCreateDate"})
	if !ok {
		t.Fatal("no date found")
	}
	want := time.Date(2016, 8, 15, 12, 0, 0, 0, time.Local)
	if !dt.Equal(want) {
		t.Fatalf("date = %v, want CreateDate to win", dt)
	}
}

func TestVersion(t *testing.T) {
	exec := &stubExecutor{stdout: "12.76\n"}
	client, err := exiftool.New("exiftool", 10, 30, exiftool.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	version, err := client.Version(context.Background())
	if err != nil || version != "12.76" {
		t.Fatalf("Version = %q, %v", version, err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := exiftool.New("  ", 10, 30); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
