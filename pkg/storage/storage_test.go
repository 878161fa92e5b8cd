package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// mockS3 is an in-memory bucket. List responses are paged two keys at a
// time so the paginator is exercised.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	pages   int
	listErr error
}

func newMockS3() *mockS3 { return &mockS3{objects: make(map[string][]byte)} }

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &apiError{"NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, &apiError{"NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages++
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+2, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func writeFile(t *testing.T, fs FileStore, path, data string) {
	t.Helper()
	w, err := fs.Write(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, fs FileStore, path string) string {
	t.Helper()
	r, err := fs.Read(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// stores returns one of each backend, empty.
func stores(t *testing.T) map[string]FileStore {
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]FileStore{
		"local": local,
		"s3":    NewS3(newMockS3(), "bucket", "corpora/bach"),
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	for name, fs := range stores(t) {
		t.Run(name, func(t *testing.T) {
			writeFile(t, fs, "chorales/bwv269.yaml", "name: bwv269")
			writeFile(t, fs, "chorales/bwv1.mid", "MThd")
			writeFile(t, fs, "chorales/extra/bwv7.yaml", "x")
			writeFile(t, fs, "README", "readme")
			writeFile(t, fs, "chorales2/other.yaml", "y")

			if got := readFile(t, fs, "chorales/bwv269.yaml"); got != "name: bwv269" {
				t.Errorf("Read = %q", got)
			}
			if _, err := fs.Read(ctx, "missing.yaml"); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("Read missing = %v", err)
			}

			got, err := fs.List(ctx, "chorales")
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"chorales/bwv1.mid", "chorales/bwv269.yaml", "chorales/extra/bwv7.yaml"}
			if !slices.Equal(got, want) {
				t.Errorf("List = %v, want %v", got, want)
			}
			all, err := fs.List(ctx, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 5 {
				t.Errorf("List(root) = %v", all)
			}

			if ok, _ := fs.Exists(ctx, "README"); !ok {
				t.Error("README should exist")
			}
			if err := fs.Delete(ctx, "README"); err != nil {
				t.Fatal(err)
			}
			if err := fs.Delete(ctx, "README"); err != nil {
				t.Errorf("second Delete = %v", err)
			}
			if ok, _ := fs.Exists(ctx, "README"); ok {
				t.Error("README should be gone")
			}
		})
	}
}

func TestLocalListMissingDir(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	paths, err := l.List(context.Background(), "nope")
	if err != nil || len(paths) != 0 {
		t.Errorf("List(missing) = %v, %v", paths, err)
	}
}

func TestS3ListPages(t *testing.T) {
	mock := newMockS3()
	s := NewS3(mock, "bucket", "")
	for _, k := range []string{"a/1", "a/2", "a/3", "a/4", "a/5", "b/1"} {
		mock.objects[k] = nil
	}
	got, err := s.List(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 || mock.pages != 3 {
		t.Errorf("List = %v over %d pages", got, mock.pages)
	}

	mock.listErr = errors.New("throttled")
	if _, err := s.List(context.Background(), "a"); err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Errorf("List error = %v", err)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{"s3://bucket/corpora/bach/", Location{Bucket: "bucket", Path: "corpora/bach"}, false},
		{"s3://bucket", Location{Bucket: "bucket"}, false},
		{"./chorales", Location{Path: "./chorales"}, false},
		{"s3:///x", Location{}, true},
		{"", Location{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLocation(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, %v", tt.in, got, err)
		}
	}
	if s := (Location{Bucket: "b", Path: "p"}).String(); s != "s3://b/p" {
		t.Errorf("String = %q", s)
	}
}
