package resolve

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		lookup LookupFunc
		want   string
	}{
		{
			name: "trims trailing dot",
			lookup: func(ctx context.Context, addr string) ([]string, error) {
				return []string{"printer.lan."}, nil
			},
			want: "printer.lan",
		},
		{
			name: "first name wins",
			lookup: func(ctx context.Context, addr string) ([]string, error) {
				return []string{"a.lan.", "b.lan."}, nil
			},
			want: "a.lan",
		},
		{
			name: "failure degrades to empty",
			lookup: func(ctx context.Context, addr string) ([]string, error) {
				return nil, errors.New("nxdomain")
			},
			want: "",
		},
		{
			name: "no names degrades to empty",
			lookup: func(ctx context.Context, addr string) ([]string, error) {
				return nil, nil
			},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(WithLookup(tt.lookup))
			if got := r.Resolve(context.Background(), "192.168.1.5"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveCachesResults(t *testing.T) {
	var calls int
	r := NewResolver(WithLookup(func(ctx context.Context, addr string) ([]string, error) {
		calls++
		return []string{"host.lan."}, nil
	}))

	for i := 0; i < 3; i++ {
		if got := r.Resolve(context.Background(), "192.168.1.5"); got != "host.lan" {
			t.Fatalf("lookup %d: expected host.lan, got %q", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("expected one upstream lookup, got %d", calls)
	}
}

func TestResolveCachesNegativeResults(t *testing.T) {
	var calls int
	r := NewResolver(WithLookup(func(ctx context.Context, addr string) ([]string, error) {
		calls++
		return nil, errors.New("nxdomain")
	}))

	for i := 0; i < 3; i++ {
		if got := r.Resolve(context.Background(), "192.168.1.9"); got != "" {
			t.Fatalf("lookup %d: expected empty hostname, got %q", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("expected the failure cached after one lookup, got %d", calls)
	}
}

func TestResolveTimeout(t *testing.T) {
	r := NewResolver(
		WithTimeout(20*time.Millisecond),
		WithLookup(func(ctx context.Context, addr string) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	)

	start := time.Now()
	if got := r.Resolve(context.Background(), "192.168.1.5"); got != "" {
		t.Errorf("expected empty hostname on timeout, got %q", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("lookup was not bounded by the timeout, took %s", elapsed)
	}
}
