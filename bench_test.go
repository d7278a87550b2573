package jarlink

import (
	"context"
	"path/filepath"
	"testing"
)

func BenchmarkAnalyze_Serial(b *testing.B) {
	in := wideInput(b, 8, 200)
	e := New(WithParallel(false))
	for b.Loop() {
		if _, err := e.Analyze(context.Background(), in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyze_Parallel(b *testing.B) {
	in := wideInput(b, 8, 200)
	e := New()
	for b.Loop() {
		if _, err := e.Analyze(context.Background(), in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyze_WithStore(b *testing.B) {
	s, err := OpenStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	in := wideInput(b, 4, 100)
	e := New(WithStore(s))
	for b.Loop() {
		if _, err := e.Analyze(context.Background(), in); err != nil {
			b.Fatal(err)
		}
	}
}
