package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("collect")
	tm.End(idx, "3 files")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("engine", time.Millisecond)
		}()
	}
	wg.Wait()

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("want 2 phases, got %d", len(rep.Phases))
	}
	engine := rep.Phases[1]
	if engine.Name != "engine" || engine.Count != 4 || engine.DurationMS != 4 {
		t.Fatalf("unexpected engine phase %+v", engine)
	}
	if rep.TotalMS >= 4 {
		t.Fatalf("accumulated phases must not count toward total, got %.2f", rep.TotalMS)
	}

	sum := tm.Summary()
	if !strings.Contains(sum, "// 3 files") || !strings.Contains(sum, "x4") {
		t.Fatalf("unexpected summary:\n%s", sum)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Add("y", time.Second)
	if rep := tm.Report(); len(rep.Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
}
