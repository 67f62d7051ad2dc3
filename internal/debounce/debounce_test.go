package debounce

import (
	"fmt"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func TestSingleNavigationFiresAfterSettle(t *testing.T) {
	c := New(DefaultConfig())

	if d := c.OnNavigate("wget", at(0)); d != Defer {
		t.Fatalf("OnNavigate() = %s, want defer", d)
	}

	if _, ok := c.Poll(at(299)); ok {
		t.Error("Poll() fired before the settle delay")
	}

	key, ok := c.Poll(at(300))
	if !ok || key != "wget" {
		t.Fatalf("Poll() = %q, %v; want wget", key, ok)
	}

	if _, ok := c.Poll(at(1000)); ok {
		t.Error("Poll() fired twice for one navigation")
	}
}

func TestRapidScrollIssuesOneFetchForFinalSelection(t *testing.T) {
	tests := []int{3, 10, 50}

	for _, n := range tests {
		t.Run(fmt.Sprintf("%d events", n), func(t *testing.T) {
			c := New(DefaultConfig())
			fetches := 0
			var target string

			for i := 0; i < n; i++ {
				now := at(i * 40)
				if c.OnNavigate(fmt.Sprintf("pkg%d", i), now) == Fire {
					fetches++
				}
				if key, ok := c.Poll(now); ok {
					fetches++
					target = key
				}
			}
			if !c.Rapid() {
				t.Error("burst should be reported as rapid")
			}

			for ms := (n-1)*40 + 1; ms < (n-1)*40+2000; ms += 80 {
				if key, ok := c.Poll(at(ms)); ok {
					fetches++
					target = key
				}
			}

			if fetches != 1 {
				t.Fatalf("issued %d fetches, want 1", fetches)
			}
			if want := fmt.Sprintf("pkg%d", n-1); target != want {
				t.Errorf("fetched %s, want final selection %s", target, want)
			}
		})
	}
}

func TestSuppressAfterThreshold(t *testing.T) {
	c := New(Config{Settle: 300 * time.Millisecond, RapidThreshold: 2})

	want := []Decision{Defer, Defer, Suppress, Suppress}
	for i, w := range want {
		if got := c.OnNavigate("k", at(i*50)); got != w {
			t.Errorf("event %d = %s, want %s", i, got, w)
		}
	}
}

func TestBurstResetsAfterQuiet(t *testing.T) {
	c := New(Config{Settle: 300 * time.Millisecond, RapidThreshold: 2})

	c.OnNavigate("a", at(0))
	c.OnNavigate("b", at(50))
	c.OnNavigate("c", at(100))
	if !c.Rapid() {
		t.Fatal("expected rapid after three quick events")
	}

	if d := c.OnNavigate("d", at(1000)); d != Defer {
		t.Errorf("OnNavigate after quiet = %s, want defer", d)
	}
	if c.Rapid() {
		t.Error("rapid flag should clear after a quiet period")
	}
}

func TestSupersededSelectionIsDropped(t *testing.T) {
	c := New(DefaultConfig())

	c.OnNavigate("wget", at(0))
	c.OnNavigate("jq", at(200))

	if _, ok := c.Poll(at(350)); ok {
		t.Error("Poll() fired for a selection that changed inside the window")
	}
	key, ok := c.Poll(at(500))
	if !ok || key != "jq" {
		t.Errorf("Poll() = %q, %v; want jq", key, ok)
	}
}

func TestZeroSettleFiresImmediately(t *testing.T) {
	c := New(Config{RapidThreshold: 5})

	if d := c.OnNavigate("wget", at(0)); d != Fire {
		t.Errorf("OnNavigate() = %s, want fire", d)
	}
	if _, ok := c.Poll(at(10)); ok {
		t.Error("an immediate fire should not also be polled")
	}
}

func TestCancel(t *testing.T) {
	c := New(DefaultConfig())

	c.OnNavigate("wget", at(0))
	c.Cancel()

	if c.Pending() {
		t.Error("Pending() after Cancel")
	}
	if _, ok := c.Poll(at(1000)); ok {
		t.Error("cancelled fetch was issued")
	}
}

func TestInputResetsTimer(t *testing.T) {
	c := New(DefaultConfig())

	c.OnInput("w", at(0))
	c.OnInput("wg", at(200))
	c.OnInput("wge", at(400))

	if _, ok := c.PollInput(at(650)); ok {
		t.Error("PollInput() fired before 300ms of quiet")
	}

	query, ok := c.PollInput(at(700))
	if !ok || query != "wge" {
		t.Fatalf("PollInput() = %q, %v; want wge", query, ok)
	}
	if _, ok := c.PollInput(at(2000)); ok {
		t.Error("PollInput() fired twice")
	}
}

func TestCancelInput(t *testing.T) {
	c := New(DefaultConfig())

	c.OnInput("wget", at(0))
	c.CancelInput()

	if _, ok := c.PollInput(at(1000)); ok {
		t.Error("cancelled search was issued")
	}
}
