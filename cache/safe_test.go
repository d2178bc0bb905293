package cache

import (
	"sync"
	"testing"

	"github.com/spsoft/spdict/dict"
)

func Test_Safe_ConcurrentPutGet_NoRace(t *testing.T) {
	s := NewSafe(New[string, int](dict.RBT, LRU, 1000, Handler[string, int]{
		Compare: func(a, b string) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
		Destroy: func(int) {},
		OnHit:   func(item int, out *int) { *out = item },
	}))

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			key := string(rune('a' + g))
			for i := 0; i < 200; i++ {
				s.Put(key, i, 0)
				var out int
				s.Get(key, &out)
			}
		}(g)
	}
	wg.Wait()
}

func Test_RWSafe_ConcurrentPutGet_NoRace(t *testing.T) {
	s := NewRWSafe(New[string, int](dict.RBT, LRU, 1000, Handler[string, int]{
		Compare: func(a, b string) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
		Destroy: func(int) {},
		OnHit:   func(item int, out *int) { *out = item },
	}))

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			key := string(rune('a' + g))
			for i := 0; i < 200; i++ {
				s.Put(key, i, 0)
				var out int
				s.Get(key, &out)
			}
		}(g)
	}
	wg.Wait()

	stats := s.Statistics()
	if stats.Size == 0 {
		t.Fatal("Statistics().Size = 0, want > 0")
	}
}
