package cache

import (
	"fmt"
	"math/rand"
	"testing"
)

// BenchmarkCacheGet benchmarks Get on a pre-populated simple cache.
func BenchmarkCacheGet(b *testing.B) {
	cache, err := NewSimple[string]()
	if err != nil {
		b.Fatal(err)
	}
	defer cache.Close()

	for i := 0; i < 1000; i++ {
		_, _ = cache.Set(fmt.Sprintf("key%d", i), fmt.Sprintf("value%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key%d", rand.Intn(1000))
			cache.Get(key)
		}
	})
}

// BenchmarkCacheSet benchmarks Set on an empty simple cache.
func BenchmarkCacheSet(b *testing.B) {
	cache, err := NewSimple[string]()
	if err != nil {
		b.Fatal(err)
	}
	defer cache.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key%d", i)
			value := fmt.Sprintf("value%d", i)
			_, _ = cache.Set(key, value)
			i++
		}
	})
}

// BenchmarkCacheMixed benchmarks a Get/Set/Delete mix against a simple cache.
func BenchmarkCacheMixed(b *testing.B) {
	cache, err := NewSimple[string]()
	if err != nil {
		b.Fatal(err)
	}
	defer cache.Close()

	for i := 0; i < 500; i++ {
		_, _ = cache.Set(fmt.Sprintf("key%d", i), fmt.Sprintf("value%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 500
		for pb.Next() {
			switch rand.Intn(5) {
			case 0, 1: // 40% reads
				key := fmt.Sprintf("key%d", rand.Intn(1000))
				cache.Get(key)
			case 2, 3: // 40% writes
				key := fmt.Sprintf("key%d", i)
				value := fmt.Sprintf("value%d", i)
				_, _ = cache.Set(key, value)
				i++
			case 4: // 20% deletes
				key := fmt.Sprintf("key%d", rand.Intn(1000))
				_, _ = cache.Delete(key)
			}
		}
	})
}

// BenchmarkConcurrentAccess benchmarks concurrent Get/Set against a
// shared simple cache, the access pattern registry.Context's scheme
// cache sees under parallel channel construction.
func BenchmarkConcurrentAccess(b *testing.B) {
	cache, err := NewSimple[string]()
	if err != nil {
		b.Fatal(err)
	}
	defer cache.Close()

	for i := 0; i < 1000; i++ {
		_, _ = cache.Set(fmt.Sprintf("key%d", i), fmt.Sprintf("value%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.Get(fmt.Sprintf("key%d", rand.Intn(1000)))
			_, _ = cache.Set(fmt.Sprintf("key%d", rand.Intn(2000)), "new_value")
		}
	})
}
