// Package testutil holds small helpers shared by package tests, mirroring
// the shape of the teacher's test/utils package but generalized for the
// generic store.
package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// Salt is a random per-run value in [1, 1000]. GenerateUniqueInt64Pairs
// does not use it; its keys and values come straight from math/rand.
var Salt int64 = rand.Int63n(1000) + 1

// TempBasePath returns a path inside a fresh per-test directory suitable
// for passing to store.Open as a base path; the directory is removed when
// the test completes.
func TempBasePath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dinokv-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "store")
}

// GenerateUniqueInt64Pairs returns n (key, value) pairs with distinct
// keys, plus the answer-key map used to verify reads afterward.
func GenerateUniqueInt64Pairs(n int) ([][2]int64, map[int64]int64) {
	pairs := make([][2]int64, n)
	answer := make(map[int64]int64, n)
	for i := 0; i < n; i++ {
		var key int64
		for {
			key = rand.Int63()
			if _, taken := answer[key]; !taken {
				break
			}
		}
		val := rand.Int63()
		answer[key] = val
		pairs[i] = [2]int64{key, val}
	}
	return pairs, answer
}
