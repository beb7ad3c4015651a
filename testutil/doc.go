// Package testutil provides random string corpora for tests and benchmarks.
//
//	rng := testutil.NewRNG(seed)
//	words := rng.Strings(1000, 1, 16)             // distinct-ish ASCII words
//	names := rng.StringsWithDuplicates(1000, 50)  // 50 distinct values, repeated
//	text := rng.UnicodeString(32)                 // valid multi-byte UTF-8
package testutil
