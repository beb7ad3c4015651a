package strtab_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/strtab"
	"github.com/hupe1980/strtab/blobstore"
)

func ExampleBuilder() {
	b := strtab.NewBuilder(strtab.WithDedup())
	for i, s := range []string{"cat", "dog", "cat", "bird"} {
		id, err := b.Insert(s)
		if err != nil {
			log.Fatal(err)
		}
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(id)
	}
	fmt.Println()

	t, err := b.Finalize()
	if err != nil {
		log.Fatal(err)
	}
	defer t.Close()

	s, _ := t.Get(2)
	fmt.Println(t.Len(), s)
	// Output:
	// 0 1 0 2
	// 3 bird
}

func ExampleLoad() {
	t, err := strtab.FromStrings([]string{"alpha", "beta"})
	if err != nil {
		log.Fatal(err)
	}

	data, err := t.MarshalBinary()
	if err != nil {
		log.Fatal(err)
	}

	view, err := strtab.Load(data)
	if err != nil {
		log.Fatal(err)
	}
	for id, s := range view.All() {
		fmt.Println(id, s)
	}
	// Output:
	// 0 alpha
	// 1 beta
}

func ExampleTable_Stats() {
	t, err := strtab.FromStrings([]string{"a", "bb", "ccc"})
	if err != nil {
		log.Fatal(err)
	}

	st := t.Stats()
	fmt.Println(st.OffsetWidth, st.LengthWidth, st.TotalBytes())
	// Output: u8 u8 19
}

func ExamplePublish() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	for _, words := range [][]string{{"v1"}, {"v2"}} {
		t, err := strtab.FromStrings(words)
		if err != nil {
			log.Fatal(err)
		}
		name, err := strtab.Publish(ctx, store, t, strtab.WithCompression(strtab.CompressionLZ4))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(name)
	}

	cur, err := strtab.OpenCurrent(ctx, store)
	if err != nil {
		log.Fatal(err)
	}
	defer cur.Close()

	s, _ := cur.Get(0)
	fmt.Println(s)
	// Output:
	// tables/000001.strtab
	// tables/000002.strtab
	// v2
}
