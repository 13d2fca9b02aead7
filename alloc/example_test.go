package alloc_test

import (
	"fmt"

	"github.com/joshuapare/earlyalloc/alloc"
)

func ExampleEarlyAllocator() {
	ea := alloc.NewEarly(0x1000)
	if err := ea.Init(0x10000, 0x4000); err != nil {
		panic(err)
	}

	l := alloc.Layout{Size: 24, Align: 8}
	a, _ := ea.Alloc(l)
	b, _ := ea.Alloc(l)
	p, _ := ea.AllocPages(1, 0x1000)
	fmt.Printf("bytes at %#x and %#x, page at %#x\n", a, b, p)

	ea.Dealloc(a, l)
	ea.Dealloc(b, l)
	fmt.Println("used bytes:", ea.UsedBytes(), "used pages:", ea.UsedPages())

	// Output:
	// bytes at 0x10000 and 0x10018, page at 0x13000
	// used bytes: 0 used pages: 1
}
