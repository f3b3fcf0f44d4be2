package wrapper_test

import (
	"fmt"
	"log"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/wrapper"
)

// ExampleTable_Register demonstrates registering the same variant under an
// alternative scheme name.
func ExampleTable_Register() {
	table := wrapper.New(nil)
	if err := table.Register("mystring", wrapper.VariantPrivate); err != nil {
		log.Fatal(err)
	}

	info, err := table.Stat("mystring://foobar")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(table.Schemes(), info.Size())
	// Output: [mystring] 6
}
