// Command protoc-gen-wiregen is the protoc plugin front end of wiregen:
//
//	protoc --wiregen_out=. --wiregen_opt=float_byte_order=big-endian shop.proto
package main

import (
	"fmt"
	"os"

	"github.com/wham/wiregen/internal/plugin"
)

func main() {
	if err := plugin.Run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "protoc-gen-wiregen: %v\n", err)
		os.Exit(1)
	}
}
