// Command wiregen compiles .proto schemas into Go types that encode to the
// protobuf wire format.
package main

func main() {
	Execute()
}
