// Command framectl boots the frame allocator over a simulated physical memory
// arena and runs diagnostics against it.
package main

func main() {
	execute()
}
