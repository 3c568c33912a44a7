// Command stepfs replays build step plans into a file tree and previews it.
package main

func main() {
	Execute()
}
