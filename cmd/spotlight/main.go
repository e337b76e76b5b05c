// Command spotlight runs the daily selection from the command line, consumes
// decision events and mints credentials for internal callers.
package main

func main() {
	Execute()
}
