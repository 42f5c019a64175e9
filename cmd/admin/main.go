// Command admin runs maintenance tasks against the Cecília Digital database.
package main

func main() {
	Execute()
}
