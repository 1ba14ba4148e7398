// Command tagsearch stores tagged search queries and serves them over HTTP.
package main

func main() {
	Execute()
}
