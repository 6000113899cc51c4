// Command soft404 brute-forces web paths while filtering out soft-404
// responses: custom not-found pages served with a status code that looks
// like success.
package main

import "github.com/ghostpath/soft404/cmd"

func main() {
	cmd.Execute()
}
