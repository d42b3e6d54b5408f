// chronik-crawler extracts incident records from the München Chronik and
// persists them into a relational store.
package main

import "github.com/rechte-gewalt/chronik-crawler/cmd"

func main() {
	cmd.Execute()
}
