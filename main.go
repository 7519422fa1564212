package main

import "github.com/tantalor93/dnsrank/cmd"

func main() {
	cmd.Execute()
}
