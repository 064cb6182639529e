package main

import "github.com/dylandreimerink/bfdb/cmd"

func main() {
	cmd.Execute()
}
