package main

import "github.com/dataknots/knotql/cmd"

func main() {
	cmd.Execute()
}
