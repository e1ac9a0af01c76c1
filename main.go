package main

import "github.com/Mohsinsiddi/w3mask/cmd"

func main() {
	cmd.Execute()
}
